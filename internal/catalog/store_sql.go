package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// SQLStore serves the content catalog from the relational schema. The quiz
// core consumes it read-only; the admin surface mutates it.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// ---- read side ----

func (s *SQLStore) ListDisciplines(ctx context.Context) ([]Discipline, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, ord, created_at FROM disciplines ORDER BY ord, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Discipline{}
	for rows.Next() {
		var d Discipline
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.Order, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetDiscipline(ctx context.Context, id string) (Discipline, error) {
	var d Discipline
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, ord, created_at FROM disciplines WHERE id=$1`, id).
		Scan(&d.ID, &d.Name, &d.Description, &d.Order, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Discipline{}, ErrNotFound
	}
	return d, err
}

func (s *SQLStore) ListModules(ctx context.Context, disciplineID string) ([]Module, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, discipline_id, name, description, ord, created_at
		 FROM modules WHERE discipline_id=$1 ORDER BY ord, name`, disciplineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Module{}
	for rows.Next() {
		var m Module
		if err := rows.Scan(&m.ID, &m.DisciplineID, &m.Name, &m.Description, &m.Order, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetModule(ctx context.Context, id string) (Module, error) {
	var m Module
	err := s.db.QueryRowContext(ctx,
		`SELECT id, discipline_id, name, description, ord, created_at FROM modules WHERE id=$1`, id).
		Scan(&m.ID, &m.DisciplineID, &m.Name, &m.Description, &m.Order, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Module{}, ErrNotFound
	}
	return m, err
}

func (s *SQLStore) ListVideos(ctx context.Context, moduleID string) ([]VideoLesson, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, module_id, title, description, video_url, video_type, duration_minutes, ord, created_at
		 FROM video_lessons WHERE module_id=$1 ORDER BY ord, title`, moduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanVideos(rows)
}

func (s *SQLStore) GetVideo(ctx context.Context, id string) (VideoLesson, error) {
	var v VideoLesson
	err := s.db.QueryRowContext(ctx,
		`SELECT id, module_id, title, description, video_url, video_type, duration_minutes, ord, created_at
		 FROM video_lessons WHERE id=$1`, id).
		Scan(&v.ID, &v.ModuleID, &v.Title, &v.Description, &v.VideoURL, &v.VideoType,
			&v.DurationMinutes, &v.Order, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return VideoLesson{}, ErrNotFound
	}
	return v, err
}

func (s *SQLStore) ListMaterials(ctx context.Context, moduleID string) ([]Material, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, module_id, title, description, file_path, file_type, external_url, ord, created_at
		 FROM materials WHERE module_id=$1 ORDER BY ord, title`, moduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMaterials(rows)
}

func (s *SQLStore) GetMaterial(ctx context.Context, id string) (Material, error) {
	var m Material
	err := s.db.QueryRowContext(ctx,
		`SELECT id, module_id, title, description, file_path, file_type, external_url, ord, created_at
		 FROM materials WHERE id=$1`, id).
		Scan(&m.ID, &m.ModuleID, &m.Title, &m.Description, &m.FilePath, &m.FileType,
			&m.ExternalURL, &m.Order, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Material{}, ErrNotFound
	}
	return m, err
}

func (s *SQLStore) ListQuizzes(ctx context.Context, moduleID string) ([]Quiz, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, module_id, title, description, time_limit_minutes, ord, created_at
		 FROM quizzes WHERE module_id=$1 ORDER BY ord, title`, moduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuizzes(rows)
}

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	var q Quiz
	err := s.db.QueryRowContext(ctx,
		`SELECT id, module_id, title, description, time_limit_minutes, ord, created_at
		 FROM quizzes WHERE id=$1`, id).
		Scan(&q.ID, &q.ModuleID, &q.Title, &q.Description, &q.TimeLimitMinutes, &q.Order, &q.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Quiz{}, ErrNotFound
	}
	return q, err
}

// GetQuestions returns the quiz's questions ordered by ord, with id as the
// insertion tiebreak.
func (s *SQLStore) GetQuestions(ctx context.Context, quizID string) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, quiz_id, text, option_a, option_b, option_c, option_d, option_e,
		        correct_answer, explanation, ord
		 FROM questions WHERE quiz_id=$1 ORDER BY ord, id`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Question{}
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Text, &q.OptionA, &q.OptionB, &q.OptionC,
			&q.OptionD, &q.OptionE, &q.CorrectAnswer, &q.Explanation, &q.Order); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// ---- dashboard reads ----

type Totals struct {
	Videos    int `json:"videos"`
	Quizzes   int `json:"quizzes"`
	Materials int `json:"materials"`
}

func (s *SQLStore) Counts(ctx context.Context) (Totals, error) {
	var t Totals
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM video_lessons`).Scan(&t.Videos); err != nil {
		return t, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quizzes`).Scan(&t.Quizzes); err != nil {
		return t, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM materials`).Scan(&t.Materials); err != nil {
		return t, err
	}
	return t, nil
}

type Recent struct {
	Videos    []VideoLesson `json:"videos"`
	Quizzes   []Quiz        `json:"quizzes"`
	Materials []Material    `json:"materials"`
}

func (s *SQLStore) RecentContent(ctx context.Context, limit int) (Recent, error) {
	if limit <= 0 {
		limit = 5
	}
	var rc Recent
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, module_id, title, description, video_url, video_type, duration_minutes, ord, created_at
		 FROM video_lessons ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return rc, err
	}
	rc.Videos, err = scanVideos(rows)
	rows.Close()
	if err != nil {
		return rc, err
	}
	rows, err = s.db.QueryContext(ctx,
		`SELECT id, module_id, title, description, time_limit_minutes, ord, created_at
		 FROM quizzes ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return rc, err
	}
	rc.Quizzes, err = scanQuizzes(rows)
	rows.Close()
	if err != nil {
		return rc, err
	}
	rows, err = s.db.QueryContext(ctx,
		`SELECT id, module_id, title, description, file_path, file_type, external_url, ord, created_at
		 FROM materials ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return rc, err
	}
	rc.Materials, err = scanMaterials(rows)
	rows.Close()
	return rc, err
}

// Search matches q case-insensitively against names/titles and descriptions
// of every catalog entity kind.
func (s *SQLStore) Search(ctx context.Context, q string) (SearchResults, error) {
	res := SearchResults{
		Disciplines: []Discipline{},
		Modules:     []Module{},
		Videos:      []VideoLesson{},
		Materials:   []Material{},
		Quizzes:     []Quiz{},
	}
	term := "%" + q + "%"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, ord, created_at FROM disciplines
		 WHERE LOWER(name) LIKE LOWER($1) OR LOWER(description) LIKE LOWER($1) ORDER BY ord, name`, term)
	if err != nil {
		return res, err
	}
	for rows.Next() {
		var d Discipline
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.Order, &d.CreatedAt); err != nil {
			rows.Close()
			return res, err
		}
		res.Disciplines = append(res.Disciplines, d)
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx,
		`SELECT id, discipline_id, name, description, ord, created_at FROM modules
		 WHERE LOWER(name) LIKE LOWER($1) OR LOWER(description) LIKE LOWER($1) ORDER BY ord, name`, term)
	if err != nil {
		return res, err
	}
	for rows.Next() {
		var m Module
		if err := rows.Scan(&m.ID, &m.DisciplineID, &m.Name, &m.Description, &m.Order, &m.CreatedAt); err != nil {
			rows.Close()
			return res, err
		}
		res.Modules = append(res.Modules, m)
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx,
		`SELECT id, module_id, title, description, video_url, video_type, duration_minutes, ord, created_at
		 FROM video_lessons
		 WHERE LOWER(title) LIKE LOWER($1) OR LOWER(description) LIKE LOWER($1) ORDER BY ord, title`, term)
	if err != nil {
		return res, err
	}
	res.Videos, err = scanVideos(rows)
	rows.Close()
	if err != nil {
		return res, err
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT id, module_id, title, description, file_path, file_type, external_url, ord, created_at
		 FROM materials
		 WHERE LOWER(title) LIKE LOWER($1) OR LOWER(description) LIKE LOWER($1) ORDER BY ord, title`, term)
	if err != nil {
		return res, err
	}
	res.Materials, err = scanMaterials(rows)
	rows.Close()
	if err != nil {
		return res, err
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT id, module_id, title, description, time_limit_minutes, ord, created_at
		 FROM quizzes
		 WHERE LOWER(title) LIKE LOWER($1) OR LOWER(description) LIKE LOWER($1) ORDER BY ord, title`, term)
	if err != nil {
		return res, err
	}
	res.Quizzes, err = scanQuizzes(rows)
	rows.Close()
	return res, err
}

// ---- admin write side ----

func (s *SQLStore) CreateDiscipline(ctx context.Context, d Discipline) (Discipline, error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	d.CreatedAt = time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO disciplines (id, name, description, ord, created_at) VALUES ($1,$2,$3,$4,$5)`,
		d.ID, d.Name, d.Description, d.Order, d.CreatedAt)
	return d, err
}

func (s *SQLStore) UpdateDiscipline(ctx context.Context, d Discipline) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE disciplines SET name=$1, description=$2, ord=$3 WHERE id=$4`,
		d.Name, d.Description, d.Order, d.ID)
	return checkAffected(res, err)
}

func (s *SQLStore) DeleteDiscipline(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM disciplines WHERE id=$1`, id)
	return checkAffected(res, err)
}

func (s *SQLStore) CreateModule(ctx context.Context, m Module) (Module, error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.CreatedAt = time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO modules (id, discipline_id, name, description, ord, created_at) VALUES ($1,$2,$3,$4,$5,$6)`,
		m.ID, m.DisciplineID, m.Name, m.Description, m.Order, m.CreatedAt)
	return m, err
}

func (s *SQLStore) UpdateModule(ctx context.Context, m Module) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE modules SET name=$1, description=$2, ord=$3 WHERE id=$4`,
		m.Name, m.Description, m.Order, m.ID)
	return checkAffected(res, err)
}

func (s *SQLStore) DeleteModule(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM modules WHERE id=$1`, id)
	return checkAffected(res, err)
}

func (s *SQLStore) CreateVideo(ctx context.Context, v VideoLesson) (VideoLesson, error) {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.VideoType == "" {
		v.VideoType = "youtube"
	}
	v.CreatedAt = time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO video_lessons (id, module_id, title, description, video_url, video_type, duration_minutes, ord, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		v.ID, v.ModuleID, v.Title, v.Description, v.VideoURL, v.VideoType, v.DurationMinutes, v.Order, v.CreatedAt)
	return v, err
}

func (s *SQLStore) UpdateVideo(ctx context.Context, v VideoLesson) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE video_lessons SET title=$1, description=$2, video_url=$3, video_type=$4, duration_minutes=$5, ord=$6 WHERE id=$7`,
		v.Title, v.Description, v.VideoURL, v.VideoType, v.DurationMinutes, v.Order, v.ID)
	return checkAffected(res, err)
}

func (s *SQLStore) DeleteVideo(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM video_lessons WHERE id=$1`, id)
	return checkAffected(res, err)
}

func (s *SQLStore) CreateMaterial(ctx context.Context, m Material) (Material, error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.CreatedAt = time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO materials (id, module_id, title, description, file_path, file_type, external_url, ord, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		m.ID, m.ModuleID, m.Title, m.Description, m.FilePath, m.FileType, m.ExternalURL, m.Order, m.CreatedAt)
	return m, err
}

func (s *SQLStore) UpdateMaterial(ctx context.Context, m Material) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE materials SET title=$1, description=$2, file_path=$3, file_type=$4, external_url=$5, ord=$6 WHERE id=$7`,
		m.Title, m.Description, m.FilePath, m.FileType, m.ExternalURL, m.Order, m.ID)
	return checkAffected(res, err)
}

func (s *SQLStore) DeleteMaterial(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM materials WHERE id=$1`, id)
	return checkAffected(res, err)
}

func (s *SQLStore) CreateQuiz(ctx context.Context, q Quiz) (Quiz, error) {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if q.TimeLimitMinutes <= 0 {
		q.TimeLimitMinutes = 60
	}
	q.CreatedAt = time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quizzes (id, module_id, title, description, time_limit_minutes, ord, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		q.ID, q.ModuleID, q.Title, q.Description, q.TimeLimitMinutes, q.Order, q.CreatedAt)
	return q, err
}

func (s *SQLStore) UpdateQuiz(ctx context.Context, q Quiz) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE quizzes SET title=$1, description=$2, time_limit_minutes=$3, ord=$4 WHERE id=$5`,
		q.Title, q.Description, q.TimeLimitMinutes, q.Order, q.ID)
	return checkAffected(res, err)
}

func (s *SQLStore) DeleteQuiz(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id=$1`, id)
	return checkAffected(res, err)
}

func (s *SQLStore) CreateQuestion(ctx context.Context, q Question) (Question, error) {
	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO questions (id, quiz_id, text, option_a, option_b, option_c, option_d, option_e, correct_answer, explanation, ord)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		q.ID, q.QuizID, q.Text, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.OptionE,
		normalizeLetter(q.CorrectAnswer), q.Explanation, q.Order)
	return q, err
}

func (s *SQLStore) UpdateQuestion(ctx context.Context, q Question) error {
	if err := q.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE questions SET text=$1, option_a=$2, option_b=$3, option_c=$4, option_d=$5, option_e=$6,
		        correct_answer=$7, explanation=$8, ord=$9 WHERE id=$10`,
		q.Text, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.OptionE,
		normalizeLetter(q.CorrectAnswer), q.Explanation, q.Order, q.ID)
	return checkAffected(res, err)
}

func (s *SQLStore) DeleteQuestion(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id=$1`, id)
	return checkAffected(res, err)
}

// ---- helpers ----

func checkAffected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanVideos(rows *sql.Rows) ([]VideoLesson, error) {
	out := []VideoLesson{}
	for rows.Next() {
		var v VideoLesson
		if err := rows.Scan(&v.ID, &v.ModuleID, &v.Title, &v.Description, &v.VideoURL, &v.VideoType,
			&v.DurationMinutes, &v.Order, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanMaterials(rows *sql.Rows) ([]Material, error) {
	out := []Material{}
	for rows.Next() {
		var m Material
		if err := rows.Scan(&m.ID, &m.ModuleID, &m.Title, &m.Description, &m.FilePath, &m.FileType,
			&m.ExternalURL, &m.Order, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanQuizzes(rows *sql.Rows) ([]Quiz, error) {
	out := []Quiz{}
	for rows.Next() {
		var q Quiz
		if err := rows.Scan(&q.ID, &q.ModuleID, &q.Title, &q.Description, &q.TimeLimitMinutes,
			&q.Order, &q.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
