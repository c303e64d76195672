package quiz

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Create(ctx context.Context, a Attempt) (string, error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quiz_attempts
		   (id, user_id, quiz_id, total_questions, correct_answers, score,
		    time_spent_seconds, completed, started_at, answers_json)
		 VALUES ($1,$2,$3,$4,0,0,0,$5,$6,'')`,
		a.ID, a.UserID, a.QuizID, a.TotalQuestions, false, a.StartedAt)
	if err != nil {
		return "", err
	}
	return a.ID, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, quiz_id, total_questions, correct_answers, score,
		        time_spent_seconds, completed, started_at, finished_at, answers_json
		 FROM quiz_attempts WHERE id=$1`, id)
	return scanAttempt(row)
}

// Complete applies the whole completion update in one UPDATE guarded on
// completed=false, so a concurrent second submit observes ErrAlreadyCompleted
// instead of double-scoring and no reader ever sees a partially-updated row.
func (s *SQLStore) Complete(ctx context.Context, id string, upd CompletionUpdate) (Attempt, error) {
	raw, err := upd.Answers.Encode()
	if err != nil {
		return Attempt{}, err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE quiz_attempts
		 SET answers_json=$1, correct_answers=$2, score=$3, time_spent_seconds=$4,
		     completed=$5, finished_at=$6
		 WHERE id=$7 AND completed=$8`,
		raw, upd.CorrectAnswers, upd.Score, upd.TimeSpentSeconds, true, upd.FinishedAt, id, false)
	if err != nil {
		return Attempt{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Attempt{}, err
	}
	if n == 0 {
		// Either the row is gone or it was already completed.
		a, err := s.Get(ctx, id)
		if err != nil {
			return Attempt{}, err
		}
		if a.Completed {
			return a, ErrAlreadyCompleted
		}
		return Attempt{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *SQLStore) ListCompletedByUser(ctx context.Context, userID string) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, quiz_id, total_questions, correct_answers, score,
		        time_spent_seconds, completed, started_at, finished_at, answers_json
		 FROM quiz_attempts WHERE user_id=$1 AND completed=$2
		 ORDER BY finished_at DESC`, userID, true)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAttempts(rows)
}

func (s *SQLStore) ListCompletedByUserAndQuiz(ctx context.Context, userID, quizID string) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, quiz_id, total_questions, correct_answers, score,
		        time_spent_seconds, completed, started_at, finished_at, answers_json
		 FROM quiz_attempts WHERE user_id=$1 AND quiz_id=$2 AND completed=$3
		 ORDER BY finished_at DESC`, userID, quizID, true)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAttempts(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row rowScanner) (Attempt, error) {
	var a Attempt
	var finished sql.NullInt64
	var raw string
	err := row.Scan(&a.ID, &a.UserID, &a.QuizID, &a.TotalQuestions, &a.CorrectAnswers,
		&a.Score, &a.TimeSpentSeconds, &a.Completed, &a.StartedAt, &finished, &raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrNotFound
		}
		return Attempt{}, err
	}
	if finished.Valid {
		a.FinishedAt = finished.Int64
	}
	a.Answers, err = DecodeAnswerSheet(raw)
	if err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func scanAttempts(rows *sql.Rows) ([]Attempt, error) {
	out := []Attempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
