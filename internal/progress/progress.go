package progress

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/studyhall/studyhall/internal/catalog"
)

// Service tracks per-user video completion. Each (user, video) pair has at
// most one row; toggling flips the completed flag.
type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service { return &Service{db: db} }

// Toggle flips completion for the video and returns the new state. The
// first toggle marks the video completed.
func (s *Service) Toggle(ctx context.Context, userID, videoID string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM video_lessons WHERE id=$1`, videoID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, catalog.ErrNotFound
		}
		return false, err
	}

	var id string
	var completed bool
	err = s.db.QueryRowContext(ctx,
		`SELECT id, completed FROM user_progress WHERE user_id=$1 AND video_id=$2`,
		userID, videoID).Scan(&id, &completed)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO user_progress (id, user_id, video_id, completed, completed_at) VALUES ($1,$2,$3,$4,$5)`,
			uuid.New().String(), userID, videoID, true, time.Now().Unix())
		return true, err
	case err != nil:
		return false, err
	}

	completed = !completed
	var finishedAt any
	if completed {
		finishedAt = time.Now().Unix()
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE user_progress SET completed=$1, completed_at=$2 WHERE id=$3`,
		completed, finishedAt, id)
	return completed, err
}

// ForUser returns the user's video→completed map.
func (s *Service) ForUser(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT video_id, completed FROM user_progress WHERE user_id=$1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]bool{}
	for rows.Next() {
		var videoID string
		var completed bool
		if err := rows.Scan(&videoID, &completed); err != nil {
			return nil, err
		}
		out[videoID] = completed
	}
	return out, rows.Err()
}

// Percentage is the share of all video lessons the user has completed,
// 0-100. Zero when there are no videos at all.
func (s *Service) Percentage(ctx context.Context, userID string) (int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM video_lessons`).Scan(&total); err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	var done int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_progress WHERE user_id=$1 AND completed=$2`,
		userID, true).Scan(&done)
	if err != nil {
		return 0, err
	}
	return done * 100 / total, nil
}
