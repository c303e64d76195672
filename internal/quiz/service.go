package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/studyhall/studyhall/internal/catalog"
)

// Catalog is the read-only slice of the content catalog the attempt engine
// needs.
type Catalog interface {
	GetQuiz(ctx context.Context, id string) (catalog.Quiz, error)
	GetQuestions(ctx context.Context, quizID string) ([]catalog.Question, error)
}

// Service orchestrates the attempt lifecycle: start → submit → result →
// history. State machine per attempt is InProgress → Completed, terminal.
// The quiz time limit is advisory only; late submissions are never rejected
// and abandoned attempts simply stay in progress.
type Service struct {
	catalog Catalog
	store   Store
	now     func() time.Time
}

func NewService(c Catalog, s Store) *Service {
	return &Service{catalog: c, store: s, now: time.Now}
}

// StartResult is the payload for a freshly started attempt. Questions are
// sanitized: answer keys and explanations are withheld while the attempt is
// in progress.
type StartResult struct {
	Attempt   Attempt            `json:"attempt"`
	Quiz      catalog.Quiz       `json:"quiz"`
	Questions []catalog.Question `json:"questions"`
}

// StartAttempt creates a new in-progress attempt. The quiz must exist and
// have at least one question; an empty quiz creates no attempt row. Repeated
// calls create independent attempts — retakes and accidental double-starts
// alike.
func (s *Service) StartAttempt(ctx context.Context, userID, quizID string) (StartResult, error) {
	qz, err := s.catalog.GetQuiz(ctx, quizID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return StartResult{}, ErrNotFound
		}
		return StartResult{}, fmt.Errorf("load quiz: %w", err)
	}
	questions, err := s.catalog.GetQuestions(ctx, quizID)
	if err != nil {
		return StartResult{}, fmt.Errorf("load questions: %w", err)
	}
	if len(questions) == 0 {
		return StartResult{}, ErrEmptyQuiz
	}

	a := Attempt{
		UserID:         userID,
		QuizID:         quizID,
		TotalQuestions: len(questions),
		StartedAt:      s.now().Unix(),
	}
	id, err := s.store.Create(ctx, a)
	if err != nil {
		return StartResult{}, fmt.Errorf("create attempt: %w", err)
	}
	a.ID = id

	sanitized := make([]catalog.Question, len(questions))
	for i, q := range questions {
		sanitized[i] = q.Sanitized()
	}
	return StartResult{Attempt: a, Quiz: qz, Questions: sanitized}, nil
}

// SubmitAttempt scores the submitted answers and completes the attempt in a
// single conditional write. Scoring runs against the live question set
// fetched now, not the set returned at start; the full submitted mapping is
// persisted for audit either way. A negative elapsed value degrades to zero —
// submission success is prioritized over strict input validation.
func (s *Service) SubmitAttempt(ctx context.Context, userID, attemptID string, submitted AnswerSheet, elapsedSeconds int) (Attempt, error) {
	a, err := s.store.Get(ctx, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if a.UserID != userID {
		return Attempt{}, ErrForbidden
	}
	if a.Completed {
		return a, ErrAlreadyCompleted
	}

	questions, err := s.catalog.GetQuestions(ctx, a.QuizID)
	if err != nil {
		return Attempt{}, fmt.Errorf("load questions: %w", err)
	}
	if submitted == nil {
		submitted = AnswerSheet{}
	}
	correct, percent := Score(questions, submitted)
	if elapsedSeconds < 0 {
		elapsedSeconds = 0
	}

	return s.store.Complete(ctx, attemptID, CompletionUpdate{
		Answers:          submitted,
		CorrectAnswers:   correct,
		Score:            percent,
		TimeSpentSeconds: elapsedSeconds,
		FinishedAt:       s.now().Unix(),
	})
}

// ResultView is the per-question review payload: the completed attempt, the
// full question set including correct answers and explanations, and the
// decoded submitted mapping.
type ResultView struct {
	Attempt   Attempt            `json:"attempt"`
	Quiz      catalog.Quiz       `json:"quiz"`
	Questions []catalog.Question `json:"questions"`
	Answers   AnswerSheet        `json:"answers"`
}

// GetResult returns the review payload for a completed attempt. Only the
// owner or an admin may see it; an in-progress attempt yields
// ErrNotYetCompleted so the caller can resume instead.
func (s *Service) GetResult(ctx context.Context, userID string, isAdmin bool, attemptID string) (ResultView, error) {
	a, err := s.store.Get(ctx, attemptID)
	if err != nil {
		return ResultView{}, err
	}
	if a.UserID != userID && !isAdmin {
		return ResultView{}, ErrForbidden
	}
	if !a.Completed {
		return ResultView{}, ErrNotYetCompleted
	}
	qz, err := s.catalog.GetQuiz(ctx, a.QuizID)
	if err != nil && !errors.Is(err, catalog.ErrNotFound) {
		return ResultView{}, fmt.Errorf("load quiz: %w", err)
	}
	questions, err := s.catalog.GetQuestions(ctx, a.QuizID)
	if err != nil {
		return ResultView{}, fmt.Errorf("load questions: %w", err)
	}
	answers := a.Answers
	if answers == nil {
		answers = AnswerSheet{}
	}
	return ResultView{Attempt: a, Quiz: qz, Questions: questions, Answers: answers}, nil
}

// Attempt returns the raw attempt record without the review payload.
func (s *Service) Attempt(ctx context.Context, id string) (Attempt, error) {
	return s.store.Get(ctx, id)
}

// ListHistory returns the user's completed attempts, most recent first.
func (s *Service) ListHistory(ctx context.Context, userID string) ([]Attempt, error) {
	return s.store.ListCompletedByUser(ctx, userID)
}

// Summary decorates quiz listings with the user's completed-attempt count
// and best score. Derived, never persisted.
type Summary struct {
	Count     int     `json:"count"`
	BestScore float64 `json:"best_score"`
}

func (s *Service) QuizSummary(ctx context.Context, userID, quizID string) (Summary, error) {
	attempts, err := s.store.ListCompletedByUserAndQuiz(ctx, userID, quizID)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{Count: len(attempts)}
	for _, a := range attempts {
		if a.Score > sum.BestScore {
			sum.BestScore = a.Score
		}
	}
	return sum, nil
}

// PreviousAttempts feeds the pre-start screen with the user's most recent
// completed attempts for a quiz.
func (s *Service) PreviousAttempts(ctx context.Context, userID, quizID string, limit int) ([]Attempt, error) {
	attempts, err := s.store.ListCompletedByUserAndQuiz(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(attempts) > limit {
		attempts = attempts[:limit]
	}
	return attempts, nil
}

// AverageScore is the mean over the user's completed attempts, for the
// dashboard. Zero when there are none.
func (s *Service) AverageScore(ctx context.Context, userID string) (float64, error) {
	attempts, err := s.store.ListCompletedByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if len(attempts) == 0 {
		return 0, nil
	}
	var sum float64
	for _, a := range attempts {
		sum += a.Score
	}
	return sum / float64(len(attempts)), nil
}
