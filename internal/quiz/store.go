package quiz

import "context"

// CompletionUpdate carries the fields the submit operation sets. The store
// must apply them together with completed and finished_at as a single
// conditional write.
type CompletionUpdate struct {
	Answers          AnswerSheet
	CorrectAnswers   int
	Score            float64
	TimeSpentSeconds int
	FinishedAt       int64
}

// Store persists quiz attempts, the only mutable state the attempt engine
// owns. Attempts are never deleted here; removal happens via DB cascade when
// the owning quiz or user goes away.
type Store interface {
	Create(ctx context.Context, a Attempt) (string, error)
	Get(ctx context.Context, id string) (Attempt, error)

	// Complete atomically applies upd and flips the attempt to completed,
	// guarded on completed=false. A second completion of the same attempt
	// returns ErrAlreadyCompleted and leaves the row untouched.
	Complete(ctx context.Context, id string, upd CompletionUpdate) (Attempt, error)

	// ListCompletedByUser returns completed attempts, most recently finished
	// first.
	ListCompletedByUser(ctx context.Context, userID string) ([]Attempt, error)
	ListCompletedByUserAndQuiz(ctx context.Context, userID, quizID string) ([]Attempt, error)
}
