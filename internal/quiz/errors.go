package quiz

import "errors"

var (
	// ErrNotFound covers missing quizzes and attempts.
	ErrNotFound = errors.New("not found")
	// ErrForbidden: attempt accessed by a non-owner without admin privilege.
	ErrForbidden = errors.New("forbidden")
	// ErrEmptyQuiz: start requested on a quiz with zero questions.
	ErrEmptyQuiz = errors.New("quiz has no questions")
	// ErrAlreadyCompleted: resubmission of a completed attempt.
	ErrAlreadyCompleted = errors.New("attempt already completed")
	// ErrNotYetCompleted: result requested before submission.
	ErrNotYetCompleted = errors.New("attempt not yet completed")
)
