package quiz

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// memoryStore mirrors the SQL store's semantics for tests and throwaway
// setups, including the conditional completion guard.
type memoryStore struct {
	mu       sync.RWMutex
	attempts map[string]Attempt
}

func NewInMemoryStore() Store {
	return &memoryStore{attempts: map[string]Attempt{}}
}

func (m *memoryStore) Create(_ context.Context, a Attempt) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	m.attempts[a.ID] = a
	return a.ID, nil
}

func (m *memoryStore) Get(_ context.Context, id string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, ErrNotFound
	}
	return a, nil
}

func (m *memoryStore) Complete(_ context.Context, id string, upd CompletionUpdate) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, ErrNotFound
	}
	if a.Completed {
		return a, ErrAlreadyCompleted
	}
	a.Answers = upd.Answers
	a.CorrectAnswers = upd.CorrectAnswers
	a.Score = upd.Score
	a.TimeSpentSeconds = upd.TimeSpentSeconds
	a.Completed = true
	a.FinishedAt = upd.FinishedAt
	m.attempts[id] = a
	return a, nil
}

func (m *memoryStore) ListCompletedByUser(_ context.Context, userID string) ([]Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Attempt{}
	for _, a := range m.attempts {
		if a.UserID == userID && a.Completed {
			out = append(out, a)
		}
	}
	sortByFinishedDesc(out)
	return out, nil
}

func (m *memoryStore) ListCompletedByUserAndQuiz(_ context.Context, userID, quizID string) ([]Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Attempt{}
	for _, a := range m.attempts {
		if a.UserID == userID && a.QuizID == quizID && a.Completed {
			out = append(out, a)
		}
	}
	sortByFinishedDesc(out)
	return out, nil
}

func sortByFinishedDesc(attempts []Attempt) {
	sort.SliceStable(attempts, func(i, j int) bool {
		return attempts[i].FinishedAt > attempts[j].FinishedAt
	})
}
