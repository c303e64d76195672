package quiz_test

import (
	"context"
	"errors"
	"testing"

	"github.com/studyhall/studyhall/internal/catalog"
	"github.com/studyhall/studyhall/internal/quiz"
)

// fakeCatalog satisfies quiz.Catalog from in-memory maps.
type fakeCatalog struct {
	quizzes   map[string]catalog.Quiz
	questions map[string][]catalog.Question
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		quizzes:   map[string]catalog.Quiz{},
		questions: map[string][]catalog.Question{},
	}
}

func (f *fakeCatalog) GetQuiz(_ context.Context, id string) (catalog.Quiz, error) {
	q, ok := f.quizzes[id]
	if !ok {
		return catalog.Quiz{}, catalog.ErrNotFound
	}
	return q, nil
}

func (f *fakeCatalog) GetQuestions(_ context.Context, quizID string) ([]catalog.Question, error) {
	return f.questions[quizID], nil
}

func (f *fakeCatalog) addQuiz(id string, keys ...string) {
	f.quizzes[id] = catalog.Quiz{ID: id, Title: "Quiz " + id, TimeLimitMinutes: 60}
	qs := make([]catalog.Question, len(keys))
	for i, k := range keys {
		qs[i] = catalog.Question{
			ID:            id + "-q" + string(rune('1'+i)),
			QuizID:        id,
			Text:          "question",
			OptionA:       "a", OptionB: "b", OptionC: "c", OptionD: "d", OptionE: "e",
			CorrectAnswer: k,
			Explanation:   "because",
			Order:         i,
		}
	}
	f.questions[id] = qs
}

func newTestService() (*quiz.Service, *fakeCatalog) {
	cat := newFakeCatalog()
	return quiz.NewService(cat, quiz.NewInMemoryStore()), cat
}

func TestStartAttempt_SnapshotsQuestionCount(t *testing.T) {
	svc, cat := newTestService()
	cat.addQuiz("qz1", "A", "B", "C")

	res, err := svc.StartAttempt(context.Background(), "u1", "qz1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if res.Attempt.TotalQuestions != 3 {
		t.Fatalf("total_questions=%d, want 3", res.Attempt.TotalQuestions)
	}
	if res.Attempt.Completed {
		t.Fatal("new attempt must be in progress")
	}
	if res.Attempt.StartedAt == 0 {
		t.Fatal("started_at not set")
	}
	if len(res.Questions) != 3 {
		t.Fatalf("got %d questions", len(res.Questions))
	}
	for _, q := range res.Questions {
		if q.CorrectAnswer != "" || q.Explanation != "" {
			t.Fatalf("answer key leaked during attempt: %#v", q)
		}
	}
}

func TestStartAttempt_EmptyQuiz(t *testing.T) {
	svc, cat := newTestService()
	cat.addQuiz("empty") // no questions

	_, err := svc.StartAttempt(context.Background(), "u1", "empty")
	if !errors.Is(err, quiz.ErrEmptyQuiz) {
		t.Fatalf("got %v, want ErrEmptyQuiz", err)
	}
	history, err := svc.ListHistory(context.Background(), "u1")
	if err != nil || len(history) != 0 {
		t.Fatalf("no attempt row expected, got %d (err=%v)", len(history), err)
	}
}

func TestStartAttempt_UnknownQuiz(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.StartAttempt(context.Background(), "u1", "missing")
	if !errors.Is(err, quiz.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestStartAttempt_RepeatedCallsCreateIndependentAttempts(t *testing.T) {
	svc, cat := newTestService()
	cat.addQuiz("qz1", "A")

	r1, err := svc.StartAttempt(context.Background(), "u1", "qz1")
	if err != nil {
		t.Fatalf("start 1: %v", err)
	}
	r2, err := svc.StartAttempt(context.Background(), "u1", "qz1")
	if err != nil {
		t.Fatalf("start 2: %v", err)
	}
	if r1.Attempt.ID == r2.Attempt.ID {
		t.Fatal("double start must create independent attempts")
	}
}

func TestSubmitAttempt_EndToEnd(t *testing.T) {
	svc, cat := newTestService()
	cat.addQuiz("qz1", "A", "B", "C", "D")

	res, err := svc.StartAttempt(context.Background(), "u1", "qz1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	submitted := quiz.AnswerSheet{
		"qz1-q1": "A",
		"qz1-q2": "B",
		"qz1-q3": "X",
		"qz1-q4": "D",
	}
	a, err := svc.SubmitAttempt(context.Background(), "u1", res.Attempt.ID, submitted, 120)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if a.CorrectAnswers != 3 {
		t.Fatalf("correct=%d, want 3", a.CorrectAnswers)
	}
	if a.Score != 75.0 {
		t.Fatalf("score=%v, want 75.0", a.Score)
	}
	if !a.Completed || a.FinishedAt == 0 {
		t.Fatalf("attempt not completed: %#v", a)
	}
	if a.TimeSpentSeconds != 120 {
		t.Fatalf("time_spent=%d, want 120", a.TimeSpentSeconds)
	}
}

func TestSubmitAttempt_NonOwnerForbidden(t *testing.T) {
	svc, cat := newTestService()
	cat.addQuiz("qz1", "A")
	res, _ := svc.StartAttempt(context.Background(), "u1", "qz1")

	_, err := svc.SubmitAttempt(context.Background(), "intruder", res.Attempt.ID, nil, 0)
	if !errors.Is(err, quiz.ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}
}

func TestSubmitAttempt_AlreadyCompletedLeavesFieldsUnchanged(t *testing.T) {
	svc, cat := newTestService()
	cat.addQuiz("qz1", "A", "B")
	res, _ := svc.StartAttempt(context.Background(), "u1", "qz1")

	first, err := svc.SubmitAttempt(context.Background(), "u1",
		res.Attempt.ID, quiz.AnswerSheet{"qz1-q1": "A", "qz1-q2": "B"}, 30)
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}

	_, err = svc.SubmitAttempt(context.Background(), "u1",
		res.Attempt.ID, quiz.AnswerSheet{"qz1-q1": "X"}, 999)
	if !errors.Is(err, quiz.ErrAlreadyCompleted) {
		t.Fatalf("got %v, want ErrAlreadyCompleted", err)
	}

	after, err := svc.Attempt(context.Background(), res.Attempt.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if after.Score != first.Score || after.CorrectAnswers != first.CorrectAnswers ||
		after.TimeSpentSeconds != first.TimeSpentSeconds || after.FinishedAt != first.FinishedAt {
		t.Fatalf("resubmission mutated the attempt: %#v vs %#v", after, first)
	}
}

func TestSubmitAttempt_NegativeElapsedDegradesToZero(t *testing.T) {
	svc, cat := newTestService()
	cat.addQuiz("qz1", "A")
	res, _ := svc.StartAttempt(context.Background(), "u1", "qz1")

	a, err := svc.SubmitAttempt(context.Background(), "u1", res.Attempt.ID, nil, -5)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if a.TimeSpentSeconds != 0 {
		t.Fatalf("time_spent=%d, want 0", a.TimeSpentSeconds)
	}
}

func TestSubmitAttempt_ScoresAgainstLiveQuestionSet(t *testing.T) {
	svc, cat := newTestService()
	cat.addQuiz("qz1", "A", "B")
	res, _ := svc.StartAttempt(context.Background(), "u1", "qz1")

	// a question is added mid-attempt; scoring uses the live set
	cat.questions["qz1"] = append(cat.questions["qz1"], catalog.Question{
		ID: "qz1-q3", QuizID: "qz1", Text: "late",
		OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d",
		CorrectAnswer: "C",
	})

	a, err := svc.SubmitAttempt(context.Background(), "u1",
		res.Attempt.ID, quiz.AnswerSheet{"qz1-q1": "A", "qz1-q2": "B"}, 0)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if a.CorrectAnswers != 2 {
		t.Fatalf("correct=%d, want 2", a.CorrectAnswers)
	}
	if a.Score < 66 || a.Score > 67 {
		t.Fatalf("score=%v, want 2/3 of 100", a.Score)
	}
	// the snapshot is display state and never retroactively changes
	if a.TotalQuestions != 2 {
		t.Fatalf("total_questions=%d, want snapshot 2", a.TotalQuestions)
	}
}

func TestGetResult_AccessAndCompletionGates(t *testing.T) {
	svc, cat := newTestService()
	cat.addQuiz("qz1", "A")
	res, _ := svc.StartAttempt(context.Background(), "u1", "qz1")

	if _, err := svc.GetResult(context.Background(), "u1", false, res.Attempt.ID); !errors.Is(err, quiz.ErrNotYetCompleted) {
		t.Fatalf("got %v, want ErrNotYetCompleted", err)
	}

	if _, err := svc.SubmitAttempt(context.Background(), "u1", res.Attempt.ID,
		quiz.AnswerSheet{"qz1-q1": "A"}, 10); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := svc.GetResult(context.Background(), "stranger", false, res.Attempt.ID); !errors.Is(err, quiz.ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden for non-owner", err)
	}

	// admin may review anyone's attempt
	rv, err := svc.GetResult(context.Background(), "someadmin", true, res.Attempt.ID)
	if err != nil {
		t.Fatalf("admin result: %v", err)
	}
	if len(rv.Questions) != 1 || rv.Questions[0].CorrectAnswer == "" {
		t.Fatal("result must include the full question set with answer keys")
	}
	if rv.Answers["qz1-q1"] != "A" {
		t.Fatalf("decoded answers missing: %#v", rv.Answers)
	}
}

func TestListHistory_MostRecentFirst(t *testing.T) {
	svc, cat := newTestService()
	cat.addQuiz("qz1", "A")

	// two completed attempts, scores 60 then 90; order is by finish time,
	// not score
	r1, _ := svc.StartAttempt(context.Background(), "u1", "qz1")
	if _, err := svc.SubmitAttempt(context.Background(), "u1", r1.Attempt.ID, nil, 0); err != nil {
		t.Fatalf("submit 1: %v", err)
	}
	r2, _ := svc.StartAttempt(context.Background(), "u1", "qz1")
	if _, err := svc.SubmitAttempt(context.Background(), "u1", r2.Attempt.ID,
		quiz.AnswerSheet{"qz1-q1": "A"}, 0); err != nil {
		t.Fatalf("submit 2: %v", err)
	}

	history, err := svc.ListHistory(context.Background(), "u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("got %d attempts, want 2", len(history))
	}
	if history[0].FinishedAt < history[1].FinishedAt {
		t.Fatal("history not ordered most recent first")
	}
}

func TestQuizSummary_CountAndBest(t *testing.T) {
	svc, cat := newTestService()
	// five questions so scores land on 40/80/60
	cat.addQuiz("qz1", "A", "B", "C", "D", "E")

	submissions := []quiz.AnswerSheet{
		{"qz1-q1": "A", "qz1-q2": "B"},                               // 40
		{"qz1-q1": "A", "qz1-q2": "B", "qz1-q3": "C", "qz1-q4": "D"}, // 80
		{"qz1-q1": "A", "qz1-q2": "B", "qz1-q3": "C"},                // 60
	}
	for i, s := range submissions {
		r, err := svc.StartAttempt(context.Background(), "u1", "qz1")
		if err != nil {
			t.Fatalf("start %d: %v", i, err)
		}
		if _, err := svc.SubmitAttempt(context.Background(), "u1", r.Attempt.ID, s, 0); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	sum, err := svc.QuizSummary(context.Background(), "u1", "qz1")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Count != 3 || sum.BestScore != 80 {
		t.Fatalf("got count=%d best=%v, want 3/80", sum.Count, sum.BestScore)
	}
}

func TestQuizSummary_NoAttempts(t *testing.T) {
	svc, cat := newTestService()
	cat.addQuiz("qz1", "A")
	sum, err := svc.QuizSummary(context.Background(), "u1", "qz1")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Count != 0 || sum.BestScore != 0 {
		t.Fatalf("expected zero summary, got %#v", sum)
	}
}

func TestAverageScore(t *testing.T) {
	svc, cat := newTestService()
	cat.addQuiz("qz1", "A", "B")

	// 50 then 100
	r1, _ := svc.StartAttempt(context.Background(), "u1", "qz1")
	if _, err := svc.SubmitAttempt(context.Background(), "u1", r1.Attempt.ID,
		quiz.AnswerSheet{"qz1-q1": "A"}, 0); err != nil {
		t.Fatalf("submit 1: %v", err)
	}
	r2, _ := svc.StartAttempt(context.Background(), "u1", "qz1")
	if _, err := svc.SubmitAttempt(context.Background(), "u1", r2.Attempt.ID,
		quiz.AnswerSheet{"qz1-q1": "A", "qz1-q2": "B"}, 0); err != nil {
		t.Fatalf("submit 2: %v", err)
	}

	avg, err := svc.AverageScore(context.Background(), "u1")
	if err != nil {
		t.Fatalf("average: %v", err)
	}
	if avg != 75 {
		t.Fatalf("avg=%v, want 75", avg)
	}
}
