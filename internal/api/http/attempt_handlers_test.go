package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	apihttp "github.com/studyhall/studyhall/internal/api/http"
	"github.com/studyhall/studyhall/internal/catalog"
	"github.com/studyhall/studyhall/internal/quiz"
	"github.com/studyhall/studyhall/internal/rbac"
)

type fakeCatalog struct {
	quizzes   map[string]catalog.Quiz
	questions map[string][]catalog.Question
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

func newAttemptRouter(subject, role string) (*chi.Mux, *quiz.Service) {
	cat := &fakeCatalog{
		quizzes: map[string]catalog.Quiz{
			"qz1": {ID: "qz1", Title: "Basics", TimeLimitMinutes: 60},
		},
		questions: map[string][]catalog.Question{
			"qz1": {
				{ID: "q1", QuizID: "qz1", Text: "?", OptionA: "1", OptionB: "2", OptionC: "3", OptionD: "4", CorrectAnswer: "A"},
				{ID: "q2", QuizID: "qz1", Text: "?", OptionA: "1", OptionB: "2", OptionC: "3", OptionD: "4", CorrectAnswer: "B"},
			},
		},
	}
	svc := quiz.NewService(cat, quiz.NewInMemoryStore())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := rbac.WithSubject(req.Context(), subject)
			ctx = rbac.WithRole(ctx, role)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/quizzes/{quizID}/attempts", apihttp.StartAttemptHandler(svc))
	r.Post("/quizzes/attempts/{attemptID}/submit", apihttp.SubmitAttemptHandler(svc))
	r.Get("/quizzes/attempts/{attemptID}/result", apihttp.GetResultHandler(svc))
	return r, svc
}

func TestStartAttemptHandler(t *testing.T) {
	r, _ := newAttemptRouter("u1", "student")

	req := httptest.NewRequest(http.MethodPost, "/quizzes/qz1/attempts", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var res quiz.StartResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Attempt.TotalQuestions != 2 || len(res.Questions) != 2 {
		t.Fatalf("unexpected payload: %#v", res)
	}
	for _, q := range res.Questions {
		if q.CorrectAnswer != "" {
			t.Fatal("answer key leaked in start payload")
		}
	}
}

func TestSubmitAttemptHandler_JSONMode(t *testing.T) {
	r, svc := newAttemptRouter("u1", "student")
	started, err := svc.StartAttempt(context.Background(), "u1", "qz1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	body := `{"answers":{"q1":"a","q2":"C"},"time_spent_seconds":"42"}`
	req := httptest.NewRequest(http.MethodPost,
		"/quizzes/attempts/"+started.Attempt.ID+"/submit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Success bool         `json:"success"`
		Attempt quiz.Attempt `json:"attempt"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !payload.Success {
		t.Fatal("success=false")
	}
	if payload.Attempt.CorrectAnswers != 1 || payload.Attempt.Score != 50 {
		t.Fatalf("unexpected scoring: %#v", payload.Attempt)
	}
	if payload.Attempt.TimeSpentSeconds != 42 {
		t.Fatalf("string-typed elapsed not accepted: %#v", payload.Attempt)
	}
}

func TestSubmitAttemptHandler_FormModeRedirects(t *testing.T) {
	r, svc := newAttemptRouter("u1", "student")
	started, err := svc.StartAttempt(context.Background(), "u1", "qz1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	form := url.Values{}
	form.Set("question_q1", "A")
	form.Set("question_q2", "B")
	form.Set("time_spent", "30")
	req := httptest.NewRequest(http.MethodPost,
		"/quizzes/attempts/"+started.Attempt.ID+"/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status=%d, want 303", rec.Code)
	}
	want := "/quizzes/attempts/" + started.Attempt.ID + "/result"
	if loc := rec.Header().Get("Location"); loc != want {
		t.Fatalf("location=%q, want %q", loc, want)
	}

	a, err := svc.Attempt(context.Background(), started.Attempt.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if a.CorrectAnswers != 2 || a.TimeSpentSeconds != 30 {
		t.Fatalf("form submission not applied: %#v", a)
	}
}

func TestSubmitAttemptHandler_Resubmission(t *testing.T) {
	r, svc := newAttemptRouter("u1", "student")
	started, _ := svc.StartAttempt(context.Background(), "u1", "qz1")
	if _, err := svc.SubmitAttempt(context.Background(), "u1", started.Attempt.ID, nil, 0); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// AJAX caller gets a conflict with the result location
	req := httptest.NewRequest(http.MethodPost,
		"/quizzes/attempts/"+started.Attempt.ID+"/submit", strings.NewReader(`{"answers":{}}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status=%d, want 409", rec.Code)
	}
	var payload struct {
		Success  bool   `json:"success"`
		Location string `json:"location"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Success || payload.Location == "" {
		t.Fatalf("unexpected conflict payload: %#v", payload)
	}

	// browser caller is sent to the existing result
	req = httptest.NewRequest(http.MethodPost,
		"/quizzes/attempts/"+started.Attempt.ID+"/submit", strings.NewReader("time_spent=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status=%d, want 303", rec.Code)
	}
}

func TestGetResultHandler_InProgressPointsBack(t *testing.T) {
	r, svc := newAttemptRouter("u1", "student")
	started, _ := svc.StartAttempt(context.Background(), "u1", "qz1")

	req := httptest.NewRequest(http.MethodGet,
		"/quizzes/attempts/"+started.Attempt.ID+"/result", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status=%d, want 409", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/quizzes/qz1/start" {
		t.Fatalf("location=%q", loc)
	}
}

func TestGetResultHandler_ForbiddenForStranger(t *testing.T) {
	r, svc := newAttemptRouter("stranger", "student")
	started, _ := svc.StartAttempt(context.Background(), "u1", "qz1")
	if _, err := svc.SubmitAttempt(context.Background(), "u1", started.Attempt.ID, nil, 0); err != nil {
		t.Fatalf("submit: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet,
		"/quizzes/attempts/"+started.Attempt.ID+"/result", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status=%d, want 403", rec.Code)
	}
}

func TestGetResultHandler_AdminMaySee(t *testing.T) {
	r, svc := newAttemptRouter("someadmin", "admin")
	started, _ := svc.StartAttempt(context.Background(), "u1", "qz1")
	if _, err := svc.SubmitAttempt(context.Background(), "u1", started.Attempt.ID,
		quiz.AnswerSheet{"q1": "A"}, 0); err != nil {
		t.Fatalf("submit: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet,
		"/quizzes/attempts/"+started.Attempt.ID+"/result", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var res quiz.ResultView
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Questions) != 2 || res.Questions[0].CorrectAnswer == "" {
		t.Fatal("result payload must carry the full question set")
	}
}
