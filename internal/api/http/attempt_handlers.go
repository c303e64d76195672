package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/studyhall/studyhall/internal/quiz"
	"github.com/studyhall/studyhall/internal/rbac"
)

// PreStartHandler feeds the pre-start screen: the quiz, its question count,
// and the user's recent completed attempts. Starting an empty quiz is
// rejected before any attempt row exists, so callers land here instead.
func PreStartHandler(svc *quiz.Service, cat quiz.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		sub := rbac.SubjectFromContext(r.Context())

		qz, err := cat.GetQuiz(r.Context(), quizID)
		if err != nil {
			quizError(w, err)
			return
		}
		questions, err := cat.GetQuestions(r.Context(), quizID)
		if err != nil {
			quizError(w, err)
			return
		}
		previous, err := svc.PreviousAttempts(r.Context(), sub, quizID, 5)
		if err != nil {
			quizError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"quiz":              qz,
			"question_count":    len(questions),
			"previous_attempts": previous,
		})
	}
}

// StartAttemptHandler creates a new in-progress attempt and returns it with
// the sanitized question list.
func StartAttemptHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		sub := rbac.SubjectFromContext(r.Context())

		res, err := svc.StartAttempt(r.Context(), sub, quizID)
		if err != nil {
			quizError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

type submitRequest struct {
	Answers          map[string]string `json:"answers"`
	TimeSpentSeconds json.RawMessage   `json:"time_spent_seconds"`
}

// SubmitAttemptHandler completes an attempt. It accepts a JSON body or a
// classic form post (question_<id>=letter, time_spent=seconds) and answers
// in the caller's preferred mode: JSON acknowledgment for AJAX, redirect to
// the result otherwise. Resubmission points the caller at the existing
// result instead of erroring destructively.
func SubmitAttemptHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID := chi.URLParam(r, "attemptID")
		sub := rbac.SubjectFromContext(r.Context())

		answers, elapsed := decodeSubmission(r)
		a, err := svc.SubmitAttempt(r.Context(), sub, attemptID, answers, elapsed)
		resultURL := "/quizzes/attempts/" + attemptID + "/result"
		if err != nil {
			if errors.Is(err, quiz.ErrAlreadyCompleted) {
				if wantsJSON(r) {
					writeJSON(w, http.StatusConflict, map[string]any{
						"success":  false,
						"error":    err.Error(),
						"location": resultURL,
					})
					return
				}
				http.Redirect(w, r, resultURL, http.StatusSeeOther)
				return
			}
			quizError(w, err)
			return
		}
		if wantsJSON(r) {
			writeJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"attempt": a,
			})
			return
		}
		http.Redirect(w, r, resultURL, http.StatusSeeOther)
	}
}

func decodeSubmission(r *http.Request) (quiz.AnswerSheet, int) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data") {
		_ = r.ParseForm()
		answers := quiz.AnswerSheet{}
		for key, vals := range r.PostForm {
			if id, ok := strings.CutPrefix(key, "question_"); ok && len(vals) > 0 {
				answers[id] = vals[0]
			}
		}
		elapsed, _ := strconv.Atoi(r.PostForm.Get("time_spent"))
		return answers, elapsed
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return quiz.AnswerSheet{}, 0
	}
	return quiz.AnswerSheet(req.Answers), parseElapsed(req.TimeSpentSeconds)
}

// GetResultHandler returns the per-question review payload. Owner or admin
// only; an attempt still in progress yields 409 with a resume location.
func GetResultHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID := chi.URLParam(r, "attemptID")
		sub := rbac.SubjectFromContext(r.Context())
		isAdmin := rbac.RoleFromContext(r.Context()) == "admin"

		res, err := svc.GetResult(r.Context(), sub, isAdmin, attemptID)
		if err != nil {
			if errors.Is(err, quiz.ErrNotYetCompleted) {
				w.Header().Set("Location", "/quizzes/"+resumeQuizID(svc, r, attemptID)+"/start")
			}
			quizError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func resumeQuizID(svc *quiz.Service, r *http.Request, attemptID string) string {
	a, err := svc.Attempt(r.Context(), attemptID)
	if err != nil {
		return ""
	}
	return a.QuizID
}

// HistoryHandler lists the user's completed attempts, most recent first.
func HistoryHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		attempts, err := svc.ListHistory(r.Context(), sub)
		if err != nil {
			quizError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, attempts)
	}
}

// QuizSummaryHandler reports the user's completed-attempt count and best
// score for one quiz.
func QuizSummaryHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		sub := rbac.SubjectFromContext(r.Context())
		sum, err := svc.QuizSummary(r.Context(), sub, quizID)
		if err != nil {
			quizError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sum)
	}
}
