package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/studyhall/studyhall/internal/progress"
	"github.com/studyhall/studyhall/internal/rbac"
)

// ToggleProgressHandler flips video completion for the caller. AJAX callers
// get `{"success":true,"completed":bool}`; everyone else is redirected back
// to the watch page.
func ToggleProgressHandler(prog *progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videoID := chi.URLParam(r, "videoID")
		sub := rbac.SubjectFromContext(r.Context())

		completed, err := prog.Toggle(r.Context(), sub, videoID)
		if err != nil {
			quizError(w, err)
			return
		}
		if wantsJSON(r) {
			writeJSON(w, http.StatusOK, map[string]any{
				"success":   true,
				"completed": completed,
			})
			return
		}
		http.Redirect(w, r, "/videos/"+videoID, http.StatusSeeOther)
	}
}
