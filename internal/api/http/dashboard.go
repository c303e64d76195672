package http

import (
	"net/http"

	"github.com/studyhall/studyhall/internal/catalog"
	"github.com/studyhall/studyhall/internal/progress"
	"github.com/studyhall/studyhall/internal/quiz"
	"github.com/studyhall/studyhall/internal/rbac"
)

// DashboardHandler aggregates the landing-page numbers: content totals,
// recent additions, the caller's video progress and average quiz score.
func DashboardHandler(store *catalog.SQLStore, prog *progress.Service, svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())

		totals, err := store.Counts(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		recent, err := store.RecentContent(r.Context(), 5)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		pct, err := prog.Percentage(r.Context(), sub)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		avg, err := svc.AverageScore(r.Context(), sub)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"totals":           totals,
			"recent":           recent,
			"progress_percent": pct,
			"average_score":    avg,
		})
	}
}
