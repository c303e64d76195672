package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/studyhall/studyhall/internal/catalog"
	"github.com/studyhall/studyhall/internal/progress"
	"github.com/studyhall/studyhall/internal/quiz"
	"github.com/studyhall/studyhall/internal/rbac"
)

func ListDisciplinesHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListDisciplines(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func GetDisciplineHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "disciplineID")
		d, err := store.GetDiscipline(r.Context(), id)
		if err != nil {
			quizError(w, err)
			return
		}
		modules, err := store.ListModules(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"discipline": d,
			"modules":    modules,
		})
	}
}

// GetModuleHandler returns the module with its content listings; each quiz
// is decorated with the caller's attempt summary.
func GetModuleHandler(store *catalog.SQLStore, svc *quiz.Service) http.HandlerFunc {
	type quizView struct {
		catalog.Quiz
		Attempts *quiz.Summary `json:"attempts,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "moduleID")
		sub := rbac.SubjectFromContext(r.Context())

		m, err := store.GetModule(r.Context(), id)
		if err != nil {
			quizError(w, err)
			return
		}
		videos, err := store.ListVideos(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		materials, err := store.ListMaterials(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		quizzes, err := store.ListQuizzes(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		views := make([]quizView, 0, len(quizzes))
		for _, qz := range quizzes {
			v := quizView{Quiz: qz}
			if sum, err := svc.QuizSummary(r.Context(), sub, qz.ID); err == nil && sum.Count > 0 {
				s := sum
				v.Attempts = &s
			}
			views = append(views, v)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"module":    m,
			"videos":    videos,
			"materials": materials,
			"quizzes":   views,
		})
	}
}

// WatchVideoHandler returns the playback payload: embeddable URL, the
// caller's completion state, and prev/next within the module.
func WatchVideoHandler(store *catalog.SQLStore, prog *progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "videoID")
		sub := rbac.SubjectFromContext(r.Context())

		v, err := store.GetVideo(r.Context(), id)
		if err != nil {
			quizError(w, err)
			return
		}
		siblings, err := store.ListVideos(r.Context(), v.ModuleID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		var prev, next *catalog.VideoLesson
		for i := range siblings {
			if siblings[i].ID == v.ID {
				if i > 0 {
					prev = &siblings[i-1]
				}
				if i+1 < len(siblings) {
					next = &siblings[i+1]
				}
				break
			}
		}
		done, err := prog.ForUser(r.Context(), sub)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"video":     v,
			"embed_url": EmbedURL(v.VideoURL, v.VideoType),
			"completed": done[v.ID],
			"prev":      prev,
			"next":      next,
		})
	}
}

// SearchHandler matches the query against every catalog entity kind.
// Queries shorter than two characters return an advisory instead of results.
func SearchHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		if len(q) < 2 {
			writeJSON(w, http.StatusOK, map[string]any{
				"query":   q,
				"message": "enter at least 2 characters to search",
			})
			return
		}
		res, err := store.Search(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"query":   q,
			"results": res,
		})
	}
}
