package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	account "github.com/studyhall/studyhall/internal/auth"
	"github.com/studyhall/studyhall/internal/catalog"
	"github.com/studyhall/studyhall/internal/storage"
)

// ---- user administration ----

func ListUsersHandler(accounts *account.Accounts) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pending := r.URL.Query().Get("pending") == "true"
		users, err := accounts.List(r.Context(), pending)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}

func ApproveUserHandler(accounts *account.Accounts) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "userID")
		if err := accounts.Approve(r.Context(), id); err != nil {
			userAdminError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

func SetUserActiveHandler(accounts *account.Accounts) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "userID")
		var req struct {
			Active bool `json:"active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := accounts.SetActive(r.Context(), id, req.Active); err != nil {
			userAdminError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "active": req.Active})
	}
}

func userAdminError(w http.ResponseWriter, err error) {
	if errors.Is(err, account.ErrUserNotFound) {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// ---- catalog administration ----

func CreateDisciplineHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var d catalog.Discipline
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(d.Name) == "" {
			http.Error(w, "name required", http.StatusBadRequest)
			return
		}
		out, err := store.CreateDiscipline(r.Context(), d)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

func UpdateDisciplineHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var d catalog.Discipline
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		d.ID = chi.URLParam(r, "disciplineID")
		if err := store.UpdateDiscipline(r.Context(), d); err != nil {
			quizError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

func DeleteDisciplineHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteDiscipline(r.Context(), chi.URLParam(r, "disciplineID")); err != nil {
			quizError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func CreateModuleHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var m catalog.Module
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(m.Name) == "" || m.DisciplineID == "" {
			http.Error(w, "name and discipline_id required", http.StatusBadRequest)
			return
		}
		out, err := store.CreateModule(r.Context(), m)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

func UpdateModuleHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var m catalog.Module
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		m.ID = chi.URLParam(r, "moduleID")
		if err := store.UpdateModule(r.Context(), m); err != nil {
			quizError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func DeleteModuleHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteModule(r.Context(), chi.URLParam(r, "moduleID")); err != nil {
			quizError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func CreateVideoHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var v catalog.VideoLesson
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if v.Title == "" || v.VideoURL == "" || v.ModuleID == "" {
			http.Error(w, "title, video_url and module_id required", http.StatusBadRequest)
			return
		}
		out, err := store.CreateVideo(r.Context(), v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

func UpdateVideoHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var v catalog.VideoLesson
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		v.ID = chi.URLParam(r, "videoID")
		if err := store.UpdateVideo(r.Context(), v); err != nil {
			quizError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func DeleteVideoHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteVideo(r.Context(), chi.URLParam(r, "videoID")); err != nil {
			quizError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// UploadMaterialHandler stores the multipart file and creates the material
// record in one request.
func UploadMaterialHandler(store *catalog.SQLStore, blobs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, "bad multipart form", http.StatusBadRequest)
			return
		}
		m := catalog.Material{
			ModuleID:    r.FormValue("module_id"),
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
			ExternalURL: r.FormValue("external_url"),
		}
		if m.Title == "" || m.ModuleID == "" {
			http.Error(w, "title and module_id required", http.StatusBadRequest)
			return
		}
		if f, hdr, err := r.FormFile("file"); err == nil {
			defer f.Close()
			ext := filepath.Ext(hdr.Filename)
			key := uuid.New().String() + ext
			if _, err := blobs.Put(key, f); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			m.FilePath = key
			m.FileType = strings.TrimPrefix(strings.ToLower(ext), ".")
		}
		if m.FilePath == "" && m.ExternalURL == "" {
			http.Error(w, "file or external_url required", http.StatusBadRequest)
			return
		}
		out, err := store.CreateMaterial(r.Context(), m)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

func DeleteMaterialHandler(store *catalog.SQLStore, blobs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "materialID")
		m, err := store.GetMaterial(r.Context(), id)
		if err != nil {
			quizError(w, err)
			return
		}
		if err := store.DeleteMaterial(r.Context(), id); err != nil {
			quizError(w, err)
			return
		}
		if m.FilePath != "" {
			_ = blobs.Delete(m.FilePath)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func CreateQuizHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q catalog.Quiz
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if q.Title == "" || q.ModuleID == "" {
			http.Error(w, "title and module_id required", http.StatusBadRequest)
			return
		}
		out, err := store.CreateQuiz(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

func UpdateQuizHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q catalog.Quiz
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		q.ID = chi.URLParam(r, "quizID")
		if err := store.UpdateQuiz(r.Context(), q); err != nil {
			quizError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

func DeleteQuizHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteQuiz(r.Context(), chi.URLParam(r, "quizID")); err != nil {
			quizError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func CreateQuestionHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q catalog.Question
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		q.QuizID = chi.URLParam(r, "quizID")
		out, err := store.CreateQuestion(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

func UpdateQuestionHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q catalog.Question
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		q.ID = chi.URLParam(r, "questionID")
		if err := store.UpdateQuestion(r.Context(), q); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				quizError(w, err)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

func DeleteQuestionHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteQuestion(r.Context(), chi.URLParam(r, "questionID")); err != nil {
			quizError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListQuestionsHandler returns the full question set including answer keys,
// for the admin editing surface.
func ListQuestionsHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.GetQuestions(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
