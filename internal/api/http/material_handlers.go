package http

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/studyhall/studyhall/internal/catalog"
	"github.com/studyhall/studyhall/internal/storage"
)

// ViewMaterialHandler resolves a material to something viewable: external
// materials redirect to their URL, uploaded files report an inline download
// location.
func ViewMaterialHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "materialID")
		m, err := store.GetMaterial(r.Context(), id)
		if err != nil {
			quizError(w, err)
			return
		}
		if m.ExternalURL != "" {
			http.Redirect(w, r, m.ExternalURL, http.StatusSeeOther)
			return
		}
		if m.FilePath == "" {
			http.Error(w, "material has no file", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"material":     m,
			"download_url": "/materials/" + m.ID + "/download",
		})
	}
}

func DownloadMaterialHandler(store *catalog.SQLStore, blobs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "materialID")
		m, err := store.GetMaterial(r.Context(), id)
		if err != nil {
			quizError(w, err)
			return
		}
		if m.FilePath == "" {
			http.Error(w, "material has no file", http.StatusNotFound)
			return
		}
		f, err := blobs.Get(m.FilePath)
		if err != nil {
			http.Error(w, "file unavailable", http.StatusNotFound)
			return
		}
		defer f.Close()
		name := filepath.Base(m.FilePath)
		if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
			w.Header().Set("Content-Type", ct)
		}
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
		_, _ = io.Copy(w, f)
	}
}
