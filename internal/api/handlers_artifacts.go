package api

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// handleArtifact serves a locally rendered .docx from the output directory.
func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `"\`) || !strings.EqualFold(filepath.Ext(name), ".docx") {
		jsonError(w, "invalid artifact name", http.StatusBadRequest)
		return
	}

	path := filepath.Join(s.cfg.OutputDir, name)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			jsonError(w, "artifact not found", http.StatusNotFound)
			return
		}
		s.log.Error("open artifact failed", "path", path, "error", err)
		jsonError(w, "failed to open artifact", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		jsonError(w, "artifact not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		jsonError(w, "capability catalog unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document_capability": s.cfg.DocumentCapability,
		"catalog":             s.catalog,
	})
}
