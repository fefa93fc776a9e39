package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dgallion1/minutesdoc/internal/pipeline"
	"github.com/dgallion1/minutesdoc/internal/source"
)

// convertResponse is the body of a synchronous conversion.
type convertResponse struct {
	Result      *pipeline.Result     `json:"result"`
	ArtifactURL string               `json:"artifact_url,omitempty"`
	FailureKind pipeline.FailureKind `json:"failure_kind,omitempty"`
	Error       string               `json:"error,omitempty"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !source.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	preferRemote := r.FormValue("no_remote") != "true"
	async := r.FormValue("async") == "true"
	if async && s.queue == nil {
		jsonError(w, "asynchronous conversion is not enabled", http.StatusServiceUnavailable)
		return
	}

	// The upload keeps its extension so the reader picks the right importer.
	id := uuid.NewString()
	uploadPath := filepath.Join(os.TempDir(), "minutesdoc-"+id+strings.ToLower(filepath.Ext(filename)))
	if err := os.WriteFile(uploadPath, data, 0o600); err != nil {
		s.log.Error("save upload failed", "error", err)
		jsonError(w, "failed to store upload", http.StatusInternalServerError)
		return
	}

	if async {
		job := pipeline.NewJob(id, filename, uploadPath, preferRemote, true)
		if err := s.queue.Submit(job); err != nil {
			os.Remove(uploadPath)
			jsonError(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]any{
			"job_id":   job.ID,
			"status":   job.Snapshot().Status,
			"poll_url": "/api/jobs/" + job.ID,
		})
		return
	}

	defer os.Remove(uploadPath)

	res, err := s.converter.Convert(r.Context(), uploadPath, preferRemote)
	resp := convertResponse{Result: res}
	status := http.StatusOK
	if err != nil {
		resp.FailureKind = pipeline.Classify(err)
		resp.Error = err.Error()
		status = statusForKind(resp.FailureKind)
	} else {
		resp.ArtifactURL = s.artifactURL(res)
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	if s.queue == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	jobID := chi.URLParam(r, "jobID")
	job := s.queue.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// artifactURL returns the download path for a locally rendered artifact.
// Remote artifacts live on the remote host and have none.
func (s *Server) artifactURL(res *pipeline.Result) string {
	if res == nil || !res.Verified || res.ArtifactPath == "" {
		return ""
	}
	return "/api/artifacts/" + filepath.Base(res.ArtifactPath)
}

func statusForKind(kind pipeline.FailureKind) int {
	switch kind {
	case pipeline.KindFileNotFound, pipeline.KindReadError:
		return http.StatusUnprocessableEntity
	case pipeline.KindRemoteServiceError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
