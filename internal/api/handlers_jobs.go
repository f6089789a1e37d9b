package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dgallion1/docsplice/internal/artifact"
	"github.com/dgallion1/docsplice/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

func pollURL(jobID string) string {
	return fmt.Sprintf("/api/jobs/%s", jobID)
}

// injectRequested reads the optional "inject" form field.
func injectRequested(r *http.Request) (bool, error) {
	v := r.FormValue("inject")
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.singleUpload(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	inject, err := injectRequested(r)
	if err != nil {
		jsonError(w, "inject must be a boolean", http.StatusBadRequest)
		return
	}
	if inject && !s.orchestrator.InjectionEnabled() {
		jsonError(w, "injection is not enabled on this server", http.StatusBadRequest)
		return
	}

	job := pipeline.NewJob(pipeline.NewJobID(), filename, data, inject)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": pollURL(job.ID),
	})
}

func (s *Server) handleBatchJobs(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r, s.cfg.MaxUploadBytes*10+10*1024*1024) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}
	inject, err := injectRequested(r)
	if err != nil {
		jsonError(w, "inject must be a boolean", http.StatusBadRequest)
		return
	}
	if inject && !s.orchestrator.InjectionEnabled() {
		jsonError(w, "injection is not enabled on this server", http.StatusBadRequest)
		return
	}

	results := make([]map[string]any, 0, len(files))
	for _, fh := range files {
		filename, data, err := s.readUpload(fh)
		if err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}

		job := pipeline.NewJob(pipeline.NewJobID(), filename, data, inject)
		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}

		results = append(results, map[string]any{
			"filename": filename,
			"job_id":   job.ID,
			"status":   pipeline.StatusQueued,
			"poll_url": pollURL(job.ID),
		})
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": results})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// handleJobOutline returns the parsed artifact, as JSON or with ?format=yaml.
func (s *Server) handleJobOutline(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	res := job.Result()
	if res == nil {
		jsonError(w, "outline not ready", http.StatusConflict)
		return
	}

	format := artifact.FormatJSON
	if v := r.URL.Query().Get("format"); v != "" {
		f, err := artifact.ParseFormat(v)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		format = f
	}

	contentType := "application/json"
	if format == artifact.FormatYAML {
		contentType = "application/yaml"
	}
	w.Header().Set("Content-Type", contentType)
	if err := artifact.Encode(w, res.Outline, format); err != nil {
		s.log.Error("encode outline", "job_id", job.ID, "error", err)
	}
}
