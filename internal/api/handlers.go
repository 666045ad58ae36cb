package api

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"docmill/internal/history"
	"docmill/internal/job"
	"docmill/internal/models"
	"docmill/internal/ratelimit"
	"docmill/internal/version"

	"github.com/gorilla/mux"
)

// Handlers contains HTTP handlers for the docmill API.
type Handlers struct {
	jobs      job.Service
	store     history.Store
	config    *models.Config
	clientKey ratelimit.KeyFunc
}

// NewHandlers creates a new handlers instance.
func NewHandlers(jobs job.Service, store history.Store, config *models.Config) *Handlers {
	return &Handlers{
		jobs:      jobs,
		store:     store,
		config:    config,
		clientKey: ratelimit.ClientKey(config.Server.TrustedProxyHops),
	}
}

// ProcessDocument handles document-processing requests.
// POST /api/v1/documents/{operation}
//
// The upload is a multipart form; every file part is taken as an input
// document in order. Operation parameters arrive as ordinary form values.
func (h *Handlers) ProcessDocument(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	operation := models.Operation(vars["operation"])

	req, serr := h.parseJobRequest(r, operation)
	if serr != nil {
		h.writeServiceError(w, serr)
		return
	}

	result, err := h.jobs.Run(r.Context(), req)
	if err != nil {
		var svcErr *job.ServiceError
		if errors.As(err, &svcErr) {
			h.writeServiceError(w, svcErr)
			return
		}
		h.writeErrorResponse(w, http.StatusInternalServerError, models.ErrorCodeInternalError, "failed to run job")
		return
	}
	defer result.Release()

	// A client that walks away while the response streams must still free
	// the processing slot and staging files.
	stop := context.AfterFunc(r.Context(), result.Release)
	defer stop()

	h.recordJob(r, req, result)

	if serr := result.ServiceError(); serr != nil {
		w.Header().Set("X-Job-ID", result.ID)
		h.writeServiceError(w, serr)
		return
	}

	h.writeArtifacts(w, result)
}

// parseJobRequest turns a multipart upload into a job request. Requests with
// no file parts produce a missing-input error so the caller can reject them
// before any processing slot is consumed.
func (h *Handlers) parseJobRequest(r *http.Request, operation models.Operation) (*job.Request, *job.ServiceError) {
	r.Body = http.MaxBytesReader(nil, r.Body, h.config.Server.MaxUploadBytes)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, job.NewInvalidParameterError(
				fmt.Sprintf("upload exceeds the %d byte limit", h.config.Server.MaxUploadBytes))
		}
		return nil, job.NewMissingInputError()
	}

	req := &job.Request{
		Operation: operation,
		ClientKey: h.clientKey(r),
		Params: job.Params{
			TargetFormat: r.FormValue("target_format"),
			Quality:      r.FormValue("quality"),
			ExtractMode:  r.FormValue("mode"),
			Password:     r.FormValue("password"),
		},
	}

	if r.MultipartForm != nil {
		for _, headers := range r.MultipartForm.File {
			for _, fh := range headers {
				f, err := fh.Open()
				if err != nil {
					return nil, job.NewInvalidParameterError("unreadable file part: " + fh.Filename)
				}
				data, err := io.ReadAll(f)
				f.Close()
				if err != nil {
					return nil, job.NewInvalidParameterError("unreadable file part: " + fh.Filename)
				}
				req.Inputs = append(req.Inputs, job.Upload{
					Filename: fh.Filename,
					Data:     data,
				})
			}
		}
	}

	return req, nil
}

// writeArtifacts streams the job's output back to the client. A single
// artifact is sent as-is; multiple artifacts are bundled into one zip.
func (h *Handlers) writeArtifacts(w http.ResponseWriter, result *job.Result) {
	w.Header().Set("X-Job-ID", result.ID)

	if len(result.Artifacts) == 1 {
		a := result.Artifacts[0]
		f, err := os.Open(a.Path)
		if err != nil {
			h.writeErrorResponse(w, http.StatusInternalServerError, models.ErrorCodeInternalError, "artifact no longer available")
			return
		}
		defer f.Close()

		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.Name))
		w.Header().Set("Content-Length", fmt.Sprintf("%d", a.Size))
		w.WriteHeader(http.StatusOK)

		if _, err := io.Copy(w, f); err != nil {
			slog.Warn("Artifact stream interrupted", "job_id", result.ID, "error", err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "docmill-"+result.ID+".zip"))
	w.WriteHeader(http.StatusOK)

	zw := zip.NewWriter(w)
	for _, a := range result.Artifacts {
		f, err := os.Open(a.Path)
		if err != nil {
			slog.Warn("Artifact missing during bundling", "job_id", result.ID, "artifact", a.Name)
			continue
		}
		entry, err := zw.Create(a.Name)
		if err == nil {
			_, err = io.Copy(entry, f)
		}
		f.Close()
		if err != nil {
			slog.Warn("Artifact bundling interrupted", "job_id", result.ID, "error", err)
			break
		}
	}
	if err := zw.Close(); err != nil {
		slog.Warn("Zip finalization failed", "job_id", result.ID, "error", err)
	}
}

// recordJob persists the terminal outcome to the history store. History is
// best-effort: a write failure never affects the client response.
func (h *Handlers) recordJob(r *http.Request, req *job.Request, result *job.Result) {
	if h.store == nil {
		return
	}

	filename := ""
	if len(req.Inputs) > 0 {
		filename = req.Inputs[0].Filename
	}

	rec := &models.JobRecord{
		ID:         result.ID,
		Operation:  req.Operation,
		Outcome:    string(result.Outcome),
		ClientKey:  req.ClientKey,
		Filename:   filename,
		DurationMS: result.Duration.Milliseconds(),
		CreatedAt:  time.Now(),
	}

	if err := h.store.Record(r.Context(), rec); err != nil {
		slog.Warn("Failed to record job history", "job_id", result.ID, "error", err)
	}
}

// GetJob returns the recorded outcome of a completed job.
// GET /api/v1/jobs/{job_id}
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["job_id"]

	rec, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			h.writeErrorResponse(w, http.StatusNotFound, models.ErrorCodeNotFound, "no job with ID "+id)
			return
		}
		h.writeErrorResponse(w, http.StatusInternalServerError, models.ErrorCodeInternalError, "failed to load job record")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, rec)
}

// RecentJobs lists the most recently completed jobs.
// GET /api/v1/jobs/recent
func (h *Handlers) RecentJobs(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.Recent(r.Context(), h.config.History.RecentLimit)
	if err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, models.ErrorCodeInternalError, "failed to load job history")
		return
	}

	resp := &models.RecentJobsResponse{
		Jobs:       make([]models.JobRecord, 0, len(records)),
		TotalCount: len(records),
	}
	for _, rec := range records {
		resp.Jobs = append(resp.Jobs, *rec)
	}

	h.writeJSONResponse(w, http.StatusOK, resp)
}

// HealthCheck handles health check requests.
// GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := models.NewHealthCheckResponse(models.StatusHealthy)
	response.Version = version.GetInfo().Version

	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			response.Status = models.StatusDegraded
			response.AddComponent("history", models.StatusUnhealthy, err.Error())
		} else {
			response.AddComponent("history", models.StatusHealthy, "History store is operational")
		}
	}
	response.AddComponent("api", models.StatusHealthy, "API is operational")

	status := http.StatusOK
	if response.Status == models.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	h.writeJSONResponse(w, status, response)
}

// writeJSONResponse writes a JSON response.
func (h *Handlers) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("Failed to encode JSON response", "error", err)
	}
}

// writeErrorResponse writes an error response.
func (h *Handlers) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) {
	h.writeJSONResponse(w, statusCode, models.NewErrorResponse(message, errorCode))
}

// writeServiceError maps a pipeline error to its HTTP shape, including the
// Retry-After hint on capacity denials.
func (h *Handlers) writeServiceError(w http.ResponseWriter, serr *job.ServiceError) {
	if serr.RetryAfter > 0 {
		w.Header().Set("Retry-After", fmt.Sprintf("%d", serr.RetryAfter))
	}
	h.writeErrorResponse(w, serr.StatusCode, serr.Code, serr.Message)
}
