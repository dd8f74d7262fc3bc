package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/chainwork/interviewd/internal/domain"
	"github.com/chainwork/interviewd/internal/storage"
)

// InterviewPipeline is the slice of the interview pipeline the handlers
// consume.
type InterviewPipeline interface {
	GenerateQuestions(ctx context.Context, jobTitle string, skills []string, level domain.ExperienceLevel, count int) []domain.Question
	EvaluateAnswers(ctx context.Context, questions []domain.Question, answers []domain.Answer, jobRequirements string) domain.EvaluationResult
}

// Handlers serves the interview and application routes.
type Handlers struct {
	pipeline InterviewPipeline
	provider string
	jobs     storage.JobStore
	apps     storage.ApplicationStore
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandlers wires the REST boundary. provider is the active backend name
// ("openai", "none", ...) reported back to clients on evaluation responses.
func NewHandlers(pipeline InterviewPipeline, provider string, jobs storage.JobStore, apps storage.ApplicationStore, logger *slog.Logger) *Handlers {
	return &Handlers{
		pipeline: pipeline,
		provider: provider,
		jobs:     jobs,
		apps:     apps,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// Register mounts all routes on r.
func (h *Handlers) Register(r chi.Router) {
	r.Get("/health", h.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/interview/questions", h.handleGenerateQuestions)
		r.Post("/interview/evaluate", h.handleEvaluate)
		r.Get("/applications/check", h.handleCheckApplication)
		r.Post("/applications/evaluate", h.handleSaveEvaluation)
		r.Post("/applications/status", h.handleUpdateStatus)
		r.Get("/jobs/{id}", h.handleGetJob)
	})
}

type generateQuestionsRequest struct {
	JobTitle        string   `json:"jobTitle" validate:"required"`
	Skills          []string `json:"skills"`
	ExperienceLevel string   `json:"experienceLevel"`
	Count           int      `json:"count" validate:"omitempty,min=1,max=10"`
}

func (h *Handlers) handleGenerateQuestions(w http.ResponseWriter, r *http.Request) {
	var req generateQuestionsRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	level := domain.ParseExperienceLevel(req.ExperienceLevel)
	questions := h.pipeline.GenerateQuestions(r.Context(), req.JobTitle, req.Skills, level, req.Count)

	AddLogField(r.Context(), "provider", h.provider)
	writeJSON(w, http.StatusOK, map[string]any{
		"questions": questions,
	})
}

type evaluateRequest struct {
	Questions       []domain.Question `json:"questions" validate:"required,min=1"`
	Answers         []domain.Answer   `json:"answers"`
	JobRequirements string            `json:"jobRequirements"`
}

func (h *Handlers) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	eval := h.pipeline.EvaluateAnswers(r.Context(), req.Questions, req.Answers, req.JobRequirements)

	AddLogField(r.Context(), "provider", h.provider)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"evaluation": eval,
		"provider":   h.provider,
	})
}

func (h *Handlers) handleCheckApplication(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("jobID")
	candidateID := r.URL.Query().Get("candidateID")
	if jobID == "" || candidateID == "" {
		h.writeError(w, r, http.StatusBadRequest, "jobID and candidateID are required")
		return
	}

	app, err := h.apps.FindApplication(r.Context(), jobID, candidateID)
	if errors.Is(err, domain.ErrNotFound) {
		h.writeError(w, r, http.StatusNotFound, "no application found for this job and candidate")
		return
	}
	if err != nil {
		AddError(r.Context(), err)
		h.writeError(w, r, http.StatusInternalServerError, "failed to look up application")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"application": app})
}

type saveEvaluationRequest struct {
	JobID       string                  `json:"jobId" validate:"required"`
	CandidateID string                  `json:"candidateId" validate:"required"`
	Questions   []domain.Question       `json:"questions" validate:"required,min=1"`
	Answers     []domain.Answer         `json:"answers"`
	Evaluation  domain.EvaluationResult `json:"evaluation"`
}

func (h *Handlers) handleSaveEvaluation(w http.ResponseWriter, r *http.Request) {
	var req saveEvaluationRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	app, err := h.apps.FindOrCreateApplication(r.Context(), req.JobID, req.CandidateID)
	if err != nil {
		AddError(r.Context(), err)
		h.writeError(w, r, http.StatusInternalServerError, "failed to resolve application")
		return
	}

	if err := h.apps.SaveEvaluation(r.Context(), app.ID, req.Questions, req.Answers, req.Evaluation); err != nil {
		AddError(r.Context(), err)
		h.writeError(w, r, http.StatusInternalServerError, "failed to save evaluation")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"applicationId": app.ID,
	})
}

type updateStatusRequest struct {
	ApplicationID string  `json:"applicationId" validate:"required"`
	Status        string  `json:"status" validate:"required,oneof=PENDING INTERVIEWING ACCEPTED REJECTED"`
	Score         float64 `json:"score" validate:"min=0,max=1"`
}

func (h *Handlers) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	err := h.apps.UpdateStatus(r.Context(), req.ApplicationID, domain.ApplicationStatus(req.Status), req.Score)
	if errors.Is(err, domain.ErrNotFound) {
		h.writeError(w, r, http.StatusNotFound, "application not found")
		return
	}
	if err != nil {
		AddError(r.Context(), err)
		h.writeError(w, r, http.StatusInternalServerError, "failed to update status")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handlers) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	job, err := h.jobs.GetJob(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		h.writeError(w, r, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		AddError(r.Context(), err)
		h.writeError(w, r, http.StatusInternalServerError, "failed to load job")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"job": job})
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"provider": h.provider,
	})
}

// decodeAndValidate parses the JSON body into dst and runs struct
// validation. On failure it writes the error response and reports false.
func (h *Handlers) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		AddError(r.Context(), err)
		h.writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		AddError(r.Context(), err)
		h.writeError(w, r, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// writeError emits the uniform error shape. fallback tells clients they
// should fall back to locally generated content rather than retry.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, status int, details string) {
	writeJSON(w, status, map[string]any{
		"error":    http.StatusText(status),
		"details":  details,
		"fallback": true,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
