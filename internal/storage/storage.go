// Package storage defines the persistence collaborator contracts the
// interview flow consumes. The session layer treats every implementation as
// best-effort beyond the initial eligibility and job lookups.
package storage

import (
	"context"

	"github.com/chainwork/interviewd/internal/domain"
)

// JobStore provides interview job context.
type JobStore interface {
	GetJob(ctx context.Context, id string) (*domain.Job, error)
	CreateJob(ctx context.Context, job *domain.Job) error
}

// ApplicationStore persists applications and their interview outcomes. All
// writes are simple upserts keyed by application id.
type ApplicationStore interface {
	// FindApplication returns domain.ErrNotFound when the candidate has
	// not applied to the job.
	FindApplication(ctx context.Context, jobID, candidateID string) (*domain.Application, error)

	// FindOrCreateApplication returns the existing application or creates
	// a pending one.
	FindOrCreateApplication(ctx context.Context, jobID, candidateID string) (*domain.Application, error)

	// SaveEvaluation attaches the transcript and evaluation to an
	// application and moves it to INTERVIEWING.
	SaveEvaluation(ctx context.Context, applicationID string, questions []domain.Question, answers []domain.Answer, eval domain.EvaluationResult) error

	// UpdateStatus records a status transition with the interview score.
	UpdateStatus(ctx context.Context, applicationID string, status domain.ApplicationStatus, score float64) error
}
