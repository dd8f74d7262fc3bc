package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/chainwork/interviewd/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestJobRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	job := &domain.Job{
		Title:       "Backend Engineer",
		Description: "Build services",
		Skills:      []string{"Go", "SQL"},
		Budget:      4200,
	}
	if err := store.CreateJob(ctx, job); err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}
	if job.ID == "" {
		t.Fatal("CreateJob() should assign an id")
	}

	got, err := store.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if got.Title != job.Title || got.Budget != job.Budget {
		t.Errorf("GetJob() = %+v, want %+v", got, job)
	}
	if len(got.Skills) != 2 || got.Skills[0] != "Go" {
		t.Errorf("GetJob() skills = %v", got.Skills)
	}
}

func TestGetJobNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetJob(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetJob() error = %v, want ErrNotFound", err)
	}
}

func TestFindOrCreateApplicationIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.FindOrCreateApplication(ctx, "job-1", "cand-1")
	if err != nil {
		t.Fatalf("FindOrCreateApplication() error = %v", err)
	}
	if first.Status != domain.StatusPending {
		t.Errorf("new application status = %q, want PENDING", first.Status)
	}

	second, err := store.FindOrCreateApplication(ctx, "job-1", "cand-1")
	if err != nil {
		t.Fatalf("FindOrCreateApplication() second call error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second call created a new application: %s != %s", second.ID, first.ID)
	}
}

func TestFindApplicationNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.FindApplication(context.Background(), "job-x", "cand-x")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("FindApplication() error = %v, want ErrNotFound", err)
	}
}

func TestSaveEvaluationRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	app, err := store.FindOrCreateApplication(ctx, "job-1", "cand-1")
	if err != nil {
		t.Fatal(err)
	}

	questions := []domain.Question{
		{ID: "q1", Text: "Anything?", Kind: domain.QuestionTechnical, MaxDuration: 120},
	}
	answers := []domain.Answer{
		{QuestionID: "q1", Text: "An answer.", SubmittedAt: 1700000000000},
	}
	eval := domain.EvaluationResult{
		Score:        0.85,
		Feedback:     "solid",
		Strengths:    []string{"clear"},
		Improvements: []string{"detail"},
	}

	if err := store.SaveEvaluation(ctx, app.ID, questions, answers, eval); err != nil {
		t.Fatalf("SaveEvaluation() error = %v", err)
	}

	got, err := store.FindApplication(ctx, "job-1", "cand-1")
	if err != nil {
		t.Fatalf("FindApplication() error = %v", err)
	}
	if got.Status != domain.StatusInterviewing {
		t.Errorf("status = %q, want INTERVIEWING", got.Status)
	}
	if got.Evaluation == nil || got.Evaluation.Score != 0.85 {
		t.Errorf("evaluation = %+v", got.Evaluation)
	}
	if len(got.Questions) != 1 || got.Questions[0].ID != "q1" {
		t.Errorf("questions = %+v", got.Questions)
	}
	if len(got.Answers) != 1 || got.Answers[0].Text != "An answer." {
		t.Errorf("answers = %+v", got.Answers)
	}
}

func TestSaveEvaluationMissingApplication(t *testing.T) {
	store := newTestStore(t)

	err := store.SaveEvaluation(context.Background(), "missing", nil, nil, domain.EvaluationResult{})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("SaveEvaluation() error = %v, want ErrNotFound", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	app, err := store.FindOrCreateApplication(ctx, "job-1", "cand-1")
	if err != nil {
		t.Fatal(err)
	}

	if err := store.UpdateStatus(ctx, app.ID, domain.StatusInterviewing, 0.72); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	got, err := store.FindApplication(ctx, "job-1", "cand-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.StatusInterviewing {
		t.Errorf("status = %q, want INTERVIEWING", got.Status)
	}
	if got.InterviewScore == nil || *got.InterviewScore != 0.72 {
		t.Errorf("interview score = %v, want 0.72", got.InterviewScore)
	}
}
