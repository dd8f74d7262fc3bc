// Package sqlite is the SQLite implementation of the storage contracts.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/chainwork/interviewd/internal/domain"
	"github.com/chainwork/interviewd/internal/storage"
)

// Store implements storage.JobStore and storage.ApplicationStore.
type Store struct {
	db *sql.DB
}

var (
	_ storage.JobStore         = (*Store)(nil)
	_ storage.ApplicationStore = (*Store)(nil)
)

// New opens (or creates) the database at dbPath and initializes the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS jobs (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			skills TEXT NOT NULL,
			budget REAL NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS applications (
			id TEXT PRIMARY KEY,
			job_id TEXT NOT NULL,
			candidate_id TEXT NOT NULL,
			status TEXT NOT NULL,
			interview_score REAL,
			questions TEXT,
			answers TEXT,
			evaluation TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE (job_id, candidate_id),
			FOREIGN KEY (job_id) REFERENCES jobs(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_applications_job ON applications(job_id)`,
		`CREATE INDEX IF NOT EXISTS idx_applications_candidate ON applications(candidate_id)`,
		`CREATE INDEX IF NOT EXISTS idx_applications_status ON applications(status)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateJob(ctx context.Context, job *domain.Job) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}

	skills, err := json.Marshal(job.Skills)
	if err != nil {
		return fmt.Errorf("failed to marshal skills: %w", err)
	}

	query := `INSERT INTO jobs (id, title, description, skills, budget, created_at)
	          VALUES (?, ?, ?, ?, ?, ?)`

	if _, err := s.db.ExecContext(ctx, query,
		job.ID, job.Title, job.Description, string(skills), job.Budget, job.CreatedAt); err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (s *Store) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	query := `SELECT id, title, description, skills, budget, created_at
	          FROM jobs WHERE id = ?`

	var job domain.Job
	var skillsJSON string

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID, &job.Title, &job.Description, &skillsJSON, &job.Budget, &job.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	if err := json.Unmarshal([]byte(skillsJSON), &job.Skills); err != nil {
		return nil, fmt.Errorf("failed to unmarshal skills: %w", err)
	}
	return &job, nil
}

func (s *Store) FindApplication(ctx context.Context, jobID, candidateID string) (*domain.Application, error) {
	query := `SELECT id, job_id, candidate_id, status, interview_score, questions, answers, evaluation, created_at, updated_at
	          FROM applications WHERE job_id = ? AND candidate_id = ?`

	return s.scanApplication(s.db.QueryRowContext(ctx, query, jobID, candidateID))
}

func (s *Store) FindOrCreateApplication(ctx context.Context, jobID, candidateID string) (*domain.Application, error) {
	app, err := s.FindApplication(ctx, jobID, candidateID)
	if err == nil {
		return app, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	app = &domain.Application{
		ID:          uuid.New().String(),
		JobID:       jobID,
		CandidateID: candidateID,
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	query := `INSERT INTO applications (id, job_id, candidate_id, status, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?)`

	if _, err := s.db.ExecContext(ctx, query,
		app.ID, app.JobID, app.CandidateID, app.Status, app.CreatedAt, app.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	return app, nil
}

func (s *Store) SaveEvaluation(ctx context.Context, applicationID string, questions []domain.Question, answers []domain.Answer, eval domain.EvaluationResult) error {
	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("failed to marshal questions: %w", err)
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}
	evalJSON, err := json.Marshal(eval)
	if err != nil {
		return fmt.Errorf("failed to marshal evaluation: %w", err)
	}

	query := `UPDATE applications
	          SET questions = ?, answers = ?, evaluation = ?, status = ?, updated_at = ?
	          WHERE id = ?`

	res, err := s.db.ExecContext(ctx, query,
		string(questionsJSON), string(answersJSON), string(evalJSON),
		domain.StatusInterviewing, time.Now(), applicationID)
	if err != nil {
		return fmt.Errorf("failed to save evaluation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("application %s: %w", applicationID, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, applicationID string, status domain.ApplicationStatus, score float64) error {
	query := `UPDATE applications SET status = ?, interview_score = ?, updated_at = ? WHERE id = ?`

	res, err := s.db.ExecContext(ctx, query, status, score, time.Now(), applicationID)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("application %s: %w", applicationID, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) scanApplication(row *sql.Row) (*domain.Application, error) {
	var app domain.Application
	var score sql.NullFloat64
	var questionsJSON, answersJSON, evalJSON sql.NullString

	err := row.Scan(&app.ID, &app.JobID, &app.CandidateID, &app.Status,
		&score, &questionsJSON, &answersJSON, &evalJSON, &app.CreatedAt, &app.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan application: %w", err)
	}

	if score.Valid {
		app.InterviewScore = &score.Float64
	}
	if questionsJSON.Valid && questionsJSON.String != "" {
		if err := json.Unmarshal([]byte(questionsJSON.String), &app.Questions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal questions: %w", err)
		}
	}
	if answersJSON.Valid && answersJSON.String != "" {
		if err := json.Unmarshal([]byte(answersJSON.String), &app.Answers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal answers: %w", err)
		}
	}
	if evalJSON.Valid && evalJSON.String != "" {
		app.Evaluation = &domain.EvaluationResult{}
		if err := json.Unmarshal([]byte(evalJSON.String), app.Evaluation); err != nil {
			return nil, fmt.Errorf("failed to unmarshal evaluation: %w", err)
		}
	}
	return &app, nil
}
