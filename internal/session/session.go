// Package session drives one interview attempt for a single job/candidate
// pair: question sequencing, per-question timers, answer capture and final
// submission.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/chainwork/interviewd/internal/domain"
	"github.com/chainwork/interviewd/internal/storage"
)

// Phase is the session lifecycle state.
type Phase string

const (
	PhaseLoading    Phase = "loading"
	PhaseActive     Phase = "active"
	PhaseSubmitting Phase = "submitting"
	PhaseCompleted  Phase = "completed"
	PhaseErrored    Phase = "errored"
)

// minAnswerLength is the trimmed length a manual submission must reach.
// Timer-forced submissions bypass it; an expired question may go on record
// unanswered.
const minAnswerLength = 10

// DefaultQuestionCount balances assessment depth against candidate
// fatigue.
const DefaultQuestionCount = 5

var (
	// ErrNotActive is returned when an answer event arrives outside the
	// Active phase. Repeat triggers while Loading or Submitting are
	// ignored through this guard.
	ErrNotActive = errors.New("session is not accepting answers")

	// ErrAlreadyStarted is returned when Start is called while a load is
	// already in flight or the session has progressed past Loading.
	ErrAlreadyStarted = errors.New("session already started")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("session closed")
)

// Pipeline is the slice of the interview pipeline the session needs.
type Pipeline interface {
	GenerateQuestions(ctx context.Context, jobTitle string, skills []string, level domain.ExperienceLevel, count int) []domain.Question
	EvaluateAnswers(ctx context.Context, questions []domain.Question, answers []domain.Answer, jobRequirements string) domain.EvaluationResult
}

// Timer is a cancellable scheduled expiry.
type Timer interface {
	Stop() bool
}

// TimerFactory schedules fn to run once after d. Tests substitute a manual
// implementation to simulate countdown reaching zero.
type TimerFactory func(d time.Duration, fn func()) Timer

func defaultTimerFactory(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Option configures a Session.
type Option func(*Session)

// WithQuestionCount sets how many questions to request.
func WithQuestionCount(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.questionCount = n
		}
	}
}

// WithTimerFactory replaces the real timer, for tests.
func WithTimerFactory(f TimerFactory) Option {
	return func(s *Session) {
		s.newTimer = f
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// Session is the interview state machine. It owns its questions, answers
// and evaluation exclusively for the lifetime of one attempt; all methods
// are safe for use from timer callbacks racing user events, and exactly one
// of {expiry, manual submit, navigation} ever acts at a time.
type Session struct {
	jobID       string
	candidateID string

	pipeline Pipeline
	jobs     storage.JobStore
	apps     storage.ApplicationStore
	logger   *slog.Logger
	newTimer TimerFactory

	questionCount int

	mu            sync.Mutex
	phase         Phase
	loading       bool
	closed        bool
	ctx           context.Context
	job           *domain.Job
	application   *domain.Application
	questions     []domain.Question
	answers       []domain.Answer
	index         int
	input         string
	timer         Timer
	timerGen      int
	deadline      time.Time
	evaluation    *domain.EvaluationResult
	lastErr       error
}

// New creates a session for one job/candidate pair. The session starts in
// Loading; call Start to run the load sequence.
func New(jobID, candidateID string, pipeline Pipeline, jobs storage.JobStore, apps storage.ApplicationStore, opts ...Option) *Session {
	s := &Session{
		jobID:         jobID,
		candidateID:   candidateID,
		pipeline:      pipeline,
		jobs:          jobs,
		apps:          apps,
		logger:        slog.Default(),
		newTimer:      defaultTimerFactory,
		questionCount: DefaultQuestionCount,
		phase:         PhaseLoading,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs the load sequence: eligibility check, job context fetch,
// question generation. On success the session enters Active on question 0
// with its timer armed. Eligibility or job-context failure is the only path
// to Errored; Retry re-runs Start from there. ctx is retained for
// timer-driven submissions.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.loading || s.phase != PhaseLoading {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.loading = true
	s.ctx = ctx
	s.mu.Unlock()

	app, err := s.apps.FindApplication(ctx, s.jobID, s.candidateID)
	if err != nil {
		return s.failLoad(err, "you need to apply for this job before taking the interview")
	}

	job, err := s.jobs.GetJob(ctx, s.jobID)
	if err != nil {
		return s.failLoad(err, "job not found")
	}

	level := domain.ClassifyExperience(job.Budget)
	questions := s.pipeline.GenerateQuestions(ctx, job.Title, job.Skills, level, s.questionCount)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if s.closed {
		return ErrClosed
	}
	s.application = app
	s.job = job
	s.questions = questions
	s.answers = nil
	s.index = 0
	s.phase = PhaseActive
	s.armTimerLocked()

	s.logger.Info("interview session started",
		slog.String("job_id", s.jobID),
		slog.Int("questions", len(questions)),
	)
	return nil
}

func (s *Session) failLoad(cause error, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if s.closed {
		return ErrClosed
	}
	s.phase = PhaseErrored
	s.lastErr = &FatalError{Message: msg, Cause: cause}
	s.logger.Warn("interview session failed to start",
		slog.String("job_id", s.jobID),
		slog.String("error", cause.Error()),
	)
	return s.lastErr
}

// Retry restarts a session that entered Errored.
func (s *Session) Retry(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.phase != PhaseErrored {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.phase = PhaseLoading
	s.lastErr = nil
	s.mu.Unlock()

	return s.Start(ctx)
}

// SetInput replaces the current answer buffer.
func (s *Session) SetInput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseActive && !s.closed {
		s.input = text
	}
}

// Input returns the current answer buffer.
func (s *Session) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Submit records the buffered answer for the current question and advances
// the session. A trimmed answer shorter than the minimum is rejected with a
// ValidationError and changes nothing, the running timer included.
// Submitting the last question evaluates the transcript and completes the
// session.
func (s *Session) Submit() error {
	s.mu.Lock()
	return s.submitLocked(false)
}

// expire is the timer callback: an automatic submission of whatever is
// buffered, empty included. Stale timers from earlier questions are
// rejected by generation.
func (s *Session) expire(gen int) {
	s.mu.Lock()
	if s.closed || s.phase != PhaseActive || gen != s.timerGen {
		s.mu.Unlock()
		return
	}
	s.logger.Info("question timer expired, forcing submission",
		slog.String("job_id", s.jobID),
		slog.Int("question_index", s.index),
	)
	_ = s.submitLocked(true)
}

// submitLocked is the single submission path for manual and timer-forced
// submissions. It is entered holding mu and returns with mu released.
func (s *Session) submitLocked(forced bool) error {
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.phase != PhaseActive {
		s.mu.Unlock()
		return ErrNotActive
	}

	text := strings.TrimSpace(s.input)
	if !forced && len(text) < minAnswerLength {
		s.mu.Unlock()
		return &domain.ValidationError{
			Field:  "answer",
			Reason: "please provide an answer of at least 10 characters",
		}
	}

	question := s.questions[s.index]
	s.recordAnswerLocked(domain.Answer{
		QuestionID:  question.ID,
		Text:        text,
		SubmittedAt: time.Now().UnixMilli(),
	})
	s.input = ""

	if s.index < len(s.questions)-1 {
		s.index++
		s.armTimerLocked()
		s.mu.Unlock()
		return nil
	}

	// Last question answered.
	s.stopTimerLocked()
	s.phase = PhaseSubmitting
	ctx := s.ctx
	questions := s.questions
	answers := append([]domain.Answer(nil), s.answers...)
	requirements := s.job.Requirements()
	s.mu.Unlock()

	s.finish(ctx, questions, answers, requirements)
	return nil
}

// recordAnswerLocked appends the answer, or replaces the earlier one after
// back-navigation. answers never grows beyond questions.
func (s *Session) recordAnswerLocked(answer domain.Answer) {
	for i, existing := range s.answers {
		if existing.QuestionID == answer.QuestionID {
			s.answers[i] = answer
			return
		}
	}
	s.answers = append(s.answers, answer)
}

// finish evaluates the transcript and notifies the persistence
// collaborators. The session reaches Completed on the evaluation alone;
// both write-backs are best-effort and merely logged on failure. The
// interview outcome must survive a storage hiccup.
func (s *Session) finish(ctx context.Context, questions []domain.Question, answers []domain.Answer, requirements string) {
	eval := s.pipeline.EvaluateAnswers(ctx, questions, answers, requirements)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.evaluation = &eval
	s.phase = PhaseCompleted
	appID := s.application.ID
	s.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := s.apps.SaveEvaluation(ctx, appID, questions, answers, eval); err != nil {
			s.logger.Error("failed to save evaluation",
				slog.String("application_id", appID),
				slog.String("error", err.Error()),
			)
		}
	}()
	go func() {
		defer wg.Done()
		if err := s.apps.UpdateStatus(ctx, appID, domain.StatusInterviewing, eval.Score); err != nil {
			s.logger.Error("failed to update application status",
				slog.String("application_id", appID),
				slog.String("error", err.Error()),
			)
		}
	}()
	wg.Wait()

	s.logger.Info("interview completed",
		slog.String("job_id", s.jobID),
		slog.Float64("score", eval.Score),
	)
}

// Previous steps back to the prior question for re-editing. The recorded
// answer is restored into the input buffer but answers stays untouched
// until a fresh submission; the question's timer restarts from its full
// duration.
func (s *Session) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.phase != PhaseActive {
		return ErrNotActive
	}
	if s.index == 0 {
		return &domain.ValidationError{Field: "navigation", Reason: "already at the first question"}
	}

	s.index--
	s.input = ""
	questionID := s.questions[s.index].ID
	for _, a := range s.answers {
		if a.QuestionID == questionID {
			s.input = a.Text
			break
		}
	}
	s.armTimerLocked()
	return nil
}

// armTimerLocked tears down any previous timer before starting the current
// question's. The teardown is unconditional so two timers are never live
// for one session.
func (s *Session) armTimerLocked() {
	s.stopTimerLocked()
	s.timerGen++

	d := s.questions[s.index].MaxDuration
	if d <= 0 {
		s.deadline = time.Time{}
		return
	}

	gen := s.timerGen
	s.deadline = time.Now().Add(time.Duration(d) * time.Second)
	s.timer = s.newTimer(time.Duration(d)*time.Second, func() { s.expire(gen) })
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.deadline = time.Time{}
}

// Close tears the session down: the pending timer is cancelled and any
// in-flight network result is discarded on arrival.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.stopTimerLocked()
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// CurrentIndex returns the index of the question being answered.
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Questions returns the issued question list.
func (s *Session) Questions() []domain.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Question(nil), s.questions...)
}

// Answers returns the recorded answers so far.
func (s *Session) Answers() []domain.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Answer(nil), s.answers...)
}

// Evaluation returns the final evaluation, nil before Completed.
func (s *Session) Evaluation() *domain.EvaluationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evaluation
}

// Err returns the error that moved the session to Errored, nil otherwise.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// TimeRemaining reports the seconds left on the current question's timer.
// ok is false when the question is untimed or the session is not Active.
func (s *Session) TimeRemaining() (seconds int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseActive || s.deadline.IsZero() {
		return 0, false
	}
	remaining := int(time.Until(s.deadline).Round(time.Second) / time.Second)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// FatalError marks a setup failure that blocks the interview: the candidate
// has not applied, or the job context cannot be fetched. It is retryable.
type FatalError struct {
	Message string
	Cause   error
}

func (e *FatalError) Error() string { return e.Message }

func (e *FatalError) Unwrap() error { return e.Cause }
