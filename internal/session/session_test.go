package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainwork/interviewd/internal/domain"
)

type stubPipeline struct {
	questions []domain.Question
	eval      domain.EvaluationResult

	mu        sync.Mutex
	evalCalls int
	lastQs    []domain.Question
	lastAs    []domain.Answer
	lastReqs  string
}

func (p *stubPipeline) GenerateQuestions(ctx context.Context, jobTitle string, skills []string, level domain.ExperienceLevel, count int) []domain.Question {
	return p.questions
}

func (p *stubPipeline) EvaluateAnswers(ctx context.Context, questions []domain.Question, answers []domain.Answer, jobRequirements string) domain.EvaluationResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.evalCalls++
	p.lastQs = questions
	p.lastAs = answers
	p.lastReqs = jobRequirements
	return p.eval
}

type stubJobStore struct {
	job *domain.Job
	err error
}

func (s *stubJobStore) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.job, nil
}

func (s *stubJobStore) CreateJob(ctx context.Context, job *domain.Job) error { return nil }

type stubAppStore struct {
	app     *domain.Application
	findErr error

	mu           sync.Mutex
	savedEval    *domain.EvaluationResult
	savedAnswers []domain.Answer
	statusSet    domain.ApplicationStatus
	scoreSet     float64
	saveErr      error
	statusErr    error
	saveCalls    int
	statusCalls  int
}

func (s *stubAppStore) FindApplication(ctx context.Context, jobID, candidateID string) (*domain.Application, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.app, nil
}

func (s *stubAppStore) FindOrCreateApplication(ctx context.Context, jobID, candidateID string) (*domain.Application, error) {
	return s.app, nil
}

func (s *stubAppStore) SaveEvaluation(ctx context.Context, applicationID string, questions []domain.Question, answers []domain.Answer, eval domain.EvaluationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCalls++
	s.savedEval = &eval
	s.savedAnswers = answers
	return s.saveErr
}

func (s *stubAppStore) UpdateStatus(ctx context.Context, applicationID string, status domain.ApplicationStatus, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusCalls++
	s.statusSet = status
	s.scoreSet = score
	return s.statusErr
}

// manualTimer lets tests fire or inspect timers synchronously.
type manualTimer struct {
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	wasLive := !t.stopped
	t.stopped = true
	return wasLive
}

type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (c *manualClock) factory(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) fire(i int) {
	c.mu.Lock()
	t := c.timers[i]
	c.mu.Unlock()
	t.fn()
}

func (c *manualClock) last() *manualTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timers[len(c.timers)-1]
}

func (c *manualClock) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func testQuestions() []domain.Question {
	return []domain.Question{
		{ID: "q1", Text: "Explain goroutine scheduling.", Kind: domain.QuestionTechnical, MaxDuration: 120},
		{ID: "q2", Text: "Describe a conflict you resolved.", Kind: domain.QuestionBehavioral, MaxDuration: 180},
		{ID: "q3", Text: "Production is down. What do you do first?", Kind: domain.QuestionSituational, MaxDuration: 120},
	}
}

func newTestSession(t *testing.T, opts ...Option) (*Session, *stubPipeline, *stubAppStore, *manualClock) {
	t.Helper()
	pipeline := &stubPipeline{
		questions: testQuestions(),
		eval: domain.EvaluationResult{
			Score:    0.82,
			Feedback: "Strong showing.",
		},
	}
	jobs := &stubJobStore{job: &domain.Job{
		ID:     "job-1",
		Title:  "Backend Engineer",
		Skills: []string{"Go", "SQL"},
		Budget: 6000,
	}}
	apps := &stubAppStore{app: &domain.Application{
		ID:          "app-1",
		JobID:       "job-1",
		CandidateID: "cand-1",
		Status:      domain.StatusPending,
	}}
	clock := &manualClock{}
	all := append([]Option{WithTimerFactory(clock.factory)}, opts...)
	s := New("job-1", "cand-1", pipeline, jobs, apps, all...)
	return s, pipeline, apps, clock
}

func TestStartLoadsQuestionsAndArmsTimer(t *testing.T) {
	s, _, _, clock := newTestSession(t)

	require.NoError(t, s.Start(context.Background()))

	assert.Equal(t, PhaseActive, s.Phase())
	assert.Equal(t, 0, s.CurrentIndex())
	assert.Len(t, s.Questions(), 3)
	assert.Equal(t, 1, clock.count())

	remaining, ok := s.TimeRemaining()
	require.True(t, ok)
	assert.InDelta(t, 120, remaining, 1)
}

func TestStartWithoutApplicationErrors(t *testing.T) {
	s, _, apps, _ := newTestSession(t)
	apps.findErr = domain.ErrNotFound

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, PhaseErrored, s.Phase())

	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Contains(t, fatal.Message, "apply for this job")
}

func TestRetryAfterErroredStart(t *testing.T) {
	s, _, apps, _ := newTestSession(t)
	apps.findErr = domain.ErrNotFound

	require.Error(t, s.Start(context.Background()))
	require.Equal(t, PhaseErrored, s.Phase())

	apps.findErr = nil
	require.NoError(t, s.Retry(context.Background()))
	assert.Equal(t, PhaseActive, s.Phase())
	assert.Nil(t, s.Err())
}

func TestStartTwiceRejected(t *testing.T) {
	s, _, _, _ := newTestSession(t)
	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyStarted)
}

func TestSubmitRejectsShortAnswer(t *testing.T) {
	s, _, _, _ := newTestSession(t)
	require.NoError(t, s.Start(context.Background()))

	s.SetInput("   short    ")
	err := s.Submit()
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, 0, s.CurrentIndex())
	assert.Empty(t, s.Answers())
	// The rejected submit must not touch the buffer.
	assert.Equal(t, "   short    ", s.Input())
}

func TestSubmitAdvancesAndRearmsTimer(t *testing.T) {
	s, _, _, clock := newTestSession(t)
	require.NoError(t, s.Start(context.Background()))
	first := clock.last()

	s.SetInput("Goroutines are scheduled M:N over OS threads.")
	require.NoError(t, s.Submit())

	assert.Equal(t, 1, s.CurrentIndex())
	assert.True(t, first.stopped)
	assert.Equal(t, 2, clock.count())
	assert.Empty(t, s.Input())

	answers := s.Answers()
	require.Len(t, answers, 1)
	assert.Equal(t, "q1", answers[0].QuestionID)
	assert.Equal(t, "Goroutines are scheduled M:N over OS threads.", answers[0].Text)
	assert.Greater(t, answers[0].SubmittedAt, int64(0))
}

func TestTimerExpiryForcesEmptyAnswer(t *testing.T) {
	s, _, _, clock := newTestSession(t)
	require.NoError(t, s.Start(context.Background()))

	clock.fire(0)

	assert.Equal(t, 1, s.CurrentIndex())
	answers := s.Answers()
	require.Len(t, answers, 1)
	assert.Equal(t, "q1", answers[0].QuestionID)
	assert.Empty(t, answers[0].Text)
}

func TestStaleTimerIgnoredAfterManualSubmit(t *testing.T) {
	s, _, _, clock := newTestSession(t)
	require.NoError(t, s.Start(context.Background()))

	s.SetInput("A detailed answer about scheduling internals.")
	require.NoError(t, s.Submit())
	require.Equal(t, 1, s.CurrentIndex())

	// The first question's timer fires late; it must not double-advance.
	clock.fire(0)
	assert.Equal(t, 1, s.CurrentIndex())
	assert.Len(t, s.Answers(), 1)
}

func TestPreviousRestoresAnswerAndResetsTimer(t *testing.T) {
	s, _, _, clock := newTestSession(t)
	require.NoError(t, s.Start(context.Background()))

	s.SetInput("My first answer, long enough to pass.")
	require.NoError(t, s.Submit())
	require.Equal(t, 1, s.CurrentIndex())
	timers := clock.count()

	require.NoError(t, s.Previous())
	assert.Equal(t, 0, s.CurrentIndex())
	assert.Equal(t, "My first answer, long enough to pass.", s.Input())
	assert.Equal(t, timers+1, clock.count())

	// Re-submitting replaces, not appends.
	s.SetInput("A revised answer, also long enough.")
	require.NoError(t, s.Submit())
	answers := s.Answers()
	require.Len(t, answers, 1)
	assert.Equal(t, "A revised answer, also long enough.", answers[0].Text)
}

func TestPreviousOnFirstQuestionRejected(t *testing.T) {
	s, _, _, _ := newTestSession(t)
	require.NoError(t, s.Start(context.Background()))

	err := s.Previous()
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestFullInterviewCompletesAndPersists(t *testing.T) {
	s, pipeline, apps, _ := newTestSession(t)
	require.NoError(t, s.Start(context.Background()))

	answers := []string{
		"Goroutines multiplex onto OS threads via the scheduler.",
		"I mediated a design disagreement by prototyping both options.",
		"Check monitoring dashboards, then recent deploys.",
	}
	for _, a := range answers {
		s.SetInput(a)
		require.NoError(t, s.Submit())
	}

	assert.Equal(t, PhaseCompleted, s.Phase())
	require.NotNil(t, s.Evaluation())
	assert.InDelta(t, 0.82, s.Evaluation().Score, 1e-9)

	assert.Equal(t, 1, pipeline.evalCalls)
	assert.Contains(t, pipeline.lastReqs, "Backend Engineer")
	assert.Len(t, pipeline.lastAs, 3)

	assert.Equal(t, 1, apps.saveCalls)
	assert.Equal(t, 1, apps.statusCalls)
	assert.Equal(t, domain.StatusInterviewing, apps.statusSet)
	assert.InDelta(t, 0.82, apps.scoreSet, 1e-9)
	require.Len(t, apps.savedAnswers, 3)
}

func TestCompletionSurvivesPersistenceFailure(t *testing.T) {
	s, _, apps, _ := newTestSession(t)
	apps.saveErr = errors.New("disk full")
	apps.statusErr = errors.New("disk full")
	require.NoError(t, s.Start(context.Background()))

	for i := 0; i < 3; i++ {
		s.SetInput("An answer comfortably over the minimum length.")
		require.NoError(t, s.Submit())
	}

	assert.Equal(t, PhaseCompleted, s.Phase())
	assert.NotNil(t, s.Evaluation())
	assert.Equal(t, 1, apps.saveCalls)
	assert.Equal(t, 1, apps.statusCalls)
}

func TestForcedSubmitOnLastQuestionCompletes(t *testing.T) {
	s, pipeline, _, clock := newTestSession(t)
	require.NoError(t, s.Start(context.Background()))

	clock.fire(0)
	clock.fire(1)
	clock.fire(2)

	assert.Equal(t, PhaseCompleted, s.Phase())
	assert.Equal(t, 1, pipeline.evalCalls)
	require.Len(t, pipeline.lastAs, 3)
	for _, a := range pipeline.lastAs {
		assert.Empty(t, a.Text)
	}
}

func TestSubmitAfterCompletionRejected(t *testing.T) {
	s, _, _, _ := newTestSession(t)
	require.NoError(t, s.Start(context.Background()))

	for i := 0; i < 3; i++ {
		s.SetInput("An answer comfortably over the minimum length.")
		require.NoError(t, s.Submit())
	}
	require.Equal(t, PhaseCompleted, s.Phase())

	s.SetInput("Another answer that should go nowhere at all.")
	assert.ErrorIs(t, s.Submit(), ErrNotActive)
}

func TestCloseCancelsTimerAndBlocksEvents(t *testing.T) {
	s, _, _, clock := newTestSession(t)
	require.NoError(t, s.Start(context.Background()))
	timer := clock.last()

	s.Close()
	assert.True(t, timer.stopped)

	// A fire that raced Close is ignored.
	clock.fire(0)
	assert.Empty(t, s.Answers())
	assert.ErrorIs(t, s.Submit(), ErrClosed)
	assert.ErrorIs(t, s.Start(context.Background()), ErrClosed)
}

func TestUntimedQuestionHasNoTimer(t *testing.T) {
	s, pipeline, _, clock := newTestSession(t)
	pipeline.questions = []domain.Question{
		{ID: "q1", Text: "Take your time.", Kind: domain.QuestionTechnical, MaxDuration: 0},
	}
	require.NoError(t, s.Start(context.Background()))

	assert.Equal(t, 0, clock.count())
	_, ok := s.TimeRemaining()
	assert.False(t, ok)
}
