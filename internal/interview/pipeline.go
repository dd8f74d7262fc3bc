package interview

import (
	"context"
	"errors"
	"log/slog"

	"github.com/chainwork/interviewd/internal/domain"
)

// Temperature is fixed per call kind: generation runs warm to diversify
// questions across sessions, evaluation runs cool to stabilize scoring.
const (
	generationTemperature = 0.7
	evaluationTemperature = 0.3
)

// Completer is the provider router's contract as the pipeline sees it.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
}

// Pipeline orchestrates prompt construction, provider completion, response
// parsing and fallback substitution. Both of its operations are total: they
// absorb every LLM-path failure and always hand the caller a well-formed
// result.
type Pipeline struct {
	llm    Completer
	logger *slog.Logger
}

// NewPipeline creates a Pipeline around the given completer.
func NewPipeline(llm Completer, logger *slog.Logger) *Pipeline {
	return &Pipeline{llm: llm, logger: logger}
}

// GenerateQuestions produces count role-specific questions, or the fallback
// catalog when the provider path cannot deliver.
func (p *Pipeline) GenerateQuestions(ctx context.Context, jobTitle string, skills []string, level domain.ExperienceLevel, count int) []domain.Question {
	if count <= 0 {
		count = fallbackQuestionCount
	}
	prompt := BuildGenerationPrompt(jobTitle, skills, level, count)

	text, err := p.llm.Complete(ctx, prompt, generationTemperature)
	if err != nil {
		p.logCompletionFailure(ctx, "question generation", err)
		return FallbackQuestions(jobTitle, skills, count)
	}

	return ParseQuestions(text)
}

// EvaluateAnswers scores a full transcript against the job requirements, or
// returns the fallback evaluation when the provider path cannot deliver.
func (p *Pipeline) EvaluateAnswers(ctx context.Context, questions []domain.Question, answers []domain.Answer, jobRequirements string) domain.EvaluationResult {
	prompt := BuildEvaluationPrompt(questions, answers, jobRequirements)

	text, err := p.llm.Complete(ctx, prompt, evaluationTemperature)
	if err != nil {
		p.logCompletionFailure(ctx, "answer evaluation", err)
		return FallbackEvaluation()
	}

	return ParseEvaluation(text)
}

func (p *Pipeline) logCompletionFailure(ctx context.Context, op string, err error) {
	// Running without a backend is a configuration, not an incident.
	if errors.Is(err, domain.ErrNoBackend) {
		p.logger.DebugContext(ctx, "llm path skipped, serving fallback", slog.String("op", op))
		return
	}
	p.logger.WarnContext(ctx, "llm path failed, serving fallback",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
}
