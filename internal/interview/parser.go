package interview

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/chainwork/interviewd/internal/domain"
)

// defaultMaxDuration is applied to questions the provider issued without a
// time limit, in seconds.
const defaultMaxDuration = 120

// rawQuestion tolerates the field sloppiness providers produce: numeric
// ids, arbitrary-case kinds, fractional durations.
type rawQuestion struct {
	ID          any     `json:"id"`
	Question    string  `json:"question"`
	Type        string  `json:"type"`
	MaxDuration float64 `json:"maxDuration"`
}

// rawEvaluation keeps every field loose so one malformed value degrades to
// its default instead of failing the whole object.
type rawEvaluation struct {
	Score        any    `json:"score"`
	Feedback     string `json:"feedback"`
	Strengths    any    `json:"strengths"`
	Improvements any    `json:"improvements"`
}

// ParseQuestions extracts the first balanced JSON array from raw provider
// text and normalizes each element. It is total: any decode failure yields
// the fallback catalog.
func ParseQuestions(raw string) []domain.Question {
	payload, ok := extractBalanced(raw, '[', ']')
	if !ok {
		return FallbackQuestions("", nil, 0)
	}

	var decoded []rawQuestion
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		return FallbackQuestions("", nil, 0)
	}

	now := time.Now().UnixMilli()
	questions := make([]domain.Question, 0, len(decoded))
	for i, rq := range decoded {
		questions = append(questions, normalizeQuestion(rq, i, now))
	}
	if len(questions) == 0 {
		return FallbackQuestions("", nil, 0)
	}
	return questions
}

func normalizeQuestion(rq rawQuestion, index int, now int64) domain.Question {
	id := coerceID(rq.ID)
	if id == "" {
		id = fmt.Sprintf("q_%d_%d", now, index)
	}

	kind, _ := domain.ParseQuestionKind(rq.Type)

	maxDuration := int(rq.MaxDuration)
	if maxDuration <= 0 {
		maxDuration = defaultMaxDuration
	}

	return domain.Question{
		ID:          id,
		Text:        rq.Question,
		Kind:        kind,
		MaxDuration: maxDuration,
	}
}

// ParseEvaluation extracts the first balanced JSON object from raw provider
// text. It is total: decode failure yields the fallback evaluation, and a
// decoded object is clamped and defaulted field by field. The score is
// always within [0,1].
func ParseEvaluation(raw string) domain.EvaluationResult {
	payload, ok := extractBalanced(raw, '{', '}')
	if !ok {
		return FallbackEvaluation()
	}

	var decoded rawEvaluation
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		return FallbackEvaluation()
	}

	score, ok := coerceScore(decoded.Score)
	if !ok {
		score = NoSignalScore
	}

	feedback := decoded.Feedback
	if feedback == "" {
		feedback = "Evaluation complete"
	}

	return domain.EvaluationResult{
		Score:        clamp(score, 0, 1),
		Feedback:     feedback,
		Strengths:    coerceStrings(decoded.Strengths),
		Improvements: coerceStrings(decoded.Improvements),
	}
}

// extractBalanced returns the substring from the first occurrence of open
// to its matching close, honoring JSON string literals and escapes so
// brackets inside values don't unbalance the scan. Providers routinely wrap
// payloads in prose or markdown fences; scanning beats whole-string parsing
// by a wide margin in practice.
func extractBalanced(s string, openDelim, closeDelim byte) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if start >= 0 {
				inString = true
			}
		case openDelim:
			if start < 0 {
				start = i
			}
			depth++
		case closeDelim:
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func coerceID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return fmt.Sprintf("%.0f", id)
	default:
		return ""
	}
}

func coerceScore(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

// coerceStrings accepts only a JSON array, stringifying its elements.
// Anything else collapses to an empty slice, never nil.
func coerceStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch s := item.(type) {
		case string:
			out = append(out, s)
		default:
			out = append(out, fmt.Sprint(s))
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
