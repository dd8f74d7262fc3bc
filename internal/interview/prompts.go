// Package interview implements the question-generation and answer-evaluation
// pipeline: prompt construction, provider completion, defensive response
// parsing, and deterministic fallbacks.
package interview

import (
	"fmt"
	"strings"

	"github.com/chainwork/interviewd/internal/domain"
)

// BuildGenerationPrompt renders the question-generation instruction. The
// prompt demands a bare JSON array and enumerates the exact field names the
// parser expects; without that the extraction success rate collapses.
func BuildGenerationPrompt(jobTitle string, skills []string, level domain.ExperienceLevel, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d interview questions for a %s %s.\n", count, level, jobTitle)
	fmt.Fprintf(&b, "Skills: %s\n\n", strings.Join(skills, ", "))
	b.WriteString("Mix technical, behavioral and situational questions tied to the listed skills.\n\n")
	b.WriteString("Return ONLY a valid JSON array, no prose:\n")
	b.WriteString(`[
  {
    "id": "unique_id",
    "question": "...",
    "type": "technical|behavioral|situational",
    "maxDuration": 120
  }
]`)
	return b.String()
}

// BuildEvaluationPrompt renders the evaluation instruction, pairing every
// question with its matched answer. Questions without a recorded answer get
// the literal placeholder so the model scores the omission rather than
// hallucinating a reply.
func BuildEvaluationPrompt(questions []domain.Question, answers []domain.Answer, jobRequirements string) string {
	byQuestion := make(map[string]string, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a.Text
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Evaluate the following interview answers for role: %s\n\n", jobRequirements)

	for _, q := range questions {
		answer, ok := byQuestion[q.ID]
		if !ok || answer == "" {
			answer = "No answer provided"
		}
		fmt.Fprintf(&b, "Q: %s\nA: %s\nType: %s\n---\n", q.Text, answer, q.Kind)
	}

	b.WriteString("\nReturn ONLY a valid JSON object, no prose:\n")
	b.WriteString(`{
  "score": 0.85,
  "feedback": "...",
  "strengths": ["..."],
  "improvements": ["..."]
}`)
	return b.String()
}
