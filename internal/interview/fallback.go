package interview

import "github.com/chainwork/interviewd/internal/domain"

// NoSignalScore is the canonical score when the pipeline has no usable
// signal about answer quality, whether because every provider failed or
// because a parsed evaluation carried no numeric score. One constant, one
// meaning.
const NoSignalScore = 0.7

// fallbackQuestionCount is the full catalog size.
const fallbackQuestionCount = 5

// FallbackQuestions is the deterministic, provider-independent question
// set, lightly interpolated with job context when available. It spans all
// three question kinds so a fallback interview still exercises the
// candidate broadly. count values outside [1, 5] yield the whole catalog.
func FallbackQuestions(jobTitle string, skills []string, count int) []domain.Question {
	firstSkill := "relevant technologies"
	if len(skills) > 0 && skills[0] != "" {
		firstSkill = skills[0]
	}
	role := "this kind of"
	if jobTitle != "" {
		role = jobTitle
	}

	questions := []domain.Question{
		{
			ID:          "fallback_1",
			Text:        "Tell me about your experience with " + firstSkill + ".",
			Kind:        domain.QuestionTechnical,
			MaxDuration: 120,
		},
		{
			ID:          "fallback_2",
			Text:        "Describe a challenging project you worked on and how you handled it.",
			Kind:        domain.QuestionBehavioral,
			MaxDuration: 180,
		},
		{
			ID:          "fallback_3",
			Text:        "How do you approach learning new technologies or frameworks?",
			Kind:        domain.QuestionBehavioral,
			MaxDuration: 120,
		},
		{
			ID:          "fallback_4",
			Text:        "What best practices do you follow when working on " + role + " projects?",
			Kind:        domain.QuestionTechnical,
			MaxDuration: 150,
		},
		{
			ID:          "fallback_5",
			Text:        "How do you handle multiple priorities and tight deadlines?",
			Kind:        domain.QuestionSituational,
			MaxDuration: 120,
		},
	}

	if count <= 0 || count > len(questions) {
		return questions
	}
	return questions[:count]
}

// FallbackEvaluation is the deterministic evaluation used when no provider
// produced a scorable result.
func FallbackEvaluation() domain.EvaluationResult {
	return domain.EvaluationResult{
		Score:    NoSignalScore,
		Feedback: "Evaluation completed using fallback mode. Connect an LLM provider for detailed scoring.",
		Strengths: []string{
			"Good communication",
			"Solid technical foundation",
		},
		Improvements: []string{
			"Provide more examples",
			"Be more concise",
		},
	}
}
