// Package domain holds the core interview types shared across the service.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// QuestionKind classifies an interview question.
type QuestionKind string

const (
	QuestionTechnical   QuestionKind = "technical"
	QuestionBehavioral  QuestionKind = "behavioral"
	QuestionSituational QuestionKind = "situational"
)

// ParseQuestionKind matches a kind case-insensitively.
// The second return value reports whether the input named a known kind.
func ParseQuestionKind(s string) (QuestionKind, bool) {
	switch QuestionKind(strings.ToLower(strings.TrimSpace(s))) {
	case QuestionTechnical:
		return QuestionTechnical, true
	case QuestionBehavioral:
		return QuestionBehavioral, true
	case QuestionSituational:
		return QuestionSituational, true
	}
	return QuestionTechnical, false
}

// Question is a single interview question. Immutable once issued to a session.
type Question struct {
	ID          string       `json:"id"`
	Text        string       `json:"question"`
	Kind        QuestionKind `json:"type"`
	MaxDuration int          `json:"maxDuration,omitempty"` // seconds; 0 means untimed
}

// Answer is the candidate's response to one question. A later answer for the
// same QuestionID replaces the earlier one on back-navigation edits.
type Answer struct {
	QuestionID  string `json:"questionId"`
	Text        string `json:"answer"`
	SubmittedAt int64  `json:"timestamp"` // epoch milliseconds
}

// EvaluationResult is the normalized outcome of evaluating a transcript.
// Score is always within [0,1]; Strengths and Improvements are never nil.
type EvaluationResult struct {
	Score        float64  `json:"score"`
	Feedback     string   `json:"feedback"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// Job is the context an interview is conducted against.
type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Skills      []string  `json:"skills"`
	Budget      float64   `json:"budget"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Requirements renders the job as a one-line requirements summary for
// the evaluation prompt.
func (j Job) Requirements() string {
	if len(j.Skills) == 0 {
		return fmt.Sprintf("%s position", j.Title)
	}
	return fmt.Sprintf("%s position requiring %s", j.Title, strings.Join(j.Skills, ", "))
}

// ApplicationStatus tracks an application through the hiring flow.
// This service only ever advances an application to StatusInterviewing;
// accept/reject decisions belong to the employer.
type ApplicationStatus string

const (
	StatusPending      ApplicationStatus = "PENDING"
	StatusInterviewing ApplicationStatus = "INTERVIEWING"
	StatusAccepted     ApplicationStatus = "ACCEPTED"
	StatusRejected     ApplicationStatus = "REJECTED"
)

// Application is a candidate's application to a job, including any recorded
// interview transcript and evaluation.
type Application struct {
	ID             string            `json:"id"`
	JobID          string            `json:"jobId"`
	CandidateID    string            `json:"candidateId"`
	Status         ApplicationStatus `json:"status"`
	InterviewScore *float64          `json:"interviewScore,omitempty"`
	Questions      []Question        `json:"questions,omitempty"`
	Answers        []Answer          `json:"answers,omitempty"`
	Evaluation     *EvaluationResult `json:"evaluation,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}
