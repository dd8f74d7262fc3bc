package domain

import "strings"

// ExperienceLevel buckets a role by seniority.
type ExperienceLevel string

const (
	LevelEntry  ExperienceLevel = "entry"
	LevelMid    ExperienceLevel = "mid"
	LevelSenior ExperienceLevel = "senior"
)

// ClassifyExperience maps a job budget to the seniority tier the interview
// should target. Budgets under 1000 are entry level, under 5000 mid, and
// everything else senior.
func ClassifyExperience(budget float64) ExperienceLevel {
	switch {
	case budget < 1000:
		return LevelEntry
	case budget < 5000:
		return LevelMid
	default:
		return LevelSenior
	}
}

// ParseExperienceLevel matches a level case-insensitively, defaulting to mid
// when the input names no known tier.
func ParseExperienceLevel(s string) ExperienceLevel {
	switch ExperienceLevel(strings.ToLower(strings.TrimSpace(s))) {
	case LevelEntry:
		return LevelEntry
	case LevelSenior:
		return LevelSenior
	default:
		return LevelMid
	}
}
