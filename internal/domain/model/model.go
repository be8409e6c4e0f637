// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"strings"
	"time"
)

// Student is a read-only snapshot of a student row owned by the record store.
// GPA is stored as text and parsed defensively by the statistics stage.
type Student struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	StudentNumber string   `json:"studentNumber,omitempty"`
	GPA           string   `json:"gpa"`
	StudyProgram  Program  `json:"studyProgram"`
	EntryYear     int      `json:"entryYear"`
	Interests     []string `json:"interests,omitempty"`
}

// Program identifies a study program.
type Program struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Competition describes a competition students can be matched against.
// RelevantSkills are free-text tags declared by the competition author and
// drive the skill-relevance distribution mode.
type Competition struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	Fields         []string `json:"fields,omitempty"`
	RelevantSkills []string `json:"relevantSkills,omitempty"`
	Organizer      string   `json:"organizer,omitempty"`
	Description    string   `json:"description,omitempty"`
}

// Recommendation is one precomputed match of a student to a competition.
// Rank is 1-based, lower is better. MatchScore lies in [0,1].
type Recommendation struct {
	ID              string    `json:"id"`
	CompetitionID   int64     `json:"competitionId"`
	StudentID       int64     `json:"studentId"`
	Rank            int       `json:"rank"`
	MatchScore      float64   `json:"matchScore"`
	MatchReason     string    `json:"matchReason,omitempty"`
	KeyFactors      []string  `json:"keyFactors,omitempty"`
	PreparationTips []string  `json:"preparationTips,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// SkillScore is one entry of a student's computed skill profile,
// independent of any particular competition.
type SkillScore struct {
	Name      string  `json:"skillName"`
	Score     float64 `json:"score"`
	Breakdown string  `json:"breakdown,omitempty"`
}

// MatchRecord is the unit the aggregation pipeline operates on: one
// student's recommendation outcome for one competition plus the student's
// skill profile. Synthesized fresh per request, never cached.
type MatchRecord struct {
	Student        Student        `json:"student"`
	Recommendation Recommendation `json:"recommendation"`
	SkillsProfile  []SkillScore   `json:"skillsProfile"`
}

// MatchEvent is the ingestion payload pushed by the upstream scoring
// process: one scored recommendation with the student snapshot and skill
// profile it was computed from. EventID is the idempotency key.
type MatchEvent struct {
	EventID        string         `json:"eventId"`
	Student        Student        `json:"student"`
	Recommendation Recommendation `json:"recommendation"`
	SkillsProfile  []SkillScore   `json:"skillsProfile"`
}

// Validation errors for MatchEvent.
var (
	ErrMissingEventID        = errors.New("missing event id")
	ErrMissingStudent        = errors.New("missing student")
	ErrMissingRecommendation = errors.New("missing recommendation")
	ErrScoreOutOfRange       = errors.New("match score out of range")
)

// Validate checks the event is complete enough to apply to the store.
func (e MatchEvent) Validate() error {
	switch {
	case strings.TrimSpace(e.EventID) == "":
		return ErrMissingEventID
	case e.Student.ID == 0:
		return ErrMissingStudent
	case strings.TrimSpace(e.Recommendation.ID) == "" || e.Recommendation.CompetitionID == 0:
		return ErrMissingRecommendation
	case e.Recommendation.MatchScore < 0 || e.Recommendation.MatchScore > 1:
		return ErrScoreOutOfRange
	}
	return nil
}
