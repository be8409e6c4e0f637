// Package repository defines the record store boundary and errors.
package repository

import (
	"context"

	"github.com/agonhq/agon/internal/domain/filter"
	"github.com/agonhq/agon/internal/domain/model"
)

// MatchRow is one raw row returned by a match query. Relations may be
// missing: a nil Student or Recommendation is valid at this boundary and is
// dropped later by the transform stage.
type MatchRow struct {
	Student        *model.Student
	Recommendation *model.Recommendation
	Skills         []model.SkillScore
}

// Counts summarizes store contents for operational stats.
type Counts struct {
	Students     int
	Competitions int
	Matches      int
}

// Store provides read/write access to students, competitions and match
// records. The predicate is applied store-side; callers receive the full
// matching row set, already ordered by recommendation creation time
// descending (recommendation ID ascending on ties).
type Store interface {
	// Competition returns the competition descriptor.
	// Returns ErrNotFound if the id is unknown.
	Competition(ctx context.Context, id int64) (model.Competition, error)

	// Student returns the student descriptor.
	// Returns ErrNotFound if the id is unknown.
	Student(ctx context.Context, id int64) (model.Student, error)

	// Matches returns every row satisfying the predicate, unbounded by any
	// page size.
	Matches(ctx context.Context, p filter.Predicate) ([]MatchRow, error)

	// PutStudent upserts a student snapshot.
	PutStudent(ctx context.Context, st model.Student) error

	// PutCompetition upserts a competition.
	PutCompetition(ctx context.Context, c model.Competition) error

	// PutRecommendation upserts one recommendation row with its skill
	// profile, keyed by recommendation ID.
	PutRecommendation(ctx context.Context, rec model.Recommendation, skills []model.SkillScore) error

	// ApplyEvent applies one ingested match event: upserts the student
	// snapshot and the recommendation row atomically.
	ApplyEvent(ctx context.Context, e model.MatchEvent) error

	// Stats returns current store contents.
	Stats(ctx context.Context) Counts
}
