// Package filter builds store predicates from sparse request filters.
//
// Exactly one filter field ever takes effect per request: rules are
// evaluated in a fixed priority order and the first applicable one wins.
// This mirrors the long-standing behavior staff tooling depends on; see the
// note on conjunctive filtering in DESIGN.md before changing it.
package filter

import (
	"fmt"
	"strings"

	"github.com/agonhq/agon/internal/domain/model"
)

// Filter carries the optional filter fields of one request.
type Filter struct {
	StudyProgramID *int64
	EntryYear      *int
	MinMatchScore  *float64
	Keywords       string
}

// Predicate is the single object the record store consumes. Scope fields
// narrow the row set to one competition or one student; at most one of the
// rule fields is set, chosen by Build.
type Predicate struct {
	CompetitionID *int64
	StudentID     *int64

	Rule           string // name of the rule that bound, "" if unfiltered
	StudyProgramID *int64
	EntryYear      *int
	MinMatchScore  *float64
	Keywords       string
}

// Rule names, in priority order.
const (
	RuleStudyProgram = "study_program"
	RuleEntryYear    = "entry_year"
	RuleMinScore     = "min_match_score"
	RuleKeywords     = "keywords"
)

// rule is one entry of the priority table: applies reports whether the
// request carries the field, bind copies it onto the predicate.
type rule struct {
	name    string
	applies func(Filter) bool
	bind    func(Filter, *Predicate)
}

var rules = []rule{
	{
		name:    RuleStudyProgram,
		applies: func(f Filter) bool { return f.StudyProgramID != nil },
		bind:    func(f Filter, p *Predicate) { p.StudyProgramID = f.StudyProgramID },
	},
	{
		name:    RuleEntryYear,
		applies: func(f Filter) bool { return f.EntryYear != nil },
		bind:    func(f Filter, p *Predicate) { p.EntryYear = f.EntryYear },
	},
	{
		name:    RuleMinScore,
		applies: func(f Filter) bool { return f.MinMatchScore != nil },
		bind:    func(f Filter, p *Predicate) { p.MinMatchScore = f.MinMatchScore },
	},
	{
		name:    RuleKeywords,
		applies: func(f Filter) bool { return strings.TrimSpace(f.Keywords) != "" },
		bind:    func(f Filter, p *Predicate) { p.Keywords = strings.TrimSpace(f.Keywords) },
	},
}

// Validate rejects out-of-range filter values before any store round-trip.
func (f Filter) Validate() error {
	if f.MinMatchScore != nil && (*f.MinMatchScore < 0 || *f.MinMatchScore > 1) {
		return fmt.Errorf("%w: minMatchScore must be within [0,1]", ErrInvalidFilter)
	}
	return nil
}

// Build produces the predicate for a request. scope pre-populates the
// competition/student scoping; the first applicable rule binds its field and
// evaluation stops. With no applicable rule the predicate stays unfiltered
// (scope only).
func Build(f Filter, scope Predicate) (Predicate, error) {
	if err := f.Validate(); err != nil {
		return Predicate{}, err
	}
	p := scope
	for _, r := range rules {
		if r.applies(f) {
			r.bind(f, &p)
			p.Rule = r.name
			break
		}
	}
	return p, nil
}

// CompetitionScope returns a predicate scoped to one competition.
func CompetitionScope(competitionID int64) Predicate {
	return Predicate{CompetitionID: &competitionID}
}

// StudentScope returns a predicate scoped to one student.
func StudentScope(studentID int64) Predicate {
	return Predicate{StudentID: &studentID}
}

// Matches reports whether a raw row satisfies the predicate. The store
// applies this during traversal; rows with missing relations are the
// transform stage's concern, so nil student or recommendation only fails
// the checks that need them.
func (p Predicate) Matches(st *model.Student, rec *model.Recommendation) bool {
	if p.CompetitionID != nil && (rec == nil || rec.CompetitionID != *p.CompetitionID) {
		return false
	}
	if p.StudentID != nil && (rec == nil || rec.StudentID != *p.StudentID) {
		return false
	}
	switch p.Rule {
	case RuleStudyProgram:
		return st != nil && st.StudyProgram.ID == *p.StudyProgramID
	case RuleEntryYear:
		return st != nil && st.EntryYear == *p.EntryYear
	case RuleMinScore:
		return rec != nil && rec.MatchScore >= *p.MinMatchScore
	case RuleKeywords:
		if st == nil {
			return false
		}
		kw := strings.ToLower(p.Keywords)
		return strings.Contains(strings.ToLower(st.Name), kw) ||
			strings.Contains(strings.ToLower(st.StudentNumber), kw)
	default:
		return true
	}
}
