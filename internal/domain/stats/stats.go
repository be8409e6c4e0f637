// Package stats computes summary statistics over a filtered match population.
//
// Compute always receives the full transformed population for a request,
// never a page of it. Every aggregate degrades to an explicit zero value on
// an empty population; callers render the result directly and must never see
// NaN.
package stats

import (
	"strconv"
	"strings"

	"github.com/agonhq/agon/internal/domain/model"
)

// Score bucket boundaries. Buckets are left-inclusive; the top bucket is
// closed above by the score domain [0,1].
const (
	excellentFloor = 0.8
	goodFloor      = 0.6
	fairFloor      = 0.4
)

// ScoreDistribution counts matches per coarse score bucket.
type ScoreDistribution struct {
	Excellent int `json:"excellent"` // score >= 0.8
	Good      int `json:"good"`      // 0.6 <= score < 0.8
	Fair      int `json:"fair"`      // 0.4 <= score < 0.6
	Poor      int `json:"poor"`      // score < 0.4
}

// Result holds the aggregates for one request. Stateless and recomputed
// every request.
type Result struct {
	TotalStudents              int                `json:"totalStudents"`
	AverageMatchScore          float64            `json:"averageMatchScore"`
	HighestScore               float64            `json:"highestScore"`
	LowestScore                float64            `json:"lowestScore"`
	AverageGPA                 float64            `json:"averageGPA"`
	ScoreDistribution          ScoreDistribution  `json:"scoreDistribution"`
	EntryYearDistribution      map[int]int        `json:"entryYearDistribution"`
	StudyProgramDistribution   map[string]int     `json:"studyProgramDistribution"`
	RelevantSkillsDistribution map[string]float64 `json:"relevantSkillsDistribution"`
}

// empty returns a zero-valued but fully constructed Result. Maps are
// allocated so the JSON shape stays stable on empty populations.
func empty() Result {
	return Result{
		EntryYearDistribution:      map[int]int{},
		StudyProgramDistribution:   map[string]int{},
		RelevantSkillsDistribution: map[string]float64{},
	}
}

// Compute aggregates the full population. declaredSkills selects the
// skill-relevance mode: empty means Mode A (observed skills), non-empty
// means Mode B (declared skills only, exact name match).
func Compute(matches []model.MatchRecord, declaredSkills []string) Result {
	r := empty()
	r.TotalStudents = len(matches)
	r.RelevantSkillsDistribution = skillsDistribution(matches, declaredSkills)
	if len(matches) == 0 {
		return r
	}

	var scoreSum float64
	highest := matches[0].Recommendation.MatchScore
	lowest := matches[0].Recommendation.MatchScore
	var gpaSum float64
	var gpaCount int

	for _, m := range matches {
		score := m.Recommendation.MatchScore
		scoreSum += score
		if score > highest {
			highest = score
		}
		if score < lowest {
			lowest = score
		}
		bucket(&r.ScoreDistribution, score)

		r.EntryYearDistribution[m.Student.EntryYear]++
		r.StudyProgramDistribution[m.Student.StudyProgram.Name]++

		if gpa, ok := parseGPA(m.Student.GPA); ok {
			gpaSum += gpa
			gpaCount++
		}
	}

	r.AverageMatchScore = scoreSum / float64(len(matches))
	r.HighestScore = highest
	r.LowestScore = lowest
	if gpaCount > 0 {
		r.AverageGPA = gpaSum / float64(gpaCount)
	}
	return r
}

// bucket assigns a score to exactly one bucket.
func bucket(d *ScoreDistribution, score float64) {
	switch {
	case score >= excellentFloor:
		d.Excellent++
	case score >= goodFloor:
		d.Good++
	case score >= fairFloor:
		d.Fair++
	default:
		d.Poor++
	}
}

// parseGPA parses the stored GPA text. Unparsable and non-positive values
// are excluded from the average, not treated as zeros.
func parseGPA(raw string) (float64, bool) {
	gpa, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || gpa <= 0 {
		return 0, false
	}
	return gpa, true
}

// skillsDistribution computes the per-skill average proficiency.
//
// Mode A (no declared skills): keys are whatever skill names appear in the
// population; each value averages over the students who report that skill.
//
// Mode B (declared skills): keys are exactly the declared skills, defaulted
// to 0; a student's entry contributes only on an exact, case-sensitive name
// match, and the value averages over contributors only. The value answers
// "how strong are students who do report this skill", not "how common is it".
func skillsDistribution(matches []model.MatchRecord, declaredSkills []string) map[string]float64 {
	sums := map[string]float64{}
	counts := map[string]int{}
	out := map[string]float64{}

	declared := len(declaredSkills) > 0
	if declared {
		for _, name := range declaredSkills {
			out[name] = 0
		}
	}

	for _, m := range matches {
		for _, skill := range m.SkillsProfile {
			if declared {
				if _, ok := out[skill.Name]; !ok {
					continue
				}
			}
			sums[skill.Name] += skill.Score
			counts[skill.Name]++
		}
	}

	for name, count := range counts {
		out[name] = sums[name] / float64(count)
	}
	return out
}
