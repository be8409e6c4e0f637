package seedgen

import (
	"context"
	"fmt"
	"math"

	"github.com/agonhq/agon/internal/domain/model"
	"github.com/agonhq/agon/internal/domain/stats"
	"github.com/agonhq/agon/pkg/logger"
)

// verifyCompetitionView checks the aggregation properties of one
// competition view against the generated population.
func verifyCompetitionView(ctx context.Context, client *HTTPClient, cfg *Config, comp model.Competition, expected int) error {
	first, err := fetchCompetitionView(ctx, client, cfg, comp.ID, 1, 10)
	if err != nil {
		return err
	}

	if first.Pagination.Total != expected {
		return fmt.Errorf("competition %d: expected %d matches, got %d", comp.ID, expected, first.Pagination.Total)
	}
	if err := checkStatistics(first.Statistics, comp.RelevantSkills); err != nil {
		return fmt.Errorf("competition %d: %w", comp.ID, err)
	}

	// Statistics must not move when only the page moves.
	if first.Pagination.TotalPages > 1 {
		last, err := fetchCompetitionView(ctx, client, cfg, comp.ID, first.Pagination.TotalPages, 10)
		if err != nil {
			return err
		}
		if len(last.Data.Students) == 0 {
			return fmt.Errorf("competition %d: last page came back empty", comp.ID)
		}
		if !statisticsEqual(first.Statistics, last.Statistics) {
			return fmt.Errorf("competition %d: statistics changed between pages", comp.ID)
		}
	}

	logger.Get().Debug(ctx, "competition view verified",
		logger.Int64("competitionID", comp.ID),
		logger.Int("total", first.Pagination.Total),
	)
	return nil
}

// checkStatistics validates the internal consistency of a statistics block.
func checkStatistics(s stats.Result, declaredSkills []string) error {
	d := s.ScoreDistribution
	if d.Excellent+d.Good+d.Fair+d.Poor != s.TotalStudents {
		return fmt.Errorf("score buckets do not partition the population: %d+%d+%d+%d != %d",
			d.Excellent, d.Good, d.Fair, d.Poor, s.TotalStudents)
	}
	if math.IsNaN(s.AverageMatchScore) || math.IsNaN(s.AverageGPA) {
		return fmt.Errorf("statistics contain NaN")
	}
	if s.TotalStudents > 0 {
		if s.HighestScore < s.LowestScore {
			return fmt.Errorf("highest score %.2f below lowest %.2f", s.HighestScore, s.LowestScore)
		}
		if s.AverageMatchScore < s.LowestScore || s.AverageMatchScore > s.HighestScore {
			return fmt.Errorf("average %.2f outside [%.2f, %.2f]", s.AverageMatchScore, s.LowestScore, s.HighestScore)
		}
	}
	for _, name := range declaredSkills {
		if _, ok := s.RelevantSkillsDistribution[name]; !ok {
			return fmt.Errorf("declared skill %q missing from distribution", name)
		}
	}
	return nil
}

func statisticsEqual(a, b stats.Result) bool {
	if a.TotalStudents != b.TotalStudents ||
		a.ScoreDistribution != b.ScoreDistribution ||
		a.AverageMatchScore != b.AverageMatchScore ||
		a.HighestScore != b.HighestScore ||
		a.LowestScore != b.LowestScore ||
		a.AverageGPA != b.AverageGPA {
		return false
	}
	if len(a.EntryYearDistribution) != len(b.EntryYearDistribution) {
		return false
	}
	for year, n := range a.EntryYearDistribution {
		if b.EntryYearDistribution[year] != n {
			return false
		}
	}
	return true
}

// verifyStudentView checks one student's view against their event count.
func verifyStudentView(ctx context.Context, client *HTTPClient, cfg *Config, studentID int64, expected int) error {
	out, err := fetchStudentView(ctx, client, cfg, studentID, 1, 100)
	if err != nil {
		return err
	}
	if out.Pagination.Total != expected {
		return fmt.Errorf("student %d: expected %d matches, got %d", studentID, expected, out.Pagination.Total)
	}
	if err := checkStatistics(out.Statistics, nil); err != nil {
		return fmt.Errorf("student %d: %w", studentID, err)
	}
	return nil
}
