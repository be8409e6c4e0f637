package service

import (
	"context"
	"fmt"
	"time"

	repository "github.com/agonhq/agon/internal/adapters/repository"
	"github.com/agonhq/agon/internal/domain/filter"
	"github.com/agonhq/agon/internal/domain/model"
	"github.com/agonhq/agon/internal/domain/paging"
	"github.com/agonhq/agon/internal/domain/stats"
	"github.com/agonhq/agon/internal/domain/types"
	"github.com/agonhq/agon/pkg/metrics"
)

// Pipeline stage labels recorded on the stage-duration histogram.
const (
	stageFilter     = "filter"
	stageFetch      = "fetch"
	stageTransform  = "transform"
	stageStatistics = "statistics"
	stagePagination = "pagination"
)

// timeStage returns a func that records elapsed time for one stage.
func timeStage(name string) func() {
	start := time.Now()
	return func() {
		metrics.RecordPipelineStageDuration(name, float64(time.Since(start).Milliseconds()))
	}
}

// CompetitionMatches runs the aggregation pipeline scoped to one
// competition: every student matched to it, filtered, with statistics over
// the whole filtered population and one page of records.
func (s *Service) CompetitionMatches(ctx context.Context, competitionID int64, f filter.Filter, page paging.Request) (types.CompetitionMatches, error) {
	metrics.RecordAggregationRequest("competition")

	pred, page, err := s.prepare(f, filter.CompetitionScope(competitionID), page)
	if err != nil {
		return types.CompetitionMatches{}, err
	}

	done := timeStage(stageFetch)
	comp, err := s.store.Competition(ctx, competitionID)
	if err != nil {
		done()
		return types.CompetitionMatches{}, fmt.Errorf("fetch competition %d: %w", competitionID, err)
	}
	rows, err := s.store.Matches(ctx, pred)
	done()
	if err != nil {
		return types.CompetitionMatches{}, fmt.Errorf("fetch matches for competition %d: %w", competitionID, err)
	}

	matches := transform(rows)

	// Mode B when the competition declares relevant skills, Mode A otherwise.
	statsDone := timeStage(stageStatistics)
	result := stats.Compute(matches, comp.RelevantSkills)
	statsDone()

	pageDone := timeStage(stagePagination)
	meta := paging.NewMeta(len(matches), page)
	window := paging.Slice(matches, page)
	pageDone()

	return types.CompetitionMatches{
		Data: types.CompetitionDetail{
			Competition: comp,
			Students:    window,
		},
		Statistics: result,
		Pagination: meta,
	}, nil
}

// StudentMatches runs the aggregation pipeline scoped to one student:
// every competition matched to them, filtered, with statistics over the
// whole filtered population and one page of records.
func (s *Service) StudentMatches(ctx context.Context, studentID int64, f filter.Filter, page paging.Request) (types.StudentMatches, error) {
	metrics.RecordAggregationRequest("student")

	pred, page, err := s.prepare(f, filter.StudentScope(studentID), page)
	if err != nil {
		return types.StudentMatches{}, err
	}

	done := timeStage(stageFetch)
	st, err := s.store.Student(ctx, studentID)
	if err != nil {
		done()
		return types.StudentMatches{}, fmt.Errorf("fetch student %d: %w", studentID, err)
	}
	rows, err := s.store.Matches(ctx, pred)
	done()
	if err != nil {
		return types.StudentMatches{}, fmt.Errorf("fetch matches for student %d: %w", studentID, err)
	}

	matches := transform(rows)

	statsDone := timeStage(stageStatistics)
	result := stats.Compute(matches, nil)
	statsDone()

	pageDone := timeStage(stagePagination)
	meta := paging.NewMeta(len(matches), page)
	window := paging.Slice(matches, page)
	pageDone()

	return types.StudentMatches{
		Data: types.StudentDetail{
			Student: st,
			Matches: window,
		},
		Statistics: result,
		Pagination: meta,
	}, nil
}

// prepare validates the filter, binds it to the scope and normalizes the
// page request. Runs before anything touches the store so invalid input
// never costs a fetch.
func (s *Service) prepare(f filter.Filter, scope filter.Predicate, page paging.Request) (filter.Predicate, paging.Request, error) {
	done := timeStage(stageFilter)
	defer done()

	pred, err := filter.Build(f, scope)
	if err != nil {
		return filter.Predicate{}, page, err
	}

	if page.Limit == 0 {
		page.Limit = s.defaultPageLimit
	}
	if page.Limit > s.maxPageLimit {
		page.Limit = s.maxPageLimit
	}
	if err := page.Validate(); err != nil {
		return filter.Predicate{}, page, err
	}
	return pred, page, nil
}

// transform converts raw store rows into the match records the statistics
// and pagination stages share. Rows missing the student snapshot or the
// recommendation are dropped; fetch order is preserved.
func transform(rows []repository.MatchRow) []model.MatchRecord {
	done := timeStage(stageTransform)
	defer done()

	out := make([]model.MatchRecord, 0, len(rows))
	for _, row := range rows {
		if row.Student == nil || row.Recommendation == nil {
			continue
		}
		out = append(out, model.MatchRecord{
			Student:        *row.Student,
			Recommendation: *row.Recommendation,
			SkillsProfile:  row.Skills,
		})
	}
	metrics.RecordMatchesAggregated(len(out))
	return out
}
