// Package types contains response shapes shared between the application
// service and the HTTP layer.
package types

import (
	"github.com/agonhq/agon/internal/domain/model"
	"github.com/agonhq/agon/internal/domain/paging"
	"github.com/agonhq/agon/internal/domain/stats"
)

// CompetitionDetail is the data section of a per-competition view: the
// competition descriptor plus the page of match records.
type CompetitionDetail struct {
	Competition model.Competition   `json:"competition"`
	Students    []model.MatchRecord `json:"students"`
}

// StudentDetail is the data section of a per-student view: the student
// descriptor plus the page of match records across competitions.
type StudentDetail struct {
	Student model.Student       `json:"student"`
	Matches []model.MatchRecord `json:"matches"`
}

// CompetitionMatches is the full per-competition response. Statistics always
// cover the entire filtered population, not the returned page.
type CompetitionMatches struct {
	Data       CompetitionDetail `json:"data"`
	Statistics stats.Result      `json:"statistics"`
	Pagination paging.Meta       `json:"pagination"`
}

// StudentMatches is the full per-student response.
type StudentMatches struct {
	Data       StudentDetail `json:"data"`
	Statistics stats.Result  `json:"statistics"`
	Pagination paging.Meta   `json:"pagination"`
}
