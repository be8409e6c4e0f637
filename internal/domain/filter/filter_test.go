package filter_test

import (
	"errors"
	"testing"

	"github.com/agonhq/agon/internal/domain/filter"
	"github.com/agonhq/agon/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func i64(v int64) *int64     { return &v }
func i(v int) *int           { return &v }
func f64(v float64) *float64 { return &v }

func TestFilter_Build(t *testing.T) {
	Convey("Given an empty filter", t, func() {
		p, err := filter.Build(filter.Filter{}, filter.CompetitionScope(5))

		Convey("Then the predicate should stay scope-only", func() {
			So(err, ShouldBeNil)
			So(p.Rule, ShouldBeEmpty)
			So(*p.CompetitionID, ShouldEqual, 5)
		})
	})

	Convey("Given a filter with every field set", t, func() {
		f := filter.Filter{
			StudyProgramID: i64(3),
			EntryYear:      i(2022),
			MinMatchScore:  f64(0.5),
			Keywords:       "aliya",
		}
		p, err := filter.Build(f, filter.CompetitionScope(5))

		Convey("Then only the highest-priority rule should bind", func() {
			So(err, ShouldBeNil)
			So(p.Rule, ShouldEqual, filter.RuleStudyProgram)
			So(p.StudyProgramID, ShouldNotBeNil)
			So(p.EntryYear, ShouldBeNil)
			So(p.MinMatchScore, ShouldBeNil)
			So(p.Keywords, ShouldBeEmpty)
		})
	})

	Convey("Given only lower-priority fields", t, func() {
		p, err := filter.Build(filter.Filter{Keywords: "  st-42 "}, filter.StudentScope(9))

		Convey("Then the keywords rule should bind, trimmed", func() {
			So(err, ShouldBeNil)
			So(p.Rule, ShouldEqual, filter.RuleKeywords)
			So(p.Keywords, ShouldEqual, "st-42")
		})
	})

	Convey("Given an out-of-range min score", t, func() {
		_, err := filter.Build(filter.Filter{MinMatchScore: f64(1.5)}, filter.CompetitionScope(5))

		Convey("Then Build should fail with ErrInvalidFilter", func() {
			So(err, ShouldNotBeNil)
			So(errors.Is(err, filter.ErrInvalidFilter), ShouldBeTrue)
		})
	})
}

func TestPredicate_Matches(t *testing.T) {
	st := &model.Student{
		ID:            7,
		Name:          "Aliya Tulegenova",
		StudentNumber: "ST-0042",
		StudyProgram:  model.Program{ID: 3, Name: "Computer Science"},
		EntryYear:     2022,
	}
	rec := &model.Recommendation{ID: "r1", CompetitionID: 5, StudentID: 7, MatchScore: 0.61}

	Convey("Given a competition-scoped predicate with no rule", t, func() {
		p, _ := filter.Build(filter.Filter{}, filter.CompetitionScope(5))

		Convey("Then rows for that competition should match", func() {
			So(p.Matches(st, rec), ShouldBeTrue)
		})

		Convey("And rows for other competitions should not", func() {
			other := *rec
			other.CompetitionID = 6
			So(p.Matches(st, &other), ShouldBeFalse)
		})

		Convey("And rows with no recommendation should not", func() {
			So(p.Matches(st, nil), ShouldBeFalse)
		})
	})

	Convey("Given a study-program rule", t, func() {
		p, _ := filter.Build(filter.Filter{StudyProgramID: i64(3)}, filter.CompetitionScope(5))

		Convey("Then matching program passes and others fail", func() {
			So(p.Matches(st, rec), ShouldBeTrue)
			otherSt := *st
			otherSt.StudyProgram.ID = 4
			So(p.Matches(&otherSt, rec), ShouldBeFalse)
		})

		Convey("And a row with no student fails", func() {
			So(p.Matches(nil, rec), ShouldBeFalse)
		})
	})

	Convey("Given a min-score rule", t, func() {
		p, _ := filter.Build(filter.Filter{MinMatchScore: f64(0.6)}, filter.CompetitionScope(5))

		Convey("Then the threshold is inclusive", func() {
			So(p.Matches(st, rec), ShouldBeTrue)
			low := *rec
			low.MatchScore = 0.59
			So(p.Matches(st, &low), ShouldBeFalse)
		})
	})

	Convey("Given a keywords rule", t, func() {
		p, _ := filter.Build(filter.Filter{Keywords: "st-00"}, filter.CompetitionScope(5))

		Convey("Then it matches name or student number case-insensitively", func() {
			So(p.Matches(st, rec), ShouldBeTrue)

			pName, _ := filter.Build(filter.Filter{Keywords: "ALIYA"}, filter.CompetitionScope(5))
			So(pName.Matches(st, rec), ShouldBeTrue)

			pMiss, _ := filter.Build(filter.Filter{Keywords: "bolat"}, filter.CompetitionScope(5))
			So(pMiss.Matches(st, rec), ShouldBeFalse)
		})
	})

	Convey("Given both study program and keywords on a disagreeing fixture", t, func() {
		// Keywords alone would reject this student; the higher-priority
		// study-program rule must win and accept them.
		p, _ := filter.Build(filter.Filter{
			StudyProgramID: i64(3),
			Keywords:       "no-such-student",
		}, filter.CompetitionScope(5))

		Convey("Then the study-program rule decides", func() {
			So(p.Rule, ShouldEqual, filter.RuleStudyProgram)
			So(p.Matches(st, rec), ShouldBeTrue)
		})
	})
}
