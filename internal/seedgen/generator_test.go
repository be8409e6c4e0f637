package seedgen

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerate(t *testing.T) {
	Convey("Given a generator configuration", t, func() {
		cfg := &Config{NumStudents: 50, NumCompetitions: 4, Seed: 7}

		Convey("When generating a population", func() {
			p := Generate(cfg)

			Convey("Then the cohort has the requested shape", func() {
				So(p.Students, ShouldHaveLength, 50)
				So(p.Competitions, ShouldHaveLength, 4)
				So(len(p.Events), ShouldBeGreaterThanOrEqualTo, 50)
				So(len(p.Events), ShouldBeLessThanOrEqualTo, 150)
			})

			Convey("Then every event is valid and references the cohort", func() {
				compIDs := make(map[int64]bool)
				for _, c := range p.Competitions {
					compIDs[c.ID] = true
				}
				for _, e := range p.Events {
					So(e.Validate(), ShouldBeNil)
					So(compIDs[e.Recommendation.CompetitionID], ShouldBeTrue)
					So(e.Recommendation.MatchScore, ShouldBeBetweenOrEqual, 0, 1)
				}
			})

			Convey("Then a student is matched to each competition at most once", func() {
				seen := make(map[[2]int64]bool)
				for _, e := range p.Events {
					key := [2]int64{e.Student.ID, e.Recommendation.CompetitionID}
					So(seen[key], ShouldBeFalse)
					seen[key] = true
				}
			})
		})

		Convey("When generating twice with the same seed", func() {
			a := Generate(cfg)
			b := Generate(cfg)

			Convey("Then scores and cohort structure repeat exactly", func() {
				So(len(a.Events), ShouldEqual, len(b.Events))
				So(a.Students, ShouldResemble, b.Students)
				for i := range a.Events {
					So(a.Events[i].EventID, ShouldEqual, b.Events[i].EventID)
					So(a.Events[i].Recommendation.MatchScore, ShouldEqual, b.Events[i].Recommendation.MatchScore)
					So(a.Events[i].Recommendation.CompetitionID, ShouldEqual, b.Events[i].Recommendation.CompetitionID)
				}
			})
		})

		Convey("When generating with different seeds", func() {
			a := Generate(&Config{NumStudents: 50, NumCompetitions: 4, Seed: 1})
			b := Generate(&Config{NumStudents: 50, NumCompetitions: 4, Seed: 2})

			Convey("Then the populations differ", func() {
				So(a.Students, ShouldNotResemble, b.Students)
			})
		})
	})
}

func TestMatchScoreBands(t *testing.T) {
	Convey("Given a large sample of generated scores", t, func() {
		p := Generate(&Config{NumStudents: 500, NumCompetitions: 3, Seed: 11})

		var excellent, good, fair, poor int
		for _, e := range p.Events {
			switch s := e.Recommendation.MatchScore; {
			case s >= 0.8:
				excellent++
			case s >= 0.6:
				good++
			case s >= 0.4:
				fair++
			default:
				poor++
			}
		}

		Convey("Then every band is populated", func() {
			So(excellent, ShouldBeGreaterThan, 0)
			So(good, ShouldBeGreaterThan, 0)
			So(fair, ShouldBeGreaterThan, 0)
			So(poor, ShouldBeGreaterThan, 0)
		})
	})
}
