package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/agonhq/agon/internal/adapters/http/api"
	repository "github.com/agonhq/agon/internal/adapters/repository"
	"github.com/agonhq/agon/internal/domain/filter"
	"github.com/agonhq/agon/internal/domain/model"
	"github.com/agonhq/agon/internal/domain/paging"
	"github.com/agonhq/agon/internal/domain/stats"
	"github.com/agonhq/agon/internal/domain/types"
)

// mockDeps implements api.Dependencies for handler tests.
type mockDeps struct {
	seen map[string]bool

	enqueueSuccess bool
	enqueued       []model.MatchEvent

	stored []model.Competition
	putErr error

	competitionOut types.CompetitionMatches
	competitionErr error
	studentOut     types.StudentMatches
	studentErr     error

	lastFilter filter.Filter
	lastPage   paging.Request
}

func (m *mockDeps) SeenAndRecord(_ context.Context, id string) bool {
	if m.seen == nil {
		m.seen = make(map[string]bool)
	}
	if m.seen[id] {
		return true
	}
	m.seen[id] = true
	return false
}

func (m *mockDeps) Unrecord(_ context.Context, id string) {
	delete(m.seen, id)
}

func (m *mockDeps) Size() int64 {
	return int64(len(m.seen))
}

func (m *mockDeps) Enqueue(_ context.Context, e model.MatchEvent) bool {
	if !m.enqueueSuccess {
		return false
	}
	m.enqueued = append(m.enqueued, e)
	return true
}

func (m *mockDeps) PutCompetition(_ context.Context, c model.Competition) error {
	m.stored = append(m.stored, c)
	return m.putErr
}

func (m *mockDeps) CompetitionMatches(_ context.Context, _ int64, f filter.Filter, page paging.Request) (types.CompetitionMatches, error) {
	m.lastFilter = f
	m.lastPage = page
	return m.competitionOut, m.competitionErr
}

func (m *mockDeps) StudentMatches(_ context.Context, _ int64, f filter.Filter, page paging.Request) (types.StudentMatches, error) {
	m.lastFilter = f
	m.lastPage = page
	return m.studentOut, m.studentErr
}

type mockStats struct{}

func (mockStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newTestMux(deps *mockDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, mockStats{}).Register(context.Background(), mux)
	return mux
}

func eventBody() string {
	return `{
		"eventId": "evt-1",
		"student": {"id": 7, "name": "Dana"},
		"recommendation": {"id": "rec-1", "competitionId": 42, "studentId": 7, "matchScore": 0.8}
	}`
}

func TestCompetitionMatchesEndpoint(t *testing.T) {
	Convey("Given the API routes", t, func() {
		deps := &mockDeps{
			competitionOut: types.CompetitionMatches{
				Data: types.CompetitionDetail{
					Competition: model.Competition{ID: 42, Title: "Campus AI Hackathon"},
				},
				Statistics: stats.Result{TotalStudents: 3},
				Pagination: paging.Meta{Total: 3, Page: 1, Limit: 10, TotalPages: 1},
			},
		}
		mux := newTestMux(deps)

		Convey("When requesting a competition's matches", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/competitions/42/matches", nil))

			Convey("Then the envelope has data, statistics and pagination", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var out map[string]json.RawMessage
				So(json.Unmarshal(rec.Body.Bytes(), &out), ShouldBeNil)
				So(out, ShouldContainKey, "data")
				So(out, ShouldContainKey, "statistics")
				So(out, ShouldContainKey, "pagination")
			})
		})

		Convey("When the query carries filters and paging", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
				"/competitions/42/matches?page=2&limit=5&minMatchScore=0.7&keywords=dana", nil))

			Convey("Then they are decoded and passed through", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(deps.lastPage, ShouldResemble, paging.Request{Page: 2, Limit: 5})
				So(deps.lastFilter.MinMatchScore, ShouldNotBeNil)
				So(*deps.lastFilter.MinMatchScore, ShouldEqual, 0.7)
				So(deps.lastFilter.Keywords, ShouldEqual, "dana")
			})
		})

		Convey("When the path id is malformed", func() {
			for _, path := range []string{
				"/competitions/abc/matches",
				"/competitions//matches",
				"/competitions/42/other",
				"/competitions/-3/matches",
			} {
				rec := httptest.NewRecorder()
				mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When a query parameter cannot coerce", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/competitions/42/matches?page=two", nil))

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the competition does not exist", func() {
			deps.competitionErr = repository.ErrNotFound
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/competitions/42/matches", nil))

			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the filter is rejected downstream", func() {
			deps.competitionErr = filter.ErrInvalidFilter
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/competitions/42/matches", nil))

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the store is unavailable", func() {
			deps.competitionErr = repository.ErrUnavailable
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/competitions/42/matches", nil))

			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("When the method is not GET", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/competitions/42/matches", nil))

			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestStudentMatchesEndpoint(t *testing.T) {
	Convey("Given the API routes", t, func() {
		deps := &mockDeps{
			studentOut: types.StudentMatches{
				Data:       types.StudentDetail{Student: model.Student{ID: 7, Name: "Dana"}},
				Pagination: paging.Meta{Page: 1, Limit: 10},
			},
		}
		mux := newTestMux(deps)

		Convey("When requesting a student's matches", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/students/7/matches", nil))

			Convey("Then the response is the student envelope", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var out types.StudentMatches
				So(json.Unmarshal(rec.Body.Bytes(), &out), ShouldBeNil)
				So(out.Data.Student.Name, ShouldEqual, "Dana")
			})
		})

		Convey("When the student does not exist", func() {
			deps.studentErr = repository.ErrNotFound
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/students/7/matches", nil))

			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the pagination is invalid downstream", func() {
			deps.studentErr = paging.ErrInvalidPage
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/students/7/matches?page=0", nil))

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestIngestEndpoint(t *testing.T) {
	Convey("Given the API routes", t, func() {
		deps := &mockDeps{enqueueSuccess: true}
		mux := newTestMux(deps)

		Convey("When posting a valid match event", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/matches", strings.NewReader(eventBody())))

			Convey("Then it is accepted and enqueued", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)
				So(deps.enqueued, ShouldHaveLength, 1)
				So(deps.enqueued[0].EventID, ShouldEqual, "evt-1")
				So(deps.enqueued[0].Recommendation.CreatedAt.IsZero(), ShouldBeFalse)
			})
		})

		Convey("When posting the same event twice", func() {
			first := httptest.NewRecorder()
			mux.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/matches", strings.NewReader(eventBody())))
			second := httptest.NewRecorder()
			mux.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/matches", strings.NewReader(eventBody())))

			Convey("Then the replay is acknowledged as a duplicate", func() {
				So(first.Code, ShouldEqual, http.StatusAccepted)
				So(second.Code, ShouldEqual, http.StatusOK)
				var ack map[string]any
				So(json.Unmarshal(second.Body.Bytes(), &ack), ShouldBeNil)
				So(ack["duplicate"], ShouldBeTrue)
				So(deps.enqueued, ShouldHaveLength, 1)
			})
		})

		Convey("When the body is not JSON", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/matches", strings.NewReader("not json")))

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the event fails validation", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/matches", strings.NewReader(`{"eventId":""}`)))

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the queue applies backpressure", func() {
			deps.enqueueSuccess = false
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/matches", strings.NewReader(eventBody())))

			Convey("Then the caller is told to retry later", func() {
				So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
				var out map[string]string
				So(json.Unmarshal(rec.Body.Bytes(), &out), ShouldBeNil)
				So(out["code"], ShouldEqual, "backpressure")
			})
		})

		Convey("When the method is GET", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/matches", nil))

			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestPutCompetitionEndpoint(t *testing.T) {
	Convey("Given the API routes", t, func() {
		deps := &mockDeps{}
		mux := newTestMux(deps)

		Convey("When posting a valid competition", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/competitions",
				strings.NewReader(`{"id": 42, "title": "Campus AI Hackathon", "relevantSkills": ["AI"]}`)))

			Convey("Then it is stored", func() {
				So(rec.Code, ShouldEqual, http.StatusCreated)
				So(deps.stored, ShouldHaveLength, 1)
				So(deps.stored[0].Title, ShouldEqual, "Campus AI Hackathon")
			})
		})

		Convey("When the competition is missing its title", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/competitions",
				strings.NewReader(`{"id": 42}`)))

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the store is unavailable", func() {
			deps.putErr = repository.ErrUnavailable
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/competitions",
				strings.NewReader(`{"id": 42, "title": "Campus AI Hackathon"}`)))

			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

func TestStatsEndpoint(t *testing.T) {
	Convey("Given the API routes", t, func() {
		mux := newTestMux(&mockDeps{})

		Convey("When requesting /stats", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

			Convey("Then the operational stats are returned as JSON", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var out map[string]any
				So(json.Unmarshal(rec.Body.Bytes(), &out), ShouldBeNil)
				So(out["started"], ShouldBeTrue)
			})
		})
	})
}

func TestHealthEndpoint(t *testing.T) {
	Convey("Given the API routes", t, func() {
		mux := newTestMux(&mockDeps{})

		Convey("When requesting /healthz", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			Convey("Then the metrics exposition is served", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "agon_")
			})
		})
	})
}
