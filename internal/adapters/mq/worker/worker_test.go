package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/agonhq/agon/internal/adapters/mq/queue"
	"github.com/agonhq/agon/internal/domain/model"
	"github.com/agonhq/agon/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type recordingApplier struct {
	mu     sync.Mutex
	events []model.MatchEvent
	err    error
}

func (a *recordingApplier) ApplyEvent(_ context.Context, e model.MatchEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.events = append(a.events, e)
	return nil
}

func (a *recordingApplier) applied() []model.MatchEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.MatchEvent, len(a.events))
	copy(out, a.events)
	return out
}

func validEvent(id string) model.MatchEvent {
	return model.MatchEvent{
		EventID: id,
		Student: model.Student{ID: 7, Name: "Dana"},
		Recommendation: model.Recommendation{
			ID:            "rec-" + id,
			CompetitionID: 42,
			StudentID:     7,
			Rank:          1,
			MatchScore:    0.85,
			CreatedAt:     time.Now(),
		},
		SkillsProfile: []model.SkillScore{{Name: "AI", Score: 0.9}},
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWorker_ProcessEvent(t *testing.T) {
	Convey("Given a worker over an in-memory queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(16), queue.WithBufferSize(16))
		applier := &recordingApplier{}
		w := NewWorker(q, applier)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		Convey("When a valid event is enqueued", func() {
			So(q.Enqueue(ctx, validEvent("evt-1")), ShouldBeTrue)

			Convey("Then the applier receives it", func() {
				waitFor(t, func() bool { return len(applier.applied()) == 1 })
				So(applier.applied()[0].EventID, ShouldEqual, "evt-1")
			})
		})

		Convey("When an invalid event is enqueued", func() {
			So(q.Enqueue(ctx, model.MatchEvent{EventID: "evt-bad"}), ShouldBeTrue)
			So(q.Enqueue(ctx, validEvent("evt-2")), ShouldBeTrue)

			Convey("Then it is dropped and later events still apply", func() {
				waitFor(t, func() bool { return len(applier.applied()) == 1 })
				So(applier.applied()[0].EventID, ShouldEqual, "evt-2")
			})
		})

		Convey("When shutdown is requested", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()

			So(w.Shutdown(shutdownCtx), ShouldBeNil)
		})

		Reset(func() {
			_ = q.Close()
		})
	})
}

func TestWorker_ApplierFailure(t *testing.T) {
	Convey("Given an applier that always fails", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(16), queue.WithBufferSize(16))
		applier := &recordingApplier{err: errors.New("store down")}
		w := NewWorker(q, applier)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		Convey("When an event is processed directly", func() {
			err := w.processEvent(ctx, validEvent("evt-1"))

			Convey("Then the error wraps the applier failure", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "store down")
			})
		})

		Reset(func() {
			_ = q.Close()
		})
	})
}

func TestPool(t *testing.T) {
	Convey("Given a pool of workers", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(64), queue.WithBufferSize(64))
		applier := &recordingApplier{}
		p := NewPool(3, q, applier)

		So(p.Size(), ShouldEqual, 3)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		p.Start(ctx)

		Convey("When several events are enqueued", func() {
			for i := 0; i < 10; i++ {
				So(q.Enqueue(ctx, validEvent("evt-"+string(rune('a'+i)))), ShouldBeTrue)
			}

			Convey("Then all of them are applied", func() {
				waitFor(t, func() bool { return len(applier.applied()) == 10 })
			})
		})

		Convey("When the pool is stopped", func() {
			p.Stop()

			Convey("Then a second stop is a no-op", func() {
				p.Stop()
			})
		})

		Reset(func() {
			_ = q.Close()
			p.Stop()
		})
	})
}

func TestNewPool_DefaultSize(t *testing.T) {
	Convey("Given a pool created with a non-positive worker count", t, func() {
		q := queue.NewInMemoryQueue()
		p := NewPool(0, q, &recordingApplier{})

		Convey("Then it falls back to a CPU-derived size", func() {
			So(p.Size(), ShouldBeGreaterThan, 0)
		})

		Reset(func() {
			_ = q.Close()
			p.Stop()
		})
	})
}
