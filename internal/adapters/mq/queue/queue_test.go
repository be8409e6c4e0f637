package queue_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/agonhq/agon/internal/adapters/mq/queue"
	"github.com/agonhq/agon/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func event(id string) queue.Event {
	return model.MatchEvent{
		EventID:        id,
		Student:        model.Student{ID: 1},
		Recommendation: model.Recommendation{ID: "rec-" + id, CompetitionID: 1, StudentID: 1, MatchScore: 0.5},
	}
}

func TestQueue_EnqueueDequeue(t *testing.T) {
	ctx := context.Background()

	Convey("Given a small queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(10), queue.WithBufferSize(10))

		Convey("When enqueuing events", func() {
			So(q.Enqueue(ctx, event("a")), ShouldBeTrue)
			So(q.Enqueue(ctx, event("b")), ShouldBeTrue)
			So(q.Len(ctx), ShouldEqual, 2)

			Convey("Then they dequeue in FIFO order", func() {
				ch := q.Dequeue(ctx)
				first := <-ch
				second := <-ch
				So(first.EventID, ShouldEqual, "a")
				So(second.EventID, ShouldEqual, "b")
			})
		})
	})
}

func TestQueue_Backpressure(t *testing.T) {
	ctx := context.Background()

	Convey("Given a queue at capacity", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(3), queue.WithBufferSize(3))
		for i := 0; i < 3; i++ {
			So(q.Enqueue(ctx, event(fmt.Sprintf("e%d", i))), ShouldBeTrue)
		}

		Convey("Then further enqueues are rejected, not blocked", func() {
			done := make(chan bool, 1)
			go func() { done <- q.Enqueue(ctx, event("overflow")) }()

			select {
			case ok := <-done:
				So(ok, ShouldBeFalse)
			case <-time.After(time.Second):
				t.Fatal("enqueue blocked on a full queue")
			}
		})
	})
}

func TestQueue_Close(t *testing.T) {
	ctx := context.Background()

	Convey("Given a queue with pending events", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(10), queue.WithBufferSize(10))
		So(q.Enqueue(ctx, event("late")), ShouldBeTrue)

		Convey("When the queue is closed", func() {
			So(q.Close(), ShouldBeNil)
			So(q.IsClosed(), ShouldBeTrue)

			Convey("Then enqueues are rejected", func() {
				So(q.Enqueue(ctx, event("x")), ShouldBeFalse)
			})

			Convey("Then consumers drain remaining events and the channel closes", func() {
				ch := q.Dequeue(ctx)
				e, ok := <-ch
				So(ok, ShouldBeTrue)
				So(e.EventID, ShouldEqual, "late")

				_, ok = <-ch
				So(ok, ShouldBeFalse)
			})

			Convey("Then closing twice is a no-op", func() {
				So(q.Close(), ShouldBeNil)
			})
		})
	})
}
