package queue_test

import (
	"context"
	"testing"
	"time"

	queue "github.com/armandov/sellerpulse/internal/adapters/mq/queue"
	model "github.com/armandov/sellerpulse/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func dealEvent(id string) queue.Event {
	return queue.Event{ID: id, Kind: model.KindDeal, Deal: &model.Deal{ID: id, SellerID: "s1"}}
}

func TestInMemoryQueue(t *testing.T) {
	convey.Convey("Given a small bounded queue", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(2))

		convey.Convey("When enqueuing within capacity", func() {
			convey.So(q.Enqueue(ctx, dealEvent("e1")), convey.ShouldBeTrue)
			convey.So(q.Enqueue(ctx, dealEvent("e2")), convey.ShouldBeTrue)
			convey.So(q.Len(ctx), convey.ShouldEqual, 2)

			convey.Convey("Then a further enqueue is rejected", func() {
				convey.So(q.Enqueue(ctx, dealEvent("e3")), convey.ShouldBeFalse)
			})

			convey.Convey("Then dequeue delivers events in order", func() {
				ch := q.Dequeue(ctx)
				first := <-ch
				second := <-ch
				convey.So(first.ID, convey.ShouldEqual, "e1")
				convey.So(second.ID, convey.ShouldEqual, "e2")
			})
		})

		convey.Convey("When the queue is closed", func() {
			convey.So(q.Enqueue(ctx, dealEvent("e1")), convey.ShouldBeTrue)
			convey.So(q.Close(), convey.ShouldBeNil)

			convey.Convey("Then enqueue is rejected and close is idempotent", func() {
				convey.So(q.Enqueue(ctx, dealEvent("e2")), convey.ShouldBeFalse)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
				convey.So(q.Close(), convey.ShouldBeNil)
			})

			convey.Convey("Then dequeue drains buffered events and closes", func() {
				ch := q.Dequeue(ctx)
				e, ok := <-ch
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(e.ID, convey.ShouldEqual, "e1")

				select {
				case _, ok := <-ch:
					convey.So(ok, convey.ShouldBeFalse)
				case <-time.After(time.Second):
					t.Fatal("dequeue channel did not close")
				}
			})
		})

		convey.Convey("When the consumer context is cancelled", func() {
			convey.So(q.Enqueue(ctx, dealEvent("e9")), convey.ShouldBeTrue)
			cancelCtx, cancel := context.WithCancel(ctx)
			ch := q.Dequeue(cancelCtx)
			cancel()

			convey.Convey("Then the dequeue channel shuts down", func() {
				// At most the in-flight event may still be
				// delivered before the channel closes.
				deadline := time.After(time.Second)
				for {
					select {
					case _, ok := <-ch:
						if !ok {
							return
						}
					case <-deadline:
						t.Fatal("dequeue channel did not close after cancel")
					}
				}
			})
		})
	})
}
