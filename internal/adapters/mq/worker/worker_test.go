package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/admitcalc/internal/adapters/mq/queue"
	worker "github.com/okian/admitcalc/internal/adapters/mq/worker"
	logging "github.com/okian/admitcalc/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockSink struct {
	mu     sync.Mutex
	data   map[string]string
	order  []string
	errFor map[string]error
}

func newMockSink() *mockSink {
	return &mockSink{data: map[string]string{}, errFor: map[string]error{}}
}

func (m *mockSink) Put(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errFor[key]; err != nil {
		return err
	}
	m.data[key] = string(value)
	m.order = append(m.order, key)
	return nil
}

func (m *mockSink) get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *mockSink) writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

func TestFlusher(t *testing.T) {
	convey.Convey("Given a running flusher over an in-memory queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		sink := newMockSink()
		f := worker.NewFlusher(q, sink, worker.WithLogger(logging.Discard()))
		ctx, cancel := context.WithCancel(context.Background())
		go f.Run(ctx)
		convey.Reset(cancel)

		convey.Convey("When the same key is written several times and flushed", func() {
			for _, v := range []string{"1", "2", "3"} {
				convey.So(q.Enqueue(ctx, queue.Write{Key: "k", Record: "test", Value: []byte(v)}), convey.ShouldBeTrue)
			}
			convey.So(f.Flush(ctx), convey.ShouldBeNil)

			convey.Convey("Then the last write wins", func() {
				v, ok := sink.get("k")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(v, convey.ShouldEqual, "3")
				convey.So(sink.writes(), convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When a write fails", func() {
			sink.mu.Lock()
			sink.errFor["bad"] = errors.New("disk full")
			sink.mu.Unlock()
			q.Enqueue(ctx, queue.Write{Key: "bad", Record: "test", Value: []byte("x")})
			q.Enqueue(ctx, queue.Write{Key: "good", Record: "test", Value: []byte("y")})
			convey.So(f.Flush(ctx), convey.ShouldBeNil)

			convey.Convey("Then later writes still go through", func() {
				_, bad := sink.get("bad")
				convey.So(bad, convey.ShouldBeFalse)
				v, _ := sink.get("good")
				convey.So(v, convey.ShouldEqual, "y")
			})
		})

		convey.Convey("When a write carries a completion channel", func() {
			w := queue.Write{Key: "k2", Record: "test", Value: []byte("v"), Done: make(chan struct{})}
			q.Enqueue(ctx, w)

			convey.Convey("Then it is closed once the write is applied", func() {
				select {
				case <-w.Done:
				case <-time.After(time.Second):
					convey.So("write not applied", convey.ShouldBeEmpty)
				}
				v, _ := sink.get("k2")
				convey.So(v, convey.ShouldEqual, "v")
			})
		})

		convey.Convey("When shutting down with pending writes", func() {
			for i := 0; i < 10; i++ {
				q.Enqueue(ctx, queue.Write{Key: "p", Record: "test", Value: []byte{byte('0' + i)}})
			}
			shutdownCtx, done := context.WithTimeout(context.Background(), time.Second)
			defer done()
			err := f.Shutdown(shutdownCtx)

			convey.Convey("Then every pending write is drained first", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(sink.writes(), convey.ShouldEqual, 10)
				v, _ := sink.get("p")
				convey.So(v, convey.ShouldEqual, "9")
			})

			convey.Convey("And flushing afterwards fails", func() {
				convey.So(f.Flush(context.Background()), convey.ShouldNotBeNil)
			})
		})
	})
}

func TestFlusher_FlushTimeout(t *testing.T) {
	convey.Convey("Given a flusher that is not running", t, func() {
		q := queue.NewInMemoryQueue()
		f := worker.NewFlusher(q, newMockSink(), worker.WithLogger(logging.Discard()), worker.WithName("idle"))

		convey.Convey("When flushing with a deadline", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer cancel()
			err := f.Flush(ctx)

			convey.Convey("Then the deadline is reported", func() {
				convey.So(errors.Is(err, context.DeadlineExceeded), convey.ShouldBeTrue)
			})
		})
	})
}
