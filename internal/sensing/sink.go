package sensing

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// AsyncSink decouples a slow sink from the loop with a bounded queue. Reports arriving while
// the queue is full are dropped.
type AsyncSink struct {
	name    string
	sink    Sink
	queue   chan Report
	logger  *slog.Logger
	dropped atomic.Uint64

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewAsyncSink starts a worker forwarding queued reports to sink
func NewAsyncSink(name string, sink Sink, size int, logger *slog.Logger) *AsyncSink {
	if size <= 0 {
		size = 1
	}
	s := &AsyncSink{
		name:   name,
		sink:   sink,
		queue:  make(chan Report, size),
		logger: logger,
	}

	s.wg.Add(1)
	go s.run()
	return s
}

// Publish enqueues the report without blocking
func (s *AsyncSink) Publish(_ context.Context, report Report) error {
	select {
	case s.queue <- report:
	default:
		if n := s.dropped.Add(1); n == 1 || n%100 == 0 {
			s.logger.Warn("Sink queue full, dropping report", "sink", s.name, "dropped", n)
		}
	}
	return nil
}

// Name identifies the queue in logs and status output
func (s *AsyncSink) Name() string {
	return s.name
}

// Dropped returns how many reports were discarded
func (s *AsyncSink) Dropped() uint64 {
	return s.dropped.Load()
}

// Close drains the queue and waits for the worker to finish
func (s *AsyncSink) Close() {
	s.closeOnce.Do(func() { close(s.queue) })
	s.wg.Wait()
}

func (s *AsyncSink) run() {
	defer s.wg.Done()
	ctx := context.Background()

	for report := range s.queue {
		if err := s.sink.Publish(ctx, report); err != nil {
			s.logger.Warn("Sink failed to publish report", "sink", s.name, "cycle", report.Cycle, "error", err)
		}
	}
}
