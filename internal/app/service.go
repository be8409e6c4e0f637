// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	eventqueue "github.com/agonhq/agon/internal/adapters/mq/queue"
	workerpool "github.com/agonhq/agon/internal/adapters/mq/worker"
	repository "github.com/agonhq/agon/internal/adapters/repository"
	"github.com/agonhq/agon/internal/domain/dedupe"
	"github.com/agonhq/agon/internal/domain/model"
	"github.com/agonhq/agon/pkg/logger"
	"github.com/agonhq/agon/pkg/metrics"
)

// Service wires the record store, the ingestion path and the aggregation
// pipeline behind the interfaces the HTTP API depends on.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	deduper    dedupe.Deduper
	eventQueue eventqueue.Queue
	workerPool *workerpool.Pool

	// Configuration
	workerCount      int
	queueSize        int
	dedupeSize       int
	defaultPageLimit int
	maxPageLimit     int

	// State
	started bool
	stopCh  chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithPageLimits sets the default and maximum page sizes used when
// normalizing pagination requests.
func WithPageLimits(def, max int) Option {
	return func(s *Service) {
		if def > 0 {
			s.defaultPageLimit = def
		}
		if max > 0 {
			s.maxPageLimit = max
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore injects a record store, replacing the default in-memory one.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:      runtime.NumCPU() * 4,
		queueSize:        100_000,
		dedupeSize:       500_000,
		defaultPageLimit: 10,
		maxPageLimit:     100,
		stopCh:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting aggregation service...")

	if s.store == nil {
		s.store = repository.NewMemStore(ctx)
		s.logger.Info(ctx, "using in-memory match store")
	}
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.eventQueue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
		eventqueue.WithBufferSize(s.queueSize),
	)

	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, s.store)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "aggregation service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping aggregation service...")

	if s.workerPool != nil {
		s.workerPool.Stop()
	}
	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	if q, ok := s.eventQueue.(*eventqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "aggregation service stopped")
}

// SeenAndRecord atomically checks if an event id was seen and records it if
// not. Returns true if the event was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordEventDuplicate()
	}
	return seen
}

// Unrecord removes an event ID from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Enqueue submits a validated match event for asynchronous processing.
// Returns false when the queue rejected the event; in that case the event
// is unrecorded so the caller may retry it later.
func (s *Service) Enqueue(ctx context.Context, e model.MatchEvent) bool {
	ok := s.eventQueue.Enqueue(ctx, e)
	if !ok {
		s.deduper.Unrecord(ctx, e.EventID)
		s.logger.Warn(ctx, "queue rejected event",
			logger.String("eventID", e.EventID),
		)
		return false
	}
	metrics.UpdateQueueSize(s.eventQueue.Len(ctx))
	return true
}

// PutCompetition upserts a competition descriptor into the store.
func (s *Service) PutCompetition(ctx context.Context, c model.Competition) error {
	if err := s.store.PutCompetition(ctx, c); err != nil {
		return fmt.Errorf("store competition %d: %w", c.ID, err)
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	out := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.eventQueue.Len(ctx)
		counts := s.store.Stats(ctx)

		out["queueLength"] = queueLen
		out["dedupeEntries"] = s.deduper.Size()
		out["totalStudents"] = counts.Students
		out["totalCompetitions"] = counts.Competitions
		out["totalMatches"] = counts.Matches

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateStoreStudents(counts.Students)
		metrics.UpdateStoreCompetitions(counts.Competitions)
		metrics.UpdateStoreMatches(counts.Matches)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return out
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
