package repository

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/agonhq/agon/internal/domain/filter"
	"github.com/agonhq/agon/internal/domain/model"
	"github.com/agonhq/agon/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: recommendation CreatedAt DESC, then recommendation ID ASC.
// The BST comparator treats "less" as "ranks earlier", so an in-order
// traversal yields rows most recent first — the deterministic order the
// fetch stage promises for stable pagination downstream.

// matchRecord stores one recommendation row plus its skill profile.
type matchRecord struct {
	rec    model.Recommendation
	skills []model.SkillScore
}

// treap node, keyed by (createdAt, recommendation id).
type node struct {
	id        string
	createdAt int64 // unix nanoseconds
	prio      uint64
	left      *node
	right     *node
	size      int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less reports whether (aTS, aID) ranks earlier than (bTS, bID):
// newer first, ID ascending on ties.
func less(aTS int64, aID string, bTS int64, bID string) bool {
	if aTS != bTS {
		return aTS > bTS
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

// priorityFor derives a stable pseudo-random heap priority from the
// recommendation ID, keeping the treap balanced without a RNG.
func priorityFor(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

func insert(n *node, id string, createdAt int64) *node {
	if n == nil {
		return &node{id: id, createdAt: createdAt, prio: priorityFor(id), size: 1}
	}
	if less(createdAt, id, n.createdAt, n.id) {
		n.left = insert(n.left, id, createdAt)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, createdAt)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, createdAt int64) *node {
	if n == nil {
		return nil
	}
	if createdAt == n.createdAt && id == n.id {
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, createdAt)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, createdAt)
		}
	} else if less(createdAt, id, n.createdAt, n.id) {
		n.left = deleteNode(n.left, id, createdAt)
	} else {
		n.right = deleteNode(n.right, id, createdAt)
	}
	fix(n)
	return n
}

// MemStore is the in-memory Store used when no external record store is
// wired in. All maps and the treap are guarded by a single RWMutex; reads
// are pure and never mutate.
type MemStore struct {
	mu           sync.RWMutex
	root         *node
	byID         map[string]matchRecord
	students     map[int64]model.Student
	competitions map[int64]model.Competition
	closed       bool

	metricsInterval time.Duration
	wg              sync.WaitGroup
	stopChan        chan struct{}
}

// NewMemStore constructs an in-memory store with configuration options.
func NewMemStore(ctx context.Context, opts ...Option) *MemStore {
	s := &MemStore{
		byID:            make(map[string]matchRecord),
		students:        make(map[int64]model.Student),
		competitions:    make(map[int64]model.Competition),
		metricsInterval: time.Second,
		stopChan:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startMetricsUpdater(ctx)
	return s
}

// startMetricsUpdater publishes store size gauges at the configured interval.
func (s *MemStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				c := s.Stats(ctx)
				metrics.UpdateStoreStudents(c.Students)
				metrics.UpdateStoreCompetitions(c.Competitions)
				metrics.UpdateStoreMatches(c.Matches)
			}
		}
	}()
}

// Close stops the metrics updater and marks the store unavailable.
func (s *MemStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

// Competition implements Store.Competition.
func (s *MemStore) Competition(ctx context.Context, id int64) (model.Competition, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return model.Competition{}, ErrUnavailable
	}
	c, ok := s.competitions[id]
	if !ok {
		metrics.RecordErrorByComponent("store", "competition_not_found")
		return model.Competition{}, ErrNotFound
	}
	return c, nil
}

// Student implements Store.Student.
func (s *MemStore) Student(ctx context.Context, id int64) (model.Student, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return model.Student{}, ErrUnavailable
	}
	st, ok := s.students[id]
	if !ok {
		metrics.RecordErrorByComponent("store", "student_not_found")
		return model.Student{}, ErrNotFound
	}
	return st, nil
}

// Matches implements Store.Matches: an in-order traversal of the treap,
// filtering rows with the predicate as it goes. The caller's context is the
// only cancellation point of a request's fetch stage.
func (s *MemStore) Matches(ctx context.Context, p filter.Predicate) ([]MatchRow, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrUnavailable
	}

	out := make([]MatchRow, 0)
	s.collect(s.root, p, &out)
	return out, nil
}

// collect walks the treap in rank order appending matching rows.
func (s *MemStore) collect(n *node, p filter.Predicate, out *[]MatchRow) {
	if n == nil {
		return
	}
	s.collect(n.left, p, out)
	if mr, ok := s.byID[n.id]; ok {
		// mr and st are value copies, so rows never alias store memory.
		row := MatchRow{Recommendation: &mr.rec, Skills: mr.skills}
		if st, ok := s.students[mr.rec.StudentID]; ok {
			row.Student = &st
		}
		if p.Matches(row.Student, row.Recommendation) {
			*out = append(*out, row)
		}
	}
	s.collect(n.right, p, out)
}

// PutStudent implements Store.PutStudent.
func (s *MemStore) PutStudent(ctx context.Context, st model.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrUnavailable
	}
	s.students[st.ID] = st
	return nil
}

// PutCompetition implements Store.PutCompetition.
func (s *MemStore) PutCompetition(ctx context.Context, c model.Competition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrUnavailable
	}
	s.competitions[c.ID] = c
	return nil
}

// PutRecommendation implements Store.PutRecommendation.
func (s *MemStore) PutRecommendation(ctx context.Context, rec model.Recommendation, skills []model.SkillScore) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrUnavailable
	}
	s.putRecommendationLocked(rec, skills)
	return nil
}

func (s *MemStore) putRecommendationLocked(rec model.Recommendation, skills []model.SkillScore) {
	if old, ok := s.byID[rec.ID]; ok {
		s.root = deleteNode(s.root, rec.ID, old.rec.CreatedAt.UnixNano())
	}
	s.byID[rec.ID] = matchRecord{rec: rec, skills: skills}
	s.root = insert(s.root, rec.ID, rec.CreatedAt.UnixNano())
}

// ApplyEvent implements Store.ApplyEvent. Student snapshot and
// recommendation row land under one lock so a concurrent read never sees
// the recommendation without its student.
func (s *MemStore) ApplyEvent(ctx context.Context, e model.MatchEvent) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrUnavailable
	}
	s.students[e.Student.ID] = e.Student
	s.putRecommendationLocked(e.Recommendation, e.SkillsProfile)
	return nil
}

// Stats implements Store.Stats.
func (s *MemStore) Stats(ctx context.Context) Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Counts{
		Students:     len(s.students),
		Competitions: len(s.competitions),
		Matches:      len(s.byID),
	}
}
