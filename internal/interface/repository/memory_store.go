package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"flightsched-service/internal/domain/entity"
	"flightsched-service/internal/domain/repository"
)

// MemoryShardStore is an in-process ShardStore for local runs and tests
type MemoryShardStore struct {
	mu         sync.RWMutex
	docs       map[string]*entity.FlightSchedule
	batchSizes []int
}

// NewMemoryShardStore creates an empty in-memory shard store
func NewMemoryShardStore() *MemoryShardStore {
	return &MemoryShardStore{docs: make(map[string]*entity.FlightSchedule)}
}

func (s *MemoryShardStore) Exists(_ context.Context, key entity.ShardKey) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.docs[key.Path()]
	return ok, nil
}

func (s *MemoryShardStore) CommitBatch(ctx context.Context, schedules []*entity.FlightSchedule) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sch := range schedules {
		cp := *sch
		s.docs[sch.Key().Path()] = &cp
	}
	s.batchSizes = append(s.batchSizes, len(schedules))

	return nil
}

func (s *MemoryShardStore) FindByShard(_ context.Context, route, date string) ([]*entity.FlightSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*entity.FlightSchedule
	for _, sch := range s.docs {
		if sch.Route() == route && sch.DepartureDate == date {
			cp := *sch
			out = append(out, &cp)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].DepartureTime < out[j].DepartureTime
	})

	return out, nil
}

// Paths lists every stored shard path
func (s *MemoryShardStore) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.docs))
	for p := range s.docs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// BatchSizes returns the size of every committed batch in commit order
func (s *MemoryShardStore) BatchSizes() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int(nil), s.batchSizes...)
}

// MemoryCollectionRequestRepository is an in-process CollectionRequestRepository
type MemoryCollectionRequestRepository struct {
	mu   sync.Mutex
	reqs map[string]*entity.CollectionRequest
}

func NewMemoryCollectionRequestRepository() *MemoryCollectionRequestRepository {
	return &MemoryCollectionRequestRepository{reqs: make(map[string]*entity.CollectionRequest)}
}

func (r *MemoryCollectionRequestRepository) Create(_ context.Context, req *entity.CollectionRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reqs[req.ID]; ok {
		return fmt.Errorf("collection request %s already exists", req.ID)
	}

	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now
	if req.Status == "" {
		req.Status = entity.RunPending
	}

	cp := *req
	r.reqs[req.ID] = &cp
	return nil
}

func (r *MemoryCollectionRequestRepository) FindByID(_ context.Context, id string) (*entity.CollectionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.reqs[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	cp := *req
	return &cp, nil
}

func (r *MemoryCollectionRequestRepository) UpdateStatus(_ context.Context, id, status, errorDetail string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.reqs[id]
	if !ok {
		return entity.ErrNotFound
	}
	if !entity.CanTransition(req.Status, status) {
		return fmt.Errorf("%w: %s -> %s", entity.ErrInvalidTransition, req.Status, status)
	}

	req.Status = status
	if errorDetail != "" {
		req.ErrorDetail = errorDetail
	}
	req.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryCollectionRequestRepository) UpdateProgress(_ context.Context, id string, p entity.RunProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.reqs[id]
	if !ok {
		return entity.ErrNotFound
	}

	req.TotalFlights = max(req.TotalFlights, p.TotalFlights)
	req.CollectedFlights = max(req.CollectedFlights, p.CollectedFlights)
	req.SkippedFlights = max(req.SkippedFlights, p.SkippedFlights)
	req.TotalWindows = max(req.TotalWindows, p.TotalWindows)
	req.CompletedWindows = max(req.CompletedWindows, p.CompletedWindows)
	req.FailedWindows = max(req.FailedWindows, p.FailedWindows)
	req.UpdatedAt = time.Now()
	return nil
}

var (
	_ repository.ShardStore                  = (*MemoryShardStore)(nil)
	_ repository.CollectionRequestRepository = (*MemoryCollectionRequestRepository)(nil)
)
