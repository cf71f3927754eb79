package repository

import (
	"context"
	"strings"
	"sync"

	"semainier/internal/clipboard"
	"semainier/internal/planning"
)

// MemoryRepository keeps everything in process memory. It backs tests and
// serves as the failover target when redis is unreachable.
type MemoryRepository struct {
	mu        sync.RWMutex
	weeks     map[string]planning.WeekSnapshot
	employees map[string][]string
	buffers   map[string]*clipboard.Buffer
	gridSlots map[string][]string
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		weeks:     make(map[string]planning.WeekSnapshot),
		employees: make(map[string][]string),
		buffers:   make(map[string]*clipboard.Buffer),
		gridSlots: make(map[string][]string),
	}
}

func (r *MemoryRepository) GetWeek(_ context.Context, shop, weekStart string) (planning.WeekSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, ok := r.weeks[weekKey(shop, weekStart)]
	if !ok {
		return make(planning.WeekSnapshot), nil
	}
	return snap.Clone(), nil
}

func (r *MemoryRepository) PutWeek(_ context.Context, shop, weekStart string, snap planning.WeekSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.weeks[weekKey(shop, weekStart)] = snap.Clone()
	return nil
}

func (r *MemoryRepository) GetEmployees(_ context.Context, shop string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.employees[shop]...), nil
}

func (r *MemoryRepository) PutEmployees(_ context.Context, shop string, employees []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.employees[shop] = append([]string(nil), employees...)
	return nil
}

func (r *MemoryRepository) GetGridSlots(_ context.Context, shop string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.gridSlots[shop]...), nil
}

func (r *MemoryRepository) PutGridSlots(_ context.Context, shop string, slots []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gridSlots[shop] = append([]string(nil), slots...)
	return nil
}

func (r *MemoryRepository) PurgeEmployee(_ context.Context, shop, employee string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	prefix := "planning:" + shop + ":"
	for key, snap := range r.weeks {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		delete(snap, employee)
	}
	return nil
}

func (r *MemoryRepository) GetBuffer(_ context.Context, shop string) (*clipboard.Buffer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.buffers[shop], nil
}

func (r *MemoryRepository) PutBuffer(_ context.Context, shop string, buf *clipboard.Buffer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buffers[shop] = buf
	return nil
}

func (r *MemoryRepository) ClearBuffer(_ context.Context, shop string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.buffers, shop)
	return nil
}
