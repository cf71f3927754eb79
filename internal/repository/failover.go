package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"semainier/internal/clipboard"
	"semainier/internal/planning"
)

// recoveryInterval is how long the failover waits before probing the primary again.
const recoveryInterval = time.Minute

// FailoverRepository reads and writes through the primary repository and
// falls back to the secondary when the primary errors. Once the primary is
// marked down, it is probed again at most once per recoveryInterval.
type FailoverRepository struct {
	primary  Repository
	fallback Repository
	logger   *zerolog.Logger

	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
}

// NewFailoverRepository wires a primary and a fallback repository.
func NewFailoverRepository(primary, fallback Repository, logger *zerolog.Logger) *FailoverRepository {
	return &FailoverRepository{primary: primary, fallback: fallback, logger: logger}
}

// usePrimary reports whether the next call should try the primary.
func (f *FailoverRepository) usePrimary() bool {
	if !f.isDown.Load() {
		return true
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if time.Since(f.lastCheck) >= recoveryInterval {
		f.lastCheck = time.Now()
		return true
	}
	return false
}

func (f *FailoverRepository) markDown(op string, err error) {
	if f.isDown.CompareAndSwap(false, true) {
		f.logger.Warn().Err(err).Str("op", op).Msg("primary repository down, using fallback")
	}
	f.mu.Lock()
	f.lastCheck = time.Now()
	f.mu.Unlock()
}

func (f *FailoverRepository) markUp() {
	if f.isDown.CompareAndSwap(true, false) {
		f.logger.Info().Msg("primary repository recovered")
	}
}

func (f *FailoverRepository) GetWeek(ctx context.Context, shop, weekStart string) (planning.WeekSnapshot, error) {
	if f.usePrimary() {
		snap, err := f.primary.GetWeek(ctx, shop, weekStart)
		if err == nil {
			f.markUp()
			return snap, nil
		}
		f.markDown("get_week", err)
	}
	return f.fallback.GetWeek(ctx, shop, weekStart)
}

func (f *FailoverRepository) PutWeek(ctx context.Context, shop, weekStart string, snap planning.WeekSnapshot) error {
	// Writes always land in the fallback so a later recovery cannot lose the
	// session's state.
	if err := f.fallback.PutWeek(ctx, shop, weekStart, snap); err != nil {
		return err
	}
	if f.usePrimary() {
		if err := f.primary.PutWeek(ctx, shop, weekStart, snap); err != nil {
			f.markDown("put_week", err)
			return nil
		}
		f.markUp()
	}
	return nil
}

func (f *FailoverRepository) GetEmployees(ctx context.Context, shop string) ([]string, error) {
	if f.usePrimary() {
		employees, err := f.primary.GetEmployees(ctx, shop)
		if err == nil {
			f.markUp()
			return employees, nil
		}
		f.markDown("get_employees", err)
	}
	return f.fallback.GetEmployees(ctx, shop)
}

func (f *FailoverRepository) PutEmployees(ctx context.Context, shop string, employees []string) error {
	if err := f.fallback.PutEmployees(ctx, shop, employees); err != nil {
		return err
	}
	if f.usePrimary() {
		if err := f.primary.PutEmployees(ctx, shop, employees); err != nil {
			f.markDown("put_employees", err)
			return nil
		}
		f.markUp()
	}
	return nil
}

func (f *FailoverRepository) GetGridSlots(ctx context.Context, shop string) ([]string, error) {
	if f.usePrimary() {
		slots, err := f.primary.GetGridSlots(ctx, shop)
		if err == nil {
			f.markUp()
			return slots, nil
		}
		f.markDown("get_grid_slots", err)
	}
	return f.fallback.GetGridSlots(ctx, shop)
}

func (f *FailoverRepository) PutGridSlots(ctx context.Context, shop string, slots []string) error {
	if err := f.fallback.PutGridSlots(ctx, shop, slots); err != nil {
		return err
	}
	if f.usePrimary() {
		if err := f.primary.PutGridSlots(ctx, shop, slots); err != nil {
			f.markDown("put_grid_slots", err)
			return nil
		}
		f.markUp()
	}
	return nil
}

func (f *FailoverRepository) PurgeEmployee(ctx context.Context, shop, employee string) error {
	if err := f.fallback.PurgeEmployee(ctx, shop, employee); err != nil {
		return err
	}
	if f.usePrimary() {
		if err := f.primary.PurgeEmployee(ctx, shop, employee); err != nil {
			f.markDown("purge_employee", err)
			return nil
		}
		f.markUp()
	}
	return nil
}

func (f *FailoverRepository) GetBuffer(ctx context.Context, shop string) (*clipboard.Buffer, error) {
	if f.usePrimary() {
		buf, err := f.primary.GetBuffer(ctx, shop)
		if err == nil {
			f.markUp()
			return buf, nil
		}
		f.markDown("get_buffer", err)
	}
	return f.fallback.GetBuffer(ctx, shop)
}

func (f *FailoverRepository) PutBuffer(ctx context.Context, shop string, buf *clipboard.Buffer) error {
	if err := f.fallback.PutBuffer(ctx, shop, buf); err != nil {
		return err
	}
	if f.usePrimary() {
		if err := f.primary.PutBuffer(ctx, shop, buf); err != nil {
			f.markDown("put_buffer", err)
			return nil
		}
		f.markUp()
	}
	return nil
}

func (f *FailoverRepository) ClearBuffer(ctx context.Context, shop string) error {
	if err := f.fallback.ClearBuffer(ctx, shop); err != nil {
		return err
	}
	if f.usePrimary() {
		if err := f.primary.ClearBuffer(ctx, shop); err != nil {
			f.markDown("clear_buffer", err)
			return nil
		}
		f.markUp()
	}
	return nil
}
