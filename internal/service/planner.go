// Package service orchestrates the weekly planner: slot selections, recaps,
// copy/paste propagation and persistence.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"semainier/internal/clipboard"
	"semainier/internal/events"
	"semainier/internal/export"
	"semainier/internal/metrics"
	"semainier/internal/planning"
	"semainier/internal/recap"
	"semainier/internal/repository"
	"semainier/internal/segments"
	"semainier/internal/timegrid"
)

// ErrEmployeeExists is returned when adding a name already on the roster.
var ErrEmployeeExists = errors.New("employee already exists")

// Planner is the single-writer coordinator for one shop. Every mutation
// updates the in-memory snapshot first and persists after; memory stays the
// session's source of truth when a persist fails.
type Planner struct {
	shop   string
	repo   repository.Repository
	bus    *events.Bus
	logger *zerolog.Logger

	mu         sync.Mutex
	grid       *timegrid.Grid
	session    *clipboard.Session
	weeks      map[string]planning.WeekSnapshot
	employees  []string
	loaded     bool
	slotsSaved bool
}

// New creates a planner for one shop. grid may be nil until a configuration
// is applied; recap operations fail with ErrMissingConfig until then.
func New(shop string, grid *timegrid.Grid, repo repository.Repository, bus *events.Bus, logger *zerolog.Logger) *Planner {
	return &Planner{
		shop:    shop,
		grid:    grid,
		repo:    repo,
		bus:     bus,
		logger:  logger,
		session: clipboard.NewSession(),
		weeks:   make(map[string]planning.WeekSnapshot),
	}
}

// Shop returns the shop this planner serves.
func (p *Planner) Shop() string {
	return p.shop
}

// Grid returns the active grid, or nil when none is configured.
func (p *Planner) Grid() *timegrid.Grid {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.grid
}

// Session exposes the copy/paste state machine.
func (p *Planner) Session() *clipboard.Session {
	return p.session
}

// ApplyGrid swaps in a new grid and reconciles every loaded week snapshot,
// preserving selections at matching slot labels. Reconciled weeks persist
// immediately. Any copy buffer captured under the old grid is discarded, its
// vectors no longer line up.
func (p *Planner) ApplyGrid(ctx context.Context, newGrid *timegrid.Grid) {
	p.mu.Lock()
	old := p.grid
	p.grid = newGrid
	if old == nil || gridsEqual(old, newGrid) {
		p.saveGridSlots(ctx)
		p.mu.Unlock()
		return
	}

	p.slotsSaved = false
	for weekStart, snap := range p.weeks {
		snap.Reconcile(old, newGrid)
		p.persistWeek(ctx, weekStart, snap)
	}
	p.saveGridSlots(ctx)
	p.mu.Unlock()

	p.session.Reset()
	if err := p.repo.ClearBuffer(ctx, p.shop); err != nil {
		p.logger.Warn().Err(err).Msg("stale copy buffer not cleared")
	}

	metrics.IncReconciliation()
	p.bus.Publish(events.Event{Type: events.TypeGridChanged, Shop: p.shop})
	p.logger.Info().Int("slots", newGrid.Len()).Msg("grid changed, snapshots reconciled")
}

func gridsEqual(a, b *timegrid.Grid) bool {
	if a.Interval != b.Interval || len(a.Slots) != len(b.Slots) {
		return false
	}
	for i := range a.Slots {
		if a.Slots[i] != b.Slots[i] {
			return false
		}
	}
	return true
}

// Employees returns the shop roster in insertion order.
func (p *Planner) Employees(ctx context.Context) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.loadRoster(ctx); err != nil {
		return nil, err
	}
	return append([]string(nil), p.employees...), nil
}

// AddEmployee appends a name to the roster. Names are uppercased and must be
// unique within the shop.
func (p *Planner) AddEmployee(ctx context.Context, name string) error {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return fmt.Errorf("empty employee name")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.loadRoster(ctx); err != nil {
		return err
	}
	for _, existing := range p.employees {
		if existing == name {
			return fmt.Errorf("%w: %s", ErrEmployeeExists, name)
		}
	}
	p.employees = append(p.employees, name)
	return p.persistRoster(ctx)
}

// RemoveEmployee drops a name from the roster and deletes the employee's
// selections from every stored week of the shop.
func (p *Planner) RemoveEmployee(ctx context.Context, name string) error {
	name = strings.ToUpper(strings.TrimSpace(name))

	p.mu.Lock()
	if err := p.loadRoster(ctx); err != nil {
		p.mu.Unlock()
		return err
	}
	kept := p.employees[:0]
	for _, existing := range p.employees {
		if existing != name {
			kept = append(kept, existing)
		}
	}
	p.employees = kept
	err := p.persistRoster(ctx)

	for _, snap := range p.weeks {
		snap.RemoveEmployee(name)
	}
	// Stored weeks beyond the loaded ones are scrubbed repository-side.
	if purgeErr := p.repo.PurgeEmployee(ctx, p.shop, name); purgeErr != nil {
		p.logger.Error().Err(purgeErr).Str("employee", name).Msg("purge employee selections")
	}
	p.mu.Unlock()

	if err != nil {
		return err
	}
	p.bus.Publish(events.Event{Type: events.TypeEmployeeRemoved, Shop: p.shop, Employee: name})
	return nil
}

// ToggleSlot flips one slot for an employee and persists the week.
func (p *Planner) ToggleSlot(ctx context.Context, weekStart, employee, date, slot string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.grid == nil {
		return recap.ErrMissingConfig
	}
	snap, err := p.week(ctx, weekStart)
	if err != nil {
		return err
	}
	if err := snap.Toggle(p.grid, employee, date, slot); err != nil {
		return err
	}
	metrics.IncSlotToggle()
	p.bus.Publish(events.Event{
		Type: events.TypeSelectionChanged, Shop: p.shop,
		WeekStart: weekStart, Employee: employee, Dates: []string{date},
	})
	return p.persistWeek(ctx, weekStart, snap)
}

// ResetDay zeroes one employee's day and persists the week.
func (p *Planner) ResetDay(ctx context.Context, weekStart, employee, date string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	snap, err := p.week(ctx, weekStart)
	if err != nil {
		return err
	}
	snap.ResetDay(employee, date)
	p.bus.Publish(events.Event{
		Type: events.TypeSelectionChanged, Shop: p.shop,
		WeekStart: weekStart, Employee: employee, Dates: []string{date}, Detail: "reset",
	})
	return p.persistWeek(ctx, weekStart, snap)
}

// ResetWeek zeroes every vector in the week and persists it.
func (p *Planner) ResetWeek(ctx context.Context, weekStart string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	snap, err := p.week(ctx, weekStart)
	if err != nil {
		return err
	}
	snap.ResetWeek()
	p.bus.Publish(events.Event{Type: events.TypeWeekReset, Shop: p.shop, WeekStart: weekStart})
	return p.persistWeek(ctx, weekStart, snap)
}

// DayRecap computes one employee's summary for one day. A day without any
// selection yields an empty recap, not an error.
func (p *Planner) DayRecap(ctx context.Context, weekStart, employee, date string) (recap.Day, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	day, err := p.dayRecapLocked(ctx, weekStart, employee, date)
	if err != nil {
		return recap.Day{}, err
	}
	metrics.IncRecap("day")
	return day, nil
}

func (p *Planner) dayRecapLocked(ctx context.Context, weekStart, employee, date string) (recap.Day, error) {
	if p.grid == nil {
		return recap.Day{}, recap.ErrMissingConfig
	}
	snap, err := p.week(ctx, weekStart)
	if err != nil {
		return recap.Day{}, err
	}
	selected, err := snap.SelectedSlots(p.grid, employee, date)
	if err != nil {
		return recap.Day{}, err
	}
	segs, err := segments.Group(selected, p.grid.Interval)
	if err != nil {
		return recap.Day{}, err
	}
	return recap.ComputeDay(segs, p.grid.Interval)
}

// WeekRecap computes one employee's weekly summary.
func (p *Planner) WeekRecap(ctx context.Context, weekStart, employee string) (recap.Week, error) {
	dates, err := planning.WeekDates(weekStart)
	if err != nil {
		return recap.Week{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	entries := make([]recap.WeekEntry, 0, len(dates))
	for _, date := range dates {
		day, err := p.dayRecapLocked(ctx, weekStart, employee, date)
		if err != nil {
			return recap.Week{}, err
		}
		entries = append(entries, recap.WeekEntry{Date: date, Day: day})
	}
	metrics.IncRecap("week")
	return recap.ComputeWeek(employee, entries), nil
}

// TeamDayRecap computes the whole team's summary for one day, in roster order.
func (p *Planner) TeamDayRecap(ctx context.Context, weekStart, date string) ([]recap.TeamRow, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.loadRoster(ctx); err != nil {
		return nil, err
	}

	byEmployee := make(map[string]recap.Day, len(p.employees))
	for _, employee := range p.employees {
		day, err := p.dayRecapLocked(ctx, weekStart, employee, date)
		if err != nil {
			return nil, err
		}
		byEmployee[employee] = day
	}
	metrics.IncRecap("team")
	return recap.TeamDay(append([]string(nil), p.employees...), byEmployee), nil
}

// WeekReport assembles everything the Excel export needs for one week.
func (p *Planner) WeekReport(ctx context.Context, weekStart string) (export.WeekReport, error) {
	dates, err := planning.WeekDates(weekStart)
	if err != nil {
		return export.WeekReport{}, err
	}

	report := export.WeekReport{
		Shop:      p.shop,
		WeekStart: weekStart,
		Dates:     dates,
		Days:      make(map[string][]recap.TeamRow, len(dates)),
	}

	for _, date := range dates {
		rows, err := p.TeamDayRecap(ctx, weekStart, date)
		if err != nil {
			return export.WeekReport{}, err
		}
		report.Days[date] = rows
	}

	employees, err := p.Employees(ctx)
	if err != nil {
		return export.WeekReport{}, err
	}
	for _, employee := range employees {
		week, err := p.WeekRecap(ctx, weekStart, employee)
		if err != nil {
			return export.WeekReport{}, err
		}
		report.Totals = append(report.Totals, week)
	}

	return report, nil
}

// CopyDay captures a day according to the request mode and stores the buffer
// in the session (and best-effort in the repository for UI reloads).
func (p *Planner) CopyDay(ctx context.Context, weekStart string, req clipboard.DayCopyRequest) error {
	p.mu.Lock()
	if p.grid == nil {
		p.mu.Unlock()
		return recap.ErrMissingConfig
	}
	if req.Mode == clipboard.ModeAll && len(req.Employees) == 0 {
		if err := p.loadRoster(ctx); err != nil {
			p.mu.Unlock()
			return err
		}
		req.Employees = append([]string(nil), p.employees...)
	}
	snap, err := p.week(ctx, weekStart)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	buf, err := clipboard.CopyDay(snap, p.grid, req)
	p.mu.Unlock()
	if err != nil {
		return err
	}

	p.session.SetBuffer(buf)
	if err := p.repo.PutBuffer(ctx, p.shop, buf); err != nil {
		p.logger.Warn().Err(err).Msg("copy buffer not persisted")
	}
	return nil
}

// PasteDay applies the session buffer to the target days of a week and
// persists the result.
func (p *Planner) PasteDay(ctx context.Context, weekStart string, targetDates []string) error {
	buf, err := p.sessionBuffer(ctx)
	if err != nil {
		return err
	}
	if len(targetDates) > 0 {
		p.session.MarkTargets()
	}

	p.mu.Lock()
	if p.grid == nil {
		p.mu.Unlock()
		return recap.ErrMissingConfig
	}
	snap, err := p.week(ctx, weekStart)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	if err := clipboard.PasteDay(snap, p.grid, buf, targetDates); err != nil {
		p.mu.Unlock()
		return err
	}
	err = p.persistWeek(ctx, weekStart, snap)
	p.mu.Unlock()

	p.session.MarkApplied()
	metrics.IncPaste(string(buf.Mode))
	p.bus.Publish(events.Event{
		Type: events.TypeDayPasted, Shop: p.shop, WeekStart: weekStart,
		Employee: buf.SourceEmployee, Dates: targetDates, Detail: string(buf.Mode),
	})
	return err
}

// CopyWeek captures the whole week snapshot into the session buffer.
func (p *Planner) CopyWeek(ctx context.Context, weekStart string) error {
	p.mu.Lock()
	snap, err := p.week(ctx, weekStart)
	p.mu.Unlock()
	if err != nil {
		return err
	}

	buf := clipboard.CopyWeek(snap, weekStart)
	p.session.SetBuffer(buf)
	if err := p.repo.PutBuffer(ctx, p.shop, buf); err != nil {
		p.logger.Warn().Err(err).Msg("copy buffer not persisted")
	}
	return nil
}

// PrepareWeekPaste stages the destructive full-replace of targetWeek. The
// returned pending operation must be confirmed before anything changes.
func (p *Planner) PrepareWeekPaste(targetWeek string) (*clipboard.PendingWeekPaste, error) {
	return p.session.PrepareWeekPaste(targetWeek)
}

// ConfirmWeekPaste commits a staged week paste: the target week's snapshot is
// replaced wholesale by the copied week.
func (p *Planner) ConfirmWeekPaste(ctx context.Context, confirmationID string) error {
	buf, targetWeek, err := p.session.ConfirmWeekPaste(confirmationID)
	if err != nil {
		return err
	}

	p.mu.Lock()
	if p.grid == nil {
		p.mu.Unlock()
		return recap.ErrMissingConfig
	}
	replacement, err := clipboard.PasteWeek(buf, p.grid)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	p.weeks[targetWeek] = replacement
	err = p.persistWeek(ctx, targetWeek, replacement)
	p.mu.Unlock()

	p.session.MarkApplied()
	metrics.IncPaste(string(clipboard.ModeWeek))
	p.bus.Publish(events.Event{
		Type: events.TypeWeekPasted, Shop: p.shop, WeekStart: targetWeek,
		Detail: "replaced from " + buf.SourceWeek,
	})
	return err
}

// sessionBuffer returns the session's buffer, falling back to the persisted
// one when the process restarted mid-session.
func (p *Planner) sessionBuffer(ctx context.Context) (*clipboard.Buffer, error) {
	if buf, err := p.session.Buffer(); err == nil {
		return buf, nil
	}
	buf, err := p.repo.GetBuffer(ctx, p.shop)
	if err != nil || buf == nil {
		return nil, clipboard.ErrEmptyBuffer
	}
	p.session.SetBuffer(buf)
	return buf, nil
}

// week returns the in-memory snapshot for weekStart, loading it from the
// repository on first access. A week persisted under an earlier grid
// configuration is reconciled against the stored slot labels before use.
// Callers hold p.mu.
func (p *Planner) week(ctx context.Context, weekStart string) (planning.WeekSnapshot, error) {
	if snap, ok := p.weeks[weekStart]; ok {
		return snap, nil
	}
	snap, err := p.repo.GetWeek(ctx, p.shop, weekStart)
	if err != nil {
		return nil, err
	}
	if p.grid != nil {
		if vErr := snap.Validate(p.grid); vErr != nil {
			stored, sErr := p.repo.GetGridSlots(ctx, p.shop)
			if sErr != nil || len(stored) == 0 {
				return nil, vErr
			}
			snap.Reconcile(&timegrid.Grid{Interval: p.grid.Interval, Slots: stored}, p.grid)
			metrics.IncReconciliation()
			p.logger.Info().Str("week", weekStart).Msg("stored week reconciled to current grid")
			if err := p.persistWeek(ctx, weekStart, snap); err != nil {
				return nil, err
			}
		}
	}
	p.weeks[weekStart] = snap
	return snap, nil
}

// saveGridSlots records the active grid's slot labels once per grid, so a
// later session can reconcile weeks persisted under this grid. Callers hold
// p.mu.
func (p *Planner) saveGridSlots(ctx context.Context) {
	if p.slotsSaved || p.grid == nil {
		return
	}
	if err := p.repo.PutGridSlots(ctx, p.shop, p.grid.Slots); err != nil {
		p.logger.Warn().Err(err).Msg("grid slot labels not persisted")
		return
	}
	p.slotsSaved = true
}

// persistWeek writes the snapshot after the in-memory mutation. A failure is
// surfaced but never rolls memory back. Callers hold p.mu.
func (p *Planner) persistWeek(ctx context.Context, weekStart string, snap planning.WeekSnapshot) error {
	p.saveGridSlots(ctx)
	if err := p.repo.PutWeek(ctx, p.shop, weekStart, snap); err != nil {
		metrics.IncPersistFailure()
		p.logger.Error().Err(err).Str("week", weekStart).Msg("week persist failed")
		return fmt.Errorf("persist week %s: %w", weekStart, err)
	}
	return nil
}

func (p *Planner) loadRoster(ctx context.Context) error {
	if p.loaded {
		return nil
	}
	employees, err := p.repo.GetEmployees(ctx, p.shop)
	if err != nil {
		return err
	}
	p.employees = employees
	p.loaded = true
	return nil
}

func (p *Planner) persistRoster(ctx context.Context) error {
	if err := p.repo.PutEmployees(ctx, p.shop, p.employees); err != nil {
		metrics.IncPersistFailure()
		return fmt.Errorf("persist roster: %w", err)
	}
	return nil
}
