// Package repository persists week snapshots, shop rosters and the transient
// copy buffer behind a key-value contract.
package repository

import (
	"context"

	"semainier/internal/clipboard"
	"semainier/internal/planning"
)

// Repository is the storage capability the planner depends on. Reads return
// a usable default when a key is absent or unparseable; there are no
// cross-key transactional guarantees.
type Repository interface {
	// GetWeek returns the snapshot stored under planning:{shop}:{weekStart},
	// or an empty snapshot when none exists.
	GetWeek(ctx context.Context, shop, weekStart string) (planning.WeekSnapshot, error)
	PutWeek(ctx context.Context, shop, weekStart string, snap planning.WeekSnapshot) error

	// GetEmployees returns the ordered roster stored under employees:{shop}.
	GetEmployees(ctx context.Context, shop string) ([]string, error)
	PutEmployees(ctx context.Context, shop string, employees []string) error

	// PurgeEmployee removes one employee's selections from every stored week
	// of the shop.
	PurgeEmployee(ctx context.Context, shop, employee string) error

	// GetGridSlots returns the slot labels the shop's weeks were last
	// persisted under, or nil when none were stored. PutGridSlots records
	// them; stored weeks are reconciled against these labels when the grid
	// configuration changes between sessions.
	GetGridSlots(ctx context.Context, shop string) ([]string, error)
	PutGridSlots(ctx context.Context, shop string, slots []string) error

	// GetBuffer returns the session copy buffer, or nil when none is stored.
	GetBuffer(ctx context.Context, shop string) (*clipboard.Buffer, error)
	PutBuffer(ctx context.Context, shop string, buf *clipboard.Buffer) error
	ClearBuffer(ctx context.Context, shop string) error
}
