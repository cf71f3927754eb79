// Package audit records planner operations in a local sqlite database.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// DB wraps sql.DB for the operation trail.
type DB struct {
	*sql.DB
}

// NewDB opens the audit database at path and runs migrations.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &DB{db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS operations (
			id TEXT PRIMARY KEY,
			op TEXT NOT NULL,
			shop TEXT NOT NULL,
			week_start TEXT,
			employee TEXT,
			dates TEXT,
			detail TEXT,
			created_at DATETIME NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("create operations table: %w", err)
	}
	return nil
}

// Record is one audited planner operation.
type Record struct {
	ID        string    `json:"id"`
	Op        string    `json:"op"`
	Shop      string    `json:"shop"`
	WeekStart string    `json:"week_start,omitempty"`
	Employee  string    `json:"employee,omitempty"`
	Dates     []string  `json:"dates,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Insert stores a record, assigning an id and timestamp when absent.
func (db *DB) Insert(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO operations (id, op, shop, week_start, employee, dates, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Op, rec.Shop, rec.WeekStart, rec.Employee,
		strings.Join(rec.Dates, ","), rec.Detail, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert operation: %w", err)
	}
	return nil
}

// Recent returns the newest records, newest first.
func (db *DB) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, op, shop, week_start, employee, dates, detail, created_at
		FROM operations
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var dates string
		if err := rows.Scan(&rec.ID, &rec.Op, &rec.Shop, &rec.WeekStart,
			&rec.Employee, &dates, &rec.Detail, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if dates != "" {
			rec.Dates = strings.Split(dates, ",")
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// PurgeOlderThan deletes records past the retention window. Returns the
// number of deleted rows.
func (db *DB) PurgeOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	result, err := db.ExecContext(ctx, `DELETE FROM operations WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
