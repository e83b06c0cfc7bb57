package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math"

	"gcp-health-agent/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps report snapshots in a local sqlite file. The reporting
// path itself never reads from here; snapshots are written after a report is
// rendered and served back only through the history endpoint.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{dbPath: path}
}

func (s *SQLiteStore) Init() error {
	var err error

	s.db, err = sql.Open("sqlite3", s.dbPath)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}

	if err = s.db.Ping(); err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS report_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project TEXT NOT NULL,
		taken_at INTEGER NOT NULL,
		cpu_pct REAL,
		mem_pct REAL,
		vm_count INTEGER
	);`

	_, err = s.db.Exec(createTableSQL)
	if err != nil {
		return fmt.Errorf("error creating table: %w", err)
	}

	log.Println("SQLiteStore initialized.")
	return nil
}

// StoreSnapshot inserts one snapshot. NaN percentages are stored as NULL so
// the no-data sentinel survives the round trip.
func (s *SQLiteStore) StoreSnapshot(ctx context.Context, snap domain.Snapshot) error {
	stmt, err := s.db.PrepareContext(ctx,
		"INSERT INTO report_snapshots(project, taken_at, cpu_pct, mem_pct, vm_count) VALUES(?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, snap.Project, snap.TakenAt,
		nullablePct(snap.CPUPct), nullablePct(snap.MemPct), snap.VMCount)
	if err != nil {
		return fmt.Errorf("error inserting snapshot: %w", err)
	}
	return nil
}

// GetSnapshots returns the stored snapshots for one project within the given
// unix-second range, oldest first. A non-positive limit means no limit; a
// negative offset is treated as zero.
func (s *SQLiteStore) GetSnapshots(ctx context.Context, project string, startTime, endTime int64, limit, offset int) ([]domain.Snapshot, error) {
	query := "SELECT project, taken_at, cpu_pct, mem_pct, vm_count FROM report_snapshots" +
		" WHERE project = ? AND taken_at >= ? AND taken_at <= ? ORDER BY taken_at ASC"
	args := []interface{}{project, startTime, endTime}

	if limit <= 0 {
		limit = -1
	}
	query += " LIMIT ?"
	args = append(args, limit)

	if offset < 0 {
		offset = 0
	}
	query += " OFFSET ?"
	args = append(args, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying database: %w", err)
	}
	defer rows.Close()

	var snapshots []domain.Snapshot

	for rows.Next() {
		var snap domain.Snapshot
		var cpu, mem sql.NullFloat64

		if err := rows.Scan(&snap.Project, &snap.TakenAt, &cpu, &mem, &snap.VMCount); err != nil {
			log.Printf("Error scanning row: %v", err)
			continue
		}
		snap.CPUPct = fromNullable(cpu)
		snap.MemPct = fromNullable(mem)
		snapshots = append(snapshots, snap)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return snapshots, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func nullablePct(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func fromNullable(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
