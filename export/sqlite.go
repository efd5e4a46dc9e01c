// Package export copies query results into formats analysis tools read.
package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"regexp"

	"github.com/viant/swarmdb/logdb"
	_ "modernc.org/sqlite" // pure Go sqlite driver
)

// ErrTableName is returned for a table name that is not a plain identifier.
var ErrTableName = errors.New("export: invalid table name")

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ToSQLite writes one row per body of every pair in seq into table of the
// SQLite database at path, creating both as needed. All rows are written in
// a single transaction; on error nothing is committed. It returns the number
// of rows written.
func ToSQLite(ctx context.Context, path, table string, seq iter.Seq2[logdb.Pair, error]) (int, error) {
	if !identifier.MatchString(table) {
		return 0, fmt.Errorf("%w: %q", ErrTableName, table)
	}
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path))
	if err != nil {
		return 0, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            system_id INTEGER NOT NULL,
            time REAL NOT NULL,
            event_id INTEGER NOT NULL,
            flags INTEGER NOT NULL,
            body INTEGER NOT NULL,
            x REAL, y REAL, z REAL,
            vx REAL, vy REAL, vz REAL,
            mass REAL
        );`, table)); err != nil {
		return 0, fmt.Errorf("export: create %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_system ON %s(system_id, time)`, table, table)); err != nil {
		return 0, fmt.Errorf("export: index %s: %w", table, err)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s
        (system_id, time, event_id, flags, body, x, y, z, vx, vy, vz, mass)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, table))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	rows := 0
	for pair, err := range seq {
		if err != nil {
			return 0, err
		}
		r := &pair.Record
		for i, b := range r.Bodies {
			if _, err := stmt.ExecContext(ctx, pair.SystemID, r.Time, int64(r.EventID), int64(r.Flags), i,
				b.Pos[0], b.Pos[1], b.Pos[2], b.Vel[0], b.Vel[1], b.Vel[2], b.Mass); err != nil {
				return 0, fmt.Errorf("export: system %d body %d: %w", pair.SystemID, i, err)
			}
			rows++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return rows, nil
}
