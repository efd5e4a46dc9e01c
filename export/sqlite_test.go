package export

import (
	"context"
	"database/sql"
	"errors"
	"iter"
	"path/filepath"
	"testing"

	"github.com/viant/swarmdb/logdb"
	"github.com/viant/swarmdb/record"
)

func pairs(items []logdb.Pair, failWith error) iter.Seq2[logdb.Pair, error] {
	return func(yield func(logdb.Pair, error) bool) {
		for _, p := range items {
			if !yield(p, nil) {
				return
			}
		}
		if failWith != nil {
			yield(logdb.Pair{}, failWith)
		}
	}
}

func sample() []logdb.Pair {
	mk := func(sys int, t float64) logdb.Pair {
		return logdb.Pair{SystemID: sys, Record: record.Record{
			SystemID: sys, Time: t, EventID: record.EventFinal,
			Bodies: []record.Body{{Mass: 1}, {Pos: [3]float64{1, 2, 3}, Vel: [3]float64{4, 5, 6}, Mass: 0.001}},
		}}
	}
	return []logdb.Pair{mk(1, 100), mk(2, 100)}
}

func TestToSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.db")
	n, err := ToSQLite(context.Background(), path, "final_conditions", pairs(sample(), nil))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if n != 4 {
		t.Fatalf("wrote %d rows, want 4", n)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM final_conditions`).Scan(&count); err != nil || count != 4 {
		t.Fatalf("count %d, %v", count, err)
	}
	var x, vz, mass float64
	var event int
	err = db.QueryRow(`SELECT x, vz, mass, event_id FROM final_conditions WHERE system_id = 2 AND body = 1`).Scan(&x, &vz, &mass, &event)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if x != 1 || vz != 6 || mass != 0.001 || event != int(record.EventFinal) {
		t.Fatalf("unexpected row x=%v vz=%v mass=%v event=%v", x, vz, mass, event)
	}
}

func TestToSQLite_RollsBackOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.db")
	boom := errors.New("boom")
	if _, err := ToSQLite(context.Background(), path, "scan", pairs(sample(), boom)); !errors.Is(err, boom) {
		t.Fatalf("expected sequence error, got %v", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	var count int
	// the table was created inside the rolled back transaction
	if err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE name = 'scan'`).Scan(&count); err != nil || count != 0 {
		t.Fatalf("partial export left behind: %d, %v", count, err)
	}
}

func TestToSQLite_TableName(t *testing.T) {
	_, err := ToSQLite(context.Background(), filepath.Join(t.TempDir(), "x.db"), "x; DROP TABLE y", pairs(nil, nil))
	if !errors.Is(err, ErrTableName) {
		t.Fatalf("expected ErrTableName, got %v", err)
	}
}
