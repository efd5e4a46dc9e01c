package cli

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valyala/fastjson"
	"github.com/viant/swarmdb/logstore"
	"github.com/viant/swarmdb/record"
)

func writeLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.swlog")
	w, err := logstore.Create(path, 2)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	add := func(sys int, time float64, event record.EventID) {
		r := &record.Record{SystemID: sys, Time: time, EventID: event, Bodies: []record.Body{
			{Mass: 1},
			{Pos: [3]float64{1, 0, 0}, Vel: [3]float64{0, 1, 0}, Mass: 0.001},
		}}
		if _, err := w.Append(r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	add(1, 0, record.EventInitial)
	add(2, 0, record.EventInitial)
	add(1, 10, record.EventSnapshot)
	add(2, 100, record.EventFinal)
	add(1, 20, record.EventFinal)
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRoot(&out, &errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_Initial(t *testing.T) {
	out, err := run(t, "initial", writeLog(t), "--sys", "2")
	if err != nil {
		t.Fatalf("initial: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected one line per body, got %q", out)
	}
	fields := strings.Fields(lines[0])
	// event time sys body mass ...
	if fields[0] != "3" || fields[1] != "0" || fields[2] != "2" || fields[3] != "0" {
		t.Fatalf("unexpected line %q", lines[0])
	}
}

func TestCLI_FinalJSON(t *testing.T) {
	out, err := run(t, "final", writeLog(t), "--format", "json")
	if err != nil {
		t.Fatalf("final: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected one line per system, got %q", out)
	}
	var p fastjson.Parser
	want := []struct {
		sys  int
		time float64
	}{{1, 20}, {2, 100}}
	for i, line := range lines {
		v, err := p.Parse(line)
		if err != nil {
			t.Fatalf("line %d: %v", i, err)
		}
		if v.GetInt("sys") != want[i].sys || v.GetFloat64("time") != want[i].time {
			t.Fatalf("line %d: %s", i, line)
		}
		if string(v.GetStringBytes("event")) != "final" || len(v.GetArray("bodies")) != 2 {
			t.Fatalf("line %d: %s", i, line)
		}
		if v.GetFloat64("bodies", "1", "vel", "1") != 1 {
			t.Fatalf("line %d body velocity: %s", i, line)
		}
	}
}

func TestCLI_Scan(t *testing.T) {
	out, err := run(t, "scan", writeLog(t), "--sys", "1", "--time", "5..MAX", "--event", "snapshot,final", "--format", "json")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], `"time":10`) || !strings.Contains(lines[1], `"time":20`) {
		t.Fatalf("unexpected scan output %q", out)
	}
	out, err = run(t, "scan", writeLog(t), "--limit", "1", "--format", "json")
	if err != nil || strings.Count(out, "\n") != 1 {
		t.Fatalf("limit: %q, %v", out, err)
	}
}

func TestCLI_SystemsAndInfo(t *testing.T) {
	path := writeLog(t)
	out, err := run(t, "systems", path)
	if err != nil || out != "1\n2\n" {
		t.Fatalf("systems: %q, %v", out, err)
	}
	out, err = run(t, "info", path)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	v, err := fastjson.Parse(out)
	if err != nil {
		t.Fatalf("info output: %v", err)
	}
	if v.GetInt("records") != 5 || v.GetInt("systems") != 2 || !v.GetBool("sealed") {
		t.Fatalf("unexpected info %s", out)
	}
}

func TestCLI_Export(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.db")
	out, err := run(t, "export", writeLog(t), "--sqlite", dest, "--which", "initial", "--table", "ic")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasPrefix(out, "4 rows") {
		t.Fatalf("unexpected output %q", out)
	}
	db, err := sql.Open("sqlite", dest)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow(`SELECT COUNT(DISTINCT system_id) FROM ic WHERE time = 0`).Scan(&n); err != nil || n != 2 {
		t.Fatalf("exported systems %d, %v", n, err)
	}
}

func TestCLI_Errors(t *testing.T) {
	path := writeLog(t)
	cases := [][]string{
		{"initial", filepath.Join(t.TempDir(), "missing.swlog")},
		{"initial", path, "--sys", "x..y"},
		{"scan", path, "--event", "bogus"},
		{"final", path, "--format", "xml"},
		{"export", path},
		{"export", path, "--sqlite", filepath.Join(t.TempDir(), "o.db"), "--which", "middle"},
	}
	for _, args := range cases {
		if _, err := run(t, args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}
