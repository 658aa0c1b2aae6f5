package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestTickStatsRoundTripThroughCompressedFile(t *testing.T) {
	dir := t.TempDir()
	l := NewTickStatsLogger(dir)
	entries := []TickStatsEntry{
		{Tick: 100, Day: 1, Population: 12, Treasury: 4800.5, Happiness: 61.2, Buildings: 3},
		{Tick: 200, Day: 1, Population: 13, Treasury: 4550.25, Happiness: 60.8, Buildings: 3},
	}
	for _, e := range entries {
		if err := l.WriteTick(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	statsDir := filepath.Join(dir, "stats")
	files, err := os.ReadDir(statsDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatalf("stats dir holds %d files, want 1", len(files))
	}
	if !strings.HasSuffix(files[0].Name(), ".jsonl.zst") {
		t.Fatalf("unexpected file name %q", files[0].Name())
	}

	f, err := os.Open(filepath.Join(statsDir, files[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zr, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer zr.Close()

	var got []TickStatsEntry
	sc := bufio.NewScanner(zr)
	for sc.Scan() {
		var e TickStatsEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("bad line %q: %v", sc.Text(), err)
		}
		got = append(got, e)
	}
	if err := sc.Err(); err != nil {
		t.Fatal(err)
	}
	if len(got) != len(entries) {
		t.Fatalf("read %d entries, want %d", len(got), len(entries))
	}
	for i := range entries {
		if got[i] != entries[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], entries[i])
		}
	}
}

func TestIdleLoggerWritesNothing(t *testing.T) {
	dir := t.TempDir()
	l := NewActionAuditLogger(dir)
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "audit")); !os.IsNotExist(err) {
		t.Errorf("audit dir exists after idle close (stat err = %v)", err)
	}
}
