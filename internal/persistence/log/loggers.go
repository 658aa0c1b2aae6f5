// Package log writes operational JSONL streams (tick stats, executed actions)
// as rotated zstd-compressed files. These are observability artifacts; the
// replay format lives in internal/sim/replay.
package log

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// rotation selects the filename granularity of a stream. Low-volume streams
// roll daily, high-volume ones hourly.
type rotation int

const (
	rotateHourly rotation = iota
	rotateDaily
)

func (r rotation) stamp(t time.Time) string {
	if r == rotateDaily {
		return t.UTC().Format("2006-01-02")
	}
	return t.UTC().Format("2006-01-02-15")
}

// stream appends JSON lines to <dir>/<stamp>.jsonl.zst, cutting over to a new
// file whenever the stamp changes. The first append opens the file lazily, so
// an idle logger leaves nothing on disk.
type stream struct {
	dir  string
	roll rotation

	mu    sync.Mutex
	stamp string
	file  *os.File
	zw    *zstd.Encoder
	buf   *bufio.Writer
}

func (s *stream) append(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stamp := s.roll.stamp(time.Now()); stamp != s.stamp {
		if err := s.cutover(stamp); err != nil {
			return err
		}
	}
	line, err := json.Marshal(v)
	if err != nil {
		return err
	}
	line = append(line, '\n')
	if _, err := s.buf.Write(line); err != nil {
		return err
	}
	// Flush per record so a crash loses at most the zstd frame in flight.
	return s.buf.Flush()
}

func (s *stream) cutover(stamp string) error {
	if err := s.shutdown(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(s.dir, stamp+".jsonl.zst"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return errors.Join(err, f.Close())
	}
	s.file, s.zw = f, zw
	s.buf = bufio.NewWriterSize(zw, 64*1024)
	s.stamp = stamp
	return nil
}

func (s *stream) shutdown() error {
	var errs []error
	if s.buf != nil {
		errs = append(errs, s.buf.Flush())
	}
	if s.zw != nil {
		errs = append(errs, s.zw.Close())
	}
	if s.file != nil {
		errs = append(errs, s.file.Close())
	}
	s.buf, s.zw, s.file = nil, nil, nil
	s.stamp = ""
	return errors.Join(errs...)
}

func (s *stream) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown()
}

// TickStatsEntry is one slow-tick summary row.
type TickStatsEntry struct {
	Tick       uint64  `json:"tick"`
	Day        int     `json:"day"`
	Population int     `json:"population"`
	Treasury   float64 `json:"treasury"`
	Happiness  float64 `json:"happiness"`
	Buildings  int     `json:"buildings"`
}

// ActionAuditEntry is one executed game action with its result code.
type ActionAuditEntry struct {
	Tick    uint64 `json:"tick"`
	Source  string `json:"source"`
	Action  string `json:"action"`
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// TickStatsLogger writes one compressed JSONL row per slow tick. Stats volume
// is bounded by the tick rate, so files roll daily.
type TickStatsLogger struct{ s stream }

func NewTickStatsLogger(cityDir string) *TickStatsLogger {
	return &TickStatsLogger{s: stream{dir: filepath.Join(cityDir, "stats"), roll: rotateDaily}}
}

func (l *TickStatsLogger) WriteTick(v TickStatsEntry) error { return l.s.append(v) }
func (l *TickStatsLogger) Close() error                     { return l.s.close() }

// ActionAuditLogger writes one compressed JSONL row per executed action.
// Action volume tracks play activity, so files roll hourly.
type ActionAuditLogger struct{ s stream }

func NewActionAuditLogger(cityDir string) *ActionAuditLogger {
	return &ActionAuditLogger{s: stream{dir: filepath.Join(cityDir, "audit"), roll: rotateHourly}}
}

func (l *ActionAuditLogger) WriteAction(v ActionAuditEntry) error { return l.s.append(v) }
func (l *ActionAuditLogger) Close() error                         { return l.s.close() }
