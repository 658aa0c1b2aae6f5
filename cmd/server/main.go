// Command server runs the simulation headless: it starts (or loads) a city,
// drives the fixed-timestep loop, autosaves on the configured cadence, and
// streams tick stats and action audits to the data directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	oplog "megacity.sim/internal/persistence/log"

	"megacity.sim/internal/persistence/indexdb"
	"megacity.sim/internal/persistence/savefile"
	"megacity.sim/internal/sim/replay"
	"megacity.sim/internal/sim/tuning"
	"megacity.sim/internal/sim/world"
)

func main() {
	var (
		paramsPath = flag.String("params", "", "path to params.yaml (built-in defaults when empty)")
		dataDir    = flag.String("data-dir", "data", "directory for saves, logs and the save index")
		cityName   = flag.String("city", "New Harbor", "city name for a fresh game")
		seed       = flag.Int64("seed", 1, "world seed for a fresh game")
		loadPath   = flag.String("load", "", "save file to resume instead of starting fresh")
		recordPath = flag.String("record", "", "write a replay file on shutdown")
		maxTicks   = flag.Uint64("max-ticks", 0, "stop after this many ticks (0 = run until signal)")
	)
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := run(*paramsPath, *dataDir, *cityName, *seed, *loadPath, *recordPath, *maxTicks); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(paramsPath, dataDir, cityName string, seed int64, loadPath, recordPath string, maxTicks uint64) error {
	params := tuning.Default()
	if paramsPath != "" {
		var err error
		if params, err = tuning.Load(paramsPath); err != nil {
			return fmt.Errorf("load params: %w", err)
		}
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}
	idx, err := indexdb.Open(filepath.Join(dataDir, "saves.db"))
	if err != nil {
		return err
	}
	defer idx.Close()

	stats := oplog.NewTickStatsLogger(dataDir)
	defer stats.Close()
	audit := oplog.NewActionAuditLogger(dataDir)
	defer audit.Close()

	var recorder *replay.Recorder
	cfg := world.Config{
		Params:  params,
		Auditor: &auditAdapter{l: audit},
	}
	if recordPath != "" {
		recorder = replay.NewRecorder(seed, cityName)
		cfg.Recorder = recorder
	}

	w, err := world.New(cfg)
	if err != nil {
		return err
	}

	if loadPath != "" {
		rec, _, report, err := savefile.ReadFile(loadPath)
		if err != nil {
			return fmt.Errorf("load %s: %w", loadPath, err)
		}
		if err := w.ImportRecord(rec); err != nil {
			return err
		}
		slog.Info("resumed save", "path", loadPath,
			"from_version", report.OriginalVersion, "steps", report.StepsApplied,
			"tick", w.Tick(), "city", w.CityName())
	} else {
		w.Submit(world.GameAction{Kind: world.ActionNewGame, Seed: seed, CityName: cityName},
			world.SourcePlayer, 0)
		w.Step()
		slog.Info("new game", "city", cityName, "seed", seed)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := loop(ctx, w, dataDir, idx, stats, maxTicks); err != nil {
		return err
	}

	if recorder != nil {
		f := recorder.Finish(w.Tick())
		if err := replay.WriteFile(recordPath, f); err != nil {
			return fmt.Errorf("write replay: %w", err)
		}
		slog.Info("replay written", "path", recordPath, "entries", recorder.EntryCount())
	}

	return autosave(w, dataDir, idx)
}

// loop drives fixed-timestep ticks until the context is canceled or the tick
// budget runs out, autosaving and logging stats along the way.
func loop(ctx context.Context, w *world.World, dataDir string, idx *indexdb.DB, stats *oplog.TickStatsLogger, maxTicks uint64) error {
	params := w.Params()
	interval := time.Second / time.Duration(params.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slowEvery := uint64(params.SlowTickPeriod)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		steps := w.Clock().Speed
		if steps < 1 {
			steps = 1
		}
		for i := 0; i < steps; i++ {
			w.Step()
			tick := w.Tick()
			if tick == 0 {
				continue
			}
			if tick%slowEvery == 0 {
				obs := w.Observation()
				_ = stats.WriteTick(oplog.TickStatsEntry{
					Tick:       obs.Tick,
					Day:        obs.Day,
					Population: obs.Population.Total,
					Treasury:   obs.Treasury,
					Happiness:  obs.Happiness,
					Buildings:  obs.BuildingCount,
				})
			}
			if tick%uint64(params.AutosaveEveryTicks) == 0 {
				if err := autosave(w, dataDir, idx); err != nil {
					slog.Error("autosave failed", "err", err)
				}
			}
			if maxTicks > 0 && tick >= maxTicks {
				return nil
			}
		}
	}
}

func autosave(w *world.World, dataDir string, idx *indexdb.DB) error {
	if w.State() != world.StatePlaying {
		return nil
	}
	rec := w.ExportRecord()
	meta := w.Metadata()
	path := filepath.Join(dataDir, fmt.Sprintf("%s-tick%d.save", sanitize(meta.CityName), w.Tick()))
	if err := savefile.WriteFile(path, rec, meta, uint64(time.Now().Unix())); err != nil {
		return err
	}
	_ = idx.RecordSave(indexdb.SaveRow{
		Path:       path,
		CityName:   meta.CityName,
		Tick:       w.Tick(),
		Day:        meta.Day,
		Population: meta.Population,
		Treasury:   meta.Treasury,
		Digest:     w.StateDigest(),
	})
	slog.Info("saved", "path", path, "tick", w.Tick())
	return nil
}

func sanitize(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

// auditAdapter bridges the world's auditor hook to the JSONL audit stream.
type auditAdapter struct {
	l *oplog.ActionAuditLogger
}

func (a *auditAdapter) AuditAction(tick uint64, act world.GameAction, src world.ActionSource, res world.ActionResult) {
	_ = a.l.WriteAction(oplog.ActionAuditEntry{
		Tick:    tick,
		Source:  src.String(),
		Action:  act.Kind.String(),
		OK:      res.OK,
		Code:    res.Code.String(),
		Message: res.Message,
	})
}
