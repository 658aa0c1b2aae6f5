// Command replay re-executes a recorded session against a fresh world and
// reports the final state digest. Running it twice, or on two machines, must
// print the same digest; that is the determinism contract in executable form.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"megacity.sim/internal/sim/replay"
	"megacity.sim/internal/sim/tuning"
	"megacity.sim/internal/sim/world"
)

func main() {
	var (
		inPath     = flag.String("in", "", "replay file (.json or compact binary)")
		paramsPath = flag.String("params", "", "params.yaml used by the original session")
		expect     = flag.String("expect", "", "fail unless the final digest matches")
		every      = flag.Uint64("digest-every", 0, "print intermediate digests every N ticks")
	)
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if *inPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(*inPath, *paramsPath, *expect, *every); err != nil {
		slog.Error("replay failed", "err", err)
		os.Exit(1)
	}
}

func run(inPath, paramsPath, expect string, every uint64) error {
	f, err := replay.ReadFile(inPath)
	if err != nil {
		return err
	}
	if problems := f.Validate(); len(problems) > 0 {
		for _, p := range problems {
			slog.Error("invalid replay", "problem", p)
		}
		return fmt.Errorf("replay file failed validation")
	}

	params := tuning.Default()
	if paramsPath != "" {
		if params, err = tuning.Load(paramsPath); err != nil {
			return err
		}
	}

	w, err := world.New(world.Config{Params: params})
	if err != nil {
		return err
	}
	player, err := replay.NewPlayer(f)
	if err != nil {
		return err
	}

	slog.Info("replaying", "session", f.Header.SessionID,
		"seed", f.Header.Seed, "city", f.Header.CityName,
		"entries", len(f.Entries), "final_tick", f.Footer.FinalTick)

	// Entries recorded before the first playing tick (the NewGame itself)
	// execute while the world is still in the menu.
	player.FeedTick(w, 0)
	w.Step()

	var digest string
	for w.Tick() < f.Footer.FinalTick {
		player.FeedTick(w, w.Tick()+1)
		var tick uint64
		tick, digest = w.StepOnce()
		if every > 0 && tick%every == 0 {
			fmt.Printf("tick %d digest %s\n", tick, digest)
		}
	}
	if !player.Done() {
		return fmt.Errorf("replay ended with %d entries unconsumed", player.Remaining())
	}

	fmt.Printf("final tick %d digest %s\n", w.Tick(), digest)
	if expect != "" && digest != expect {
		return fmt.Errorf("digest mismatch: want %s got %s", expect, digest)
	}
	return nil
}
