package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
)

// StateDigest hashes the authoritative simulation state in a fixed order.
// Two runs from the same seed applying the same actions must produce equal
// digests after equal tick counts; replay verification compares these.
// Derived caches (CSR, coverage, scratch buffers) are excluded.
func (w *World) StateDigest() string {
	h := sha256.New()

	digestU64(h, w.tick)
	digestI64(h, w.rng.Seed())
	digestU64(h, w.rng.WordPos())
	digestI64(h, int64(w.clock.Day))
	digestF64(h, w.clock.Hour)
	digestI64(h, int64(w.clock.Speed))

	digestF64(h, w.budget.Treasury)
	digestF64(h, w.budget.TaxResidential)
	digestF64(h, w.budget.TaxCommercial)
	digestF64(h, w.budget.TaxIndustrial)
	digestF64(h, w.budget.TaxOffice)
	digestI64(h, int64(len(w.loans)))
	for _, l := range w.loans {
		digestF64(h, l.Remaining)
		digestI64(h, int64(l.MonthsLeft))
	}
	digestI64(h, int64(w.bankruptcy))

	digestI64(h, int64(w.aliveCitizens))
	for i := range w.citizens {
		c := &w.citizens[i]
		if !c.Alive {
			continue
		}
		digestI64(h, int64(i))
		digestF64(h, c.Pos.X)
		digestF64(h, c.Pos.Y)
		digestI64(h, int64(c.State))
		digestI64(h, int64(c.Details.Age))
		digestF64(h, c.Details.Happiness)
		digestF64(h, c.Details.Health)
		digestF64(h, c.Needs.Hunger)
		digestF64(h, c.Needs.Energy)
	}

	digestI64(h, int64(w.aliveBuildingCount()))
	for i := range w.buildings {
		b := &w.buildings[i]
		if !b.Alive {
			continue
		}
		digestI64(h, int64(i))
		digestI64(h, int64(b.Zone))
		digestI64(h, int64(b.Level))
		digestI64(h, int64(b.Occupants))
	}

	for _, id := range w.segs.OrderedIDs() {
		seg := w.segs.Get(id)
		digestU64(h, uint64(id))
		digestI64(h, int64(seg.Kind))
		digestI64(h, int64(len(seg.Cells)))
	}

	// Per-cell grids enter as whole byte planes.
	for i := 0; i < GridSize*GridSize; i++ {
		c := w.grid.AtIndex(i)
		h.Write([]byte{byte(c.Terrain), byte(c.Road), byte(c.Zone)})
	}
	h.Write(w.grids.Pollution)
	h.Write(w.grids.Noise)
	h.Write(w.grids.LandValue)
	h.Write(w.grids.Crime)

	digestF64(h, w.weather.Temperature)
	digestF64(h, w.weather.Precipitation)
	digestI64(h, int64(w.weather.Condition))
	for i := range w.disasters {
		digestI64(h, int64(w.disasters[i].Phase))
	}
	digestF64(h, w.energy.BatteryCharge)
	digestI64(h, int64(w.vpop.TotalPopulation()))

	return hex.EncodeToString(h.Sum(nil))
}

func digestU64(h hash.Hash, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	h.Write(buf[:])
}

func digestI64(h hash.Hash, v int64) { digestU64(h, uint64(v)) }

func digestF64(h hash.Hash, v float64) { digestU64(h, math.Float64bits(v)) }
