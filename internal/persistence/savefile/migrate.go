package savefile

import (
	"encoding/json"
	"fmt"
	"os"
)

// A Step migrates a record from version From to From+1. Apply fills defaults
// for fields the older schema did not carry and may rewrite existing fields
// when a semantic change requires it. It must raise Version by exactly one.
type Step struct {
	From        uint32
	Description string
	Apply       func(*SaveRecord)
}

// MigrationReport summarizes what Migrate did to a loaded record.
type MigrationReport struct {
	OriginalVersion uint32
	FinalVersion    uint32
	StepsApplied    int
	Descriptions    []string
}

var steps = buildRegistry([]Step{
	{
		From:        0,
		Description: "add extended departmental budget and loans",
		Apply: func(r *SaveRecord) {
			r.Extended = ExtendedBudgetRec{
				Police: 1, Fire: 1, Health: 1, Education: 1,
				Roads: 1, Parks: 1, Sanitation: 1,
			}
			r.Loans = nil
		},
	},
	{
		From:        1,
		Description: "add climate, weather state and disaster machines",
		Apply: func(r *SaveRecord) {
			r.Weather = WeatherRec{
				ClimateZone:   0, // temperate
				Season:        0, // spring
				Temperature:   15,
				Precipitation: 0,
				CloudCover:    0.2,
				Condition:     0, // clear
			}
			r.Disasters = nil
		},
	},
	{
		From:        2,
		Description: "add transit network, energy storage and one-way roads",
		Apply: func(r *SaveRecord) {
			r.TransitSys = TransitRec{}
			r.Energy = EnergyRec{BatteryCharge: 0, BatteryCapacity: 0, LineEfficiency: 0.94}
			r.OneWay = nil
		},
	},
})

// buildRegistry asserts the chain is contiguous (0..CurrentVersion-1) with no
// duplicates. A broken chain is a programming error surfaced at init.
func buildRegistry(in []Step) map[uint32]Step {
	m := make(map[uint32]Step, len(in))
	for _, s := range in {
		if _, dup := m[s.From]; dup {
			panic(fmt.Sprintf("savefile: duplicate migration step from v%d", s.From))
		}
		if s.Apply == nil {
			panic(fmt.Sprintf("savefile: migration step from v%d has no Apply", s.From))
		}
		m[s.From] = s
	}
	for v := uint32(0); v < CurrentVersion; v++ {
		if _, ok := m[v]; !ok {
			panic(fmt.Sprintf("savefile: migration chain gap at v%d", v))
		}
	}
	if len(m) != int(CurrentVersion) {
		panic("savefile: migration registry has steps beyond CurrentVersion")
	}
	return m
}

// Migrate walks the record up to CurrentVersion. A record newer than
// CurrentVersion is rejected with VersionMismatchError.
func Migrate(r *SaveRecord) (MigrationReport, error) {
	rep := MigrationReport{OriginalVersion: r.Version, FinalVersion: r.Version}
	if r.Version > CurrentVersion {
		return rep, &VersionMismatchError{ExpectedMax: CurrentVersion, Found: r.Version}
	}
	for r.Version < CurrentVersion {
		s, ok := steps[r.Version]
		if !ok {
			return rep, fmt.Errorf("savefile: no migration step from v%d", r.Version)
		}
		before := r.Version
		s.Apply(r)
		r.Version = before + 1
		rep.StepsApplied++
		rep.Descriptions = append(rep.Descriptions, s.Description)
	}
	rep.FinalVersion = r.Version
	return rep, nil
}

// Encode serializes a record to the envelope bytes ready to be written out.
func Encode(r *SaveRecord, meta Metadata, timestamp uint64, compress bool) ([]byte, error) {
	r.Version = CurrentVersion
	payload, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("savefile: encode payload: %w", err)
	}
	return Wrap(payload, CurrentVersion, meta, timestamp, compress)
}

// Decode unwraps envelope bytes, decodes the payload and runs the migration
// chain. Legacy (no-magic) files decode as version-0 payloads.
func Decode(data []byte) (*SaveRecord, Metadata, MigrationReport, error) {
	u, err := Unwrap(data)
	if err != nil {
		return nil, Metadata{}, MigrationReport{}, err
	}
	var r SaveRecord
	if err := json.Unmarshal(u.Payload, &r); err != nil {
		return nil, u.Meta, MigrationReport{}, fmt.Errorf("savefile: decode payload: %w", err)
	}
	if u.Legacy {
		r.Version = 0
	}
	rep, err := Migrate(&r)
	if err != nil {
		return nil, u.Meta, rep, err
	}
	return &r, u.Meta, rep, nil
}

// WriteFile encodes and writes a save atomically (write temp, rename).
func WriteFile(path string, r *SaveRecord, meta Metadata, timestamp uint64) error {
	data, err := Encode(r, meta, timestamp, true)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// ReadFile loads, decodes and migrates a save from disk.
func ReadFile(path string) (*SaveRecord, Metadata, MigrationReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Metadata{}, MigrationReport{}, err
	}
	return Decode(data)
}
