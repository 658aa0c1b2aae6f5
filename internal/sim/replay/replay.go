// Package replay records executed game actions and feeds them back into a
// fresh world. A replay applied to the same seed reproduces the original
// simulation tick for tick; the per-tick state digest is the verification
// primitive.
package replay

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"

	"megacity.sim/internal/sim/world"
)

// Header identifies a recording session and the starting conditions a player
// must reproduce.
type Header struct {
	SessionID string `json:"session_id"`
	Seed      int64  `json:"seed"`
	CityName  string `json:"city_name"`
	StartedAt int64  `json:"started_at_unix"`
}

// Entry is one executed action at its tick.
type Entry struct {
	Tick   uint64             `json:"tick"`
	Action world.GameAction   `json:"action"`
	Source world.ActionSource `json:"source"`
}

// Footer closes the file; EntryCount must match the entry list.
type Footer struct {
	EntryCount int    `json:"entry_count"`
	FinalTick  uint64 `json:"final_tick"`
}

// File is the flat on-disk layout. Entries must be sorted by tick.
type File struct {
	Header  Header  `json:"header"`
	Entries []Entry `json:"entries"`
	Footer  Footer  `json:"footer"`
}

// Validate checks the structural contract: sorted ticks and a footer count
// matching the entry list. Violations come back as strings so callers can
// surface them all at once.
func (f *File) Validate() []string {
	var problems []string
	if f.Footer.EntryCount != len(f.Entries) {
		problems = append(problems, fmt.Sprintf(
			"footer entry_count %d does not match %d entries", f.Footer.EntryCount, len(f.Entries)))
	}
	for i := 1; i < len(f.Entries); i++ {
		if f.Entries[i].Tick < f.Entries[i-1].Tick {
			problems = append(problems, fmt.Sprintf(
				"entry %d at tick %d precedes entry %d at tick %d",
				i, f.Entries[i].Tick, i-1, f.Entries[i-1].Tick))
		}
	}
	if len(f.Entries) > 0 && f.Footer.FinalTick < f.Entries[len(f.Entries)-1].Tick {
		problems = append(problems, "footer final_tick precedes the last entry")
	}
	return problems
}

// Recorder implements world.ActionRecorder, buffering executed actions until
// Finish writes them out.
type Recorder struct {
	header  Header
	entries []Entry
}

func NewRecorder(seed int64, cityName string) *Recorder {
	return &Recorder{header: Header{
		SessionID: uuid.NewString(),
		Seed:      seed,
		CityName:  cityName,
		StartedAt: time.Now().Unix(),
	}}
}

func (r *Recorder) RecordAction(tick uint64, a world.GameAction, src world.ActionSource) {
	r.entries = append(r.entries, Entry{Tick: tick, Action: a, Source: src})
}

func (r *Recorder) EntryCount() int { return len(r.entries) }

// Finish assembles the flat file. Entries are already tick-ordered because
// recording follows execution order, but sort defensively before sealing.
func (r *Recorder) Finish(finalTick uint64) *File {
	sort.SliceStable(r.entries, func(i, j int) bool { return r.entries[i].Tick < r.entries[j].Tick })
	return &File{
		Header:  r.header,
		Entries: r.entries,
		Footer:  Footer{EntryCount: len(r.entries), FinalTick: finalTick},
	}
}

// Player feeds recorded actions into a world at their original ticks. Submit
// before each Step: actions recorded at tick T were enqueued during T-1 and
// executed in T's PreSim.
type Player struct {
	file *File
	next int
}

func NewPlayer(f *File) (*Player, error) {
	if problems := f.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("replay validation: %v", problems)
	}
	return &Player{file: f}, nil
}

func (p *Player) Header() Header { return p.file.Header }

// Done reports whether every entry has been fed.
func (p *Player) Done() bool { return p.next >= len(p.file.Entries) }

// Remaining is the number of entries not yet fed.
func (p *Player) Remaining() int { return len(p.file.Entries) - p.next }

// FeedTick submits all entries recorded for the given tick.
func (p *Player) FeedTick(w *world.World, tick uint64) {
	for p.next < len(p.file.Entries) && p.file.Entries[p.next].Tick == tick {
		e := p.file.Entries[p.next]
		w.Submit(e.Action, world.SourceReplay, 0)
		p.next++
	}
}

// EncodeBinary is the compact gob encoding.
func EncodeBinary(f *File) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(f); err != nil {
		return nil, fmt.Errorf("replay encode: %w", err)
	}
	return buf.Bytes(), nil
}

func DecodeBinary(data []byte) (*File, error) {
	var f File
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&f); err != nil {
		return nil, fmt.Errorf("replay decode: %w", err)
	}
	return &f, nil
}

// EncodeJSON is the inspectable encoding.
func EncodeJSON(f *File) ([]byte, error) {
	return json.MarshalIndent(f, "", "  ")
}

func DecodeJSON(data []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("replay decode: %w", err)
	}
	return &f, nil
}

// WriteFile picks the encoding from the extension: .json is inspectable,
// anything else gets the compact binary form.
func WriteFile(path string, f *File) error {
	var data []byte
	var err error
	if isJSONPath(path) {
		data, err = EncodeJSON(f)
	} else {
		data, err = EncodeBinary(f)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if isJSONPath(path) {
		return DecodeJSON(data)
	}
	return DecodeBinary(data)
}

func isJSONPath(path string) bool {
	return len(path) > 5 && path[len(path)-5:] == ".json"
}
