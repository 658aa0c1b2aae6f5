package world

// CitizenID indexes the citizen table. Despawned slots are reused in LIFO
// order so ids stay deterministic.
type CitizenID uint32

// NoneCitizen is the sentinel for a missing or dangling family reference.
const NoneCitizen CitizenID = ^CitizenID(0)

type CitizenState uint8

const (
	AtHome CitizenState = iota
	CommutingToWork
	Working
	CommutingToShop
	Shopping
	CommutingToLeisure
	AtLeisure
	CommutingToSchool
	AtSchool
	CommutingHome
)

func (s CitizenState) String() string {
	switch s {
	case CommutingToWork:
		return "commuting_to_work"
	case Working:
		return "working"
	case CommutingToShop:
		return "commuting_to_shop"
	case Shopping:
		return "shopping"
	case CommutingToLeisure:
		return "commuting_to_leisure"
	case AtLeisure:
		return "at_leisure"
	case CommutingToSchool:
		return "commuting_to_school"
	case AtSchool:
		return "at_school"
	case CommutingHome:
		return "commuting_home"
	default:
		return "at_home"
	}
}

func (s CitizenState) commuting() bool {
	switch s {
	case CommutingToWork, CommutingToShop, CommutingToLeisure, CommutingToSchool, CommutingHome:
		return true
	}
	return false
}

// LodTier buckets simulation detail per citizen. Abstract citizens skip
// movement and detailed state logic but still age and count in aggregates.
type LodTier uint8

const (
	LodFull LodTier = iota
	LodSimplified
	LodAbstract
)

type TransportMode uint8

const (
	TransportWalk TransportMode = iota
	TransportCar
	TransportTransit
)

// transportSpeedFactor scales road speed per chosen mode.
func transportSpeedFactor(m TransportMode) float64 {
	switch m {
	case TransportCar:
		return 1.0
	case TransportTransit:
		return 0.8
	default:
		return 0.3
	}
}

type Needs struct {
	Hunger  float64
	Energy  float64
	Social  float64
	Fun     float64
	Comfort float64
}

type Personality struct {
	Ambition    float64
	Sociability float64
	Materialism float64
	Resilience  float64
}

type Gender uint8

const (
	GenderFemale Gender = iota
	GenderMale
	GenderOther
)

type Details struct {
	Age       int
	Gender    Gender
	Education uint8
	Happiness float64
	Health    float64
	Salary    float64
	Savings   float64
}

// PathCache is an installed route: ordered waypoints plus the current index.
type PathCache struct {
	Waypoints []CellPos
	Index     int
}

type Citizen struct {
	Alive bool

	Pos Vec2
	Vel Vec2

	HomeCell CellPos
	Home     BuildingID
	WorkCell CellPos
	Work     BuildingID // 0 when unemployed

	State CitizenState
	Path  *PathCache
	// ComputingPath marks an in-flight path request; the install system
	// clears it when the result lands.
	ComputingPath bool

	Needs       Needs
	Personality Personality
	Details     Details

	Partner  CitizenID
	Parents  []CitizenID
	Children []CitizenID

	Lod       LodTier
	Transport TransportMode

	// ActivityTicksLeft time-boxes Shopping and AtLeisure, in slow ticks.
	ActivityTicksLeft int
}

func (w *World) citizen(id CitizenID) *Citizen {
	if int(id) >= len(w.citizens) {
		return nil
	}
	c := &w.citizens[id]
	if !c.Alive {
		return nil
	}
	return c
}

// alivePopulation counts real citizens. Virtual population adds on top.
func (w *World) alivePopulation() int {
	return w.aliveCitizens
}

// spawnCitizen materializes a citizen at home. Returns NoneCitizen when the
// real-agent cap is reached; callers fold the person into the virtual
// population instead.
func (w *World) spawnCitizen(home BuildingID) CitizenID {
	if w.aliveCitizens >= w.maxRealCitizens {
		return NoneCitizen
	}
	b := w.building(home)
	if b == nil || b.Occupants >= b.Capacity {
		return NoneCitizen
	}

	var id CitizenID
	if n := len(w.freeCitizens); n > 0 {
		id = w.freeCitizens[n-1]
		w.freeCitizens = w.freeCitizens[:n-1]
	} else {
		w.citizens = append(w.citizens, Citizen{})
		id = CitizenID(len(w.citizens) - 1)
	}

	c := &w.citizens[id]
	*c = Citizen{
		Alive:    true,
		Pos:      b.Cell.Center(),
		HomeCell: b.Cell,
		Home:     home,
		State:    AtHome,
		Needs:    Needs{Hunger: 80, Energy: 90, Social: 70, Fun: 70, Comfort: 70},
		Personality: Personality{
			Ambition:    w.rng.Float64(),
			Sociability: w.rng.Float64(),
			Materialism: w.rng.Float64(),
			Resilience:  w.rng.Float64(),
		},
		Details: Details{
			Age:       18 + w.rng.IntN(50),
			Gender:    Gender(w.rng.IntN(3)),
			Education: uint8(w.rng.IntN(4)),
			Happiness: 60,
			Health:    85,
			Savings:   float64(w.rng.IntN(2000)),
		},
		Partner:   NoneCitizen,
		Transport: TransportMode(w.rng.IntN(3)),
	}
	b.Occupants++
	w.aliveCitizens++
	return id
}

// despawnCitizen removes a citizen and severs reciprocal family links. Links
// pointing at the dead citizen elsewhere become the sentinel.
func (w *World) despawnCitizen(id CitizenID) {
	c := w.citizen(id)
	if c == nil {
		return
	}
	if b := w.building(c.Home); b != nil && b.Occupants > 0 {
		b.Occupants--
	}
	if p := w.citizen(c.Partner); p != nil {
		p.Partner = NoneCitizen
	}
	for _, pid := range c.Parents {
		if p := w.citizen(pid); p != nil {
			p.Children = removeCitizenRef(p.Children, id)
		}
	}
	for _, cid := range c.Children {
		if ch := w.citizen(cid); ch != nil {
			ch.Parents = removeCitizenRef(ch.Parents, id)
		}
	}
	c.Alive = false
	c.Path = nil
	w.aliveCitizens--
	w.freeCitizens = append(w.freeCitizens, id)
}

func removeCitizenRef(list []CitizenID, id CitizenID) []CitizenID {
	out := list[:0]
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// marry links two citizens reciprocally.
func (w *World) marry(a, b CitizenID) {
	ca, cb := w.citizen(a), w.citizen(b)
	if ca == nil || cb == nil || ca.Partner != NoneCitizen || cb.Partner != NoneCitizen {
		return
	}
	ca.Partner = b
	cb.Partner = a
}

// birth spawns a child in the mother's home with reciprocal parent links.
func (w *World) birth(mother CitizenID) CitizenID {
	m := w.citizen(mother)
	if m == nil {
		return NoneCitizen
	}
	id := w.spawnCitizen(m.Home)
	if id == NoneCitizen {
		w.vpop.absorb(1)
		return NoneCitizen
	}
	child := &w.citizens[id]
	child.Details.Age = 0
	child.Details.Education = 0
	child.Parents = append(child.Parents, mother)
	m.Children = append(m.Children, id)
	if f := w.citizen(m.Partner); f != nil {
		child.Parents = append(child.Parents, m.Partner)
		f.Children = append(f.Children, id)
	}
	return id
}
