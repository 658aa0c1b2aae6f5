package world

import "sort"

// ActionKind tags a GameAction variant. The set is closed; the executor
// switches exhaustively over it.
type ActionKind uint8

const (
	ActionNone ActionKind = iota
	ActionNewGame
	ActionPlaceRoad
	ActionPlaceCurvedRoad
	ActionPlaceGridRoad
	ActionDeleteSegment
	ActionSetOneWay
	ActionZone
	ActionBulldoze
	ActionPlaceUtility
	ActionPlaceService
	ActionPlaceTransitStop
	ActionCreateTransitLine
	ActionSetSpeed
	ActionSetPaused
	ActionSetTaxRate
	ActionTakeLoan
)

func (k ActionKind) String() string {
	switch k {
	case ActionNewGame:
		return "new_game"
	case ActionPlaceRoad:
		return "place_road"
	case ActionPlaceCurvedRoad:
		return "place_curved_road"
	case ActionPlaceGridRoad:
		return "place_grid_road"
	case ActionDeleteSegment:
		return "delete_segment"
	case ActionSetOneWay:
		return "set_one_way"
	case ActionZone:
		return "zone"
	case ActionBulldoze:
		return "bulldoze"
	case ActionPlaceUtility:
		return "place_utility"
	case ActionPlaceService:
		return "place_service"
	case ActionPlaceTransitStop:
		return "place_transit_stop"
	case ActionCreateTransitLine:
		return "create_transit_line"
	case ActionSetSpeed:
		return "set_speed"
	case ActionSetPaused:
		return "set_paused"
	case ActionSetTaxRate:
		return "set_tax_rate"
	case ActionTakeLoan:
		return "take_loan"
	default:
		return "none"
	}
}

// GameAction is the only legal path for external mutation. Variants use the
// flat-payload shape: each kind reads the fields it needs.
type GameAction struct {
	Kind ActionKind `json:"kind"`

	Pos   CellPos `json:"pos,omitempty"`
	ToPos CellPos `json:"to_pos,omitempty"`

	RoadType    RoadKind         `json:"road_type,omitempty"`
	Curve       [4]Vec2          `json:"curve,omitempty"`
	SegmentID   SegmentID        `json:"segment_id,omitempty"`
	Direction   SegmentDirection `json:"direction,omitempty"`
	ZoneType    ZoneKind         `json:"zone_type,omitempty"`
	UtilityType UtilityKind      `json:"utility_type,omitempty"`
	ServiceType ServiceKind      `json:"service_type,omitempty"`
	TransitMode TransitMode      `json:"transit_mode,omitempty"`
	StopIDs     []uint32         `json:"stop_ids,omitempty"`

	Speed  int     `json:"speed,omitempty"`
	Paused bool    `json:"paused,omitempty"`
	Rate   float64 `json:"rate,omitempty"`
	Amount float64 `json:"amount,omitempty"`
	Months int     `json:"months,omitempty"`

	Seed     int64  `json:"seed,omitempty"`
	CityName string `json:"city_name,omitempty"`
}

// ActionSource identifies who enqueued an action.
type ActionSource uint8

const (
	SourcePlayer ActionSource = iota
	SourceAgent
	SourceReplay
)

func (s ActionSource) String() string {
	switch s {
	case SourceAgent:
		return "agent"
	case SourceReplay:
		return "replay"
	default:
		return "player"
	}
}

type queuedAction struct {
	Action     GameAction
	Source     ActionSource
	Priority   int
	SubmitTick uint64
	seq        uint64
}

// ResultCode classifies executor outcomes. Failures are values, not errors:
// nothing is mutated and the code lands in the result log.
type ResultCode uint8

const (
	CodeOK ResultCode = iota
	CodeOutOfBounds
	CodeBlockedByWater
	CodeAlreadyExists
	CodeInsufficientFunds
	CodeNoRoadAdjacent
	CodeUgbViolation
	CodeInvalid
)

func (c ResultCode) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeOutOfBounds:
		return "out_of_bounds"
	case CodeBlockedByWater:
		return "blocked_by_water"
	case CodeAlreadyExists:
		return "already_exists"
	case CodeInsufficientFunds:
		return "insufficient_funds"
	case CodeNoRoadAdjacent:
		return "no_road_adjacent"
	case CodeUgbViolation:
		return "ugb_violation"
	default:
		return "invalid"
	}
}

// ActionResult is one executed action's outcome.
type ActionResult struct {
	Tick    uint64       `json:"tick"`
	Kind    ActionKind   `json:"kind"`
	Source  ActionSource `json:"source"`
	OK      bool         `json:"ok"`
	Code    ResultCode   `json:"code"`
	Message string       `json:"message,omitempty"`
}

// actionResultLog is a bounded ring of recent results.
type actionResultLog struct {
	buf  []ActionResult
	next int
	size int
}

const resultLogCapacity = 256

func newActionResultLog() *actionResultLog {
	return &actionResultLog{buf: make([]ActionResult, resultLogCapacity)}
}

func (l *actionResultLog) push(r ActionResult) {
	l.buf[l.next] = r
	l.next = (l.next + 1) % len(l.buf)
	if l.size < len(l.buf) {
		l.size++
	}
}

// Recent returns up to n results, newest first.
func (l *actionResultLog) Recent(n int) []ActionResult {
	if n > l.size {
		n = l.size
	}
	out := make([]ActionResult, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, l.buf[(l.next-i+len(l.buf))%len(l.buf)])
	}
	return out
}

// Submit enqueues an action for the next tick's executor. Higher priority
// dequeues first; ties keep submission order.
func (w *World) Submit(a GameAction, src ActionSource, priority int) {
	w.actionSeq++
	w.actionQueue = append(w.actionQueue, queuedAction{
		Action:     a,
		Source:     src,
		Priority:   priority,
		SubmitTick: w.tick,
		seq:        w.actionSeq,
	})
}

func (w *World) drainActionQueue() []queuedAction {
	pending := w.actionQueue
	w.actionQueue = nil
	sort.SliceStable(pending, func(i, j int) bool {
		if pending[i].Priority != pending[j].Priority {
			return pending[i].Priority > pending[j].Priority
		}
		return pending[i].seq < pending[j].seq
	})
	return pending
}
