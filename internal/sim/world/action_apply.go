package world

// ActionRecorder receives every executed action. Implemented by the replay
// recorder; nil disables recording.
type ActionRecorder interface {
	RecordAction(tick uint64, a GameAction, src ActionSource)
}

// ActionAuditor receives executed actions with their outcome for operational
// logging. Implemented in internal/persistence/log; may be nil.
type ActionAuditor interface {
	AuditAction(tick uint64, a GameAction, src ActionSource, res ActionResult)
}

// systemActionExecutor dequeues pending actions in priority order, validates
// and applies each, and writes results to the bounded log. Runs first in
// PreSim so every later system sees post-action state.
func (w *World) systemActionExecutor() {
	for _, qa := range w.drainActionQueue() {
		code, msg := w.applyAction(qa.Action)
		res := ActionResult{
			Tick:    w.tick,
			Kind:    qa.Action.Kind,
			Source:  qa.Source,
			OK:      code == CodeOK,
			Code:    code,
			Message: msg,
		}
		w.resultLog.push(res)
		if w.recorder != nil && qa.Source != SourceReplay {
			w.recorder.RecordAction(w.tick, qa.Action, qa.Source)
		}
		if w.auditor != nil {
			w.auditor.AuditAction(w.tick, qa.Action, qa.Source, res)
		}
	}
}

// applyAction validates and applies one action. On any non-OK code the world
// is untouched.
func (w *World) applyAction(a GameAction) (ResultCode, string) {
	switch a.Kind {
	case ActionNewGame:
		w.resetForNewGame(a.Seed, a.CityName)
		return CodeOK, ""

	case ActionPlaceRoad:
		if !a.Pos.InBounds() || !a.ToPos.InBounds() {
			return CodeOutOfBounds, "endpoint outside grid"
		}
		_, code := w.placeStraightSegment(a.RoadType, a.Pos.Center(), a.ToPos.Center())
		return code, ""

	case ActionPlaceCurvedRoad:
		_, code := w.placeSegment(a.RoadType, a.Curve[0], a.Curve[1], a.Curve[2], a.Curve[3])
		return code, ""

	case ActionPlaceGridRoad:
		return w.placeGridRoad(a.RoadType, a.Pos, a.ToPos), ""

	case ActionDeleteSegment:
		return w.deleteSegment(a.SegmentID), ""

	case ActionSetOneWay:
		if w.segs.Get(a.SegmentID) == nil {
			return CodeInvalid, "no such segment"
		}
		if a.Direction == DirNone {
			delete(w.oneWay, a.SegmentID)
		} else {
			w.oneWay[a.SegmentID] = a.Direction
		}
		w.invalidatePaths()
		return CodeOK, ""

	case ActionZone:
		return w.zoneCells(a.Pos, a.ToPos, a.ZoneType)

	case ActionBulldoze:
		return w.bulldoze(a.Pos)

	case ActionPlaceUtility:
		return w.placeUtility(a.Pos, a.UtilityType)

	case ActionPlaceService:
		return w.placeService(a.Pos, a.ServiceType)

	case ActionPlaceTransitStop:
		return w.placeTransitStop(a.Pos, a.TransitMode)

	case ActionCreateTransitLine:
		return w.createTransitLine(a.TransitMode, a.StopIDs)

	case ActionSetSpeed:
		if a.Speed < 0 || a.Speed > 3 {
			return CodeInvalid, "speed out of range"
		}
		w.clock.Speed = a.Speed
		w.clock.Paused = a.Speed == 0
		return CodeOK, ""

	case ActionSetPaused:
		w.clock.Paused = a.Paused
		return CodeOK, ""

	case ActionSetTaxRate:
		if a.Rate < 0 || a.Rate > 0.5 {
			return CodeInvalid, "tax rate out of range"
		}
		switch {
		case a.ZoneType.IsResidential():
			w.budget.TaxResidential = a.Rate
		case a.ZoneType.IsCommercial():
			w.budget.TaxCommercial = a.Rate
		case a.ZoneType == ZoneIndustrial:
			w.budget.TaxIndustrial = a.Rate
		case a.ZoneType == ZoneOffice:
			w.budget.TaxOffice = a.Rate
		default:
			return CodeInvalid, "unknown tax class"
		}
		return CodeOK, ""

	case ActionTakeLoan:
		return w.takeLoan(a.Amount, a.Months)

	default:
		return CodeInvalid, "unknown action kind"
	}
}

// zoneCells paints a zone over a rectangle. Water, road and built cells are
// rejected before anything is painted, keeping the command atomic.
func (w *World) zoneCells(from, to CellPos, zone ZoneKind) (ResultCode, string) {
	if _, ok := zoneSpecs[zone]; !ok && zone != ZoneNone {
		return CodeInvalid, "unknown zone kind"
	}
	x0, x1 := minInt(from.X, to.X), maxInt(from.X, to.X)
	y0, y1 := minInt(from.Y, to.Y), maxInt(from.Y, to.Y)
	if x0 < 0 || y0 < 0 || x1 >= GridSize || y1 >= GridSize {
		return CodeOutOfBounds, "zone rectangle outside grid"
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c := w.grid.At(CellPos{X: x, Y: y})
			if c.Terrain == TerrainWater {
				return CodeBlockedByWater, ""
			}
			if c.Terrain == TerrainRoad {
				return CodeAlreadyExists, "cannot zone a road cell"
			}
		}
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			w.grid.At(CellPos{X: x, Y: y}).Zone = zone
		}
	}
	return CodeOK, ""
}

// bulldoze removes whatever occupies a cell. Zoning is preserved when a
// building is demolished.
func (w *World) bulldoze(p CellPos) (ResultCode, string) {
	if !p.InBounds() {
		return CodeOutOfBounds, ""
	}
	c := w.grid.At(p)
	if c.Building != 0 {
		w.demolishBuilding(c.Building)
		return CodeOK, ""
	}
	if c.Terrain == TerrainRoad {
		// Remove every segment covering this cell.
		removed := false
		for _, id := range w.segs.OrderedIDs() {
			seg := w.segs.Get(id)
			for _, cp := range seg.Cells {
				if cp == p {
					w.deleteSegment(id)
					removed = true
					break
				}
			}
		}
		if removed {
			return CodeOK, ""
		}
	}
	return CodeInvalid, "nothing to bulldoze"
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
