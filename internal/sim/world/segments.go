package world

import (
	"math"
	"sort"
)

type SegmentID uint32

// RoadSegment is a cubic Bezier between two junction nodes, with the grid
// cells it rasterizes to cached alongside.
type RoadSegment struct {
	ID     SegmentID
	Kind   RoadKind
	P0     Vec2
	P1     Vec2
	P2     Vec2
	P3     Vec2
	Length float64
	Cells  []CellPos
	NodeA  uint32
	NodeB  uint32
}

// RoadNode is a junction point in world space.
type RoadNode struct {
	ID       uint32
	Pos      Vec2
	Segments []SegmentID
}

// SegmentStore holds the curved-segment representation and its node graph.
type SegmentStore struct {
	segments map[SegmentID]*RoadSegment
	nodes    map[uint32]*RoadNode
	nodeAt   map[CellPos]uint32 // quantized endpoint lookup

	nextSegment uint32
	nextNode    uint32

	// removedEndpoints is a per-tick journal of deleted segment endpoints for
	// downstream consumers (intersection re-meshing, CSR rebuild hints).
	removedEndpoints []Vec2
}

func newSegmentStore() *SegmentStore {
	return &SegmentStore{
		segments: map[SegmentID]*RoadSegment{},
		nodes:    map[uint32]*RoadNode{},
		nodeAt:   map[CellPos]uint32{},
	}
}

func (s *SegmentStore) Count() int { return len(s.segments) }

func (s *SegmentStore) Get(id SegmentID) *RoadSegment { return s.segments[id] }

// OrderedIDs returns segment ids in ascending order for deterministic walks.
func (s *SegmentStore) OrderedIDs() []SegmentID {
	ids := make([]SegmentID, 0, len(s.segments))
	for id := range s.segments {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// RemovedEndpoints drains the deletion journal.
func (s *SegmentStore) RemovedEndpoints() []Vec2 {
	out := s.removedEndpoints
	s.removedEndpoints = nil
	return out
}

func quantize(v Vec2) CellPos {
	return CellPos{X: int(math.Round(v.X)), Y: int(math.Round(v.Y))}
}

func (s *SegmentStore) nodeFor(pos Vec2) *RoadNode {
	q := quantize(pos)
	if id, ok := s.nodeAt[q]; ok {
		return s.nodes[id]
	}
	s.nextNode++
	n := &RoadNode{ID: s.nextNode, Pos: pos}
	s.nodes[n.ID] = n
	s.nodeAt[q] = n.ID
	return n
}

// bezierPoint evaluates the cubic at t.
func bezierPoint(p0, p1, p2, p3 Vec2, t float64) Vec2 {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return Vec2{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}

// bezierLength estimates arc length by polyline subdivision.
func bezierLength(p0, p1, p2, p3 Vec2) float64 {
	const steps = 32
	total := 0.0
	prev := p0
	for i := 1; i <= steps; i++ {
		pt := bezierPoint(p0, p1, p2, p3, float64(i)/steps)
		total += math.Hypot(pt.X-prev.X, pt.Y-prev.Y)
		prev = pt
	}
	return total
}

const rasterSpacing = 0.5

// rasterizeBezier walks the curve at fixed arc-length spacing and snaps each
// sample to its cell, collapsing consecutive duplicates. Out-of-bounds cells
// are dropped.
func rasterizeBezier(p0, p1, p2, p3 Vec2) []CellPos {
	length := bezierLength(p0, p1, p2, p3)
	steps := int(length/rasterSpacing) + 1
	if steps < 2 {
		steps = 2
	}
	cells := make([]CellPos, 0, steps)
	for i := 0; i <= steps; i++ {
		pt := bezierPoint(p0, p1, p2, p3, float64(i)/float64(steps))
		cp := cellOf(pt)
		if !cp.InBounds() {
			continue
		}
		if n := len(cells); n > 0 && cells[n-1] == cp {
			continue
		}
		cells = append(cells, cp)
	}
	return cells
}

// straightControlPoints turns a line into an equivalent cubic.
func straightControlPoints(a, b Vec2) (Vec2, Vec2) {
	return Vec2{X: a.X + (b.X-a.X)/3, Y: a.Y + (b.Y-a.Y)/3},
		Vec2{X: a.X + 2*(b.X-a.X)/3, Y: a.Y + 2*(b.Y-a.Y)/3}
}

// placeSegment validates and commits one curved segment atomically: on any
// validation failure neither the store nor the grid is touched.
func (w *World) placeSegment(kind RoadKind, p0, p1, p2, p3 Vec2) (SegmentID, ResultCode) {
	if _, ok := roadSpecs[kind]; !ok {
		return 0, CodeInvalid
	}
	cells := rasterizeBezier(p0, p1, p2, p3)
	if len(cells) == 0 {
		return 0, CodeOutOfBounds
	}
	for _, cp := range cells {
		c := w.grid.At(cp)
		if c.Terrain == TerrainWater {
			return 0, CodeBlockedByWater
		}
		if c.Building != 0 {
			return 0, CodeAlreadyExists
		}
	}
	cost := roadSpecs[kind].CostPerCell * float64(len(cells))
	if w.budget.Treasury < cost {
		return 0, CodeInsufficientFunds
	}

	w.budget.Treasury -= cost

	s := w.segs
	s.nextSegment++
	seg := &RoadSegment{
		ID:     SegmentID(s.nextSegment),
		Kind:   kind,
		P0:     p0, P1: p1, P2: p2, P3: p3,
		Length: bezierLength(p0, p1, p2, p3),
		Cells:  cells,
	}
	na := s.nodeFor(p0)
	nb := s.nodeFor(p3)
	seg.NodeA, seg.NodeB = na.ID, nb.ID
	na.Segments = append(na.Segments, seg.ID)
	if nb != na {
		nb.Segments = append(nb.Segments, seg.ID)
	}
	s.segments[seg.ID] = seg

	for _, cp := range cells {
		w.addRoadCell(cp, kind)
	}
	w.roadTouched()
	return seg.ID, CodeOK
}

func (w *World) placeStraightSegment(kind RoadKind, a, b Vec2) (SegmentID, ResultCode) {
	c1, c2 := straightControlPoints(a, b)
	return w.placeSegment(kind, a, c1, c2, b)
}

// deleteSegment removes a segment, releasing its cells (refcounted) and
// detaching it from its nodes. Empty nodes are dropped.
func (w *World) deleteSegment(id SegmentID) ResultCode {
	s := w.segs
	seg, ok := s.segments[id]
	if !ok {
		return CodeInvalid
	}
	delete(s.segments, id)
	delete(w.oneWay, id)

	for _, nid := range []uint32{seg.NodeA, seg.NodeB} {
		n := s.nodes[nid]
		if n == nil {
			continue
		}
		kept := n.Segments[:0]
		for _, sid := range n.Segments {
			if sid != id {
				kept = append(kept, sid)
			}
		}
		n.Segments = kept
		if len(n.Segments) == 0 {
			delete(s.nodes, nid)
			delete(s.nodeAt, quantize(n.Pos))
		}
	}
	s.removedEndpoints = append(s.removedEndpoints, seg.P0, seg.P3)

	for _, cp := range seg.Cells {
		w.removeRoadCell(cp)
	}
	w.roadTouched()
	return CodeOK
}

// placeGridRoad lays an L-shaped pair of straight segments between two cells,
// the grid-style placement tool. Atomic: the second leg failing rolls back
// the first.
func (w *World) placeGridRoad(kind RoadKind, from, to CellPos) ResultCode {
	if !from.InBounds() || !to.InBounds() {
		return CodeOutOfBounds
	}
	a := from.Center()
	b := to.Center()
	if from.X == to.X || from.Y == to.Y {
		_, code := w.placeStraightSegment(kind, a, b)
		return code
	}
	corner := Vec2{X: b.X, Y: a.Y}
	funds := w.budget.Treasury
	journal := len(w.segs.removedEndpoints)
	first, code := w.placeStraightSegment(kind, a, corner)
	if code != CodeOK {
		return code
	}
	if _, code = w.placeStraightSegment(kind, corner, b); code != CodeOK {
		w.deleteSegment(first)
		// The rollback is not a player-visible deletion; drop its journal
		// entries so a failed action leaves the journal untouched.
		w.segs.removedEndpoints = w.segs.removedEndpoints[:journal]
		w.budget.Treasury = funds
		return code
	}
	return CodeOK
}
