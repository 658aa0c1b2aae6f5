package world

import "container/heap"

// csrGraph is a compressed-sparse-row snapshot of the road network: nodes are
// road cells, edges 4-neighbor adjacency. It is immutable once built; the
// world rebuilds it lazily when the road change counter advances.
type csrGraph struct {
	nodeOf  []int32 // cell index -> node, -1 when not road
	cells   []CellPos
	offsets []int32
	targets []int32
	weights []float32
	builtAt uint64
}

// baseCost is the per-cell traversal cost for a road kind. Highway is the unit
// so the Manhattan heuristic (cells x 1.0) never overestimates.
func baseCost(kind RoadKind) float32 {
	hw := roadSpecs[RoadHighway].MaxSpeed
	sp := roadSpecs[kind].MaxSpeed
	if sp <= 0 {
		return 16
	}
	c := float32(hw / sp)
	if c < 1 {
		c = 1
	}
	return c
}

func buildCSR(grid *Grid, roads *RoadNetwork) *csrGraph {
	g := &csrGraph{
		nodeOf:  make([]int32, GridSize*GridSize),
		builtAt: roads.changeCounter,
	}
	for i := range g.nodeOf {
		g.nodeOf[i] = -1
	}
	for i := 0; i < GridSize*GridSize; i++ {
		if roads.refCount[i] > 0 {
			g.nodeOf[i] = int32(len(g.cells))
			g.cells = append(g.cells, cellFromIndex(i))
		}
	}

	g.offsets = make([]int32, len(g.cells)+1)
	scratch := make([]CellPos, 0, 4)
	for n, cp := range g.cells {
		g.offsets[n] = int32(len(g.targets))
		scratch = neighbors4(cp, scratch[:0])
		for _, np := range scratch {
			tn := g.nodeOf[np.Index()]
			if tn < 0 {
				continue
			}
			g.targets = append(g.targets, tn)
			g.weights = append(g.weights, baseCost(grid.At(np).Road))
		}
	}
	g.offsets[len(g.cells)] = int32(len(g.targets))
	return g
}

// pathOptions tweak edge expansion. Traffic makes the weight
// base*(1+density/scale); forbidden holds directed edges excluded by one-way
// constraints, keyed from<<32|to in node indices.
type pathOptions struct {
	traffic      []uint8
	trafficScale float32
	forbidden    map[uint64]struct{}
}

type openItem struct {
	node int32
	f    float32
	seq  int32 // insertion order breaks ties for determinism
}

type openHeap []openItem

func (h openHeap) Len() int { return len(h) }
func (h openHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].seq < h[j].seq
}
func (h openHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *openHeap) Push(x any)   { *h = append(*h, x.(openItem)) }
func (h *openHeap) Pop() any     { old := *h; n := len(old); it := old[n-1]; *h = old[:n-1]; return it }

// FindPath runs A* with a Manhattan heuristic. Returns the full cell path
// including both endpoints, or nil when unreachable.
func (g *csrGraph) FindPath(start, goal CellPos, opt pathOptions) []CellPos {
	path, _ := g.findPathCost(start, goal, opt)
	return path
}

func (g *csrGraph) findPathCost(start, goal CellPos, opt pathOptions) ([]CellPos, float32) {
	if !start.InBounds() || !goal.InBounds() {
		return nil, 0
	}
	sn := g.nodeOf[start.Index()]
	gn := g.nodeOf[goal.Index()]
	if sn < 0 || gn < 0 {
		return nil, 0
	}
	if sn == gn {
		return []CellPos{start}, 0
	}

	n := len(g.cells)
	gScore := make([]float32, n)
	came := make([]int32, n)
	closed := make([]bool, n)
	for i := range gScore {
		gScore[i] = -1
		came[i] = -1
	}
	gScore[sn] = 0

	h := func(node int32) float32 {
		return float32(Manhattan(g.cells[node], g.cells[gn]))
	}

	var open openHeap
	var seq int32
	heap.Push(&open, openItem{node: sn, f: h(sn), seq: seq})

	for open.Len() > 0 {
		cur := heap.Pop(&open).(openItem).node
		if closed[cur] {
			continue
		}
		if cur == gn {
			return g.reconstruct(came, gn), gScore[gn]
		}
		closed[cur] = true

		for e := g.offsets[cur]; e < g.offsets[cur+1]; e++ {
			to := g.targets[e]
			if closed[to] {
				continue
			}
			if opt.forbidden != nil {
				if _, bad := opt.forbidden[edgeKey(cur, to)]; bad {
					continue
				}
			}
			w := g.weights[e]
			if opt.traffic != nil && opt.trafficScale > 0 {
				w *= 1 + float32(opt.traffic[g.cells[to].Index()])/opt.trafficScale
			}
			cand := gScore[cur] + w
			if gScore[to] >= 0 && cand >= gScore[to] {
				continue
			}
			gScore[to] = cand
			came[to] = cur
			seq++
			heap.Push(&open, openItem{node: to, f: cand + h(to), seq: seq})
		}
	}
	return nil, 0
}

func (g *csrGraph) reconstruct(came []int32, goal int32) []CellPos {
	var rev []CellPos
	for n := goal; n >= 0; n = came[n] {
		rev = append(rev, g.cells[n])
	}
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}

func edgeKey(from, to int32) uint64 {
	return uint64(uint32(from))<<32 | uint64(uint32(to))
}

// routingGraph returns the current CSR snapshot, rebuilding if the road
// network changed since the last build.
func (w *World) routingGraph() *csrGraph {
	if w.csr == nil || w.csr.builtAt != w.roads.changeCounter {
		w.csr = buildCSR(&w.grid, &w.roads)
		w.ch = nil
	}
	return w.csr
}

// SegmentDirection constrains travel along a one-way segment.
type SegmentDirection int8

const (
	DirNone    SegmentDirection = 0
	DirForward SegmentDirection = 1
	DirReverse SegmentDirection = -1
)

// forbiddenEdges derives the directed-edge exclusion set from segment one-way
// assignments against a specific CSR snapshot.
func (w *World) forbiddenEdges(g *csrGraph) map[uint64]struct{} {
	if len(w.oneWay) == 0 {
		return nil
	}
	out := map[uint64]struct{}{}
	for _, id := range w.segs.OrderedIDs() {
		dir, ok := w.oneWay[id]
		if !ok || dir == DirNone {
			continue
		}
		seg := w.segs.Get(id)
		for i := 0; i+1 < len(seg.Cells); i++ {
			a := g.nodeOf[seg.Cells[i].Index()]
			b := g.nodeOf[seg.Cells[i+1].Index()]
			if a < 0 || b < 0 {
				continue
			}
			switch dir {
			case DirForward:
				out[edgeKey(b, a)] = struct{}{}
			case DirReverse:
				out[edgeKey(a, b)] = struct{}{}
			}
		}
	}
	return out
}
