package world

import (
	"container/heap"
	"sort"
)

// chGraph is a contraction hierarchy over a CSR snapshot. Nodes are contracted
// in ascending degree order; at contraction time every pair of remaining
// neighbors gets a shortcut (no witness search — extra shortcuts only cost
// memory, never correctness). Queries run bidirectional Dijkstra restricted to
// upward edges and must report the same cost as plain A*.
type chGraph struct {
	base *csrGraph
	rank []int32
	up   [][]chEdge
}

type chEdge struct {
	to int32
	w  float32
}

func buildContractionHierarchy(base *csrGraph) *chGraph {
	n := len(base.cells)
	adj := make([]map[int32]float32, n)
	for i := range adj {
		adj[i] = map[int32]float32{}
	}
	for u := 0; u < n; u++ {
		for e := base.offsets[u]; e < base.offsets[u+1]; e++ {
			v := base.targets[e]
			w := base.weights[e]
			if old, ok := adj[u][v]; !ok || w < old {
				adj[u][v] = w
			}
		}
	}

	order := make([]int32, n)
	for i := range order {
		order[i] = int32(i)
	}
	sort.SliceStable(order, func(i, j int) bool {
		di := len(adj[order[i]])
		dj := len(adj[order[j]])
		if di != dj {
			return di < dj
		}
		return order[i] < order[j]
	})

	ch := &chGraph{
		base: base,
		rank: make([]int32, n),
		up:   make([][]chEdge, n),
	}
	contracted := make([]bool, n)

	for i, v := range order {
		ch.rank[v] = int32(i)

		// Remaining neighbors become this node's upward edges.
		nbrs := make([]int32, 0, len(adj[v]))
		for u := range adj[v] {
			if !contracted[u] {
				nbrs = append(nbrs, u)
			}
		}
		sort.Slice(nbrs, func(a, b int) bool { return nbrs[a] < nbrs[b] })
		for _, u := range nbrs {
			ch.up[v] = append(ch.up[v], chEdge{to: u, w: adj[v][u]})
		}

		// Shortcut every neighbor pair through v.
		for ai := 0; ai < len(nbrs); ai++ {
			for bi := ai + 1; bi < len(nbrs); bi++ {
				a, b := nbrs[ai], nbrs[bi]
				sc := adj[v][a] + adj[v][b]
				if old, ok := adj[a][b]; !ok || sc < old {
					adj[a][b] = sc
					adj[b][a] = sc
				}
			}
		}

		contracted[v] = true
		for _, u := range nbrs {
			delete(adj[u], v)
		}
		adj[v] = nil
	}
	return ch
}

type chQueueItem struct {
	node int32
	d    float32
	seq  int32
}

type chQueue []chQueueItem

func (h chQueue) Len() int { return len(h) }
func (h chQueue) Less(i, j int) bool {
	if h[i].d != h[j].d {
		return h[i].d < h[j].d
	}
	return h[i].seq < h[j].seq
}
func (h chQueue) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *chQueue) Push(x any)   { *h = append(*h, x.(chQueueItem)) }
func (h *chQueue) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// QueryCost returns the shortest-path cost between two road cells, or false
// when disconnected.
func (ch *chGraph) QueryCost(start, goal CellPos) (float32, bool) {
	if !start.InBounds() || !goal.InBounds() {
		return 0, false
	}
	sn := ch.base.nodeOf[start.Index()]
	gn := ch.base.nodeOf[goal.Index()]
	if sn < 0 || gn < 0 {
		return 0, false
	}
	if sn == gn {
		return 0, true
	}

	df := ch.upwardDijkstra(sn)
	db := ch.upwardDijkstra(gn)

	best := float32(-1)
	for node, d := range df {
		if bd, ok := db[node]; ok {
			if total := d + bd; best < 0 || total < best {
				best = total
			}
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

func (ch *chGraph) upwardDijkstra(src int32) map[int32]float32 {
	dist := map[int32]float32{src: 0}
	done := map[int32]bool{}
	var q chQueue
	var seq int32
	heap.Push(&q, chQueueItem{node: src, d: 0})
	for q.Len() > 0 {
		it := heap.Pop(&q).(chQueueItem)
		if done[it.node] {
			continue
		}
		done[it.node] = true
		for _, e := range ch.up[it.node] {
			cand := dist[it.node] + e.w
			if old, ok := dist[e.to]; !ok || cand < old {
				dist[e.to] = cand
				seq++
				heap.Push(&q, chQueueItem{node: e.to, d: cand, seq: seq})
			}
		}
	}
	return dist
}

// contractionHierarchy returns the CH for the current routing graph, building
// it on first use after a road change.
func (w *World) contractionHierarchy() *chGraph {
	g := w.routingGraph()
	if w.ch == nil || w.ch.base != g {
		w.ch = buildContractionHierarchy(g)
	}
	return w.ch
}
