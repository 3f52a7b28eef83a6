// Package graph runs network algorithms over the aggregated edges. Every
// query operates on a point-in-time ledger snapshot, so concurrent ingestion
// cannot tear a traversal.
package graph

import (
	"container/heap"
	"sort"

	"github.com/shopspring/decimal"

	"bankgraph/internal/ledger"
)

// Degree ranks one account by its number of distinct incident edges,
// incoming plus outgoing.
type Degree struct {
	AccountID string `json:"account_id"`
	Degree    int    `json:"degree"`
}

type Analytics struct {
	ledger *ledger.Ledger
}

func New(l *ledger.Ledger) *Analytics {
	return &Analytics{ledger: l}
}

// Connected reports whether b is reachable from a when edge direction is
// ignored. Unknown ids are simply not connected.
func (a *Analytics) Connected(x, y string) bool {
	snap := a.ledger.Snapshot()
	g := build(snap)
	if !g.has(x) || !g.has(y) {
		return false
	}
	if x == y {
		return true
	}

	visited := map[string]bool{x: true}
	queue := []string{x}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.undirected[cur] {
			if next == y {
				return true
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

// ShortestPath finds the directed path from x to y minimizing the sum of
// aggregated edge amounts (not hop count) and returns the vertex sequence
// with its total weight. Ties in total weight break deterministically: the
// priority queue orders equal distances by ascending account id. The path is
// empty when y is unreachable or either id is unknown.
func (a *Analytics) ShortestPath(x, y string) ([]string, decimal.Decimal) {
	snap := a.ledger.Snapshot()
	g := build(snap)
	if !g.has(x) || !g.has(y) {
		return nil, decimal.Zero
	}
	if x == y {
		return []string{x}, decimal.Zero
	}

	dist := map[string]decimal.Decimal{x: decimal.Zero}
	prev := make(map[string]string)
	done := make(map[string]bool)

	pq := &nodeQueue{{id: x, dist: decimal.Zero}}
	for pq.Len() > 0 {
		cur := heap.Pop(pq).(node)
		if done[cur.id] {
			continue
		}
		done[cur.id] = true
		if cur.id == y {
			break
		}

		for _, out := range g.outgoing[cur.id] {
			if done[out.to] {
				continue
			}
			alt := cur.dist.Add(out.weight)
			if d, seen := dist[out.to]; !seen || alt.LessThan(d) {
				dist[out.to] = alt
				prev[out.to] = cur.id
				heap.Push(pq, node{id: out.to, dist: alt})
			}
		}
	}

	if !done[y] {
		return nil, decimal.Zero
	}

	path := []string{y}
	for cur := y; cur != x; {
		cur = prev[cur]
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, dist[y]
}

// MostConnected ranks accounts by total degree, descending, with ties broken
// by ascending account id. n beyond the account count is clamped.
func (a *Analytics) MostConnected(n int) []Degree {
	if n <= 0 {
		return nil
	}

	snap := a.ledger.Snapshot()
	degrees := make(map[string]int, len(snap.Accounts))
	for _, id := range snap.Accounts {
		degrees[id] = 0
	}
	for _, e := range snap.Edges {
		degrees[e.Source]++
		degrees[e.Destination]++
	}

	out := make([]Degree, 0, len(degrees))
	for _, id := range snap.Accounts {
		out = append(out, Degree{AccountID: id, Degree: degrees[id]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Degree != out[j].Degree {
			return out[i].Degree > out[j].Degree
		}
		return out[i].AccountID < out[j].AccountID
	})

	if n > len(out) {
		n = len(out)
	}
	return out[:n]
}

// Components partitions all known accounts into weakly-connected sets.
// Isolated accounts form singletons. Members are sorted ascending and
// components are ordered by their smallest member.
func (a *Analytics) Components() [][]string {
	snap := a.ledger.Snapshot()
	g := build(snap)

	visited := make(map[string]bool)
	var components [][]string
	for _, start := range snap.Accounts {
		if visited[start] {
			continue
		}
		visited[start] = true
		component := []string{start}
		queue := []string{start}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, next := range g.undirected[cur] {
				if !visited[next] {
					visited[next] = true
					component = append(component, next)
					queue = append(queue, next)
				}
			}
		}
		sort.Strings(component)
		components = append(components, component)
	}
	return components
}

type arc struct {
	to     string
	weight decimal.Decimal
}

type network struct {
	nodes      map[string]struct{}
	outgoing   map[string][]arc
	undirected map[string][]string
}

func build(snap ledger.Snapshot) *network {
	g := &network{
		nodes:      make(map[string]struct{}, len(snap.Accounts)),
		outgoing:   make(map[string][]arc),
		undirected: make(map[string][]string),
	}
	for _, id := range snap.Accounts {
		g.nodes[id] = struct{}{}
	}
	linked := make(map[[2]string]bool)
	for _, e := range snap.Edges {
		g.outgoing[e.Source] = append(g.outgoing[e.Source], arc{to: e.Destination, weight: e.TotalAmount})
		for _, pair := range [][2]string{{e.Source, e.Destination}, {e.Destination, e.Source}} {
			if !linked[pair] {
				linked[pair] = true
				g.undirected[pair[0]] = append(g.undirected[pair[0]], pair[1])
			}
		}
	}
	return g
}

func (g *network) has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

type node struct {
	id   string
	dist decimal.Decimal
}

type nodeQueue []node

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	if !q[i].dist.Equal(q[j].dist) {
		return q[i].dist.LessThan(q[j].dist)
	}
	return q[i].id < q[j].id
}

func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *nodeQueue) Push(x any) { *q = append(*q, x.(node)) }

func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
