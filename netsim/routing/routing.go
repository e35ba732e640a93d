// Package routing precomputes per-pair latency, reliability and
// routability from a topology graph and an IP assignment, and exposes
// the read-only oracle consulted by every simulated packet delivery
// (spec.md §4.3). It is immutable after construction except for the
// packet counters, which are atomic (spec.md §5).
package routing

import (
	"container/heap"
	"fmt"
	"net"
	"time"

	"github.com/shadowsim/controller/netsim/ipassign"
	"github.com/shadowsim/controller/netsim/netgraph"
)

type pairKey struct {
	from, to netgraph.NodeID
}

type pairInfo struct {
	latency     time.Duration
	reliability float64
	routable    bool
	packets     counter
}

// Info is the precomputed routing oracle. Once built, Graph and the
// intermediate path state are no longer needed — the controller releases
// the graph right after construction (spec.md §4.4 RELEASE_GRAPH).
type Info struct {
	assignment *ipassign.Assignment
	pairs      map[pairKey]*pairInfo
}

// New computes routing information for every ordered node pair reachable
// in graph. useShortestPath selects the algorithm: true runs per-source
// Dijkstra (the teacher's container/heap priority-queue idiom), false
// runs Floyd-Warshall over the full node set ("full pairwise" per
// spec.md §2). Both converge on the same latency-minimal path; the flag
// only controls which is used, matching spec.md's "shortest-path or full
// pairwise" phrasing.
func New(graph *netgraph.Graph, assignment *ipassign.Assignment, useShortestPath bool) (*Info, error) {
	if graph == nil {
		return nil, fmt.Errorf("routing: graph is nil")
	}

	var pairs map[pairKey]*pairInfo
	if useShortestPath {
		pairs = dijkstraAllSources(graph)
	} else {
		pairs = floydWarshall(graph)
	}

	return &Info{assignment: assignment, pairs: pairs}, nil
}

func nodeIDs(graph *netgraph.Graph) []netgraph.NodeID {
	ids := make([]netgraph.NodeID, 0, len(graph.Nodes))
	for id := range graph.Nodes {
		ids = append(ids, id)
	}
	return ids
}

// NodeDist pairs a node with a tentative distance; exported so tests can
// construct priority-queue fixtures directly.
type NodeDist struct {
	Node netgraph.NodeID
	Dist time.Duration
}

type nodeHeap []NodeDist

func (h nodeHeap) Len() int            { return len(h) }
func (h nodeHeap) Less(i, j int) bool  { return h[i].Dist < h[j].Dist }
func (h nodeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x any)         { *h = append(*h, x.(NodeDist)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func dijkstraAllSources(graph *netgraph.Graph) map[pairKey]*pairInfo {
	pairs := make(map[pairKey]*pairInfo)
	for _, src := range nodeIDs(graph) {
		dist := map[netgraph.NodeID]time.Duration{src: 0}
		rel := map[netgraph.NodeID]float64{src: 1.0}
		visited := map[netgraph.NodeID]bool{}

		h := &nodeHeap{{Node: src, Dist: 0}}
		heap.Init(h)
		for h.Len() > 0 {
			cur := heap.Pop(h).(NodeDist)
			if visited[cur.Node] {
				continue
			}
			visited[cur.Node] = true

			for _, edge := range graph.Neighbors(cur.Node) {
				nd := dist[cur.Node] + edge.Latency
				nr := rel[cur.Node] * edge.Reliability
				if d, ok := dist[edge.Node]; !ok || nd < d {
					dist[edge.Node] = nd
					rel[edge.Node] = nr
					heap.Push(h, NodeDist{Node: edge.Node, Dist: nd})
				}
			}
		}

		for dst, d := range dist {
			pairs[pairKey{src, dst}] = &pairInfo{
				latency:     d,
				reliability: rel[dst],
				routable:    true,
			}
		}
	}
	return pairs
}

func floydWarshall(graph *netgraph.Graph) map[pairKey]*pairInfo {
	ids := nodeIDs(graph)
	const unreachable = time.Duration(1<<63 - 1)

	dist := make(map[pairKey]time.Duration)
	rel := make(map[pairKey]float64)
	for _, a := range ids {
		for _, b := range ids {
			if a == b {
				dist[pairKey{a, b}] = 0
				rel[pairKey{a, b}] = 1.0
			} else {
				dist[pairKey{a, b}] = unreachable
				rel[pairKey{a, b}] = 0
			}
		}
	}
	for _, id := range ids {
		for _, edge := range graph.Neighbors(id) {
			k := pairKey{id, edge.Node}
			if edge.Latency < dist[k] {
				dist[k] = edge.Latency
				rel[k] = edge.Reliability
			}
		}
	}

	for _, k := range ids {
		for _, i := range ids {
			if dist[pairKey{i, k}] == unreachable {
				continue
			}
			for _, j := range ids {
				if dist[pairKey{k, j}] == unreachable {
					continue
				}
				viaDist := dist[pairKey{i, k}] + dist[pairKey{k, j}]
				if viaDist < dist[pairKey{i, j}] {
					dist[pairKey{i, j}] = viaDist
					rel[pairKey{i, j}] = rel[pairKey{i, k}] * rel[pairKey{k, j}]
				}
			}
		}
	}

	pairs := make(map[pairKey]*pairInfo)
	for _, a := range ids {
		for _, b := range ids {
			d := dist[pairKey{a, b}]
			if d == unreachable {
				continue
			}
			pairs[pairKey{a, b}] = &pairInfo{
				latency:     d,
				reliability: rel[pairKey{a, b}],
				routable:    true,
			}
		}
	}
	return pairs
}

func (info *Info) lookup(src, dst net.IP) (*pairInfo, bool) {
	srcNode, ok := info.assignment.NodeOf(src)
	if !ok {
		return nil, false
	}
	dstNode, ok := info.assignment.NodeOf(dst)
	if !ok {
		return nil, false
	}
	p, ok := info.pairs[pairKey{srcNode, dstNode}]
	return p, ok
}

// IsRoutable reports whether a path exists from src to dst.
func (info *Info) IsRoutable(src, dst net.IP) bool {
	p, ok := info.lookup(src, dst)
	return ok && p.routable
}

// GetLatency returns the precomputed latency in milliseconds. Behavior
// on a non-routable pair is undefined per spec.md §4.3; callers must
// check IsRoutable first.
func (info *Info) GetLatency(src, dst net.IP) float64 {
	p, _ := info.lookup(src, dst)
	if p == nil {
		return 0
	}
	return float64(p.latency.Nanoseconds()) / 1e6
}

// GetReliability returns the precomputed per-packet delivery probability.
func (info *Info) GetReliability(src, dst net.IP) float64 {
	p, _ := info.lookup(src, dst)
	if p == nil {
		return 0
	}
	return p.reliability
}

// IncrementPacketCount bumps the statistics-only counter for (src, dst).
// No-op for an unknown or non-routable pair.
func (info *Info) IncrementPacketCount(src, dst net.IP) {
	p, ok := info.lookup(src, dst)
	if !ok {
		return
	}
	p.packets.add(1)
}

// PacketCount returns the number of packets counted for (src, dst).
func (info *Info) PacketCount(src, dst net.IP) uint64 {
	p, ok := info.lookup(src, dst)
	if !ok {
		return 0
	}
	return p.packets.load()
}
