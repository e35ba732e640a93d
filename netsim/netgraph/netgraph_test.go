package netgraph

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempGraph(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_ValidGraph(t *testing.T) {
	path := writeTempGraph(t, `
nodes:
  - id: a
  - id: b
edges:
  - from: a
    to: b
    latency: 10ms
    packet_loss: 0.01
    undirected: true
`)
	g, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, g.Nodes, 2)
	require.Len(t, g.Edges, 1)
	assert.Equal(t, 10*time.Millisecond, g.Edges[0].Latency)
}

func TestLoad_DuplicateNodeIDIsRejected(t *testing.T) {
	path := writeTempGraph(t, `
nodes:
  - id: a
  - id: a
edges: []
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EdgeReferencingUnknownNodeIsRejected(t *testing.T) {
	path := writeTempGraph(t, `
nodes:
  - id: a
edges:
  - from: a
    to: ghost
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestGraph_Neighbors_UndirectedEdgeIsBidirectional(t *testing.T) {
	g := &Graph{
		Nodes: map[NodeID]*Node{"a": {ID: "a"}, "b": {ID: "b"}},
		Edges: []*Edge{{From: "a", To: "b", Latency: 5 * time.Millisecond, PacketLoss: 0.1, Undirected: true}},
	}

	fromA := g.Neighbors("a")
	require.Len(t, fromA, 1)
	assert.Equal(t, NodeID("b"), fromA[0].Node)
	assert.InDelta(t, 0.9, fromA[0].Reliability, 1e-9)

	fromB := g.Neighbors("b")
	require.Len(t, fromB, 1)
	assert.Equal(t, NodeID("a"), fromB[0].Node)
}

func TestGraph_Neighbors_DirectedEdgeIsOneWay(t *testing.T) {
	g := &Graph{
		Nodes: map[NodeID]*Node{"a": {ID: "a"}, "b": {ID: "b"}},
		Edges: []*Edge{{From: "a", To: "b", Undirected: false}},
	}
	assert.Len(t, g.Neighbors("a"), 1)
	assert.Empty(t, g.Neighbors("b"))
}

func TestGraph_Node_Lookup(t *testing.T) {
	g := &Graph{Nodes: map[NodeID]*Node{"a": {ID: "a", BandwidthDownBits: 100}}}
	n, ok := g.Node("a")
	require.True(t, ok)
	assert.Equal(t, uint64(100), n.BandwidthDownBits)

	_, ok = g.Node("missing")
	assert.False(t, ok)
}
