package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTopoOrder_LinearChain(t *testing.T) {
	g := New(3)
	g.AddEdge(0, 1)
	g.AddEdge(1, 2)

	order, err := g.TopoOrder()
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2}, order)
}

func TestTopoOrder_BreaksTiesAscending(t *testing.T) {
	g := New(4)
	g.AddEdge(3, 0)
	g.AddEdge(2, 0)

	order, err := g.TopoOrder()
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3, 0}, order)
}

func TestTopoOrder_DetectsCycle(t *testing.T) {
	g := New(3)
	g.AddEdge(0, 1)
	g.AddEdge(1, 2)
	g.AddEdge(2, 0)

	_, err := g.TopoOrder()
	require.ErrorIs(t, err, ErrCycle)
}

func TestSuccessors_SortedAscending(t *testing.T) {
	g := New(4)
	g.AddEdge(0, 3)
	g.AddEdge(0, 1)
	g.AddEdge(0, 2)

	require.Equal(t, []int{1, 2, 3}, g.Successors(0))
}
