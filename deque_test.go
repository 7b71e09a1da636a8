package flowdag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadyDeque_PopBackYieldsTopoOrder(t *testing.T) {
	d := NewReadyDeque([]int{0, 1, 2})

	first, ok := d.PopBack()
	require.True(t, ok)
	require.Equal(t, 0, first)

	second, ok := d.PopBack()
	require.True(t, ok)
	require.Equal(t, 1, second)
}

func TestReadyDeque_PopBackEmptyReturnsFalse(t *testing.T) {
	d := NewReadyDeque(nil)
	_, ok := d.PopBack()
	require.False(t, ok)
}

func TestReadyDeque_PushFrontIsTriedLast(t *testing.T) {
	d := NewReadyDeque([]int{0, 1})

	taskNo, ok := d.PopBack()
	require.True(t, ok)
	require.Equal(t, 0, taskNo)

	d.PushFront(taskNo)
	require.Equal(t, 2, d.Len())

	next, ok := d.PopBack()
	require.True(t, ok)
	require.Equal(t, 1, next, "task 1 should be tried before the deferred task 0")

	deferred, ok := d.PopBack()
	require.True(t, ok)
	require.Equal(t, 0, deferred)
}

func TestReadyDeque_Len(t *testing.T) {
	d := NewReadyDeque([]int{0, 1, 2})
	require.Equal(t, 3, d.Len())
	d.PopBack()
	require.Equal(t, 2, d.Len())
}
