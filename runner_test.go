package flowdag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault_PicksSerialForSingleJob(t *testing.T) {
	require.IsType(t, &SerialLocalRunner{}, Default(1))
	require.IsType(t, &SerialLocalRunner{}, Default(0))
}

func TestDefault_PicksParallelForMultipleJobs(t *testing.T) {
	require.IsType(t, &ParallelLocalRunner{}, Default(4))
}

func TestCurrentGridRunner_ReturnsSameInstanceUntilReset(t *testing.T) {
	ResetGridRunner()
	defer ResetGridRunner()

	first := CurrentGridRunner()
	second := CurrentGridRunner()
	require.Same(t, first, second)

	ResetGridRunner()
	third := CurrentGridRunner()
	require.NotSame(t, first, third)
}
