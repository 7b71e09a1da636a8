package flowdag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunPayload_ExecutesCommands(t *testing.T) {
	payload := &Payload{No: 0, Name: "echo", Commands: []string{"echo hi"}}
	result := RunPayload(context.Background(), payload)
	require.False(t, result.Failed())
	require.Equal(t, 0, result.TaskNo)
}

func TestRunPayload_FailsOnUnhydratableDependency(t *testing.T) {
	payload := &Payload{
		No:      0,
		Name:    "bad",
		Depends: []depSpec{{Kind: "no-such-kind", Params: map[string]string{}}},
	}
	result := RunPayload(context.Background(), payload)
	require.True(t, result.Failed())
	require.ErrorIs(t, result.Err, ErrDeserialization)
}
