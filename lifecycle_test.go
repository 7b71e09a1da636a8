package flowdag

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShutdownSequence_RunsStepsOnce(t *testing.T) {
	var order []string
	var mu sync.Mutex
	record := func(name string) { mu.Lock(); order = append(order, name); mu.Unlock() }

	var inflight sync.WaitGroup
	inflight.Add(1)
	closeCh := make(chan struct{})
	var afterClose sync.WaitGroup
	afterClose.Add(1)

	go func() {
		inflight.Done()
		record("inflight-done")
	}()
	go func() {
		<-closeCh
		record("collector-stopped")
		afterClose.Done()
	}()

	s := newShutdownSequence(func() { record("cancel") }, &inflight, closeCh, &afterClose)

	s.Close()
	s.Close() // must not panic or double-run

	require.Contains(t, order, "cancel")
	require.Contains(t, order, "collector-stopped")
}

func TestShutdownSequence_NilFieldsAreSafe(t *testing.T) {
	s := newShutdownSequence(nil, nil, nil, nil)
	require.NotPanics(t, s.Close)
}
