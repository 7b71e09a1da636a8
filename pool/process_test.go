package pool

import (
	"bytes"
	"encoding/gob"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWireResult_ToResult_PreservesSuccess(t *testing.T) {
	w := wireResult{TaskNo: 3, Name: "build", Elapsed: 2 * time.Second}
	r := w.toResult()
	require.NoError(t, r.Err)
	require.Equal(t, 3, r.TaskNo)
	require.Equal(t, "build", r.Name)
	require.Equal(t, 2*time.Second, r.Elapsed)
}

func TestWireResult_ToResult_RehydratesErrorText(t *testing.T) {
	w := wireResult{TaskNo: 1, Name: "fail", ErrMsg: "boom"}
	r := w.toResult()
	require.Error(t, r.Err)
	require.EqualError(t, r.Err, "boom")
}

func TestEncodeResult_RoundTripsOverGob(t *testing.T) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	dec := gob.NewDecoder(&buf)

	require.NoError(t, EncodeResult(enc, Result{TaskNo: 7, Name: "compile", Err: nil, Elapsed: time.Second}))

	var wr wireResult
	require.NoError(t, dec.Decode(&wr))

	r := wr.toResult()
	require.Equal(t, 7, r.TaskNo)
	require.Equal(t, "compile", r.Name)
	require.NoError(t, r.Err)
}
