package systems

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJobSystemValidation(t *testing.T) {
	_, err := NewJobSystem(0, 1)
	assert.ErrorIs(t, err, ErrNoWorkers)

	_, err = NewJobSystem(1, -1)
	assert.ErrorIs(t, err, ErrNegativeChannelSize)
}

func TestJobSystemRunAllKeepsOrder(t *testing.T) {
	js, err := NewJobSystem(4, 8)
	require.NoError(t, err)
	defer js.Shutdown()

	var ran atomic.Int32
	jobs := make([]Job, 16)
	for i := range jobs {
		i := i
		jobs[i] = Job{
			Name: "square",
			Run: func() (interface{}, error) {
				ran.Add(1)
				return i * i, nil
			},
		}
	}

	results, err := js.RunAll(jobs...)
	require.NoError(t, err)
	assert.Equal(t, int32(16), ran.Load())
	for i, r := range results {
		assert.Equal(t, i*i, r.Value)
	}
}

func TestJobSystemReportsFirstError(t *testing.T) {
	js, err := NewJobSystem(2, 0)
	require.NoError(t, err)
	defer js.Shutdown()

	boom := errors.New("boom")
	results, err := js.RunAll(
		Job{Name: "mesh", Run: func() (interface{}, error) { return "ok", nil }},
		Job{Name: "texture", Run: func() (interface{}, error) { return nil, boom }},
	)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "texture")
	assert.Equal(t, "ok", results[0].Value)
}

func TestJobSystemSubmitAfterShutdown(t *testing.T) {
	js, err := NewJobSystem(1, 1)
	require.NoError(t, err)
	require.NoError(t, js.Shutdown())
	require.NoError(t, js.Shutdown())

	r := <-js.Submit(Job{Name: "late", Run: func() (interface{}, error) { return nil, nil }})
	assert.ErrorIs(t, r.Err, ErrJobSystemClosed)
}
