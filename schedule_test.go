package sitelens_test

import (
	"testing"
	"time"

	"github.com/fwojciec/sitelens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTrigger(t *testing.T) {
	t.Parallel()

	t.Run("once with datetime-local", func(t *testing.T) {
		t.Parallel()
		trig, err := sitelens.ParseTrigger("once", "2030-05-06T07:08")
		require.NoError(t, err)
		assert.Equal(t, sitelens.TriggerOnce, trig.Kind)
		assert.Equal(t, time.Date(2030, 5, 6, 7, 8, 0, 0, time.Local), trig.At)
	})

	t.Run("once with zone", func(t *testing.T) {
		t.Parallel()
		trig, err := sitelens.ParseTrigger("once", "2030-05-06T07:08:00Z")
		require.NoError(t, err)
		assert.True(t, trig.At.Equal(time.Date(2030, 5, 6, 7, 8, 0, 0, time.UTC)))
	})

	t.Run("daily clock", func(t *testing.T) {
		t.Parallel()
		trig, err := sitelens.ParseTrigger("daily", "09:30")
		require.NoError(t, err)
		assert.Equal(t, sitelens.Daily(9, 30), trig)
	})

	t.Run("daily from datetime", func(t *testing.T) {
		t.Parallel()
		trig, err := sitelens.ParseTrigger("daily", "2030-01-01T18:45")
		require.NoError(t, err)
		assert.Equal(t, sitelens.Daily(18, 45), trig)
	})

	t.Run("weekly day and clock", func(t *testing.T) {
		t.Parallel()
		trig, err := sitelens.ParseTrigger("weekly", "Monday 09:30")
		require.NoError(t, err)
		assert.Equal(t, sitelens.Weekly(time.Monday, 9, 30), trig)
	})

	t.Run("weekly from datetime", func(t *testing.T) {
		t.Parallel()
		// 2030-01-06 is a Sunday.
		trig, err := sitelens.ParseTrigger("weekly", "2030-01-06T08:00")
		require.NoError(t, err)
		assert.Equal(t, sitelens.Weekly(time.Sunday, 8, 0), trig)
	})

	invalid := []struct {
		name, kind, spec string
	}{
		{"unknown type", "hourly", "10:00"},
		{"empty spec", "daily", ""},
		{"bad clock", "daily", "25:00"},
		{"bad minute", "daily", "10:xx"},
		{"bad weekday", "weekly", "someday 10:00"},
		{"weekly without clock", "weekly", "monday"},
		{"bad once", "once", "tomorrow"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := sitelens.ParseTrigger(tt.kind, tt.spec)
			assert.Equal(t, sitelens.EINVALID, sitelens.ErrorCode(err))
		})
	}
}

func TestTrigger_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "07:05", sitelens.Daily(7, 5).String())
	assert.Equal(t, "friday 23:00", sitelens.Weekly(time.Friday, 23, 0).String())

	trig, err := sitelens.ParseTrigger("weekly", sitelens.Weekly(time.Friday, 23, 0).String())
	require.NoError(t, err)
	assert.Equal(t, sitelens.Weekly(time.Friday, 23, 0), trig)
}

func TestJobID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "task_42", sitelens.JobID(42))
}
