package main

import (
	"testing"
	"time"

	"github.com/1F47E/nato-grid/pkg/bench"
	"github.com/1F47E/nato-grid/pkg/gridcode"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	codec := gridcode.Default()

	e, err := evaluate(codec, "https://grid.example.com/", "52.1677 N, 22.2903 E")
	require.NoError(t, err)
	assert.True(t, e.encoded)
	assert.Equal(t, "NVSOXLGAMVLD", e.code.Short())
	assert.Equal(t, "https://grid.example.com/?c=NVSOXLGAMVLD", e.shareURL)

	e, err = evaluate(codec, "https://grid.example.com/", "nn")
	require.NoError(t, err)
	assert.False(t, e.encoded)
	assert.Equal(t, "NNAAAAAAAAAA", e.code.Short())
	assert.Contains(t, e.links.Waze, "waze.com")

	_, err = evaluate(codec, "", "48.9, 19")
	assert.ErrorIs(t, err, gridcode.ErrOutOfBounds)

	_, err = evaluate(codec, "", "somewhere over 9000")
	assert.ErrorIs(t, err, gridcode.ErrInvalidCode)
}

func TestUpdateEnterAndRecall(t *testing.T) {
	m := initialModel(gridcode.Default(), "https://grid.example.com/", 100)
	m.input.SetValue("NVSOXLGAMVLD")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(model)
	require.NoError(t, m.err)
	require.NotNil(t, m.current)
	assert.Equal(t, "NVSOXLGAMVLD", m.current.code.Short())
	assert.Empty(t, m.input.Value())
	assert.Len(t, m.history, 1)
	assert.Contains(t, m.View(), "November Victor Sierra Oscar")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(model)
	assert.Equal(t, "NVSOXLGAMVLD", m.input.Value())

	m.input.SetValue("not a place 42")
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(model)
	assert.Error(t, m.err)
	assert.Len(t, m.history, 1)
}

func TestBenchSteps(t *testing.T) {
	m := initialModel(gridcode.Default(), "", 100)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlB})
	m = next.(model)
	assert.True(t, m.benchmarking)
	assert.NotNil(t, cmd)

	for step := 0; step < benchSteps; step++ {
		msg := runBenchStep(m.codec, step, 10)()
		next, _ = m.Update(msg)
		m = next.(model)
	}
	assert.False(t, m.benchmarking)
	assert.True(t, m.benchDone)
	assert.Equal(t, 100, m.benchTotal.TotalQueries)
	assert.Zero(t, m.benchTotal.Failures)
	assert.Contains(t, m.View(), "Benchmark Complete!")
}

func TestMerge(t *testing.T) {
	a := bench.Result{TotalQueries: 10, TotalDuration: time.Second, AvgDuration: 2 * time.Millisecond,
		MinDuration: time.Millisecond, MaxDuration: 3 * time.Millisecond}
	b := bench.Result{TotalQueries: 30, TotalDuration: time.Second, AvgDuration: 6 * time.Millisecond,
		MinDuration: 2 * time.Millisecond, MaxDuration: 9 * time.Millisecond, Failures: 1}

	got := merge(a, b)
	assert.Equal(t, 40, got.TotalQueries)
	assert.Equal(t, 5*time.Millisecond, got.AvgDuration)
	assert.Equal(t, time.Millisecond, got.MinDuration)
	assert.Equal(t, 9*time.Millisecond, got.MaxDuration)
	assert.InDelta(t, 20, got.QueriesPerSec, 1e-9)
	assert.Equal(t, int64(1), got.Failures)
}
