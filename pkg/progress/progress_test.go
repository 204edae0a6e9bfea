package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thalespaiva/bgphijack/pkg/asrel"
	"github.com/thalespaiva/bgphijack/pkg/logging"
)

func update(t *testing.T, m model, msgs ...tea.Msg) model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(model)
	}
	return m
}

func TestModel_PhaseLifecycle(t *testing.T) {
	m := newModel()
	assert.Contains(t, m.View(), "waiting")

	m = update(t, m,
		phaseStartedMsg{phase: asrel.PhaseNeighbors, total: 100},
		phaseProgressMsg{phase: asrel.PhaseNeighbors, done: 25},
		phaseProgressMsg{phase: asrel.PhaseNeighbors, done: 25},
	)
	require.Len(t, m.phases, 1)
	assert.Equal(t, 50, m.phases[0].done)
	assert.InDelta(t, 0.5, m.phases[0].percent(), 1e-9)
	assert.Contains(t, m.View(), "50/100")

	m = update(t, m,
		phaseFinishedMsg{phase: asrel.PhaseNeighbors, elapsed: 1500 * time.Millisecond},
		phaseStartedMsg{phase: asrel.PhaseTransit, total: 100},
	)
	require.Len(t, m.phases, 2)
	assert.True(t, m.phases[0].closed)
	assert.Equal(t, 1.0, m.phases[0].percent())

	view := m.View()
	assert.Contains(t, view, "neighbors")
	assert.Contains(t, view, "100 paths in 1.5s")
	assert.Contains(t, view, "transit")
	assert.Contains(t, view, "0/100")
}

func TestModel_ProgressClamped(t *testing.T) {
	m := update(t, newModel(),
		phaseStartedMsg{phase: asrel.PhaseClassify, total: 10},
		phaseProgressMsg{phase: asrel.PhaseClassify, done: 30},
		phaseProgressMsg{phase: asrel.PhasePeering, done: 5},
	)
	require.Len(t, m.phases, 1)
	assert.Equal(t, 10, m.phases[0].done)
}

func TestModel_EmptyCorpus(t *testing.T) {
	m := update(t, newModel(), phaseStartedMsg{phase: asrel.PhaseValleyFree, total: 0})
	assert.Equal(t, 1.0, m.phases[0].percent())
}

func TestModel_Stop(t *testing.T) {
	_, cmd := newModel().Update(stopMsg{})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestDisplay(t *testing.T) {
	var out bytes.Buffer
	d := NewDisplay(&out)

	var obs asrel.PhaseObserver = d
	obs.PhaseStarted(asrel.PhaseTransit, 4)
	obs.PhaseProgress(asrel.PhaseTransit, 4)
	obs.PhaseFinished(asrel.PhaseTransit, time.Millisecond)

	require.NoError(t, d.Close())
	require.NoError(t, d.Close(), "Close is idempotent")
	assert.True(t, strings.Contains(out.String(), "transit"))
}

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogObserver(logging.NewJSONLogger(&buf, logging.InfoLevel))

	obs.PhaseStarted(asrel.PhaseClassify, 12)
	obs.PhaseProgress(asrel.PhaseClassify, 12)
	obs.PhaseFinished(asrel.PhaseClassify, time.Millisecond)
	obs.PhaseFinished(asrel.PhasePeering, time.Millisecond)

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "\n"), "only the finished phase that started is logged at INFO")
	assert.Contains(t, out, `"phase":"classify"`)
	assert.Contains(t, out, `"count":12`)
	assert.Contains(t, out, `"latency"`)
}
