package sim

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeMetrics_PeakAndAttackRate(t *testing.T) {
	// GIVEN an outbreak that peaks and declines within the horizon
	s := NewSimulator()
	s.SetBeta(0.5)
	s.SetGamma(0.1)
	s.Reset(10_000, 10, 0, 0)
	s.Run(200)

	// WHEN metrics are computed
	m := ComputeMetrics(s)

	// THEN the peak is an interior day and matches the history maximum
	assert.Equal(t, 200, m.DaysSimulated)
	assert.Greater(t, m.PeakDay, 0)
	assert.Less(t, m.PeakDay, 200)
	for _, st := range s.History() {
		assert.LessOrEqual(t, st.Infected, m.PeakInfected)
	}
	assert.Equal(t, s.Current(), m.Final)
	assert.InDelta(t, m.Final.Recovered/10_000, m.AttackRate, 1e-12)
	assert.Equal(t, 0.5, m.Beta)
	assert.Equal(t, 0.1, m.Gamma)
}

func TestComputeMetrics_AttackRateExcludesInitialRemoved(t *testing.T) {
	s := NewSimulator()
	s.Reset(1000, 10, 400, 0)
	s.Run(10)

	m := ComputeMetrics(s)

	assert.InDelta(t, m.Final.Recovered-400, m.TotalInfected, 1e-9)
}

func TestComputeMetrics_ZeroPopulation(t *testing.T) {
	s := NewSimulator()
	s.Reset(0, 0, 0, 7)
	s.Run(10)

	m := ComputeMetrics(s)

	assert.Equal(t, 0, m.DaysSimulated)
	assert.Equal(t, 7, m.StartDay)
	assert.Equal(t, 0.0, m.AttackRate)
}

func TestComputeMetrics_NoHistory(t *testing.T) {
	m := ComputeMetrics(NewSimulator())
	assert.Equal(t, Metrics{Beta: DefaultBeta, Gamma: DefaultGamma}, *m)
}

func TestMetrics_Print_HeaderAndJSON(t *testing.T) {
	s := NewSimulator()
	s.Reset(100, 1, 0, 0)
	s.Run(3)
	m := ComputeMetrics(s)

	var buf bytes.Buffer
	require.NoError(t, m.Print(&buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "=== Simulation Metrics ==="))
	assert.Contains(t, out, `"attack_rate"`)
	assert.Contains(t, out, `"peak_day"`)
}

func TestMetrics_SaveResults_WritesFile(t *testing.T) {
	s := NewSimulator()
	s.Reset(100, 1, 0, 0)
	s.Run(3)
	m := ComputeMetrics(s)

	path := filepath.Join(t.TempDir(), "metrics.json")
	m.SaveResults(path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Metrics
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, *m, got)
}
