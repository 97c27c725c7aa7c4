package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/episim/episim/sim/calibrate"
	"github.com/episim/episim/sim/region"
)

func writeHistoryCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// runEstimate executes `episim estimate` with args and decodes its JSON output.
func runEstimate(t *testing.T, args ...string) estimateOutput {
	t.Helper()
	rootCmd.SetArgs(append([]string{"estimate"}, args...))
	t.Cleanup(func() {
		estimatePopulation, estimateHistoryPath, estimateScenario, estimateRegion = 0, "", "", ""
	})

	output := captureStdout(t, func() {
		require.NoError(t, rootCmd.Execute())
	})

	var out estimateOutput
	require.NoError(t, json.Unmarshal([]byte(output), &out), output)
	return out
}

func TestEstimateCommand_FromHistoryCSV(t *testing.T) {
	// GIVEN three days of cumulative counts for N=1000
	path := writeHistoryCSV(t, "day,confirmed,recovered,deaths\n0,10,0,0\n1,15,2,0\n2,20,4,1\n")

	// WHEN estimate runs over the CSV
	out := runEstimate(t, "--history", path, "--population", "1000")

	// THEN beta and gamma are the means of the two daily rates
	// beta: (1000*5/(990*10) + 1000*5/(985*13)) / 2, gamma: (2/10 + 3/13) / 2
	assert.Equal(t, 1000, out.Population)
	assert.Equal(t, 3, out.Records)
	assert.InDelta(t, 0.44776148837062546, out.Beta, 1e-12)
	assert.InDelta(t, 0.2153846153846154, out.Gamma, 1e-12)
	assert.Equal(t, 2, out.BetaSamples)
	assert.Equal(t, 2, out.GammaSamples)
}

func TestEstimateCommand_SingleRecordFallsBack(t *testing.T) {
	path := writeHistoryCSV(t, "day,confirmed,recovered,deaths\n0,10,0,0\n")

	out := runEstimate(t, "--history", path, "--population", "1000")

	assert.Equal(t, 1, out.Records)
	assert.Equal(t, calibrate.FallbackBeta, out.Beta)
	assert.Equal(t, calibrate.FallbackGamma, out.Gamma)
	assert.Equal(t, 0, out.BetaSamples)
	assert.Equal(t, 0, out.GammaSamples)
}

func TestEstimateCommand_FromScenarioRegion(t *testing.T) {
	// GIVEN a scenario whose Lyon region has two recorded days
	path := writeScenario(t, validScenario)

	// WHEN estimate runs for that region
	out := runEstimate(t, "--scenario", path, "--region", "Lyon")

	// THEN the output names the region and matches the estimator over its history
	want := calibrate.Estimate(500000, []region.Record{
		{Day: 0, Confirmed: 250, Recovered: 40, Deaths: 4},
		{Day: 1, Confirmed: 300, Recovered: 60, Deaths: 5},
	})
	assert.Equal(t, "Lyon", out.Region)
	assert.Equal(t, 500000, out.Population)
	assert.Equal(t, 2, out.Records)
	assert.InDelta(t, want.Beta, out.Beta, 1e-12)
	assert.InDelta(t, want.Gamma, out.Gamma, 1e-12)
	assert.Equal(t, 1, out.BetaSamples)
	assert.Equal(t, 1, out.GammaSamples)
}
