package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/episim/episim/sim/region"
)

func TestBuildOverview_TotalsAndRows(t *testing.T) {
	// GIVEN two regions with different risk levels
	reg := region.NewRegistry()
	_, err := reg.Add(region.Counts{Name: "hot", Population: 100000, Confirmed: 80, Recovered: 10})
	require.NoError(t, err)
	_, err = reg.Add(region.Counts{Name: "calm", Population: 100000, Confirmed: 5})
	require.NoError(t, err)

	// WHEN the overview is built
	ov := buildOverview(reg, "")

	// THEN totals sum the regions
	assert.Equal(t, 2, ov.Totals.Regions)
	assert.EqualValues(t, 200000, ov.Totals.Population)
	assert.EqualValues(t, 75, ov.Totals.Active)

	// AND each row carries its per-100k rate and risk
	require.Len(t, ov.Regions, 2)
	assert.Equal(t, "hot", ov.Regions[0].Name)
	assert.InDelta(t, 70.0, ov.Regions[0].ActivePer100k, 1e-9)
	assert.Equal(t, region.RiskHigh, ov.Regions[0].Risk)
	assert.Equal(t, region.RiskLow, ov.Regions[1].Risk)
}

func TestPrintOverview_Table(t *testing.T) {
	reg := region.NewRegistry()
	_, err := reg.Add(region.Counts{Name: "hot", Population: 100000, Confirmed: 80, Recovered: 10})
	require.NoError(t, err)

	var buf bytes.Buffer
	printOverview(&buf, buildOverview(reg, ""))

	out := buf.String()
	assert.Contains(t, out, "=== Overview ===")
	assert.Contains(t, out, "Active     : 70")
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "70.00")
	assert.Contains(t, out, "HIGH")
}

func TestBuildOverview_SearchFiltersRowsNotTotals(t *testing.T) {
	reg := region.NewRegistry()
	region.Seed(reg)

	ov := buildOverview(reg, "jing")

	require.Len(t, ov.Regions, 1)
	assert.Equal(t, "Beijing", ov.Regions[0].Name)
	assert.Equal(t, len(region.SeedCounts), ov.Totals.Regions)
}
