// Package testutil provides shared test infrastructure for the episim engine.
// It consolidates golden dataset types and assertion helpers used across
// sim/ and its sub-package tests.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one simulator configuration and its expected trajectory outcome.
type GoldenTestCase struct {
	Name       string        `json:"name"`
	Population int           `json:"population"`
	Beta       float64       `json:"beta"`
	Gamma      float64       `json:"gamma"`
	Infected   int           `json:"infected"`
	Removed    int           `json:"removed"`
	StartDay   int           `json:"start_day"`
	Days       int           `json:"days"`
	Expected   GoldenOutcome `json:"expected"`
}

// GoldenOutcome is the expected end state of a golden run.
type GoldenOutcome struct {
	HistoryLen   int         `json:"history_len"`
	Final        GoldenState `json:"final"`
	PeakInfected float64     `json:"peak_infected"`
	PeakDay      int         `json:"peak_day"`
}

// GoldenState mirrors sim.State without importing sim (sim's own tests use this package).
type GoldenState struct {
	Day         int     `json:"day"`
	Susceptible float64 `json:"susceptible"`
	Infected    float64 `json:"infected"`
	Recovered   float64 `json:"recovered"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
