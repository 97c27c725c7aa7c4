// Tracks run-wide outcome metrics of an SIR trajectory such as the epidemic
// peak and attack rate.

package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Metrics aggregates statistics about one simulated trajectory for final
// reporting.
type Metrics struct {
	Population    int     `json:"population"`
	Beta          float64 `json:"beta"`
	Gamma         float64 `json:"gamma"`
	StartDay      int     `json:"start_day"`
	DaysSimulated int     `json:"days_simulated"`
	PeakInfected  float64 `json:"peak_infected"`
	PeakDay       int     `json:"peak_day"`
	Final         State   `json:"final"`
	TotalInfected float64 `json:"total_infected"` // removed gained over the run
	AttackRate    float64 `json:"attack_rate"`    // TotalInfected / population, 0 when population is 0
}

// ComputeMetrics summarizes the simulator's history.
// An empty history (Reset never called) yields zero-valued metrics.
func ComputeMetrics(s *Simulator) *Metrics {
	m := &Metrics{
		Population: s.Population(),
		Beta:       s.Beta(),
		Gamma:      s.Gamma(),
	}
	history := s.History()
	if len(history) == 0 {
		return m
	}

	first := history[0]
	m.StartDay = first.Day
	m.Final = history[len(history)-1]
	m.DaysSimulated = m.Final.Day - first.Day
	m.PeakInfected = first.Infected
	m.PeakDay = first.Day
	for _, st := range history[1:] {
		if st.Infected > m.PeakInfected {
			m.PeakInfected = st.Infected
			m.PeakDay = st.Day
		}
	}
	m.TotalInfected = m.Final.Recovered - first.Recovered
	if m.Population > 0 {
		m.AttackRate = m.TotalInfected / float64(m.Population)
	}
	return m
}

// Print writes a header followed by the metrics as indented JSON.
func (m *Metrics) Print(w io.Writer) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	if _, err := fmt.Fprintf(w, "=== Simulation Metrics ===\n%s\n", data); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// SaveResults prints the metrics to stdout and, when outputPath is set,
// also writes the JSON to that file.
func (m *Metrics) SaveResults(outputPath string) {
	if err := m.Print(os.Stdout); err != nil {
		logrus.Errorf("Error printing metrics: %v", err)
	}
	if outputPath == "" {
		return
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		logrus.Errorf("Error marshalling metrics: %v", err)
		return
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		logrus.Errorf("Error writing metrics to %s: %v", outputPath, err)
		return
	}
	logrus.Infof("Metrics written to: %s", outputPath)
}
