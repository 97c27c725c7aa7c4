// Package region models the places whose outbreaks are tracked: their current
// counts, their recorded case history, and the registry that owns them.
package region

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/episim/episim/sim"
	"github.com/episim/episim/sim/calibrate"
)

var (
	ErrEmptyName                = errors.New("region name must not be empty")
	ErrPopulationBelowConfirmed = errors.New("population must not be less than confirmed cases")
	ErrConfirmedBelowRemoved    = errors.New("confirmed cases must not be less than recovered plus deaths")
)

// Record is one day of cumulative counts for a region.
type Record = calibrate.Observation

// Counts are the editable fields of a region.
type Counts struct {
	Name       string `json:"name" yaml:"name"`
	Population int    `json:"population" yaml:"population"`
	Confirmed  int    `json:"confirmed" yaml:"confirmed"`
	Recovered  int    `json:"recovered" yaml:"recovered"`
	Deaths     int    `json:"deaths" yaml:"deaths"`
}

// Active returns confirmed cases not yet recovered or dead.
func (c Counts) Active() int { return c.Confirmed - c.Recovered - c.Deaths }

// Removed returns recovered plus deaths.
func (c Counts) Removed() int { return c.Recovered + c.Deaths }

// Validate clamps negative counts to zero, trims the name, and checks the
// counts are mutually consistent. The returned Counts are the clamped values.
func Validate(c Counts) (Counts, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Population = max(0, c.Population)
	c.Confirmed = max(0, c.Confirmed)
	c.Recovered = max(0, c.Recovered)
	c.Deaths = max(0, c.Deaths)

	switch {
	case c.Name == "":
		return c, ErrEmptyName
	case c.Population < c.Confirmed:
		return c, fmt.Errorf("%q: %w (population=%d, confirmed=%d)", c.Name, ErrPopulationBelowConfirmed, c.Population, c.Confirmed)
	case c.Confirmed < c.Removed():
		return c, fmt.Errorf("%q: %w (confirmed=%d, removed=%d)", c.Name, ErrConfirmedBelowRemoved, c.Confirmed, c.Removed())
	}
	return c, nil
}

// Region is a city or area with its latest counts, its recorded history and
// the simulator that projects it forward.
type Region struct {
	ID uuid.UUID
	Counts
	history    []Record // ascending by day, unique per day
	simulation *sim.Simulator
}

// New validates c and returns a region whose simulator starts from the
// current counts on day 0.
func New(c Counts) (*Region, error) {
	c, err := Validate(c)
	if err != nil {
		return nil, err
	}
	return newRegion(c), nil
}

func newRegion(c Counts) *Region {
	r := &Region{
		ID:         uuid.New(),
		Counts:     c,
		simulation: sim.NewSimulator(),
	}
	r.resetSimulation()
	return r
}

func (r *Region) resetSimulation() {
	r.simulation.Reset(r.Population, r.Active(), r.Removed(), 0)
}

// Update replaces the region's counts after validation. The simulator is
// reset to the new counts.
func (r *Region) Update(c Counts) error {
	c, err := Validate(c)
	if err != nil {
		return err
	}
	r.Counts = c
	r.resetSimulation()
	return nil
}

// AddRecord inserts rec into the history, replacing any record for the same day.
func (r *Region) AddRecord(rec Record) {
	i := sort.Search(len(r.history), func(i int) bool { return r.history[i].Day >= rec.Day })
	if i < len(r.history) && r.history[i].Day == rec.Day {
		r.history[i] = rec
		return
	}
	r.history = append(r.history, Record{})
	copy(r.history[i+1:], r.history[i:])
	r.history[i] = rec
}

// History returns a copy of the recorded history, ascending by day.
func (r *Region) History() []Record {
	out := make([]Record, len(r.history))
	copy(out, r.history)
	return out
}

// Simulation returns the region's simulator.
func (r *Region) Simulation() *sim.Simulator { return r.simulation }

// EstimateBeta estimates the transmission rate from the recorded history.
func (r *Region) EstimateBeta() float64 {
	return calibrate.EstimateBeta(r.Population, r.history)
}

// EstimateGamma estimates the recovery rate from the recorded history.
func (r *Region) EstimateGamma() float64 {
	return calibrate.EstimateGamma(r.history)
}

// Calibrate estimates both rates from the recorded history.
func (r *Region) Calibrate() calibrate.Result {
	return calibrate.Estimate(r.Population, r.history)
}

// PrepareSimulation configures the simulator with beta and gamma and restarts
// it from the current counts on the last recorded day. At least one infected
// case is seeded so that a region with no active cases still produces a curve.
func (r *Region) PrepareSimulation(beta, gamma float64) {
	r.simulation.SetBeta(beta)
	r.simulation.SetGamma(gamma)
	r.simulation.Reset(r.Population, max(1, r.Active()), r.Removed(), r.startDay())
}

// Predict prepares the simulator and runs it for days, returning the trajectory.
func (r *Region) Predict(beta, gamma float64, days int) []sim.State {
	r.PrepareSimulation(beta, gamma)
	r.simulation.Run(days)
	logrus.Infof("Predicted %d days for %s (beta=%.4f, gamma=%.4f)", days, r.Name, beta, gamma)
	return r.simulation.History()
}

// startDay is the day after which the projection begins: the last recorded
// day, or 0 without history.
func (r *Region) startDay() int {
	if len(r.history) == 0 {
		return 0
	}
	return r.history[len(r.history)-1].Day
}

// Risk classifies the region by its current counts.
func (r *Region) Risk() RiskLevel {
	return ClassifyRisk(r.Counts)
}
