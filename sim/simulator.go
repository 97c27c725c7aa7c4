// sim/simulator.go
package sim

import (
	"github.com/sirupsen/logrus"
)

const (
	// DefaultBeta is the transmission rate a fresh Simulator starts with.
	DefaultBeta = 0.2
	// DefaultGamma is the recovery rate a fresh Simulator starts with.
	DefaultGamma = 0.1
)

// State is one point of an SIR trajectory.
type State struct {
	Day         int     `json:"day"`
	Susceptible float64 `json:"susceptible"`
	Infected    float64 `json:"infected"`
	Recovered   float64 `json:"recovered"`
}

// Total returns S+I+R.
func (s State) Total() float64 {
	return s.Susceptible + s.Infected + s.Recovered
}

// Simulator owns one region's SIR state and advances it one day at a time
// with the forward-Euler discretization of the SIR equations.
//
// Simulator is not safe for concurrent use.
type Simulator struct {
	population int
	beta       float64 // transmission rate
	gamma      float64 // recovery rate
	current    State
	// history is append-only between resets; history[len-1] == current
	history []State
}

// NewSimulator returns a Simulator with the default rates and no population.
// Step is a no-op until Reset is called with a positive population.
func NewSimulator() *Simulator {
	return &Simulator{
		beta:    DefaultBeta,
		gamma:   DefaultGamma,
		history: make([]State, 0, 200),
	}
}

// Reset reinitializes the population and seeds the history with the initial
// point. The susceptible count is population-infected-removed and is not
// validated here; callers reject inconsistent inputs before they get here.
func (sim *Simulator) Reset(population, infected, removed, startDay int) {
	sim.population = population
	sim.current = State{
		Day:         startDay,
		Susceptible: float64(population - infected - removed),
		Infected:    float64(infected),
		Recovered:   float64(removed),
	}
	sim.history = sim.history[:0]
	sim.history = append(sim.history, sim.current)
}

// Step advances the model by one day. It does nothing when the population is 0.
//
// Each compartment is floored at zero, so S+I+R may drift above the
// population when a single day would otherwise overshoot.
func (sim *Simulator) Step() {
	if sim.population == 0 {
		return
	}

	s := sim.current.Susceptible
	i := sim.current.Infected
	r := sim.current.Recovered

	newInfections := sim.beta * s * i / float64(sim.population)
	newRecoveries := sim.gamma * i

	sim.current = State{
		Day:         sim.current.Day + 1,
		Susceptible: max(0, s-newInfections),
		Infected:    max(0, i+newInfections-newRecoveries),
		Recovered:   max(0, r+newRecoveries),
	}
	sim.history = append(sim.history, sim.current)

	logrus.Debugf("[day %04d] S=%.2f I=%.2f R=%.2f (+%.2f infected, +%.2f removed)",
		sim.current.Day, sim.current.Susceptible, sim.current.Infected, sim.current.Recovered,
		newInfections, newRecoveries)
}

// Run calls Step days times.
func (sim *Simulator) Run(days int) {
	for d := 0; d < days; d++ {
		sim.Step()
	}
	logrus.Infof("[day %04d] Simulation ended after %d steps", sim.current.Day, days)
}

// Current returns the latest state.
func (sim *Simulator) Current() State { return sim.current }

// History returns a copy of every state since the last Reset, oldest first.
func (sim *Simulator) History() []State {
	out := make([]State, len(sim.history))
	copy(out, sim.history)
	return out
}

// Beta returns the transmission rate.
func (sim *Simulator) Beta() float64 { return sim.beta }

// Gamma returns the recovery rate.
func (sim *Simulator) Gamma() float64 { return sim.gamma }

// Population returns N as given to the last Reset.
func (sim *Simulator) Population() int { return sim.population }

// SetBeta changes the transmission rate used by subsequent steps.
func (sim *Simulator) SetBeta(beta float64) { sim.beta = beta }

// SetGamma changes the recovery rate used by subsequent steps.
func (sim *Simulator) SetGamma(gamma float64) { sim.gamma = gamma }
