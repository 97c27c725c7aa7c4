// Package calibrate estimates SIR transmission and recovery rates from
// cumulative case records by inverting the discrete SIR update day over day.
package calibrate

import (
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

const (
	// FallbackBeta is returned when no day pair yields a usable beta.
	FallbackBeta = 0.2
	// FallbackGamma is returned when no day pair yields a usable gamma.
	FallbackGamma = 0.1

	// daily estimates outside (0, max) are treated as noise
	maxDailyBeta  = 5.0
	maxDailyGamma = 1.0
)

// Observation is one day of cumulative counts.
type Observation struct {
	Day       int `json:"day" yaml:"day"`
	Confirmed int `json:"confirmed" yaml:"confirmed"`
	Recovered int `json:"recovered" yaml:"recovered"`
	Deaths    int `json:"deaths" yaml:"deaths"`
}

// Active returns confirmed cases not yet recovered or dead.
func (o Observation) Active() int { return o.Confirmed - o.Recovered - o.Deaths }

// Removed returns recovered plus deaths.
func (o Observation) Removed() int { return o.Recovered + o.Deaths }

// Result holds both estimates and how many day pairs backed each one.
type Result struct {
	Beta         float64 `json:"beta"`
	Gamma        float64 `json:"gamma"`
	BetaSamples  int     `json:"beta_samples"`
	GammaSamples int     `json:"gamma_samples"`
}

// EstimateBeta returns the mean daily transmission rate implied by consecutive
// observations, or FallbackBeta when none qualifies. history must be sorted
// ascending by day.
func EstimateBeta(population int, history []Observation) float64 {
	beta, _ := estimateBeta(population, history)
	return beta
}

// EstimateGamma returns the mean daily removal rate implied by consecutive
// observations, or FallbackGamma when none qualifies. history must be sorted
// ascending by day.
func EstimateGamma(history []Observation) float64 {
	gamma, _ := estimateGamma(history)
	return gamma
}

// Estimate runs both estimators.
func Estimate(population int, history []Observation) Result {
	var r Result
	r.Beta, r.BetaSamples = estimateBeta(population, history)
	r.Gamma, r.GammaSamples = estimateGamma(history)
	logrus.Debugf("Calibrated over %d records: beta=%.4f (%d samples), gamma=%.4f (%d samples)",
		len(history), r.Beta, r.BetaSamples, r.Gamma, r.GammaSamples)
	return r
}

func estimateBeta(population int, history []Observation) (float64, int) {
	n := float64(population)
	var samples []float64
	for t := 0; t+1 < len(history); t++ {
		today, next := history[t], history[t+1]
		active := float64(today.Active())
		susceptible := n - active - float64(today.Removed())
		if active <= 0 || susceptible <= 0 {
			continue
		}
		newInfections := float64(max(0, next.Confirmed-today.Confirmed))
		daily := n * newInfections / (susceptible * active)
		if daily > 0 && daily < maxDailyBeta {
			samples = append(samples, daily)
		}
	}
	if len(samples) == 0 {
		return FallbackBeta, 0
	}
	return stat.Mean(samples, nil), len(samples)
}

func estimateGamma(history []Observation) (float64, int) {
	var samples []float64
	for t := 0; t+1 < len(history); t++ {
		today, next := history[t], history[t+1]
		active := today.Active()
		if active <= 0 {
			continue
		}
		newRemoved := max(0, next.Removed()-today.Removed())
		daily := float64(newRemoved) / float64(active)
		if daily > 0 && daily < maxDailyGamma {
			samples = append(samples, daily)
		}
	}
	if len(samples) == 0 {
		return FallbackGamma, 0
	}
	return stat.Mean(samples, nil), len(samples)
}
