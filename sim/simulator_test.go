package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/episim/episim/sim/internal/testutil"
)

func TestNewSimulator_Defaults(t *testing.T) {
	s := NewSimulator()

	assert.Equal(t, DefaultBeta, s.Beta())
	assert.Equal(t, DefaultGamma, s.Gamma())
	assert.Equal(t, 0, s.Population())
	assert.Empty(t, s.History())

	s.Reset(500, 5, 0, 0)
	assert.Equal(t, 500, s.Population())
}

func TestSimulator_Reset_SeedsHistoryWithInitialState(t *testing.T) {
	// GIVEN a simulator reset with N=1000, I0=10, R0=5 on day 3
	s := NewSimulator()
	s.Reset(1000, 10, 5, 3)

	// THEN history holds exactly the initial state
	want := State{Day: 3, Susceptible: 985, Infected: 10, Recovered: 5}
	require.Len(t, s.History(), 1)
	assert.Equal(t, want, s.History()[0])
	assert.Equal(t, want, s.Current())
	assert.Equal(t, 1000, s.Population())
}

func TestSimulator_Reset_InconsistentInputsGoNegative(t *testing.T) {
	s := NewSimulator()
	s.Reset(10, 8, 5, 0)

	assert.Equal(t, -3.0, s.Current().Susceptible, "Reset does not validate its inputs")
}

func TestSimulator_Reset_ClearsPreviousRun(t *testing.T) {
	s := NewSimulator()
	s.Reset(1000, 10, 0, 0)
	s.Run(20)

	s.Reset(500, 1, 0, 0)

	require.Len(t, s.History(), 1)
	assert.Equal(t, 0, s.Current().Day)
	assert.Equal(t, 499.0, s.Current().Susceptible)
}

// TestSimulator_Step_KnownValues checks one step against hand-computed numbers:
// N=1e6, beta=0.35, gamma=0.1, I0=100 gives 0.35*999900*100/1e6 = 34.9965 new
// infections (about 35) and 10 recoveries.
func TestSimulator_Step_KnownValues(t *testing.T) {
	s := NewSimulator()
	s.SetBeta(0.35)
	s.SetGamma(0.1)
	s.Reset(1_000_000, 100, 0, 0)

	s.Step()

	got := s.Current()
	assert.Equal(t, 1, got.Day)
	assert.InDelta(t, 999_865.0035, got.Susceptible, 1e-6)
	assert.InDelta(t, 124.9965, got.Infected, 1e-6)
	assert.InDelta(t, 10.0, got.Recovered, 1e-9)
	assert.Len(t, s.History(), 2)
}

func TestSimulator_Step_ZeroPopulationIsNoOp(t *testing.T) {
	s := NewSimulator()
	s.Reset(0, 0, 0, 0)
	before := s.Current()

	s.Step()
	s.Run(10)

	assert.Equal(t, before, s.Current())
	assert.Len(t, s.History(), 1)
}

func TestSimulator_Step_BeforeResetIsNoOp(t *testing.T) {
	s := NewSimulator()
	s.Run(5)
	assert.Empty(t, s.History())
}

// TestSimulator_Step_ConservesPopulationWithoutClamping verifies S+I+R stays at N
// and the day advances by one when no compartment hits the zero floor.
func TestSimulator_Step_ConservesPopulationWithoutClamping(t *testing.T) {
	cases := []struct {
		n, i0, r0   int
		beta, gamma float64
	}{
		{n: 1000, i0: 1, r0: 0, beta: 0.3, gamma: 0.1},
		{n: 1_000_000, i0: 500, r0: 2000, beta: 0.9, gamma: 0.05},
		{n: 50, i0: 10, r0: 10, beta: 0.0, gamma: 0.0},
		{n: 800, i0: 200, r0: 100, beta: 0.5, gamma: 0.9},
	}
	for _, tc := range cases {
		s := NewSimulator()
		s.SetBeta(tc.beta)
		s.SetGamma(tc.gamma)
		s.Reset(tc.n, tc.i0, tc.r0, 0)
		for d := 1; d <= 30; d++ {
			s.Step()
			cur := s.Current()
			assert.Equal(t, d, cur.Day)
			assert.InDelta(t, float64(tc.n), cur.Total(), 1e-6, "N=%d day=%d", tc.n, d)
		}
	}
}

// TestSimulator_Step_FloorClampBreaksConservation pins the known approximation:
// when a single day's infections exceed S, S is floored at 0 and the total drifts
// above N, never below it.
func TestSimulator_Step_FloorClampBreaksConservation(t *testing.T) {
	s := NewSimulator()
	s.SetBeta(4.0)
	s.SetGamma(1.5)
	s.Reset(100, 50, 0, 0)

	// day 1: newInf=4*50*50/100=100 > S=50, newRec=75
	s.Step()
	got := s.Current()
	assert.Equal(t, 0.0, got.Susceptible)
	assert.InDelta(t, 75.0, got.Infected, 1e-9)
	assert.InDelta(t, 75.0, got.Recovered, 1e-9)
	assert.Greater(t, got.Total(), 100.0)

	// day 2: I+0-112.5 < 0 so I is floored
	s.Step()
	got = s.Current()
	assert.Equal(t, 0.0, got.Infected)
	assert.InDelta(t, 187.5, got.Recovered, 1e-9)
	assert.Greater(t, got.Total(), 100.0)
}

func TestSimulator_Step_InfectedGrowsWhenBetaSDominates(t *testing.T) {
	// S0*I0*beta/N > gamma*I0
	s := NewSimulator()
	s.SetBeta(0.4)
	s.SetGamma(0.1)
	s.Reset(10_000, 10, 0, 0)

	s.Step()

	assert.Greater(t, s.Current().Infected, 10.0)
}

func TestSimulator_Run_EquivalentToRepeatedStep(t *testing.T) {
	a := NewSimulator()
	b := NewSimulator()
	for _, s := range []*Simulator{a, b} {
		s.SetBeta(0.3)
		s.SetGamma(0.12)
		s.Reset(250_000, 40, 3, 5)
	}

	a.Run(45)
	for d := 0; d < 45; d++ {
		b.Step()
	}

	assert.Equal(t, b.History(), a.History())
	assert.Len(t, a.History(), 46)
	assert.Equal(t, 50, a.Current().Day)
}

func TestSimulator_Run_NonPositiveDays(t *testing.T) {
	s := NewSimulator()
	s.Reset(100, 1, 0, 0)
	s.Run(0)
	s.Run(-3)
	assert.Len(t, s.History(), 1)
}

func TestSimulator_SetRates_ApplyToNextStepOnly(t *testing.T) {
	s := NewSimulator()
	s.Reset(1000, 100, 0, 0)
	s.Step()
	first := s.History()[1]

	s.SetBeta(0)
	s.SetGamma(0)

	// earlier points keep the old rates
	assert.Equal(t, first, s.History()[1])

	s.Step()
	assert.Equal(t, s.History()[1].Infected, s.Current().Infected, "zero rates freeze the compartments")
}

func TestSimulator_History_ReturnsCopy(t *testing.T) {
	s := NewSimulator()
	s.Reset(100, 1, 0, 0)

	h := s.History()
	h[0].Infected = 99

	assert.Equal(t, 1.0, s.History()[0].Infected)
}

func TestSimulator_GoldenDataset(t *testing.T) {
	dataset := testutil.LoadGoldenDataset(t)
	require.NotEmpty(t, dataset.Tests)

	for _, tc := range dataset.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			s := NewSimulator()
			s.SetBeta(tc.Beta)
			s.SetGamma(tc.Gamma)
			s.Reset(tc.Population, tc.Infected, tc.Removed, tc.StartDay)
			s.Run(tc.Days)

			require.Len(t, s.History(), tc.Expected.HistoryLen)
			final := s.Current()
			assert.Equal(t, tc.Expected.Final.Day, final.Day)
			testutil.AssertFloat64Equal(t, "susceptible", tc.Expected.Final.Susceptible, final.Susceptible, 1e-9)
			testutil.AssertFloat64Equal(t, "infected", tc.Expected.Final.Infected, final.Infected, 1e-9)
			testutil.AssertFloat64Equal(t, "recovered", tc.Expected.Final.Recovered, final.Recovered, 1e-9)

			m := ComputeMetrics(s)
			testutil.AssertFloat64Equal(t, "peak_infected", tc.Expected.PeakInfected, m.PeakInfected, 1e-9)
			assert.Equal(t, tc.Expected.PeakDay, m.PeakDay)
		})
	}
}
