package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/episim/episim/sim"
	"github.com/episim/episim/sim/export"
)

var (
	// CLI flags for the SIR run
	population int     // Total population N
	infected   int     // Initial infected (active) cases
	removed    int     // Initial removed (recovered + deaths)
	startDay   int     // Day number of the initial state
	beta       float64 // Transmission rate
	gamma      float64 // Recovery rate
	days       int     // Number of days to simulate
	logLevel   string  // Log verbosity level

	// Scenario-driven runs
	scenarioPath string // Scenario YAML with regions and case history
	regionName   string // Region of the scenario to simulate
	seedRegions  bool   // Use the built-in demo regions
	calibrateRun bool   // Take beta and gamma from the region's history

	// Outputs
	csvOut     string // Trajectory CSV path
	pngOut     string // Trajectory chart path
	metricsOut string // Metrics JSON path
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "episim",
	Short: "SIR epidemic simulator with parameter calibration",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the SIR simulation",
	Run: func(cmd *cobra.Command, args []string) {
		if days < 0 {
			logrus.Fatalf("--days must be non-negative, got %d", days)
		}

		var s *sim.Simulator
		title := "SIR"
		if scenarioPath != "" || seedRegions {
			s, title = simulatorForRegion()
		} else {
			if population < 0 || infected < 0 || removed < 0 {
				logrus.Fatalf("--population, --infected and --removed must be non-negative")
			}
			if infected+removed > population {
				logrus.Fatalf("infected (%d) + removed (%d) exceeds population (%d)", infected, removed, population)
			}
			s = sim.NewSimulator()
			s.SetBeta(beta)
			s.SetGamma(gamma)
			s.Reset(population, infected, removed, startDay)
		}

		logrus.Infof("Starting simulation: N=%d, beta=%.4f, gamma=%.4f, days=%d",
			s.Population(), s.Beta(), s.Gamma(), days)
		s.Run(days)

		sim.ComputeMetrics(s).SaveResults(metricsOut)
		writeOutputs(title, s.History())

		logrus.Info("Simulation complete.")
	},
}

// simulatorForRegion prepares the named region's simulator with rates from
// --calibrate or from --beta/--gamma.
func simulatorForRegion() (*sim.Simulator, string) {
	reg, err := loadRegistry(scenarioPath, seedRegions)
	if err != nil {
		logrus.Fatalf("Failed to load regions: %v", err)
	}
	if regionName == "" {
		logrus.Fatalf("--region is required with --scenario or --seed")
	}
	r, err := reg.Find(regionName)
	if err != nil {
		logrus.Fatalf("%v", err)
	}

	b, g := beta, gamma
	if calibrateRun {
		res := r.Calibrate()
		b, g = res.Beta, res.Gamma
		logrus.Infof("Calibrated %s from %d records: beta=%.4f (%d samples), gamma=%.4f (%d samples)",
			r.Name, len(r.History()), res.Beta, res.BetaSamples, res.Gamma, res.GammaSamples)
	}
	r.PrepareSimulation(b, g)
	return r.Simulation(), r.Name
}

func writeOutputs(title string, history []sim.State) {
	if csvOut != "" {
		if err := export.SaveCSV(csvOut, history); err != nil {
			logrus.Fatalf("CSV export failed: %v", err)
		}
	}
	if pngOut != "" {
		if err := export.SavePNG(pngOut, title, history); err != nil {
			logrus.Fatalf("Chart export failed: %v", err)
		}
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().IntVar(&population, "population", 1_000_000, "Total population N")
	runCmd.Flags().IntVar(&infected, "infected", 100, "Initial infected cases")
	runCmd.Flags().IntVar(&removed, "removed", 0, "Initial removed cases (recovered + deaths)")
	runCmd.Flags().IntVar(&startDay, "start-day", 0, "Day number of the initial state")
	runCmd.Flags().Float64Var(&beta, "beta", 0.3, "Transmission rate")
	runCmd.Flags().Float64Var(&gamma, "gamma", 0.1, "Recovery rate")
	runCmd.Flags().IntVar(&days, "days", 90, "Number of days to simulate")

	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Scenario YAML file with regions and case history")
	runCmd.Flags().BoolVar(&seedRegions, "seed", false, "Include the built-in demo regions")
	runCmd.Flags().StringVar(&regionName, "region", "", "Region to simulate (with --scenario or --seed)")
	runCmd.Flags().BoolVar(&calibrateRun, "calibrate", false, "Estimate beta and gamma from the region's history")

	runCmd.Flags().StringVar(&csvOut, "csv", "", "Write the trajectory as CSV to this path")
	runCmd.Flags().StringVar(&pngOut, "png", "", "Write the trajectory chart as PNG to this path")
	runCmd.Flags().StringVar(&metricsOut, "metrics-path", "", "Also write metrics JSON to this path")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
