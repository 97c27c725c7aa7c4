package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/episim/episim/sim/calibrate"
	"github.com/episim/episim/sim/region"
)

var (
	estimatePopulation  int
	estimateHistoryPath string
	estimateScenario    string
	estimateRegion      string
)

// estimateOutput is what `episim estimate` prints.
type estimateOutput struct {
	Region     string `json:"region,omitempty"`
	Population int    `json:"population"`
	Records    int    `json:"records"`
	calibrate.Result
}

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate beta and gamma from cumulative case history",
	Long: "Estimate the SIR transmission (beta) and recovery (gamma) rates from a case-history CSV " +
		"(columns day,confirmed,recovered,deaths) or from a scenario region's history. " +
		"Rates fall back to 0.2 and 0.1 when the history has no usable day pairs.",
	Run: func(cmd *cobra.Command, args []string) {
		out := estimateOutput{}
		var records []region.Record

		switch {
		case estimateScenario != "":
			reg, err := loadRegistry(estimateScenario, false)
			if err != nil {
				logrus.Fatalf("Failed to load scenario: %v", err)
			}
			r, err := reg.Find(estimateRegion)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			out.Region = r.Name
			out.Population = r.Population
			records = r.History()
		case estimateHistoryPath != "":
			var err error
			records, err = region.LoadRecordsCSV(estimateHistoryPath)
			if err != nil {
				logrus.Fatalf("Failed to load history: %v", err)
			}
			out.Population = estimatePopulation
		default:
			logrus.Fatalf("One of --history or --scenario is required")
		}

		if out.Population <= 0 {
			logrus.Fatalf("Population must be positive, got %d", out.Population)
		}
		if len(records) < 2 {
			logrus.Warnf("Only %d records; estimates will be the fallback values", len(records))
		}

		out.Records = len(records)
		out.Result = calibrate.Estimate(out.Population, records)
		printJSON(out)
	},
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logrus.Fatalf("JSON marshal failed: %v", err)
	}
	fmt.Println(string(data))
}

func init() {
	estimateCmd.Flags().IntVar(&estimatePopulation, "population", 0, "Total population N (with --history)")
	estimateCmd.Flags().StringVar(&estimateHistoryPath, "history", "", "Case-history CSV file")
	estimateCmd.Flags().StringVar(&estimateScenario, "scenario", "", "Scenario YAML file")
	estimateCmd.Flags().StringVar(&estimateRegion, "region", "", "Region of the scenario to calibrate")

	rootCmd.AddCommand(estimateCmd)
}
