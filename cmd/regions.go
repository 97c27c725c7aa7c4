package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/episim/episim/sim/region"
)

var (
	regionsScenario string
	regionsSeed     bool
	regionsJSON     bool
	regionsSearch   string
)

// regionRow is one line of the region overview.
type regionRow struct {
	Name          string           `json:"name"`
	Population    int              `json:"population"`
	Confirmed     int              `json:"confirmed"`
	Recovered     int              `json:"recovered"`
	Deaths        int              `json:"deaths"`
	Active        int              `json:"active"`
	ActivePer100k float64          `json:"active_per_100k"`
	Risk          region.RiskLevel `json:"risk"`
}

type regionsOverview struct {
	Totals  region.Totals `json:"totals"`
	Regions []regionRow   `json:"regions"`
}

// buildOverview lists the regions whose name contains search. Totals always
// cover the whole registry.
func buildOverview(reg *region.Registry, search string) regionsOverview {
	ov := regionsOverview{Totals: reg.Totals(), Regions: make([]regionRow, 0, reg.Len())}
	for _, r := range reg.Search(search) {
		ov.Regions = append(ov.Regions, regionRow{
			Name:          r.Name,
			Population:    r.Population,
			Confirmed:     r.Confirmed,
			Recovered:     r.Recovered,
			Deaths:        r.Deaths,
			Active:        r.Active(),
			ActivePer100k: region.ActivePer100k(r.Counts),
			Risk:          r.Risk(),
		})
	}
	return ov
}

func printOverview(w io.Writer, ov regionsOverview) {
	t := ov.Totals
	fmt.Fprintln(w, "=== Overview ===")
	fmt.Fprintf(w, "Regions    : %d\n", t.Regions)
	fmt.Fprintf(w, "Population : %d\n", t.Population)
	fmt.Fprintf(w, "Confirmed  : %d\n", t.Confirmed)
	fmt.Fprintf(w, "Recovered  : %d\n", t.Recovered)
	fmt.Fprintf(w, "Deaths     : %d\n", t.Deaths)
	fmt.Fprintf(w, "Active     : %d\n\n", t.Active)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPOPULATION\tCONFIRMED\tRECOVERED\tDEATHS\tACTIVE\tPER 100K\tRISK")
	for _, r := range ov.Regions {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%.2f\t%s\n",
			r.Name, r.Population, r.Confirmed, r.Recovered, r.Deaths, r.Active, r.ActivePer100k, r.Risk.Label())
	}
	_ = tw.Flush()
}

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Show totals and risk levels for the regions of a scenario",
	Run: func(cmd *cobra.Command, args []string) {
		if regionsScenario == "" && !regionsSeed {
			logrus.Fatalf("One of --scenario or --seed is required")
		}
		reg, err := loadRegistry(regionsScenario, regionsSeed)
		if err != nil {
			logrus.Fatalf("Failed to load regions: %v", err)
		}
		ov := buildOverview(reg, regionsSearch)
		if regionsJSON {
			printJSON(ov)
			return
		}
		printOverview(os.Stdout, ov)
	},
}

func init() {
	regionsCmd.Flags().StringVar(&regionsScenario, "scenario", "", "Scenario YAML file")
	regionsCmd.Flags().BoolVar(&regionsSeed, "seed", false, "Include the built-in demo regions")
	regionsCmd.Flags().BoolVar(&regionsJSON, "json", false, "Print JSON instead of a table")
	regionsCmd.Flags().StringVar(&regionsSearch, "search", "", "Only list regions whose name contains this text")

	rootCmd.AddCommand(regionsCmd)
}
