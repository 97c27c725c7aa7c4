// Package export renders SIR trajectories for consumers outside the engine:
// CSV tables and PNG line charts.
package export

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/episim/episim/sim"
)

// CSVHeader is the first row written by WriteCSV.
var CSVHeader = []string{"day", "susceptible", "infected", "recovered"}

// ErrTooFewPoints is returned when a chart is requested for fewer than two states.
var ErrTooFewPoints = errors.New("at least two states are required to draw a chart")

// WriteCSV writes the header followed by one row per state.
func WriteCSV(w io.Writer, states []sim.State) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, st := range states {
		row := []string{
			strconv.Itoa(st.Day),
			formatCount(st.Susceptible),
			formatCount(st.Infected),
			formatCount(st.Recovered),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row for day %d: %w", st.Day, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// SaveCSV writes states to a CSV file at path.
func SaveCSV(path string, states []sim.State) error {
	return saveTo(path, func(w io.Writer) error { return WriteCSV(w, states) })
}

var (
	susceptibleColor = drawing.Color{R: 31, G: 119, B: 180, A: 255}
	infectedColor    = drawing.Color{R: 214, G: 39, B: 40, A: 255}
	recoveredColor   = drawing.Color{R: 44, G: 160, B: 44, A: 255}
)

// RenderPNG draws S, I and R against day as a PNG line chart.
func RenderPNG(w io.Writer, title string, states []sim.State) error {
	if len(states) < 2 {
		return ErrTooFewPoints
	}
	days := make([]float64, len(states))
	s := make([]float64, len(states))
	i := make([]float64, len(states))
	r := make([]float64, len(states))
	for idx, st := range states {
		days[idx] = float64(st.Day)
		s[idx] = st.Susceptible
		i[idx] = st.Infected
		r[idx] = st.Recovered
	}

	graph := chart.Chart{
		Title:  title,
		Width:  1024,
		Height: 512,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name: "Day",
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name: "Population",
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f", v.(float64))
			},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Susceptible",
				XValues: days,
				YValues: s,
				Style:   chart.Style{StrokeColor: susceptibleColor, StrokeWidth: 2.0},
			},
			chart.ContinuousSeries{
				Name:    "Infected",
				XValues: days,
				YValues: i,
				Style:   chart.Style{StrokeColor: infectedColor, StrokeWidth: 2.0},
			},
			chart.ContinuousSeries{
				Name:    "Recovered",
				XValues: days,
				YValues: r,
				Style:   chart.Style{StrokeColor: recoveredColor, StrokeWidth: 2.0},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("rendering chart %q: %w", title, err)
	}
	return nil
}

// SavePNG renders the chart to a file at path.
func SavePNG(path, title string, states []sim.State) error {
	return saveTo(path, func(w io.Writer) error { return RenderPNG(w, title, states) })
}

func saveTo(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	writer := bufio.NewWriter(file)
	if err := write(writer); err != nil {
		_ = file.Close()
		return err
	}
	if err := writer.Flush(); err != nil {
		_ = file.Close()
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	logrus.Infof("Wrote %s", path)
	return nil
}
