package region

import (
	"fmt"
	"image/color"
)

// RiskLevel classifies a region by active cases per 100k people.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
)

const (
	highRiskPer100k   = 50.0
	mediumRiskPer100k = 10.0
)

// ClassifyRisk returns High above 50 active cases per 100k, Medium above 10,
// Low otherwise. A zero population is always Low.
func ClassifyRisk(c Counts) RiskLevel {
	if c.Population == 0 {
		return RiskLow
	}
	per100k := ActivePer100k(c)
	switch {
	case per100k > highRiskPer100k:
		return RiskHigh
	case per100k > mediumRiskPer100k:
		return RiskMedium
	default:
		return RiskLow
	}
}

// ActivePer100k returns active cases per 100,000 people, 0 for an empty population.
func ActivePer100k(c Counts) float64 {
	if c.Population == 0 {
		return 0
	}
	return float64(c.Active()) / float64(c.Population) * 100000
}

func (l RiskLevel) String() string {
	switch l {
	case RiskHigh:
		return "high"
	case RiskMedium:
		return "medium"
	default:
		return "low"
	}
}

// Label is the short display form used in tables.
func (l RiskLevel) Label() string {
	switch l {
	case RiskHigh:
		return "HIGH"
	case RiskMedium:
		return "MID"
	default:
		return "LOW"
	}
}

// Color is red, yellow or green.
func (l RiskLevel) Color() color.RGBA {
	switch l {
	case RiskHigh:
		return color.RGBA{R: 255, A: 255}
	case RiskMedium:
		return color.RGBA{R: 255, G: 255, A: 255}
	default:
		return color.RGBA{G: 255, A: 255}
	}
}

// MarshalText lets RiskLevel appear as its name in JSON and YAML output.
func (l RiskLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (l *RiskLevel) UnmarshalText(text []byte) error {
	switch string(text) {
	case "high":
		*l = RiskHigh
	case "medium":
		*l = RiskMedium
	case "low":
		*l = RiskLow
	default:
		return fmt.Errorf("unknown risk level %q", text)
	}
	return nil
}
