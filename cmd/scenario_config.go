package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/episim/episim/sim/region"
)

// RegionConfig is one region entry of a scenario file.
type RegionConfig struct {
	region.Counts `yaml:",inline"`
	History       []region.Record `yaml:"history"`
}

// ScenarioConfig represents the full scenario YAML structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type ScenarioConfig struct {
	Version string         `yaml:"version"`
	Regions []RegionConfig `yaml:"regions"`
}

// LoadScenarioConfig parses a scenario YAML file with strict field checking
// so that typos fail loudly instead of silently zeroing a count.
func LoadScenarioConfig(path string) (*ScenarioConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	var cfg ScenarioConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML %s: %w", path, err)
	}
	return &cfg, nil
}

// BuildRegistry validates every region of the scenario and loads its history.
func (cfg *ScenarioConfig) BuildRegistry() (*region.Registry, error) {
	reg := region.NewRegistry()
	for i, rc := range cfg.Regions {
		r, err := reg.Add(rc.Counts)
		if err != nil {
			return nil, fmt.Errorf("scenario region %d: %w", i, err)
		}
		for _, rec := range rc.History {
			r.AddRecord(rec)
		}
	}
	return reg, nil
}

// loadRegistry builds the registry for commands that accept --scenario and --seed.
// With neither flag the registry is empty.
func loadRegistry(scenarioPath string, seed bool) (*region.Registry, error) {
	reg := region.NewRegistry()
	if scenarioPath != "" {
		cfg, err := LoadScenarioConfig(scenarioPath)
		if err != nil {
			return nil, err
		}
		if reg, err = cfg.BuildRegistry(); err != nil {
			return nil, err
		}
	}
	if seed {
		region.Seed(reg)
	}
	return reg, nil
}
