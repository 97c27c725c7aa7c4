package region

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned for an unknown region ID.
var ErrNotFound = errors.New("region not found")

// Registry holds the regions of one application context in insertion order.
// It is not safe for concurrent use; the HTTP layer serializes access.
type Registry struct {
	regions []*Region
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{regions: make([]*Region, 0)}
}

// Add validates c and appends a new region.
func (reg *Registry) Add(c Counts) (*Region, error) {
	r, err := New(c)
	if err != nil {
		return nil, fmt.Errorf("add region: %w", err)
	}
	reg.regions = append(reg.regions, r)
	logrus.Debugf("Added region %s (%s), population=%d", r.Name, r.ID, r.Population)
	return r, nil
}

// Get returns the region with the given ID.
func (reg *Registry) Get(id uuid.UUID) (*Region, error) {
	if i := reg.index(id); i >= 0 {
		return reg.regions[i], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Find returns the first region named name.
func (reg *Registry) Find(name string) (*Region, error) {
	for _, r := range reg.regions {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Search returns the regions whose name contains substr, in insertion order.
// An empty substr matches every region.
func (reg *Registry) Search(substr string) []*Region {
	out := make([]*Region, 0, len(reg.regions))
	for _, r := range reg.regions {
		if strings.Contains(r.Name, substr) {
			out = append(out, r)
		}
	}
	return out
}

// Update replaces the counts of an existing region.
func (reg *Registry) Update(id uuid.UUID, c Counts) (*Region, error) {
	r, err := reg.Get(id)
	if err != nil {
		return nil, err
	}
	if err := r.Update(c); err != nil {
		return nil, fmt.Errorf("update region %s: %w", id, err)
	}
	return r, nil
}

// Delete removes a region.
func (reg *Registry) Delete(id uuid.UUID) error {
	i := reg.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	reg.regions = append(reg.regions[:i], reg.regions[i+1:]...)
	return nil
}

// List returns the regions in insertion order. The slice is a copy; the
// regions are shared.
func (reg *Registry) List() []*Region {
	out := make([]*Region, len(reg.regions))
	copy(out, reg.regions)
	return out
}

// Len returns the number of regions.
func (reg *Registry) Len() int { return len(reg.regions) }

func (reg *Registry) index(id uuid.UUID) int {
	for i, r := range reg.regions {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// Totals aggregates the current counts across all regions.
type Totals struct {
	Regions    int   `json:"regions"`
	Population int64 `json:"population"`
	Confirmed  int64 `json:"confirmed"`
	Recovered  int64 `json:"recovered"`
	Deaths     int64 `json:"deaths"`
	Active     int64 `json:"active"`
}

// Totals sums counts over every region.
func (reg *Registry) Totals() Totals {
	t := Totals{Regions: len(reg.regions)}
	for _, r := range reg.regions {
		t.Population += int64(r.Population)
		t.Confirmed += int64(r.Confirmed)
		t.Recovered += int64(r.Recovered)
		t.Deaths += int64(r.Deaths)
	}
	t.Active = t.Confirmed - t.Recovered - t.Deaths
	return t
}
