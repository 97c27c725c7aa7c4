package region

import "github.com/sirupsen/logrus"

// SeedCounts are the demo regions a fresh installation starts with.
// Beijing's published figures have more removed than confirmed cases; they
// are kept as published.
var SeedCounts = []Counts{
	{Name: "Wuhan", Population: 11000000, Confirmed: 50340, Recovered: 46464, Deaths: 3869},
	{Name: "Changsha", Population: 8000000, Confirmed: 242, Recovered: 242, Deaths: 0},
	{Name: "Shanghai", Population: 24000000, Confirmed: 340, Recovered: 300, Deaths: 7},
	{Name: "Beijing", Population: 21540000, Confirmed: 593, Recovered: 586, Deaths: 9},
	{Name: "Guangzhou", Population: 15310000, Confirmed: 349, Recovered: 348, Deaths: 1},
}

// Seed adds SeedCounts to reg without rejecting inconsistent entries.
func Seed(reg *Registry) {
	for _, c := range SeedCounts {
		if _, err := Validate(c); err != nil {
			logrus.Warnf("Seeding inconsistent region: %v", err)
		}
		reg.regions = append(reg.regions, newRegion(c))
	}
}
