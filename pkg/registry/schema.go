// pkg/registry/schema.go
package registry

// RegionCatalog lists the regions a batch may target.
type RegionCatalog struct {
	Version     string   `json:"version"`
	LastUpdated string   `json:"lastUpdated"`
	Regions     []Region `json:"regions"`
}

type Region struct {
	Code      string   `json:"code"`
	Name      string   `json:"name"`
	Currency  string   `json:"currency,omitempty"`
	Locations []string `json:"locations"`
}
