// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"work-advisor/internal/common/validation"
)

// LoadCatalog reads and validates the catalog file.
func LoadCatalog(path string) (*RegionCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*RegionCatalog, error) {
	res, err := validation.RegionCatalog.ValidateBytes(data)
	if err != nil {
		return nil, err
	}
	if !res.Valid {
		return nil, fmt.Errorf("invalid region catalog: %s", strings.Join(res.GetErrorMessages(), "; "))
	}

	var cat RegionCatalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, err
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Validate checks what the schema cannot: unique region codes and unique locations per region.
func (c *RegionCatalog) Validate() error {
	codes := make(map[string]bool)
	for _, r := range c.Regions {
		if codes[r.Code] {
			return fmt.Errorf("duplicate region code: %s", r.Code)
		}
		codes[r.Code] = true

		seen := make(map[string]bool)
		for _, loc := range r.Locations {
			if strings.TrimSpace(loc) == "" {
				return fmt.Errorf("region %s has a blank location", r.Code)
			}
			if seen[loc] {
				return fmt.Errorf("region %s has duplicate location: %s", r.Code, loc)
			}
			seen[loc] = true
		}
	}
	return nil
}

func (c *RegionCatalog) Lookup(code string) (Region, bool) {
	for _, r := range c.Regions {
		if r.Code == code {
			return r, true
		}
	}
	return Region{}, false
}

// HasLocation reports whether loc is a known sub-location of the region.
func (r Region) HasLocation(loc string) bool {
	for _, l := range r.Locations {
		if l == loc {
			return true
		}
	}
	return false
}

func (c *RegionCatalog) AddRegion(region Region) error {
	if _, ok := c.Lookup(region.Code); ok {
		return fmt.Errorf("region with code %s already exists", region.Code)
	}
	if region.Locations == nil {
		region.Locations = []string{}
	}
	c.Regions = append(c.Regions, region)
	c.touch()
	return nil
}

func (c *RegionCatalog) AddLocation(code, location string) error {
	location = strings.TrimSpace(location)
	if location == "" {
		return fmt.Errorf("location must not be blank")
	}
	for i := range c.Regions {
		if c.Regions[i].Code != code {
			continue
		}
		if c.Regions[i].HasLocation(location) {
			return fmt.Errorf("region %s already has location %s", code, location)
		}
		c.Regions[i].Locations = append(c.Regions[i].Locations, location)
		c.touch()
		return nil
	}
	return fmt.Errorf("region with code %s not found", code)
}

func (c *RegionCatalog) touch() {
	c.LastUpdated = time.Now().UTC().Format(time.RFC3339)
}

// SaveCatalog writes the catalog as indented JSON, creating the directory if needed.
func SaveCatalog(cat *RegionCatalog, path string) error {
	data, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}
