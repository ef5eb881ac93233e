// cmd/tools/catalog-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"work-advisor/pkg/registry"
)

const defaultCatalogPath = "configs/regions.json"

func main() {
	addRegionCmd := flag.NewFlagSet("add-region", flag.ExitOnError)
	addLocationCmd := flag.NewFlagSet("add-location", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	// add-region flags
	regionPath := addRegionCmd.String("path", defaultCatalogPath, "Path to catalog file")
	code := addRegionCmd.String("code", "", "ISO country code (e.g., FR)")
	name := addRegionCmd.String("name", "", "Display name (e.g., France)")
	currency := addRegionCmd.String("currency", "", "Currency code (e.g., EUR)")
	locations := addRegionCmd.String("locations", "", "Comma-separated sub-locations (e.g., Paris,Lyon)")

	// add-location flags
	locationPath := addLocationCmd.String("path", defaultCatalogPath, "Path to catalog file")
	locationCode := addLocationCmd.String("code", "", "Region code to extend")
	location := addLocationCmd.String("location", "", "Sub-location to add")

	validatePath := validateCmd.String("path", defaultCatalogPath, "Path to catalog file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add-region":
		addRegionCmd.Parse(os.Args[2:])
		if *code == "" || *name == "" {
			fmt.Println("Error: code and name are required for add-region.")
			addRegionCmd.Usage()
			os.Exit(1)
		}
		region := registry.Region{
			Code:      strings.ToUpper(*code),
			Name:      *name,
			Currency:  *currency,
			Locations: splitLocations(*locations),
		}
		if err := addRegion(*regionPath, region); err != nil {
			fmt.Printf("Error adding region: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added region: %s\n", region.Code)

	case "add-location":
		addLocationCmd.Parse(os.Args[2:])
		if *locationCode == "" || *location == "" {
			fmt.Println("Error: code and location are required for add-location.")
			addLocationCmd.Usage()
			os.Exit(1)
		}
		if err := addLocation(*locationPath, strings.ToUpper(*locationCode), *location); err != nil {
			fmt.Printf("Error adding location: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added location %s to region %s\n", *location, strings.ToUpper(*locationCode))

	case "validate":
		validateCmd.Parse(os.Args[2:])
		cat, err := registry.LoadCatalog(*validatePath)
		if err != nil {
			fmt.Printf("Catalog validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Catalog validation passed (%d regions).\n", len(cat.Regions))

	case "help":
		fallthrough
	default:
		help()
	}
}

func addRegion(path string, region registry.Region) error {
	cat, err := registry.LoadCatalog(path)
	if err != nil {
		// If file doesn't exist, start a new catalog
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		cat = &registry.RegionCatalog{
			Version:     "1.0.0",
			LastUpdated: time.Now().UTC().Format(time.RFC3339),
			Regions:     []registry.Region{},
		}
	}

	if err := cat.AddRegion(region); err != nil {
		return err
	}
	if err := cat.Validate(); err != nil {
		return err
	}
	return registry.SaveCatalog(cat, path)
}

func addLocation(path, code, location string) error {
	cat, err := registry.LoadCatalog(path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	if err := cat.AddLocation(code, location); err != nil {
		return err
	}
	return registry.SaveCatalog(cat, path)
}

func splitLocations(raw string) []string {
	out := []string{}
	for _, loc := range strings.Split(raw, ",") {
		if loc = strings.TrimSpace(loc); loc != "" {
			out = append(out, loc)
		}
	}
	return out
}

func help() {
	fmt.Println("Usage: catalog-updater <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  add-region    Add a new region")
	fmt.Println("  add-location  Add a sub-location to an existing region")
	fmt.Println("  validate      Validate the catalog file")
	fmt.Println("  help          Show this help message")
}
