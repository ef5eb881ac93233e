// Package expander turns region selections into the ordered work queue of a batch.
package expander

import (
	"fmt"
	"strings"

	apperrors "work-advisor/internal/common/errors"
	"work-advisor/internal/models"
)

// Expand emits one request per sub-location, or one region-level request when a
// region has none. Order follows the input: regions first, then sub-locations.
// Blank sub-locations are skipped and repeated identity keys keep their first position.
func Expand(regions []models.RegionSelection, payload models.FormPayload) ([]models.PredictionRequest, error) {
	if len(regions) == 0 {
		return nil, apperrors.NewValidationError("at least one region must be selected")
	}

	seen := make(map[string]bool)
	requests := make([]models.PredictionRequest, 0, len(regions))

	add := func(regionCode, subLocation string) {
		req := models.PredictionRequest{
			RegionCode:  regionCode,
			SubLocation: subLocation,
			Payload:     payload,
		}
		if seen[req.Key()] {
			return
		}
		seen[req.Key()] = true
		requests = append(requests, req)
	}

	for i, region := range regions {
		code := strings.TrimSpace(region.RegionCode)
		if code == "" {
			return nil, apperrors.NewValidationError(fmt.Sprintf("regions[%d]: region code is required", i))
		}

		emitted := false
		for _, loc := range region.Locations {
			loc = strings.TrimSpace(loc)
			if loc == "" {
				continue
			}
			add(code, loc)
			emitted = true
		}
		if !emitted {
			add(code, "")
		}
	}

	return requests, nil
}

// Keys lists the identity keys of a queue in order.
func Keys(requests []models.PredictionRequest) []string {
	keys := make([]string, len(requests))
	for i, r := range requests {
		keys[i] = r.Key()
	}
	return keys
}
