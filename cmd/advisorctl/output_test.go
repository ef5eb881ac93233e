package main

import (
	"strings"
	"testing"
	"time"

	"work-advisor/internal/models"
	"work-advisor/internal/prediction/orchestrator"
	"work-advisor/internal/prediction/report"
	"work-advisor/pkg/registry"

	"github.com/stretchr/testify/assert"
)

func TestRenderOutcomes(t *testing.T) {
	ny := models.Success(120000)
	ny.DurationMs, ny.RelativeDurationMs = 100, 100

	out := renderOutcomes([]string{"US-NY", "SG", "US-SF"}, map[string]models.Outcome{
		"US-NY": ny,
		"SG":    models.Failure("timeout"),
	})

	assert.Contains(t, out, "120000.00")
	assert.Contains(t, out, "failed: timeout")
	assert.Contains(t, out, "pending")
	assert.Less(t, strings.Index(out, "US-NY"), strings.Index(out, "SG"))
}

func TestRenderSummary(t *testing.T) {
	s := report.Summarize(map[string]models.Outcome{
		"US-NY": models.Success(120000),
		"US-SF": models.Success(98000),
		"SG":    models.Failure("timeout"),
	})

	out := renderSummary(s)
	assert.Contains(t, out, "3 predictions, 2 succeeded, 1 failed")
	assert.Contains(t, out, "mean 109000")
	assert.Contains(t, out, "highest: US-NY")

	empty := renderSummary(report.Summarize(nil))
	assert.Contains(t, empty, "0 predictions")
	assert.NotContains(t, empty, "highest")
}

func TestRenderProgress(t *testing.T) {
	assert.Contains(t, renderProgress(orchestrator.View{
		State:    orchestrator.StateRunning,
		Progress: orchestrator.Progress{Completed: 1, Total: 3},
	}), "[1/3] running")

	assert.Contains(t, renderProgress(orchestrator.View{
		State:     orchestrator.StateCompleted,
		Progress:  orchestrator.Progress{Completed: 3, Total: 3},
		ElapsedMs: 420,
	}), "in 420ms")
}

func TestRenderSnapshotListAndCatalog(t *testing.T) {
	assert.Contains(t, renderSnapshotList(nil), "no snapshots saved")

	out := renderSnapshotList([]models.BatchSnapshot{{
		ID:        "abc",
		Name:      "ML roles",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Results:   map[string]models.Outcome{"SG": models.Failure("x")},
	}})
	assert.Contains(t, out, "2026-03-01 12:00:00")
	assert.Contains(t, out, "ML roles")

	cat := &registry.RegionCatalog{Version: "1.0.0", Regions: []registry.Region{
		{Code: "US", Name: "United States", Locations: []string{"NY", "SF"}},
		{Code: "SG", Name: "Singapore", Locations: []string{}},
	}}
	out = renderCatalog(cat)
	assert.Contains(t, out, "NY, SF")
	assert.Contains(t, out, "region-level only")
}
