package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"work-advisor/internal/api"
	"work-advisor/internal/common/config"
	"work-advisor/internal/common/database"
	"work-advisor/internal/prediction/expander"
	"work-advisor/internal/prediction/gateway"
	"work-advisor/internal/prediction/orchestrator"
	"work-advisor/internal/prediction/report"
	"work-advisor/internal/prediction/snapshot"
	"work-advisor/pkg/registry"

	"github.com/urfave/cli/v2"
)

func predictCommand() *cli.Command {
	return &cli.Command{
		Name:  "predict",
		Usage: "Run one prediction per selected region and sub-location",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Path to a batch request JSON ({\"form\": {...}, \"regions\": [...]})",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "endpoint",
				Usage:   "Prediction endpoint URL (overrides prediction.endpoint_url)",
				EnvVars: []string{"PREDICTION_ENDPOINT_URL"},
			},
			&cli.StringFlag{
				Name:  "save",
				Usage: "Save the finished batch as a snapshot with this name",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "Output format (table, json)",
			},
		},
		Action: runPredict,
	}
}

func runPredict(c *cli.Context) error {
	if endpoint := c.String("endpoint"); endpoint != "" {
		os.Setenv("PREDICTION_ENDPOINT_URL", endpoint)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(c)

	body, err := os.ReadFile(c.String("input"))
	if err != nil {
		return fmt.Errorf("failed to read batch request: %w", err)
	}
	req, err := api.ParseBatchRequest(body)
	if err != nil {
		return err
	}

	catalog, err := registry.LoadCatalog(cfg.Regions.CatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load region catalog: %w", err)
	}
	if err := api.CheckRegions(catalog, req.Regions); err != nil {
		return err
	}
	queue, err := expander.Expand(req.Regions, req.Form)
	if err != nil {
		return err
	}

	gw := gateway.New(&gateway.Config{
		EndpointURL: cfg.Prediction.EndpointURL,
		APIKey:      cfg.Prediction.APIKey,
		Timeout:     config.GetDuration(cfg.Prediction.Timeout),
	}, log)
	runner := orchestrator.New(gw, nil, log)

	unsubscribe := runner.Subscribe(func(v orchestrator.View) {
		fmt.Fprintf(os.Stderr, "%s\n", renderProgress(v))
	})
	defer unsubscribe()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "Running %d predictions: %v\n", len(queue), expander.Keys(queue))
	view, err := runner.Run(ctx, queue)
	if err != nil {
		return err
	}

	summary := report.Summarize(view.Outcomes())
	if c.String("format") == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]interface{}{"batch": view, "summary": summary}); err != nil {
			return err
		}
	} else {
		fmt.Println(renderOutcomes(expander.Keys(queue), view.Outcomes()))
		fmt.Println(renderSummary(summary))
	}

	if name := c.String("save"); name != "" {
		if view.State != orchestrator.StateCompleted {
			return fmt.Errorf("batch %s, not saving snapshot %q", view.State, name)
		}
		kv, err := database.OpenKeyValue(context.Background(), cfg)
		if err != nil {
			return err
		}
		defer kv.Close()

		store := snapshot.NewStore(kv, &snapshot.Config{Key: cfg.Storage.SnapshotKey}, log)
		id, err := store.Save(context.Background(), name, view.Payload, view.Outcomes())
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved snapshot %s (%s)\n", name, id)
	}
	return nil
}
