package main

import (
	"fmt"
	"sort"

	"work-advisor/internal/common/database"
	"work-advisor/internal/prediction/report"
	"work-advisor/internal/prediction/snapshot"
	"work-advisor/pkg/registry"

	"github.com/urfave/cli/v2"
)

func snapshotsCommand() *cli.Command {
	return &cli.Command{
		Name:  "snapshots",
		Usage: "Manage saved batch snapshots",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List snapshots, newest first",
				Action: withStore(runListSnapshots),
			},
			{
				Name:      "show",
				Usage:     "Show one snapshot with its summary",
				ArgsUsage: "<id>",
				Action:    withStore(runShowSnapshot),
			},
			{
				Name:      "delete",
				Usage:     "Delete one snapshot",
				ArgsUsage: "<id>",
				Action:    withStore(runDeleteSnapshot),
			},
			{
				Name:   "clear",
				Usage:  "Delete every snapshot",
				Action: withStore(runClearSnapshots),
			},
		},
	}
}

func withStore(action func(c *cli.Context, store *snapshot.Store) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		kv, err := database.OpenKeyValue(c.Context, cfg)
		if err != nil {
			return err
		}
		defer kv.Close()

		return action(c, snapshot.NewStore(kv, &snapshot.Config{Key: cfg.Storage.SnapshotKey}, newLogger(c)))
	}
}

func runListSnapshots(c *cli.Context, store *snapshot.Store) error {
	list, err := store.List(c.Context)
	if err != nil {
		return err
	}
	fmt.Println(renderSnapshotList(list))
	return nil
}

func runShowSnapshot(c *cli.Context, store *snapshot.Store) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	snap, err := store.Load(c.Context, id)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(snap.Results))
	for k := range snap.Results {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println(titleStyle.Render(fmt.Sprintf("%s  (%s)", snap.Name, snap.CreatedAt.Format("2006-01-02 15:04:05"))))
	fmt.Println(renderOutcomes(keys, snap.Results))
	fmt.Println(renderSummary(report.ForSnapshot(snap)))
	return nil
}

func runDeleteSnapshot(c *cli.Context, store *snapshot.Store) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	return store.Delete(c.Context, id)
}

func runClearSnapshots(c *cli.Context, store *snapshot.Store) error {
	return store.Clear(c.Context)
}

func requireID(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one snapshot id")
	}
	return c.Args().First(), nil
}

func regionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "regions",
		Usage: "List the regions and sub-locations a batch may target",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			catalog, err := registry.LoadCatalog(cfg.Regions.CatalogPath)
			if err != nil {
				return err
			}
			fmt.Println(renderCatalog(catalog))
			return nil
		},
	}
}
