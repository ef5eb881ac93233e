// advisorctl runs salary prediction batches from the terminal and manages saved snapshots.
//
// Usage:
//
//	advisorctl predict --input batch.json [--save "ML roles"]
//	advisorctl snapshots list
//	advisorctl snapshots show <id>
//	advisorctl regions
package main

import (
	"fmt"
	"os"

	"work-advisor/internal/common/config"
	"work-advisor/internal/common/logger"

	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	app := &cli.App{
		Name:    "advisorctl",
		Usage:   "Run salary prediction batches and manage saved snapshots",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a config YAML file (default: configs/config.yaml lookup)",
				EnvVars: []string{"ADVISOR_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"ADVISOR_LOG_LEVEL"},
			},
		},

		Commands: []*cli.Command{
			predictCommand(),
			snapshotsCommand(),
			regionsCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// newLogger writes to stderr so stdout carries only command output.
func newLogger(c *cli.Context) logger.Logger {
	log, err := logger.NewStructured(c.String("log-level"), "console", "stderr")
	if err != nil {
		return logger.NewNoOpLogger()
	}
	return log
}
