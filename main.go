package main

import (
	"context"
	"os"

	"github.com/paularlott/cli"
	"github.com/paularlott/cli/env"
	"github.com/sszokoly/bgwmon/cmd/discovery"
	"github.com/sszokoly/bgwmon/cmd/gateway"
	"github.com/sszokoly/bgwmon/cmd/server"
	"github.com/sszokoly/bgwmon/internal/log"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Load .env file if it exists
	env.Load()

	// Initialize structured logging
	log.Configure("info", "console")

	rootCmd := &cli.Command{
		Name:        "bgwmon",
		Version:     version,
		Usage:       "Avaya branch gateway monitor",
		Description: "Poll Avaya branch gateways over SSH, derive telemetry fields from CLI output and serve them over HTTP and MCP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:         "log-level",
				Usage:        "Log level (trace, debug, info, warn, error)",
				DefaultValue: "info",
				EnvVars:      []string{"BGW_LOG_LEVEL"},
				Global:       true,
			},
			&cli.StringFlag{
				Name:         "log-format",
				Usage:        "Log format (console, json)",
				DefaultValue: "console",
				EnvVars:      []string{"BGW_LOG_FORMAT"},
				Global:       true,
			},
		},
		PreRun: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logLevel := cmd.GetString("log-level")
			logFormat := cmd.GetString("log-format")
			log.Configure(logLevel, logFormat)
			return ctx, nil
		},
		Commands: []*cli.Command{
			server.Command(),
			{
				Name:        "gateway",
				Usage:       "Gateway management commands",
				Description: "Manage monitored gateways through the server API",
				Commands:    gateway.Commands(),
			},
			{
				Name:        "discovery",
				Usage:       "Discovery commands",
				Description: "SNMP subnet discovery commands",
				Commands:    discovery.Commands(),
			},
		},
	}

	if err := rootCmd.Execute(context.Background()); err != nil {
		log.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}
