package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/paularlott/cli"
	"github.com/sszokoly/bgwmon/internal/config"
	"github.com/sszokoly/bgwmon/internal/scanner"
)

// ScanCommand sweeps a subnet over SNMP looking for branch gateways
func ScanCommand() *cli.Command {
	return &cli.Command{
		Name:        "scan",
		Usage:       "Scan a subnet for branch gateways",
		Description: "Probe every host in a subnet over SNMP and report the Avaya gateways found",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "subnet",
				Usage:    "Subnet to scan (e.g., 192.168.1.0/24)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "community",
				Usage:   "SNMP community string",
				EnvVars: []string{"BGW_SNMP_COMMUNITY"},
			},
			&cli.BoolFlag{
				Name:         "all",
				Usage:        "Report every SNMP responder, not just gateways",
				DefaultValue: false,
			},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.Load(&config.Config{
				SNMPCommunity: cmd.GetString("community"),
			})

			subnet := cmd.GetString("subnet")
			showAll := cmd.GetBool("all")

			fmt.Printf("Scanning %s (community %q)...\n", subnet, cfg.SNMPCommunity)
			startTime := time.Now()

			s := scanner.NewScanner(cfg.SNMPCommunity)
			results, err := s.ScanSubnet(ctx, subnet)
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}

			found := 0
			for _, r := range results {
				if !r.Gateway && !showAll {
					continue
				}
				found++
				fmt.Printf("\nIP: %s\n", r.IP)
				if r.SysName != "" {
					fmt.Printf("  Name: %s\n", r.SysName)
				}
				if r.Model != "" {
					fmt.Printf("  Model: %s\n", r.Model)
				}
				if r.SysDescr != "" {
					fmt.Printf("  Description: %s\n", r.SysDescr)
				}
			}

			fmt.Printf("\nScan complete: %d hosts reported in %v\n", found, time.Since(startTime).Round(time.Millisecond))
			return nil
		},
	}
}

// Commands returns the discovery subcommands
func Commands() []*cli.Command {
	return []*cli.Command{
		ScanCommand(),
	}
}
