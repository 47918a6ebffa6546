package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/paularlott/cli"
)

var (
	serverURL string
	apiToken  string
)

func init() {
	serverURL = getEnv("BGW_SERVER_URL", "http://localhost:8080")
	apiToken = os.Getenv("BGW_API_TOKEN")
}

// Commands returns the gateway management subcommands
func Commands() []*cli.Command {
	return []*cli.Command{
		addCommand(),
		listCommand(),
		getCommand(),
		fieldCommand(),
		historyCommand(),
		deleteCommand(),
	}
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:        "add",
		Usage:       "Register a gateway",
		Description: "Register a branch gateway for monitoring",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "ip", Usage: "Gateway LAN IP address", Required: true},
			&cli.StringFlag{Name: "proto", Usage: "Session protocol (ssh or telnet)", DefaultValue: "ssh"},
			&cli.IntFlag{Name: "polling-secs", Usage: "Polling interval in seconds"},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			body := map[string]interface{}{
				"lan_ip": cmd.GetString("ip"),
				"proto":  cmd.GetString("proto"),
			}
			if secs := cmd.GetInt("polling-secs"); secs > 0 {
				body["polling_secs"] = secs
			}

			data, err := json.Marshal(body)
			if err != nil {
				return err
			}

			resp, err := doRequest("POST", "/api/gateways", strings.NewReader(string(data)))
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusCreated {
				return readError(resp)
			}

			fmt.Printf("Gateway registered: %s\n", cmd.GetString("ip"))
			return nil
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:        "list",
		Usage:       "List gateways",
		Description: "List all monitored gateways",
		Run: func(ctx context.Context, cmd *cli.Command) error {
			resp, err := doRequest("GET", "/api/gateways", nil)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return readError(resp)
			}

			var gateways []map[string]interface{}
			if err := json.NewDecoder(resp.Body).Decode(&gateways); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if len(gateways) == 0 {
				fmt.Println("No gateways registered")
				return nil
			}

			fmt.Printf("%-16s %-8s %-16s %-8s %-10s %s\n", "LAN IP", "PROTO", "NAME", "MODEL", "FW", "LAST SEEN")
			for _, g := range gateways {
				fmt.Printf("%-16s %-8s %-16s %-8s %-10s %s\n",
					str(g["lan_ip"]), str(g["proto"]), str(g["gw_name"]),
					str(g["model"]), str(g["fw"]), str(g["last_seen"]))
			}
			return nil
		},
	}
}

func getCommand() *cli.Command {
	return &cli.Command{
		Name:        "get",
		Usage:       "Get a gateway snapshot",
		Description: "Print the full derived field snapshot of a gateway",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "ip", Required: true},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			ip := cmd.GetStringArg("ip")
			resp, err := doRequest("GET", "/api/gateways/"+ip, nil)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				return fmt.Errorf("gateway not found: %s", ip)
			}
			if resp.StatusCode != http.StatusOK {
				return readError(resp)
			}

			var fields map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&fields); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			printFields(fields)
			return nil
		},
	}
}

func fieldCommand() *cli.Command {
	return &cli.Command{
		Name:        "field",
		Usage:       "Get a single field",
		Description: "Print one derived field of a gateway",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "ip", Required: true},
			&cli.StringArg{Name: "name", Required: true},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			ip := cmd.GetStringArg("ip")
			name := cmd.GetStringArg("name")

			resp, err := doRequest("GET", "/api/gateways/"+ip, nil)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				return fmt.Errorf("gateway not found: %s", ip)
			}
			if resp.StatusCode != http.StatusOK {
				return readError(resp)
			}

			var fields map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&fields); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			value, ok := fields[name]
			if !ok {
				return fmt.Errorf("unknown field: %s", name)
			}
			fmt.Println(value)
			return nil
		},
	}
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:        "history",
		Usage:       "List persisted snapshots",
		Description: "List persisted snapshots of a gateway, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Usage: "Maximum number of snapshots", DefaultValue: 10},
		},
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "ip", Required: true},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			ip := cmd.GetStringArg("ip")
			path := fmt.Sprintf("/api/gateways/%s/history?limit=%d", ip, cmd.GetInt("limit"))

			resp, err := doRequest("GET", path, nil)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				return fmt.Errorf("gateway not found: %s", ip)
			}
			if resp.StatusCode != http.StatusOK {
				return readError(resp)
			}

			var snapshots []struct {
				TakenAt time.Time         `json:"taken_at"`
				Fields  map[string]string `json:"fields"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&snapshots); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if len(snapshots) == 0 {
				fmt.Println("No snapshots found")
				return nil
			}

			for _, snap := range snapshots {
				fmt.Printf("%s  model=%s fw=%s cpu=%s ram=%s dsp=%s\n",
					snap.TakenAt.Format("2006-01-02 15:04:05"),
					snap.Fields["model"], snap.Fields["fw"],
					snap.Fields["cpu_util"], snap.Fields["ram_util"], snap.Fields["inuse_dsp"])
			}
			return nil
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:        "delete",
		Usage:       "Remove a gateway",
		Description: "Remove a gateway from monitoring and delete its history",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "ip", Required: true},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			ip := cmd.GetStringArg("ip")
			resp, err := doRequest("DELETE", "/api/gateways/"+ip, nil)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				return fmt.Errorf("gateway not found: %s", ip)
			}
			if resp.StatusCode != http.StatusNoContent {
				return readError(resp)
			}

			fmt.Printf("Gateway removed: %s\n", ip)
			return nil
		},
	}
}

func doRequest(method, path string, body io.Reader) (*http.Response, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	req, err := http.NewRequest(method, serverURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+apiToken)
	}
	return client.Do(req)
}

func readError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)
	msg := strings.TrimSpace(string(data))
	if msg == "" {
		msg = resp.Status
	}
	return fmt.Errorf("server error: %s", msg)
}

func printFields(fields map[string]string) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%-20s %s\n", name, fields[name])
	}
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
