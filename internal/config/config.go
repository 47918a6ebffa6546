package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sszokoly/bgwmon/internal/log"
)

// Config holds the application configuration
type Config struct {
	DataDir        string
	ListenAddr     string
	APIToken       string // bearer token for the HTTP API ("" disables auth)
	MCPToken       string // bearer token for the MCP endpoint ("" disables MCP)
	Username       string // SSH login for the gateways
	Password       string
	SNMPCommunity  string
	PollingSecs    int    // interval between poll cycles
	MaxPollingSecs int    // cap applied to per-gateway overrides
	QueueSize      int    // bound of the per-gateway follow-up queue
	HistoryMaxLen  int    // snapshots retained per gateway
	ConfigFile     string // Path to .env file (if loaded)
}

const (
	defaultDataDir     = "./data"
	defaultListenAddr  = ":8080"
	defaultCommunity   = "public"
	defaultPollingSecs = 10
	defaultMaxPolling  = 600
	defaultQueueSize   = 64
	defaultHistoryLen  = 100
)

// Load loads configuration with the following priority (highest to lowest):
// 1. Command-line parameters (passed as opts)
// 2. .env file (if exists)
// 3. Environment variables
// 4. Default values
//
// If opts is provided, it overrides all other sources.
// Otherwise, .env file overrides environment variables.
func Load(opts *Config) *Config {
	cfg := &Config{}

	// First, try to load from .env file
	envFile := ".env"
	if _, err := os.Stat(envFile); err == nil {
		if err := loadFromEnvFile(cfg, envFile); err != nil {
			log.Warn("Failed to load .env file", "error", err)
		} else {
			cfg.ConfigFile = envFile
		}
	}

	// Then load environment variables (only if not already set by .env)
	cfg.DataDir = coalesce(cfg.DataDir, os.Getenv("BGW_DATA_DIR"), defaultDataDir)
	cfg.ListenAddr = coalesce(cfg.ListenAddr, os.Getenv("BGW_LISTEN_ADDR"), defaultListenAddr)
	cfg.APIToken = coalesce(cfg.APIToken, os.Getenv("BGW_API_TOKEN"), "")
	cfg.MCPToken = coalesce(cfg.MCPToken, os.Getenv("BGW_MCP_TOKEN"), "")
	cfg.Username = coalesce(cfg.Username, os.Getenv("BGW_SSH_USERNAME"), "")
	cfg.Password = coalesce(cfg.Password, os.Getenv("BGW_SSH_PASSWORD"), "")
	cfg.SNMPCommunity = coalesce(cfg.SNMPCommunity, os.Getenv("BGW_SNMP_COMMUNITY"), defaultCommunity)
	cfg.PollingSecs = coalesceInt(cfg.PollingSecs, os.Getenv("BGW_POLLING_SECS"), defaultPollingSecs)
	cfg.MaxPollingSecs = coalesceInt(cfg.MaxPollingSecs, os.Getenv("BGW_MAX_POLLING_SECS"), defaultMaxPolling)
	cfg.QueueSize = coalesceInt(cfg.QueueSize, os.Getenv("BGW_QUEUE_SIZE"), defaultQueueSize)
	cfg.HistoryMaxLen = coalesceInt(cfg.HistoryMaxLen, os.Getenv("BGW_HISTORY_MAX_LEN"), defaultHistoryLen)

	// Finally, apply CLI opts if provided (highest priority)
	if opts != nil {
		if opts.DataDir != "" {
			cfg.DataDir = opts.DataDir
		}
		if opts.ListenAddr != "" {
			cfg.ListenAddr = opts.ListenAddr
		}
		if opts.APIToken != "" {
			cfg.APIToken = opts.APIToken
		}
		if opts.MCPToken != "" {
			cfg.MCPToken = opts.MCPToken
		}
		if opts.Username != "" {
			cfg.Username = opts.Username
		}
		if opts.Password != "" {
			cfg.Password = opts.Password
		}
		if opts.SNMPCommunity != "" {
			cfg.SNMPCommunity = opts.SNMPCommunity
		}
		if opts.PollingSecs > 0 {
			cfg.PollingSecs = opts.PollingSecs
		}
		if opts.MaxPollingSecs > 0 {
			cfg.MaxPollingSecs = opts.MaxPollingSecs
		}
		if opts.QueueSize > 0 {
			cfg.QueueSize = opts.QueueSize
		}
		if opts.HistoryMaxLen > 0 {
			cfg.HistoryMaxLen = opts.HistoryMaxLen
		}
	}

	// Validate polling bounds
	if cfg.PollingSecs < 1 {
		cfg.PollingSecs = defaultPollingSecs
	}
	if cfg.MaxPollingSecs < cfg.PollingSecs {
		cfg.MaxPollingSecs = cfg.PollingSecs
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.HistoryMaxLen < 1 {
		cfg.HistoryMaxLen = defaultHistoryLen
	}

	return cfg
}

// loadFromEnvFile loads configuration from a .env file
func loadFromEnvFile(cfg *Config, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE or KEY="VALUE"
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), "\"")

		// Map .env keys to config fields
		switch key {
		case "BGW_DATA_DIR":
			cfg.DataDir = value
		case "BGW_LISTEN_ADDR":
			cfg.ListenAddr = value
		case "BGW_API_TOKEN":
			cfg.APIToken = value
		case "BGW_MCP_TOKEN":
			cfg.MCPToken = value
		case "BGW_SSH_USERNAME":
			cfg.Username = value
		case "BGW_SSH_PASSWORD":
			cfg.Password = value
		case "BGW_SNMP_COMMUNITY":
			cfg.SNMPCommunity = value
		case "BGW_POLLING_SECS":
			cfg.PollingSecs = atoiOr(value, cfg.PollingSecs)
		case "BGW_MAX_POLLING_SECS":
			cfg.MaxPollingSecs = atoiOr(value, cfg.MaxPollingSecs)
		case "BGW_QUEUE_SIZE":
			cfg.QueueSize = atoiOr(value, cfg.QueueSize)
		case "BGW_HISTORY_MAX_LEN":
			cfg.HistoryMaxLen = atoiOr(value, cfg.HistoryMaxLen)
		}
	}

	return scanner.Err()
}

// IsMCPEnabled checks if MCP authentication is configured
func (c *Config) IsMCPEnabled() bool {
	return c.MCPToken != ""
}

// IsAPIAuthEnabled checks if API authentication is configured
func (c *Config) IsAPIAuthEnabled() bool {
	return c.APIToken != ""
}

// String returns a string representation of the config source
func (c *Config) String() string {
	if c.ConfigFile != "" {
		return fmt.Sprintf(".env file (%s)", c.ConfigFile)
	}
	return "environment variables"
}

// coalesce returns the first non-empty string value
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// coalesceInt returns current if positive, the parsed env value if valid,
// or the default.
func coalesceInt(current int, env string, def int) int {
	if current > 0 {
		return current
	}
	if env != "" {
		if n, err := strconv.Atoi(env); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
