package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/paularlott/cli"
	"github.com/sszokoly/bgwmon/internal/api"
	"github.com/sszokoly/bgwmon/internal/bgw"
	"github.com/sszokoly/bgwmon/internal/config"
	"github.com/sszokoly/bgwmon/internal/log"
	"github.com/sszokoly/bgwmon/internal/mcp"
	"github.com/sszokoly/bgwmon/internal/registry"
	"github.com/sszokoly/bgwmon/internal/session"
	"github.com/sszokoly/bgwmon/internal/storage"
	"github.com/sszokoly/bgwmon/internal/worker"
	"golang.org/x/term"
)

// ServerConfig holds the wired components for running the server
type ServerConfig struct {
	Config     *config.Config
	Store      storage.Storage
	Registry   *registry.Registry
	Scheduler  *worker.Scheduler
	MCPServer  *mcp.Server
	APIHandler *api.Handler
}

// RunServer starts the HTTP server with the given configuration
func RunServer(cfg *ServerConfig) error {
	// Setup HTTP routes
	mux := http.NewServeMux()

	// API routes
	cfg.APIHandler.RegisterRoutes(mux)

	// MCP endpoint
	mux.HandleFunc("/mcp", cfg.MCPServer.HandleRequest)

	// Apply middleware
	var handler http.Handler = mux
	if cfg.Config.IsAPIAuthEnabled() {
		handler = api.AuthMiddleware(cfg.Config.APIToken, handler)
	}
	handler = api.SecurityHeadersMiddleware(handler)

	server := &http.Server{
		Addr:    cfg.Config.ListenAddr,
		Handler: handler,
	}

	// Handle shutdown gracefully
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Info("Shutting down server...")
		server.Close()
	}()

	log.Info("Starting bgwmon server", "addr", cfg.Config.ListenAddr)
	log.Info("API available", "url", "http://localhost"+cfg.Config.ListenAddr+"/api/")
	log.Info("MCP available", "url", "http://localhost"+cfg.Config.ListenAddr+"/mcp")
	if cfg.Config.IsMCPEnabled() {
		log.Info("MCP authentication enabled")
	}
	if cfg.Config.IsAPIAuthEnabled() {
		log.Info("API authentication enabled")
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("Server error", "error", err)
		return err
	}

	log.Info("Server stopped")
	return nil
}

// promptPassword reads the SSH password from the terminal when it was not
// supplied through the environment or flags.
func promptPassword(username string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("no SSH password configured and stdin is not a terminal")
	}
	fmt.Printf("SSH password for %s: ", username)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}

func Command() *cli.Command {
	return &cli.Command{
		Name:        "server",
		Usage:       "Start the bgwmon server",
		Description: "Start the HTTP server with the gateway API, MCP endpoint and polling scheduler",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "Data directory path",
				EnvVars: []string{"BGW_DATA_DIR"},
			},
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "Server listen address (e.g., :8080)",
				EnvVars: []string{"BGW_LISTEN_ADDR"},
			},
			&cli.StringFlag{
				Name:    "api-token",
				Usage:   "API bearer token for authentication",
				EnvVars: []string{"BGW_API_TOKEN"},
			},
			&cli.StringFlag{
				Name:    "mcp-token",
				Usage:   "MCP bearer token for authentication",
				EnvVars: []string{"BGW_MCP_TOKEN"},
			},
			&cli.StringFlag{
				Name:    "username",
				Usage:   "SSH username for the gateways",
				EnvVars: []string{"BGW_SSH_USERNAME"},
			},
			&cli.IntFlag{
				Name:  "polling-secs",
				Usage: "Interval between poll cycles in seconds",
			},
			&cli.IntFlag{
				Name:         "max-workers",
				Usage:        "Number of concurrent gateway pollers",
				DefaultValue: 4,
			},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.Load(&config.Config{
				DataDir:     cmd.GetString("data-dir"),
				ListenAddr:  cmd.GetString("addr"),
				APIToken:    cmd.GetString("api-token"),
				MCPToken:    cmd.GetString("mcp-token"),
				Username:    cmd.GetString("username"),
				PollingSecs: cmd.GetInt("polling-secs"),
			})

			log.Info("Configuration loaded", "source", cfg.String(), "data_dir", cfg.DataDir, "listen_addr", cfg.ListenAddr)

			if cfg.Username != "" && cfg.Password == "" {
				password, err := promptPassword(cfg.Username)
				if err != nil {
					return err
				}
				cfg.Password = password
			}

			// Initialize storage (SQLite only)
			store, err := storage.NewSQLiteStorage(cfg.DataDir, cfg.HistoryMaxLen)
			if err != nil {
				log.Error("Failed to initialize storage", "error", err)
				return err
			}
			defer store.Close()
			log.Info("Storage initialized", "backend", "SQLite", "path", cfg.DataDir)

			// Rebuild the registry from persisted gateway records
			reg := registry.New(cfg.QueueSize)
			records, err := store.ListGateways()
			if err != nil {
				log.Error("Failed to list persisted gateways", "error", err)
				return err
			}
			for _, rec := range records {
				pollingSecs := rec.PollingSecs
				if pollingSecs < 1 || pollingSecs > cfg.MaxPollingSecs {
					pollingSecs = cfg.PollingSecs
				}
				g := reg.GetOrCreate(rec.LANIP, rec.Proto, pollingSecs)
				if err := g.Update(bgw.Batch{Name: &rec.Name, Number: &rec.Number}); err != nil {
					log.Warn("Failed to restore gateway identity", "lan_ip", rec.LANIP, "error", err)
				}
			}
			log.Info("Gateway registry restored", "count", reg.Len())

			// Poll over SSH and persist snapshots on a fixed schedule
			runner := session.NewSSHRunner(cfg.Username, cfg.Password)
			scheduler := worker.NewScheduler(reg, store, runner, cfg.PollingSecs, cmd.GetInt("max-workers"))
			if err := scheduler.Start(); err != nil {
				log.Error("Failed to start scheduler", "error", err)
				return err
			}
			defer func() {
				log.Info("Stopping scheduler...")
				scheduler.Stop()
				log.Info("Scheduler stopped")
			}()

			serverConfig := &ServerConfig{
				Config:     cfg,
				Store:      store,
				Registry:   reg,
				Scheduler:  scheduler,
				MCPServer:  mcp.NewServer(reg, store, cfg.MCPToken),
				APIHandler: api.NewHandler(reg, store, cfg.PollingSecs),
			}

			return RunServer(serverConfig)
		},
	}
}
