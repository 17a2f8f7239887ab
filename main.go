// Command shadechange runs the ShadeChange level generator.
//
// It bundles three frontends:
//  1. "serve" – runs the HTTP server exposing the REST API, a WebSocket
//     endpoint for live playtest state, and an /mcp HTTP endpoint
//  2. "generate" – produces levels on the command line
//  3. "mcp" – runs an MCP stdio server, spinning up an internal HTTP API
//     when no external one is reachable
//
// Flags control host/port, the preset directory, debug logging, and
// optional ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/maximaximal/ShadeChange-Level-Generator/api"
	"github.com/maximaximal/ShadeChange-Level-Generator/game/config"
	"github.com/maximaximal/ShadeChange-Level-Generator/game/export"
	"github.com/maximaximal/ShadeChange-Level-Generator/game/generator"
	"github.com/maximaximal/ShadeChange-Level-Generator/game/service"
	"github.com/maximaximal/ShadeChange-Level-Generator/game/session"
	"github.com/maximaximal/ShadeChange-Level-Generator/transport/mcp"
	"github.com/maximaximal/ShadeChange-Level-Generator/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "ShadeChange Level Generator"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:    "shadechange",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.StringFlag{
				Name:  "preset-dir",
				Value: presetDirDefault(),
				Usage: "Directory containing generation presets",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the HTTP server with REST API, WebSocket and MCP endpoint",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "host",
						Value: "localhost",
						Usage: "HTTP server host",
					},
					&cli.IntFlag{
						Name:  "port",
						Value: 8080,
						Usage: "HTTP server port",
					},
					&cli.StringFlag{
						Name:  "sessions-dir",
						Value: "sessions",
						Usage: "Directory for persisted playtest sessions",
					},
					&cli.BoolFlag{
						Name:  "ngrok",
						Usage: "Enable ngrok tunnel",
					},
					&cli.StringFlag{
						Name:  "ngrok-auth",
						Usage: "Ngrok auth token (or use NGROK_AUTHTOKEN env var)",
					},
					&cli.StringFlag{
						Name:  "ngrok-domain",
						Usage: "Custom ngrok domain (optional)",
					},
				},
				Action: runServe,
			},
			{
				Name:  "generate",
				Usage: "Generate levels on the command line",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "preset",
						Usage: "Preset name (default preset when empty)",
					},
					&cli.IntFlag{
						Name:  "seed",
						Usage: "Seed override for deterministic generation",
					},
					&cli.IntFlag{
						Name:  "count",
						Value: 1,
						Usage: "Number of levels to generate",
					},
					&cli.StringFlag{
						Name:  "format",
						Value: "text",
						Usage: "Output format: text, json or csv",
					},
				},
				Action: runGenerate,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run an MCP stdio server with an internal HTTP API fallback",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "api-url",
						Value: "http://localhost:8080",
						Usage: "External API server to reuse when reachable",
					},
				},
				Action: runStdioMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// presetDirDefault honors the PRESET_DIR environment variable, then falls
// back to "presets".
func presetDirDefault() string {
	if dir := os.Getenv("PRESET_DIR"); dir != "" {
		return dir
	}
	return "presets"
}

func newLogger(cmd *cli.Command) zerolog.Logger {
	level := zerolog.InfoLevel
	if cmd.Bool("debug") {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// initializeServices wires session/preset managers and the level service.
// It also starts background routines that prune stale sessions and sync
// in-memory sessions with the filesystem.
func initializeServices(presetDir, sessionsDir string, log zerolog.Logger) (service.LevelService, error) {
	presetManager, err := config.NewManager(presetDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create preset manager: %w", err)
	}

	var sessionManager *session.Manager
	if sessionsDir != "" {
		persistence, err := session.NewFilePersistence(sessionsDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create session persistence: %w", err)
		}

		sessionManager = session.NewManagerWithPersistence(persistence, log)
		if err := sessionManager.LoadPersistedSessions(); err != nil {
			log.Warn().Err(err).Msg("failed to load persisted sessions")
		}

		go sessionCleanupRoutine(sessionManager, log)
		go filesystemSyncRoutine(sessionManager, persistence, log)
	} else {
		sessionManager = session.NewManager()
	}

	return service.NewLevelService(sessionManager, presetManager, log), nil
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within the retention window.
func sessionCleanupRoutine(manager *session.Manager, log zerolog.Logger) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		removed := manager.CleanupExpiredSessions(24 * time.Hour)
		if removed > 0 {
			log.Info().Int("removed", removed).Msg("cleaned up expired sessions")
		}
	}
}

// filesystemSyncRoutine removes sessions from memory when their
// corresponding files are deleted.
func filesystemSyncRoutine(manager *session.Manager, persistence session.SessionPersistence, log zerolog.Logger) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		pruned := 0
		for _, s := range manager.List() {
			if !persistence.Exists(s.ID) {
				if err := manager.DeleteFromMemory(s.ID); err == nil {
					pruned++
				}
			}
		}
		if pruned > 0 {
			log.Info().Int("pruned", pruned).Msg("pruned orphaned sessions from memory")
		}
	}
}

// runServe starts the HTTP server with REST API, WebSocket hub, and an
// /mcp proxy endpoint. If ngrok is enabled (via flag or environment), it
// also provisions a public tunnel.
func runServe(ctx context.Context, cmd *cli.Command) error {
	log := newLogger(cmd)

	levelService, err := initializeServices(cmd.String("preset-dir"), cmd.String("sessions-dir"), log)
	if err != nil {
		return err
	}

	hub := websocket.NewHub(log)
	go hub.Run()

	apiServer := api.NewServer(levelService, hub, log)

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	baseURL := fmt.Sprintf("http://%s", addr)
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info().Str("addr", addr).Msg("HTTP server listening")
		log.Info().Msgf("REST API: http://%s/api", addr)
		log.Info().Msgf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Info().Msgf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	ngrokShouldRun := cmd.Bool("ngrok")
	if !ngrokShouldRun {
		if envEnabled := os.Getenv("NGROK_ENABLED"); envEnabled == "true" || envEnabled == "1" {
			ngrokShouldRun = true
		}
	}

	if ngrokShouldRun {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(serveCtx, cmd, mainRouter, log)
		}()
	}

	sig := <-stop
	log.Info().Str("signal", sig.String()).Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info().Msg("server stopped")
	return nil
}

func runNgrokTunnel(ctx context.Context, cmd *cli.Command, handler http.Handler, log zerolog.Logger) {
	authToken := cmd.String("ngrok-auth")
	if authToken == "" {
		authToken = os.Getenv("NGROK_AUTHTOKEN")
		if authToken == "" {
			authToken = os.Getenv("NGROK_AUTH_TOKEN")
		}
	}

	if authToken == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Info().Msg("starting ngrok tunnel")

	domain := cmd.String("ngrok-domain")
	if domain == "" {
		domain = os.Getenv("NGROK_DOMAIN")
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Info().Str("domain", domain).Msg("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx,
		tunnel,
		ngrok.WithAuthtoken(authToken),
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close ngrok tunnel")
		}
	}()

	log.Info().Str("url", tun.URL()).Msg("ngrok tunnel established")

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
}

// runGenerate produces levels on the command line without starting a
// server.
func runGenerate(ctx context.Context, cmd *cli.Command) error {
	presetManager, err := config.NewManager(cmd.String("preset-dir"))
	if err != nil {
		return fmt.Errorf("failed to create preset manager: %w", err)
	}

	preset := presetManager.GetDefault()
	if name := cmd.String("preset"); name != "" {
		preset, err = presetManager.LoadPreset(name)
		if err != nil {
			return err
		}
	}

	opts := &generator.Options{
		Width:        preset.Width,
		Height:       preset.Height,
		Steps:        preset.Steps,
		MoveBudget:   preset.MoveBudget,
		EnableSpiral: preset.EnableSpiral,
		EnableEnemy:  preset.EnableEnemy,
		Seed:         preset.Seed,
	}
	if seed := cmd.Int("seed"); seed != 0 {
		opts.Seed = int64(seed)
	}

	count := int(cmd.Int("count"))
	format := cmd.String("format")

	for i := 0; i < count; i++ {
		// Distinct deterministic levels per run when a seed is fixed.
		if opts.Seed != 0 && i > 0 {
			opts.Seed++
		}

		out, err := generator.New(opts).Generate()
		if err != nil {
			return err
		}

		switch format {
		case "json":
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
		case "csv":
			dump, err := export.MarshalDump(out.Level)
			if err != nil {
				return err
			}
			os.Stdout.Write(dump)
			fmt.Println()
		default:
			fmt.Printf("Level %s (%s)\n", out.ID, out.Verdict)
			fmt.Println(export.Report(out.Level))
			fmt.Printf(" Plan (%d moves): %s\n\n", len(out.Moves), export.GlyphString(out.Moves))
		}
	}

	return nil
}

// runStdioMCP runs an MCP stdio server. It tries to reuse an external API
// first; if unavailable, it starts a minimal internal HTTP API bound to a
// random loopback port and targets that.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	log := newLogger(cmd)

	externalURL := cmd.String("api-url")
	log.Info().Str("url", externalURL).Msg("checking for external API server")

	var baseURL string

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Info().Str("url", externalURL).Msg("external API server found, using it for MCP")
		baseURL = externalURL
	} else {
		log.Info().Msg("no external API server found, starting internal HTTP server")

		levelService, err := initializeServices(cmd.String("preset-dir"), "", log)
		if err != nil {
			return err
		}

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		internalAddr := listener.Addr().String()
		log.Info().Str("addr", internalAddr).Msg("starting internal HTTP server for MCP stdio")

		hub := websocket.NewHub(log)
		go hub.Run()

		apiServer := api.NewServer(levelService, hub, log)
		httpServer := &http.Server{Handler: apiServer}

		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("internal HTTP server error")
			}
		}()

		// Give the listener a moment before the first proxy call.
		time.Sleep(100 * time.Millisecond)

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)

	log.Info().Msg("MCP stdio server ready")
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
