// Command froggergame serves the frogger grid game.
//
// It supports three modes:
//  1. "server" (default) runs the HTTP server exposing the REST API, WebSocket updates and an /mcp endpoint
//  2. "mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "play" runs the game in the terminal
//
// Flags control host/port, config and session directories, debug logging,
// and optional ngrok tunneling for easy external access during development.
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

	"github.com/gdamore/tcell"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/froggergame/api"
	"github.com/wricardo/mcp-training/froggergame/game/config"
	"github.com/wricardo/mcp-training/froggergame/game/service"
	"github.com/wricardo/mcp-training/froggergame/game/session"
	"github.com/wricardo/mcp-training/froggergame/transport/mcp"
	"github.com/wricardo/mcp-training/froggergame/transport/websocket"
	"github.com/wricardo/mcp-training/froggergame/ui/terminal"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Frogger Grid Game Server"
)

const (
	sessionRetention   = 24 * time.Hour
	cleanupInterval    = time.Hour
	syncInterval       = 5 * time.Second
	defaultExternalURL = "http://localhost:8080"
)

// options holds the resolved global flags
type options struct {
	host         string
	port         int
	configDir    string
	sessionsDir  string
	debug        bool
	ngrokEnabled bool
	ngrokAuth    string
	ngrokDomain  string
}

func optionsFrom(cmd *cli.Command) options {
	return options{
		host:         cmd.String("host"),
		port:         cmd.Int("port"),
		configDir:    cmd.String("config-dir"),
		sessionsDir:  cmd.String("sessions-dir"),
		debug:        cmd.Bool("debug"),
		ngrokEnabled: cmd.Bool("ngrok"),
		ngrokAuth:    cmd.String("ngrok-auth"),
		ngrokDomain:  cmd.String("ngrok-domain"),
	}
}

func (o options) addr() string {
	return fmt.Sprintf("%s:%d", o.host, o.port)
}

// newCommand builds the command tree
func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "froggergame",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing game configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "sessions-dir",
				Value:   "sessions",
				Usage:   "Directory where sessions are persisted",
				Sources: cli.EnvVars("SESSIONS_DIR"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetLevel(log.DebugLevel)
				log.SetReportCaller(true)
			}
			return ctx, nil
		},
		Action: runServer,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  runServer,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "api-url",
						Value:   defaultExternalURL,
						Usage:   "External API to use when it is reachable",
						Sources: cli.EnvVars("FROGGER_API_URL"),
					},
				},
				Action: runStdioMCP,
			},
			{
				Name:  "play",
				Usage: "Play in the terminal",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "config",
						Usage: "Config to start a new game with (default config when empty)",
					},
					&cli.StringFlag{
						Name:  "session",
						Usage: "Resume an existing session instead of starting a new one",
					},
					&cli.StringFlag{
						Name:  "log-file",
						Value: "froggergame.log",
						Usage: "Where logs go while the screen is in use",
					},
				},
				Action: runPlay,
			},
		},
	}
}

// main loads the environment and runs the selected command.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("Error loading .env file: %v", err)
		}
	} else {
		log.Info("Loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// runServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel.
func runServer(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFrom(cmd)
	log.Infof("Starting %s v%s (mode: server)", AppName, Version)

	gameService, err := initializeServices(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run()

	addr := opts.addr()
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	handler := newRouter(api.NewServer(gameService, hub), mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serverErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.WithField("addr", addr).Info("HTTP server listening")
		log.Infof("REST API: http://%s/api", addr)
		log.Infof("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Infof("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	if opts.ngrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, opts, handler)
		}()
	}

	select {
	case <-ctx.Done():
		log.Info("Shutting down...")
	case err := <-serverErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warnf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Info("Server stopped")
	return nil
}

// newRouter mounts the API at the root and the MCP JSON-RPC endpoint at /mcp
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) http.Handler {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))
	return mainRouter
}

func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	}
}

// runNgrokTunnel exposes handler through ngrok until ctx is done
func runNgrokTunnel(ctx context.Context, opts options, handler http.Handler) {
	if opts.ngrokAuth == "" {
		log.Warn("Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Info("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if opts.ngrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.ngrokDomain))
		log.WithField("domain", opts.ngrokDomain).Info("Using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.ngrokAuth))
	if err != nil {
		log.Errorf("Failed to start ngrok tunnel: %v", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Warnf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.WithField("url", ngrokURL).Info("Ngrok tunnel established")
	log.Infof("  REST API (ngrok): %s/api", ngrokURL)
	log.Infof("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Infof("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		log.Errorf("Ngrok server error: %v", err)
	}
	log.Info("Ngrok tunnel closed")
}

// initializeServices wires session/config managers and the game service.
// It also starts background routines that prune stale sessions until ctx is done.
func initializeServices(ctx context.Context, opts options) (service.GameService, error) {
	// Create config manager first (needed for persistence)
	configManager, err := config.NewManager(opts.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, err := session.NewFilePersistence(opts.sessionsDir, configManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence)

	if err := sessionManager.LoadPersistedSessions(); err != nil {
		log.Warnf("Failed to load persisted sessions: %v", err)
	}

	gameService := service.NewGameService(sessionManager, configManager)

	go sessionCleanupRoutine(ctx, sessionManager, cleanupInterval, sessionRetention)
	go filesystemSyncRoutine(ctx, sessionManager, persistence, syncInterval)

	return gameService, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the retention window.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, retention time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(retention); removed > 0 {
				log.Infof("Cleaned up %d expired sessions", removed)
			}
		}
	}
}

// filesystemSyncRoutine periodically removes sessions from memory whose files were deleted.
func filesystemSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, interval time.Duration) {
	if persistence == nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			syncWithFilesystem(manager, persistence)
		}
	}
}

func syncWithFilesystem(manager *session.Manager, persistence session.SessionPersistence) int {
	pruned := 0
	for _, s := range manager.List() {
		if persistence.Exists(s.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(s.ID); err == nil {
			pruned++
			log.WithField("session", s.ID).Info("Pruned session from memory (file deleted)")
		}
	}

	if pruned > 0 {
		log.Infof("Filesystem sync: pruned %d orphaned sessions from memory", pruned)
	}
	return pruned
}

// apiReachable reports whether a frogger API answers at baseURL
func apiReachable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCP runs an MCP stdio server.
// It reuses an external API when one answers; otherwise it starts an internal HTTP API
// bound to a random loopback port and targets that.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFrom(cmd)
	externalURL := cmd.String("api-url")

	var baseURL string
	log.WithField("url", externalURL).Info("Checking for external API server")

	if apiReachable(externalURL) {
		log.WithField("url", externalURL).Info("External API server found, using it for MCP")
		baseURL = externalURL
	} else {
		log.Info("No external API server found, starting internal HTTP server")

		gameService, err := initializeServices(ctx, opts)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub()
		go hub.Run()

		httpServer := &http.Server{Handler: api.NewServer(gameService, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Errorf("Internal HTTP server error: %v", err)
			}
		}()
		defer httpServer.Close()

		baseURL = fmt.Sprintf("http://%s", listener.Addr().String())
		log.WithField("url", baseURL).Info("Internal HTTP server started for MCP stdio")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// runPlay plays one session in the terminal. Logs go to a file so they do not
// draw over the screen.
func runPlay(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFrom(cmd)

	logFile, err := os.OpenFile(cmd.String("log-file"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)
	defer log.SetOutput(os.Stderr)

	gameService, err := initializeServices(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	sessionID, err := playSession(ctx, gameService, cmd.String("session"), cmd.String("config"))
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()

	log.WithField("session", sessionID).Info("Terminal game started")
	return terminal.New(screen, gameService, sessionID).Run(ctx)
}

// playSession resumes sessionID when given, otherwise creates a session from configID
func playSession(ctx context.Context, gameService service.GameService, sessionID, configID string) (string, error) {
	if sessionID != "" {
		info, err := gameService.GetSession(ctx, sessionID)
		if err != nil {
			return "", fmt.Errorf("cannot resume session: %w", err)
		}
		return info.ID, nil
	}

	info, err := gameService.CreateSession(ctx, configID)
	if err != nil {
		return "", fmt.Errorf("cannot start game: %w", err)
	}
	return info.ID, nil
}
