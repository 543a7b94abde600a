package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getfakerest/fakerest/pkg/cli/internal/output"
	"github.com/getfakerest/fakerest/pkg/cli/internal/ports"
	"github.com/getfakerest/fakerest/pkg/cliconfig"
	"github.com/getfakerest/fakerest/pkg/config"
	"github.com/getfakerest/fakerest/pkg/engine"
	"github.com/getfakerest/fakerest/pkg/logging"
	"github.com/getfakerest/fakerest/pkg/requestlog"

	"github.com/spf13/cobra"
)

// shutdownTimeout is the maximum time to wait for graceful shutdown.
const shutdownTimeout = 30 * time.Second

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	configFile     string
	host           string
	port           int
	readTimeout    int
	writeTimeout   int
	maxConnections int
	maxLogEntries  int
	errorMode      string
	logLevel       string
	logFormat      string
	logFile        string
	logRequests    bool
	verbose        bool
	printURL       bool
	noMetrics      bool
}

// serveFlagVals is the package-level instance bound to cobra flags.
var serveFlagVals serveFlags

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the mock server (foreground)",
	Long: `Start the mock server in the foreground.

Routes come from a config file named with --config, from FAKEREST_CONFIG,
or from fakerest.yaml in the current directory. Starting with no config at
all is fine: every request answers 404 until you create one.

Flags override environment variables, which override .fakerestrc.yaml in
the current directory and the global config, which override values from
the config file itself. The server runs until SIGINT or SIGTERM.`,
	Example: `  # Serve fakerest.yaml from the current directory
  fakerest serve

  # Explicit config file on a custom port
  fakerest serve --config mocks.yaml --port 3000

  # Auto-assign a port and print the URL for scripts
  fakerest serve --port 0 --print-url

  # JSON logs for CI, close bad requests instead of answering them
  fakerest serve --log-format json --error-mode abort`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	f := &serveFlagVals

	serveCmd.Flags().StringVarP(&f.configFile, "config", "f", "", "Path to route configuration file (YAML or JSON)")
	serveCmd.Flags().StringVar(&f.host, "host", cliconfig.DefaultHost, "Bind address")
	serveCmd.Flags().IntVarP(&f.port, "port", "p", cliconfig.DefaultPort, "TCP port to listen on (0 = OS auto-assign)")
	serveCmd.Flags().IntVar(&f.readTimeout, "read-timeout", cliconfig.DefaultReadTimeout, "Per-connection read deadline in seconds (0 = none)")
	serveCmd.Flags().IntVar(&f.writeTimeout, "write-timeout", cliconfig.DefaultWriteTimeout, "Per-connection write deadline in seconds (0 = none)")
	serveCmd.Flags().IntVar(&f.maxConnections, "max-connections", 0, "Maximum concurrent connections (0 = unlimited)")
	serveCmd.Flags().IntVar(&f.maxLogEntries, "max-log-entries", cliconfig.DefaultMaxLogEntries, "Request log ring capacity")
	serveCmd.Flags().StringVar(&f.errorMode, "error-mode", cliconfig.DefaultErrorMode, "How resolution failures answer (respond, abort)")
	serveCmd.Flags().StringVar(&f.logLevel, "log-level", cliconfig.DefaultLogLevel, "Log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&f.logFormat, "log-format", cliconfig.DefaultLogFormat, "Log format (text, json)")
	serveCmd.Flags().StringVar(&f.logFile, "log-file", "", "Also append logs to this file")
	serveCmd.Flags().BoolVar(&f.logRequests, "log-requests", false, "Log every request through the logger as it is served")
	serveCmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Debug-level logging (overrides --log-level)")
	serveCmd.Flags().BoolVar(&f.printURL, "print-url", false, "Print the server URL to stdout on startup")
	serveCmd.Flags().BoolVar(&f.noMetrics, "no-metrics", false, "Disable metrics collection")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := cliconfig.LoadAll()
	if err != nil {
		return fmt.Errorf("failed to load CLI config: %w", err)
	}
	cliconfig.MergeConfig(cfg, flagOverrides(cmd, &serveFlagVals), cliconfig.SourceFlag)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, closeLog, err := buildLogger(cfg, serveFlagVals.logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	// The route config is optional for serve. An empty table still answers
	// every request, just with 404s.
	configPath := cfg.ConfigFile
	if configPath == "" {
		if found, err := config.DiscoverConfigFile(); err == nil {
			configPath = found
		}
	}

	doc := &config.Document{Version: "1.0"}
	if configPath != "" {
		doc, err = config.LoadDocument(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		warnAboutConfig(log, doc)
	}

	serverCfg := effectiveServerConfig(cfg, doc)

	// An explicit zero is meaningful for these flags and must survive the
	// zero-skipping merge: port 0 asks the OS for a port, timeout 0 disables
	// the deadline.
	if cmd.Flags().Changed("port") && serveFlagVals.port == 0 {
		serverCfg.Port = 0
	}
	if cmd.Flags().Changed("read-timeout") && serveFlagVals.readTimeout == 0 {
		serverCfg.ReadTimeout = 0
	}
	if cmd.Flags().Changed("write-timeout") && serveFlagVals.writeTimeout == 0 {
		serverCfg.WriteTimeout = 0
	}
	if cmd.Flags().Changed("max-connections") {
		serverCfg.MaxConnections = serveFlagVals.maxConnections
	}

	if serverCfg.Port != 0 {
		if err := ports.Check(serverCfg.Host, serverCfg.Port); err != nil {
			return formatPortError(serverCfg.Port, err)
		}
	}

	srv := engine.NewServer(serverCfg, doc.Table(),
		engine.WithLogger(log.With("component", "engine")),
		engine.WithMetrics(!serveFlagVals.noMetrics),
	)

	if err := srv.Start(); err != nil {
		if isAddrInUseError(err) {
			return fmt.Errorf("port %d is already in use — try --port 0 for auto-assign", serverCfg.Port)
		}
		return fmt.Errorf("failed to start server: %w", err)
	}

	if serveFlagVals.logRequests {
		stopMirror := mirrorRequestLog(srv, log)
		defer stopMirror()
	}

	// Print URL if requested (to stdout for programmatic consumption)
	if serveFlagVals.printURL {
		fmt.Printf("http://%s\n", srv.Addr())
	}

	if !jsonOutput {
		printServeStartupMessage(srv.Addr(), srv.Table().Len(), configPath)
	}
	log.Info("server started",
		"addr", srv.Addr(),
		"routes", srv.Table().Len(),
		"config", configPath,
		"errorMode", serverCfg.ErrorMode,
	)

	// Wait for shutdown signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	fmt.Println("\nShutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		output.Warn("server shutdown error: %v", err)
	}

	fmt.Println("Server stopped")
	return nil
}

// flagOverrides builds the flag-layer config from the flags the user actually
// set. Flag defaults must not shadow env or file values, so unset flags
// contribute nothing.
func flagOverrides(cmd *cobra.Command, f *serveFlags) *cliconfig.CLIConfig {
	over := &cliconfig.CLIConfig{SetFields: make(map[string]bool)}

	if cmd.Flags().Changed("config") {
		over.ConfigFile = f.configFile
	}
	if cmd.Flags().Changed("host") {
		over.Host = f.host
	}
	if cmd.Flags().Changed("port") {
		over.Port = f.port
	}
	if cmd.Flags().Changed("read-timeout") {
		over.ReadTimeout = f.readTimeout
	}
	if cmd.Flags().Changed("write-timeout") {
		over.WriteTimeout = f.writeTimeout
	}
	if cmd.Flags().Changed("max-log-entries") {
		over.MaxLogEntries = f.maxLogEntries
	}
	if cmd.Flags().Changed("error-mode") {
		over.ErrorMode = f.errorMode
	}
	if cmd.Flags().Changed("log-level") {
		over.LogLevel = f.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		over.LogFormat = f.logFormat
	}
	if cmd.Flags().Changed("verbose") {
		over.Verbose = f.verbose
		over.SetFields["verbose"] = true
	}
	if cmd.Flags().Changed("json") {
		over.JSON = jsonOutput
		over.SetFields["json"] = true
	}
	return over
}

// effectiveServerConfig layers CLI-level settings over the config file's
// server section. The file is the base; a CLI value wins only when it was
// actually set somewhere (file, env, or flag), so SourceOf gates each field.
func effectiveServerConfig(cfg *cliconfig.CLIConfig, doc *config.Document) *config.ServerConfig {
	var out config.ServerConfig
	if doc.Server != nil {
		out = *doc.Server
	}

	if cfg.SourceOf("host") != cliconfig.SourceDefault {
		out.Host = cfg.Host
	}
	if cfg.SourceOf("port") != cliconfig.SourceDefault {
		out.Port = cfg.Port
	}
	if cfg.SourceOf("readTimeout") != cliconfig.SourceDefault {
		out.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.SourceOf("writeTimeout") != cliconfig.SourceDefault {
		out.WriteTimeout = cfg.WriteTimeout
	}
	if cfg.SourceOf("maxLogEntries") != cliconfig.SourceDefault {
		out.MaxLogEntries = cfg.MaxLogEntries
	}
	if cfg.SourceOf("errorMode") != cliconfig.SourceDefault {
		out.ErrorMode = config.ErrorMode(cfg.ErrorMode)
	}

	return out.WithDefaults()
}

// buildLogger creates the serve logger, teeing to --log-file when set. The
// returned closer flushes and closes the file; it is a no-op otherwise.
func buildLogger(cfg *cliconfig.CLIConfig, logFile string) (*slog.Logger, func(), error) {
	logCfg := cfg.LoggingConfig()
	if logFile == "" {
		return logging.New(logCfg), func() {}, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	fileCfg := logCfg
	fileCfg.Output = f
	log := slog.New(logging.NewMultiHandler(
		logging.NewHandler(logCfg),
		logging.NewHandler(fileCfg),
	))
	return log, func() { _ = f.Close() }, nil
}

// warnAboutConfig surfaces advisory findings about a config that loaded
// fine. Errors cannot appear here since LoadDocument already rejected them.
func warnAboutConfig(log *slog.Logger, doc *config.Document) {
	baseDir := ""
	if doc.Server != nil {
		baseDir = doc.Server.BaseDir
	}
	result := config.ValidateDocument(doc, baseDir)
	for _, w := range result.Warnings {
		log.Warn("config warning", "path", w.Path, "detail", w.Message)
	}
}

// mirrorRequestLog forwards request log entries to the logger as they are
// recorded. Returns a stop function that unsubscribes and ends the goroutine.
func mirrorRequestLog(srv *engine.Server, log *slog.Logger) func() {
	sub, ok := srv.RequestLog().(requestlog.SubscribableStore)
	if !ok || sub == nil {
		return func() {}
	}

	ch, unsubscribe := sub.Subscribe()
	go func() {
		for entry := range ch {
			log.Info("request",
				"method", entry.Method,
				"path", entry.Path,
				"status", entry.ResponseStatus,
				"outcome", entry.Outcome,
				"durationMs", entry.DurationMs,
				"remote", entry.RemoteAddr,
			)
		}
	}()
	return unsubscribe
}

// printServeStartupMessage prints the server startup information.
func printServeStartupMessage(addr string, routeCount int, configPath string) {
	if routeCount == 0 && configPath == "" {
		printWelcomeMessage(addr)
		return
	}

	fmt.Printf("fakerest server started (%d routes)\n", routeCount)
	fmt.Println()
	fmt.Printf("  Server: http://%s\n", addr)
	if configPath != "" {
		fmt.Printf("  Config: %s\n", configPath)
	}
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop")
}

// printWelcomeMessage prints a helpful welcome message when starting with no routes.
func printWelcomeMessage(addr string) {
	fmt.Println("fakerest server started")
	fmt.Println()
	fmt.Printf("  Server: http://%s\n", addr)
	fmt.Println()
	fmt.Println("No routes configured. Quick start:")
	fmt.Println()
	fmt.Println("  # Create a config file and restart")
	fmt.Println("  fakerest init")
	fmt.Println("  fakerest serve")
	fmt.Println()
	fmt.Printf("  curl http://%s/hello\n", addr)
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop")
}

// formatPortError turns a failed port probe into an actionable message.
func formatPortError(port int, err error) error {
	var sb strings.Builder
	switch {
	case isAddrInUseError(err):
		fmt.Fprintf(&sb, "port %d is already in use\n\n", port)
		sb.WriteString("Suggestions:\n")
		fmt.Fprintf(&sb, "  - Pick a different port:  fakerest serve --port %d\n", port+1)
		sb.WriteString("  - Let the OS choose one:  fakerest serve --port 0 --print-url\n")
		fmt.Fprintf(&sb, "  - Find the process:       lsof -i :%d", port)
	case isPermissionDeniedError(err):
		fmt.Fprintf(&sb, "permission denied binding port %d\n\n", port)
		sb.WriteString("Ports below 1024 need elevated privileges. Try a port above 1024.")
	default:
		return fmt.Errorf("port %d is not usable: %w", port, err)
	}
	return errors.New(sb.String())
}

func isAddrInUseError(err error) bool {
	return errors.Is(err, syscall.EADDRINUSE)
}

func isPermissionDeniedError(err error) bool {
	return errors.Is(err, syscall.EACCES)
}
