package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/qlog-io/qlog/internal/config"
	"github.com/qlog-io/qlog/internal/filter"
	"github.com/qlog-io/qlog/internal/logger"
	"github.com/qlog-io/qlog/internal/server"
	"github.com/qlog-io/qlog/internal/version"
)

func main() {
	// --- Configuration --- //
	configPath := flag.String("config", "config/config.yaml", "Path to the configuration file")
	testConfigShort := flag.Bool("t", false, "Test configuration and exit (nginx style)")
	testConfigLong := flag.Bool("test", false, "Test configuration and exit (nginx style)")
	showVersion := flag.Bool("version", false, "Show version information and exit")
	destination := flag.String("destination", "", "Destination name for stdin input (default: first enabled)")
	serve := flag.Bool("serve", false, "Run the HTTP ingest server instead of reading stdin")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.VersionInfo())
		os.Exit(0)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("[CRITICAL] Failed to load configuration from '%s': %v\n", *configPath, err)
		os.Exit(1)
	}

	if err := config.ValidateConfig(cfg); err != nil {
		fmt.Printf("[CRITICAL] Configuration validation failed for '%s':\n%v\n", *configPath, err)
		os.Exit(1)
	}

	if *testConfigShort || *testConfigLong {
		// Validation was already done above
		fmt.Printf("Configuration '%s' is valid.\n", *configPath)
		os.Exit(0)
	}

	// Initialize application logger
	appLogger := logger.GetAppLogger()
	if cfg.AppLog.Level != "" {
		if err := appLogger.SetLogLevelFromString(cfg.AppLog.Level); err != nil {
			fmt.Printf("[WARN] Invalid log level '%s', using default: %v\n", cfg.AppLog.Level, err)
		}
	}

	appLogger.Info("%s", version.VersionInfo())

	// --- Dependency Initialization --- //

	loggerManager := logger.NewManager()
	if err := loggerManager.InitLoggers(cfg.LogDestinations, cfg.Format); err != nil {
		appLogger.Fatal("Failed to initialize one or more destinations: %v. Exiting.", err)
	}
	defer loggerManager.CloseAll()

	msgFilter, err := filter.New(cfg.Filter)
	if err != nil {
		appLogger.Fatal("Failed to initialize message filter: %v", err)
	}

	if *serve || cfg.Server.Enabled {
		runServer(cfg, loggerManager, msgFilter, appLogger)
	} else {
		runStdin(*destination, loggerManager, msgFilter, appLogger)
	}

	appLogger.Info("qlog shut down gracefully.")
}

// runServer runs the HTTP ingest until SIGINT/SIGTERM.
func runServer(cfg *config.Config, manager *logger.Manager, msgFilter *filter.Filter, appLogger *logger.AppLogger) {
	srv := server.NewServer(server.Dependencies{
		Config:        cfg,
		LoggerManager: manager,
		Filter:        msgFilter,
		AppLogger:     appLogger,
	})

	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Fatal("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Received shutdown signal.")
	// Queued records are drained by the deferred CloseAll.
}

// runStdin feeds stdin lines into one destination until EOF or a signal.
// A line may start with a level name ("WARNING disk nearly full");
// unprefixed lines are logged at INFO.
func runStdin(destName string, manager *logger.Manager, msgFilter *filter.Filter, appLogger *logger.AppLogger) {
	if destName == "" {
		destName = manager.DefaultName()
	}
	lgr := manager.Get(destName)
	if lgr == nil {
		appLogger.Fatal("Unknown destination '%s'.", destName)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			appLogger.Error("Error reading stdin: %v", err)
		}
	}()

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return // EOF; deferred CloseAll drains the backlog
			}
			message, level := splitLevelPrefix(line)
			if message == "" || !msgFilter.Allow(message, level) {
				continue
			}
			lgr.AddMessage(message, level)
		case <-quit:
			appLogger.Info("Received shutdown signal.")
			return
		}
	}
}

// splitLevelPrefix interprets an optional leading level name. Anything that
// does not parse as a level is part of the message.
func splitLevelPrefix(line string) (string, logger.Level) {
	parts := strings.SplitN(line, " ", 2)
	if len(parts) == 2 {
		if level, err := logger.ParseLevel(parts[0]); err == nil {
			return strings.TrimSpace(parts[1]), level
		}
	}
	return strings.TrimSpace(line), logger.LevelInfo
}
