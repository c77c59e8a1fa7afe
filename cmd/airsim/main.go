package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/eagleglass/airsim/internal/config"
	"github.com/eagleglass/airsim/internal/logging"
	intOtel "github.com/eagleglass/airsim/internal/otel"
	"github.com/eagleglass/airsim/internal/session"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"
)

// global variables
var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// ZLogger feeds the zerolog-based database and InfluxDB managers and
	// the event dispatcher.
	ZLogger zerolog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	LogFilePath string
	LogFile     *os.File

	SessionStartTime time.Time = time.Now()

	sessionCtx = session.NewContext()
)

func main() {
	os.Exit(runCLI(os.Args[1:], os.Stdout, os.Stderr))
}

// loadConfig reads airsim.cfg.json from configDir, falling back to the
// built-in defaults when there is no file.
func loadConfig(configDir string) error {
	if configDir == "" {
		configDir = "."
	}
	if err := config.Load(configDir); err != nil {
		config.LoadDefaults()
		return err
	}
	return nil
}

// setupLogging opens the run log file and wires slog to it, plus the OTel
// and Graylog sinks when they are enabled. Before it runs, logs go to
// stderr.
func setupLogging(stderr io.Writer) error {
	SlogManager = logging.NewSlogManager()

	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs dir: %w", err)
	}

	LogFilePath = logging.LogFilePath(logsDir, logging.ServiceName, SessionStartTime)
	if _, err := os.Stat(LogFilePath); err == nil {
		os.Rename(LogFilePath, LogFilePath+".old")
	}

	var err error
	LogFile, err = os.OpenFile(LogFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		SlogManager.Setup(nil, viper.GetString("logLevel"), nil)
		Logger = SlogManager.Logger()
		ZLogger = zerolog.New(stderr).With().Timestamp().Logger()
		return fmt.Errorf("failed to open log file %s: %w", LogFilePath, err)
	}

	otelCfg := config.GetOTelConfig()
	OTelProvider, err = intOtel.New(intOtel.Config{
		Enabled:      otelCfg.Enabled,
		ServiceName:  otelCfg.ServiceName,
		Version:      CurrentVersion,
		BatchTimeout: otelCfg.BatchTimeout,
		LogWriter:    LogFile,
		Endpoint:     otelCfg.Endpoint,
		Insecure:     otelCfg.Insecure,
		Attributes: []attribute.KeyValue{
			attribute.String("airsim.storage", viper.GetString("storage.type")),
		},
	})
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize OTel provider: %v\n", err)
		OTelProvider, _ = intOtel.New(intOtel.Config{})
	}

	graylogCfg := config.GetGraylogConfig()
	if graylogCfg.Enabled {
		if err := SlogManager.ConnectGraylog(graylogCfg.Address); err != nil {
			fmt.Fprintf(stderr, "Failed to connect to Graylog at %s: %v\n", graylogCfg.Address, err)
		}
	}

	SlogManager.SetContext(sessionCtx.LogAttrs)
	SlogManager.Setup(LogFile, viper.GetString("logLevel"), OTelProvider.LoggerProvider())

	Logger = SlogManager.Logger()
	ZLogger = zerolog.New(LogFile).With().
		Timestamp().
		Str("service", logging.ServiceName).
		Logger().
		Level(zerologLevel(viper.GetString("logLevel")))

	Logger.Info("Logging initialized",
		"version", CurrentVersion,
		"buildDate", BuildDate,
		"logFile", LogFilePath,
		"otel", OTelProvider.Enabled(),
		"graylog", graylogCfg.Enabled,
	)
	return nil
}

func zerologLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(level)
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

// shutdownLogging flushes and closes every log sink.
func shutdownLogging() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if SlogManager != nil {
		if err := SlogManager.Close(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to close logging: %v\n", err)
		}
	}
	if OTelProvider != nil {
		if err := OTelProvider.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to shut down OTel: %v\n", err)
		}
	}
	if LogFile != nil {
		LogFile.Close()
		LogFile = nil
	}
}
