package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const usage = `airsim runs aerial support scenarios.

Usage:
  airsim run [flags]   run a scenario
  airsim version       print the version
  airsim help          show this message

Run flags:
`

// runCLI dispatches args and returns the process exit code.
func runCLI(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fs := runFlags(nil)
		fs.SetOutput(stderr)
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
		return 2
	}

	switch strings.ToLower(args[0]) {
	case "version":
		fmt.Fprintf(stdout, "airsim %s (built %s)\n", CurrentVersion, BuildDate)
		return 0

	case "help", "-h", "--help":
		fs := runFlags(nil)
		fs.SetOutput(stdout)
		fmt.Fprint(stdout, usage)
		fs.PrintDefaults()
		return 0

	case "run":
		opts := &runOptions{}
		fs := runFlags(opts)
		fs.SetOutput(stderr)
		if err := fs.Parse(args[1:]); err != nil {
			if errors.Is(err, pflag.ErrHelp) {
				return 0
			}
			return 2
		}
		if err := runCommand(fs, opts, stdout, stderr); err != nil {
			fmt.Fprintf(stderr, "airsim: %v\n", err)
			return 1
		}
		return 0

	default:
		fmt.Fprintf(stderr, "airsim: unknown command %q\n\n", args[0])
		fmt.Fprint(stderr, usage)
		return 2
	}
}

type runOptions struct {
	ConfigDir string
}

// runFlags declares the run flags. Flags other than --config are bound to
// config keys so they override airsim.cfg.json.
func runFlags(opts *runOptions) *pflag.FlagSet {
	if opts == nil {
		opts = &runOptions{}
	}
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	fs.StringVarP(&opts.ConfigDir, "config", "c", ".", "directory holding airsim.cfg.json")
	fs.StringP("scenario", "s", "scenario.yaml", "scenario file")
	fs.IntP("ticks", "n", 3600, "ticks to run; 0 runs until interrupted")
	fs.String("storage", "memory", "storage backend: memory, sqlite, postgres or websocket")
	fs.String("status-file", "", "file the status monitor rewrites every second")
	fs.String("log-level", "info", "log level")
	fs.Bool("resume", false, "continue from the newest stored snapshot")
	return fs
}

var flagKeys = map[string]string{
	"scenario":    "scenario.file",
	"ticks":       "sim.maxTicks",
	"storage":     "storage.type",
	"status-file": "statusFile",
	"log-level":   "logLevel",
	"resume":      "resume",
}

// bindFlags lets explicitly set flags win over the config file.
func bindFlags(fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok && err == nil {
			err = viper.BindPFlag(key, f)
		}
	})
	return err
}

func runCommand(fs *pflag.FlagSet, opts *runOptions, stdout, stderr io.Writer) error {
	cfgErr := loadConfig(opts.ConfigDir)
	if err := bindFlags(fs); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	if err := setupLogging(stderr); err != nil {
		fmt.Fprintf(stderr, "airsim: %v\n", err)
	}
	defer shutdownLogging()

	if cfgErr != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", cfgErr)
	} else {
		Logger.Info("Loaded config", "dir", opts.ConfigDir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := runScenario(ctx, viper.GetString("scenario.file"))
	if err != nil {
		Logger.Error("Run failed", "error", err)
		return err
	}

	return writeStatus(stdout, st)
}
