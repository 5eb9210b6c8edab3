// Rokuctl finds Roku devices on the local network and sends them commands.
//
// Devices are located with an SSDP M-SEARCH for "roku:ecp". A configured
// serial picks one device when several answer, and a static address is
// used when nothing matching answers in time.
//
// Usage:
//
//	rokuctl [command] [flags]
//
// See 'rokuctl --help' for available commands.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/muurk/rokuctl/internal/config"
	"github.com/muurk/rokuctl/internal/logging"
	"github.com/muurk/rokuctl/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := fang.Execute(ctx, rootCmd)
	logging.Sync()
	stop()

	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rokuctl",
	Short: "Find and control Roku devices on the local network",
	Long: `Find Roku devices with SSDP discovery and drive them over the
External Control Protocol.

Device selection and discovery tuning are read from the config file
(see 'rokuctl config path'). Flags override the file for one run.`,
	Version:           version.Full(),
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

// Global flags
var (
	configPath     string
	serialFlag     string
	staticFlag     string
	timeoutFlag    string
	perReadFlag    bool
	logLevelFlag   string
	ctlTimeoutFlag string
	retriesFlag    int
	formatFlag     string
)

// settings is the effective configuration for this run
var settings *config.Settings

// flagKeys maps string flags onto config keys
var flagKeys = []struct {
	flag string
	key  string
}{
	{"serial", "device.serial"},
	{"static", "device.static_address"},
	{"timeout", "discovery.timeout"},
	{"control-timeout", "control.timeout"},
	{"retries", "control.retries"},
	{"log-level", "log_level"},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (default is the OS config directory)")
	flags.StringVar(&serialFlag, "serial", "", "Device serial to match against the USN")
	flags.StringVar(&staticFlag, "static", "", "Static device address used when discovery fails (e.g., http://192.168.1.50:8060/)")
	flags.StringVar(&timeoutFlag, "timeout", "", "Discovery receive window (e.g., 1s, 2500ms)")
	flags.BoolVar(&perReadFlag, "per-read", false, "Restart the receive timeout after every reply")
	flags.StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&ctlTimeoutFlag, "control-timeout", "", "Timeout for commands sent to the device")
	flags.IntVar(&retriesFlag, "retries", 0, "Retries for failed device commands")
	flags.StringVar(&formatFlag, "format", "text", "Output format (text, json)")

	rootCmd.AddCommand(versionCmd)
}

// loadSettings reads the config file, applies flag overrides and starts logging
func loadSettings(cmd *cobra.Command, args []string) error {
	if err := resolveConfigPath(); err != nil {
		return err
	}

	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := applyOverrides(cmd, loaded); err != nil {
		return err
	}
	settings = loaded

	if err := initLogging(cmd, settings.LogLevel); err != nil {
		return err
	}

	switch formatFlag {
	case "text", "json":
	default:
		return fmt.Errorf("unknown format %q (expected text or json)", formatFlag)
	}

	return nil
}

// loadConfigPath prepares commands that edit the config file. It skips
// validation so a broken file can still be repaired.
func loadConfigPath(cmd *cobra.Command, args []string) error {
	if err := resolveConfigPath(); err != nil {
		return err
	}
	return initLogging(cmd, logLevelFlag)
}

func resolveConfigPath() error {
	if configPath != "" {
		return nil
	}
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	configPath = path
	return nil
}

// initLogging starts logging. Flag beats environment beats file.
func initLogging(cmd *cobra.Command, fileLevel string) error {
	level := fileLevel
	if cmd.Flags().Changed("log-level") {
		level = logLevelFlag
	} else if env := os.Getenv(logging.LogLevelEnvVar); env != "" {
		level = env
	}
	if err := logging.Initialize(level); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	return nil
}

// applyOverrides copies changed flags into s
func applyOverrides(cmd *cobra.Command, s *config.Settings) error {
	for _, fk := range flagKeys {
		f := cmd.Flags().Lookup(fk.flag)
		if f == nil || !f.Changed {
			continue
		}
		if err := s.Set(fk.key, f.Value.String()); err != nil {
			return fmt.Errorf("--%s: %w", fk.flag, err)
		}
	}

	if cmd.Flags().Changed("per-read") {
		policy := "window"
		if perReadFlag {
			policy = "per-read"
		}
		if err := s.Set("discovery.timeout_policy", policy); err != nil {
			return err
		}
	}

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// No config needed
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		out := cmd.OutOrStdout()
		if formatFlag == "json" {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}
		fmt.Fprintf(out, "rokuctl %s\n%s %s\n", info, info.GoVersion, info.Platform)
		return nil
	},
}
