package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/muurk/rokuctl/internal/config"
	"github.com/muurk/rokuctl/internal/discovery"
	"github.com/muurk/rokuctl/internal/ecp"
	"github.com/muurk/rokuctl/internal/locator"
	"github.com/muurk/rokuctl/internal/logging"
	"github.com/muurk/rokuctl/internal/ui"
	"github.com/muurk/rokuctl/internal/urls"
)

// Command flags
var (
	checkFlag      bool
	providerIDFlag string
	refreshFlag    time.Duration
)

func init() {
	rootCmd.AddCommand(locateCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
}

// locateCmd resolves the configured device
var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Find the configured Roku and print its location",
	Long: `Send one SSDP M-SEARCH for roku:ecp and print the location of the
first reply whose USN contains the configured serial.

With no serial configured, the first Roku to answer is used. When nothing
matching answers within the timeout, the static address is printed instead.`,
	Example: `  # Any Roku on the network
  rokuctl locate

  # A specific device, falling back to a known address
  rokuctl locate --serial YN00AB123456 --static http://192.168.1.50:8060/

  # Check that the device answers on its ECP port
  rokuctl locate --check`,
	RunE: runLocate,
}

func init() {
	locateCmd.Flags().BoolVar(&checkFlag, "check", false, "Verify the device answers at its location")
}

func runLocate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	loc, err := newLocator()
	if err != nil {
		return err
	}

	cfg := settings.DiscoveryConfig()
	if formatFlag == "text" {
		fmt.Println(discoveryHeader("rokuctl locate", cfg).Render())
		fmt.Println()
	}

	if err := loc.Configure(ctx, cfg); err != nil {
		printFailure("Discovery failed", discovery.GetTroubleshootingTips(err))
		return err
	}
	device := loc.Current()

	var pingErr error
	if checkFlag {
		pingErr = settings.NewControlClient(device.Location).Ping(ctx)
	}

	if formatFlag == "json" {
		if err := printJSON(device); err != nil {
			return err
		}
		return pingErr
	}

	result := ui.NewSuccessResult("Device located")
	if device.IsStatic() {
		result = ui.NewWarningResult("Using static address")
	}
	result.AddDetail("Location", device.Location).
		AddDetail("Source", string(device.Source))
	if !device.IsStatic() {
		result.AddDetail("Identity", device.Identity).
			AddDetail("Responder", device.Addr)
	}
	if device.Cause != nil {
		result.AddDetail("Reason", device.Cause.Error())
		result.AddTip(discovery.GetTroubleshootingTips(device.Cause)...)
	}
	if checkFlag && pingErr == nil {
		result.AddDetail("Check", "device answered")
	}
	fmt.Println(result.Render())

	if pingErr != nil {
		printFailure("Device did not answer", ecp.GetTroubleshootingTips(pingErr))
		return pingErr
	}
	return nil
}

// scanCmd lists every device that answers
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List every Roku that answers discovery",
	Long: `Send one SSDP M-SEARCH for roku:ecp and list every device that
answers within the timeout. Use the identity column to pick a serial.`,
	Example: `  # Default one second window
  rokuctl scan

  # Longer window for slow networks
  rokuctl scan --timeout 3s`,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	client, err := settings.NewDiscoveryClient()
	if err != nil {
		return err
	}

	if formatFlag == "text" {
		fmt.Printf("Scanning for Roku devices (timeout: %s)...\n\n", client.Timeout)
	}

	devices, err := client.Scan(cmd.Context())
	if err != nil {
		printFailure("Scan failed", discovery.GetTroubleshootingTips(err))
		return err
	}

	if formatFlag == "json" {
		return printJSON(devices)
	}

	fmt.Println(ui.RenderDeviceTable(devices))
	if len(devices) > 0 {
		fmt.Println("\nUse 'rokuctl config set device.serial <serial>' to pick one")
	}
	return nil
}

// searchCmd resolves the device then asks it to search and launch
var searchCmd = &cobra.Command{
	Use:   "search <keyword...>",
	Short: "Search for a title on the Roku and start playing it",
	Long: `Resolve the configured device, then ask it to search for the keyword
and launch the best match. A provider id restricts the search to one channel.

See ` + urls.ECPReference + ` for the command reference.`,
	Example: `  # Search every channel
  rokuctl search the office

  # Search one channel by provider id
  rokuctl search stranger things --provider-id 12`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&providerIDFlag, "provider-id", "", "Channel provider id to search in")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	keyword := strings.Join(args, " ")

	req := ecp.NewSearchRequest(keyword, providerIDFlag)
	if err := req.Validate(); err != nil {
		return err
	}

	loc, err := newLocator()
	if err != nil {
		return err
	}
	if err := loc.Configure(ctx, settings.DiscoveryConfig()); err != nil {
		printFailure("Discovery failed", discovery.GetTroubleshootingTips(err))
		return err
	}

	location, err := loc.Location(ctx)
	if err != nil {
		return err
	}

	if err := settings.NewControlClient(location).Search(ctx, req); err != nil {
		printFailure("Search failed", ecp.GetTroubleshootingTips(err))
		return err
	}

	if formatFlag == "json" {
		return printJSON(map[string]string{"location": location, "keyword": keyword, "provider_id": providerIDFlag})
	}

	result := ui.NewSuccessResult("Search sent").
		AddDetail("Keyword", keyword).
		AddDetail("Location", location)
	if providerIDFlag != "" {
		result.AddDetail("Provider", providerIDFlag)
	}
	fmt.Println(result.Render())
	return nil
}

// watchCmd keeps the resolved location current
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the device location current as the config file changes",
	Long: `Resolve the configured device, then re-resolve each time the config
file changes. With --refresh, also re-resolve on a fixed interval.

Device selection changes (serial and static address) take effect at once.
Discovery tuning is read at start.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&refreshFlag, "refresh", 0, "Also re-resolve on this interval (0 disables)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	loc, err := newLocator()
	if err != nil {
		return err
	}

	report := func(err error) {
		if err != nil {
			fmt.Println(ui.ErrorMessageStyle.Render(ui.FailureMarker + " " + err.Error()))
			return
		}
		fmt.Println(ui.RenderDeviceLine(loc.Current()))
	}

	report(loc.Configure(ctx, settings.DiscoveryConfig()))

	if refreshFlag > 0 {
		go func() {
			ticker := time.NewTicker(refreshFlag)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := loc.Refresh(ctx); err != nil {
						// Refresh keeps the last location
						logging.Warn("Periodic refresh failed", zap.Error(err))
						continue
					}
					logging.Debug("Periodic refresh", zap.String("location", loc.CurrentLocation()))
				}
			}
		}()
	}

	return config.Watch(ctx, configPath, func(updated *config.Settings) {
		if err := applyOverrides(cmd, updated); err != nil {
			logging.Warn("Ignoring config change", zap.Error(err))
			return
		}
		if updated.DiscoveryConfig() == loc.Config() {
			return
		}
		report(loc.Configure(ctx, updated.DiscoveryConfig()))
	})
}

// configCmd groups settings commands
var configCmd = &cobra.Command{
	Use:               "config",
	Short:             "Show or change settings",
	PersistentPreRunE: loadConfigPath,
}

var configShowCmd = &cobra.Command{
	Use:               "show",
	Short:             "Print the effective settings as YAML, including flag overrides",
	PersistentPreRunE: loadSettings,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(settings)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting in the config file",
	Long: "Change one setting in the config file. Valid keys:\n  " +
		strings.Join(config.Keys, "\n  "),
	Example: `  rokuctl config set device.serial YN00AB123456
  rokuctl config set discovery.timeout 2s
  rokuctl config set device.static_address ""`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	// Start from the file so flag overrides are not persisted
	fileSettings, err := config.LoadUnchecked(configPath)
	if err != nil {
		return err
	}
	if err := fileSettings.Set(args[0], args[1]); err != nil {
		return err
	}
	if err := fileSettings.Write(configPath); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s = %q\n", ui.SuccessTitleStyle.Render(ui.SuccessMarker), args[0], args[1])
	if err := fileSettings.Validate(); err != nil {
		fmt.Fprintf(out, "%s config file still has problems: %v\n", ui.WarningTitleStyle.Render(ui.WarningMarker), err)
	}
	return nil
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), configPath)
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
}

// newLocator builds a locator over a discovery client from the settings
func newLocator() (*locator.Locator, error) {
	client, err := settings.NewDiscoveryClient()
	if err != nil {
		return nil, err
	}
	return locator.New(client), nil
}

func discoveryHeader(command string, cfg discovery.Config) *ui.Header {
	h := ui.NewHeader("Device discovery", command)
	serial := cfg.Identity
	if serial == "" {
		serial = "(any)"
	}
	h.AddParam("Serial", serial)
	if cfg.StaticAddress != "" {
		h.AddParam("Static", cfg.StaticAddress)
	}
	h.AddParam("Window", fmt.Sprintf("%s (%s)", settings.Discovery.Timeout, settings.Discovery.TimeoutPolicy))
	return h
}

// printFailure writes a failure box with tips to stderr. The error itself
// is reported by the command runner.
func printFailure(title string, tips []string) {
	if formatFlag != "text" {
		return
	}
	fmt.Fprintln(os.Stderr, ui.RenderFailure(title, nil, tips))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
