// Package config stores rokuctl settings.
//
// Settings live in a YAML file in the platform configuration directory:
//   - Linux: $XDG_CONFIG_HOME/rokuctl/config.yaml or $HOME/.config/rokuctl/config.yaml
//   - macOS: $HOME/.config/rokuctl/config.yaml
//   - Windows: %LOCALAPPDATA%\rokuctl\config.yaml
//
// A Settings value is plain data. Resolution code never reads it directly;
// callers turn it into a discovery.Config with DiscoveryConfig and pass that
// along, so a change only takes effect where it is handed over.
//
// # Usage Example
//
//	path, _ := config.GetConfigPath()
//	settings, err := config.Load(path)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := settings.Set("device.serial", "YN00AB123456"); err != nil {
//	    log.Fatal(err)
//	}
//	if err := settings.Save(path); err != nil {
//	    log.Fatal(err)
//	}
//
// Watch reports later edits so a long-running process can re-resolve.
package config
