// Package locator keeps track of where the configured Roku is.
//
// A Locator owns the configuration (device identity and optional static
// address) and the last resolved device. Configuration changes are passed in
// explicitly through Configure, which resolves again; Refresh re-runs
// discovery with the same configuration.
//
//	loc := locator.New(discovery.NewClient())
//	if err := loc.Configure(ctx, discovery.Config{Identity: serial}); err != nil {
//	    // not found yet; Location will try again
//	}
//	location, err := loc.Location(ctx)
//
// Discovery blocks for up to its timeout, so callers with latency limits
// should refresh off their hot path.
package locator
