package locator

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/rokuctl/internal/discovery"
	"github.com/muurk/rokuctl/internal/logging"
)

// Resolver finds a device for a configuration. *discovery.Client implements it.
type Resolver interface {
	Resolve(ctx context.Context, cfg discovery.Config) (*discovery.Device, error)
}

// Locator holds the configuration and the last resolved device.
//
// Refreshes are serialized: at most one discovery runs at a time and callers
// queue behind it. Reads never wait for a refresh.
type Locator struct {
	resolver Resolver

	// refreshMu serializes discovery runs
	refreshMu sync.Mutex

	// mu guards cfg and device
	mu     sync.RWMutex
	cfg    discovery.Config
	device *discovery.Device
}

// New creates a locator that resolves with r
func New(r Resolver) *Locator {
	return &Locator{resolver: r}
}

// Configure replaces the configuration and resolves again.
// The previous device is dropped first since it belonged to another
// configuration. A static address is published before discovery starts,
// so readers have an answer while the probe is out and if it fails.
func (l *Locator) Configure(ctx context.Context, cfg discovery.Config) error {
	l.refreshMu.Lock()
	defer l.refreshMu.Unlock()

	l.mu.Lock()
	l.cfg = cfg
	l.device = nil
	if cfg.StaticAddress != "" {
		l.device = discovery.NewStaticDevice(cfg.StaticAddress)
	}
	l.mu.Unlock()

	logging.Debug("Locator configured",
		zap.String("identity", cfg.Identity),
		zap.String("static_address", cfg.StaticAddress),
	)

	return l.refreshLocked(ctx)
}

// Refresh runs discovery again with the current configuration.
// On failure the previously resolved device is kept.
func (l *Locator) Refresh(ctx context.Context) error {
	l.refreshMu.Lock()
	defer l.refreshMu.Unlock()

	return l.refreshLocked(ctx)
}

func (l *Locator) refreshLocked(ctx context.Context) error {
	l.mu.RLock()
	cfg := l.cfg
	l.mu.RUnlock()

	device, err := l.resolver.Resolve(ctx, cfg)
	if err != nil {
		return err
	}
	if device == nil || device.Location == "" {
		return discovery.NewError(discovery.ErrTypeDiscovery, "resolve", "resolver returned no location")
	}

	l.mu.Lock()
	l.device = device
	l.mu.Unlock()

	return nil
}

// Config returns the current configuration
func (l *Locator) Config() discovery.Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// Current returns a copy of the last resolved device, or nil
func (l *Locator) Current() *discovery.Device {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.device == nil {
		return nil
	}
	device := *l.device
	return &device
}

// CurrentLocation returns the last resolved location, or "" if none
func (l *Locator) CurrentLocation() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.device == nil {
		return ""
	}
	return l.device.Location
}

// Location returns the cached location, resolving first when nothing is
// cached. This is what a control action calls before talking to the device.
func (l *Locator) Location(ctx context.Context) (string, error) {
	if location := l.CurrentLocation(); location != "" {
		return location, nil
	}

	l.refreshMu.Lock()
	defer l.refreshMu.Unlock()

	// A refresh that finished while we waited may have filled it in.
	if location := l.CurrentLocation(); location != "" {
		return location, nil
	}

	if err := l.refreshLocked(ctx); err != nil {
		return "", err
	}
	return l.CurrentLocation(), nil
}
