package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/muurk/rokuctl/internal/discovery"
	"github.com/muurk/rokuctl/internal/ecp"
)

// CurrentVersion is the settings file format version
const CurrentVersion = 1

// Settings represents the entire user configuration file.
type Settings struct {
	Version   int               `yaml:"version"`
	Device    DeviceSettings    `yaml:"device"`
	Discovery DiscoverySettings `yaml:"discovery"`
	Control   ControlSettings   `yaml:"control"`
	LogLevel  string            `yaml:"log_level,omitempty"` // debug, info, warn or error
}

// DeviceSettings selects which Roku to talk to.
type DeviceSettings struct {
	Serial        string `yaml:"serial,omitempty"`         // Matched against the reply USN
	StaticAddress string `yaml:"static_address,omitempty"` // Used when discovery finds nothing (e.g., "http://192.168.1.50:8060/")
}

// DiscoverySettings tunes the SSDP probe.
type DiscoverySettings struct {
	Timeout       time.Duration `yaml:"timeout"`
	TimeoutPolicy string        `yaml:"timeout_policy"` // window or per-read
	TTL           int           `yaml:"ttl"`
	GroupAddress  string        `yaml:"group_address"`
}

// ControlSettings tunes calls to the device.
type ControlSettings struct {
	Timeout time.Duration `yaml:"timeout"`
	Retries int           `yaml:"retries"`
}

// NewSettings creates Settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version: CurrentVersion,
		Discovery: DiscoverySettings{
			Timeout:       discovery.DefaultTimeout,
			TimeoutPolicy: discovery.TimeoutWindow.String(),
			TTL:           discovery.DefaultTTL,
			GroupAddress:  discovery.DefaultGroupAddress,
		},
		Control: ControlSettings{
			Timeout: ecp.DefaultTimeout,
			Retries: ecp.DefaultMaxRetries,
		},
	}
}

// fillDefaults sets zero values left out of a hand-edited file.
func (s *Settings) fillDefaults() {
	defaults := NewSettings()
	if s.Discovery.Timeout == 0 {
		s.Discovery.Timeout = defaults.Discovery.Timeout
	}
	if s.Discovery.TimeoutPolicy == "" {
		s.Discovery.TimeoutPolicy = defaults.Discovery.TimeoutPolicy
	}
	if s.Discovery.TTL == 0 {
		s.Discovery.TTL = defaults.Discovery.TTL
	}
	if s.Discovery.GroupAddress == "" {
		s.Discovery.GroupAddress = defaults.Discovery.GroupAddress
	}
	if s.Control.Timeout == 0 {
		s.Control.Timeout = defaults.Control.Timeout
	}
}

// Validate checks every field and returns the first problem found.
func (s *Settings) Validate() error {
	if s.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", s.Version, CurrentVersion)
	}
	for _, key := range Keys {
		if err := s.validateKey(key); err != nil {
			return err
		}
	}
	return nil
}

// validateKey checks one setting by its dotted name
func (s *Settings) validateKey(key string) error {
	switch key {
	case "device.static_address":
		if s.Device.StaticAddress == "" {
			return nil
		}
		if err := validateLocation(s.Device.StaticAddress); err != nil {
			return fmt.Errorf("device.static_address: %w", err)
		}
	case "discovery.timeout":
		if s.Discovery.Timeout <= 0 {
			return fmt.Errorf("discovery.timeout must be positive, got %s", s.Discovery.Timeout)
		}
	case "discovery.timeout_policy":
		if _, err := discovery.ParseTimeoutPolicy(s.Discovery.TimeoutPolicy); err != nil {
			return fmt.Errorf("discovery.timeout_policy: %w", err)
		}
	case "discovery.ttl":
		if s.Discovery.TTL < 1 || s.Discovery.TTL > 255 {
			return fmt.Errorf("discovery.ttl must be between 1 and 255, got %d", s.Discovery.TTL)
		}
	case "discovery.group_address":
		if _, err := discovery.NewQueryForAddress(s.Discovery.GroupAddress, ""); err != nil {
			return fmt.Errorf("discovery.group_address: %w", err)
		}
	case "control.timeout":
		if s.Control.Timeout <= 0 {
			return fmt.Errorf("control.timeout must be positive, got %s", s.Control.Timeout)
		}
	case "control.retries":
		if s.Control.Retries < 0 {
			return fmt.Errorf("control.retries must not be negative, got %d", s.Control.Retries)
		}
	case "log_level":
		switch s.LogLevel {
		case "", "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("log_level must be debug, info, warn or error, got %q", s.LogLevel)
		}
	}
	return nil
}

func validateLocation(location string) error {
	u, err := url.Parse(location)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q is not an http URL", location)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", location)
	}
	return nil
}

// DiscoveryConfig returns the device selection passed to a resolve.
func (s *Settings) DiscoveryConfig() discovery.Config {
	return discovery.Config{
		Identity:      s.Device.Serial,
		StaticAddress: s.Device.StaticAddress,
	}
}

// NewDiscoveryClient builds a discovery client from the probe settings.
func (s *Settings) NewDiscoveryClient() (*discovery.Client, error) {
	policy, err := discovery.ParseTimeoutPolicy(s.Discovery.TimeoutPolicy)
	if err != nil {
		return nil, err
	}

	client := discovery.NewClient()
	client.Timeout = s.Discovery.Timeout
	client.Policy = policy
	client.TTL = s.Discovery.TTL
	client.GroupAddress = s.Discovery.GroupAddress
	return client, nil
}

// NewControlClient builds a control client for a resolved location.
func (s *Settings) NewControlClient(location string) *ecp.Client {
	client := ecp.NewClient(location)
	client.SetTimeout(s.Control.Timeout)
	client.MaxRetries = s.Control.Retries
	return client
}

// Keys lists the names accepted by Set, in file order.
var Keys = []string{
	"device.serial",
	"device.static_address",
	"discovery.timeout",
	"discovery.timeout_policy",
	"discovery.ttl",
	"discovery.group_address",
	"control.timeout",
	"control.retries",
	"log_level",
}

// Set updates one setting by its dotted name and validates the new value.
// Other settings are not checked, so a broken file can be repaired one key
// at a time. On error the settings are left unchanged.
func (s *Settings) Set(key, value string) error {
	updated := *s
	value = strings.TrimSpace(value)

	switch key {
	case "device.serial":
		updated.Device.Serial = value
	case "device.static_address":
		updated.Device.StaticAddress = value
	case "discovery.timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		updated.Discovery.Timeout = d
	case "discovery.timeout_policy":
		updated.Discovery.TimeoutPolicy = value
	case "discovery.ttl":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		updated.Discovery.TTL = n
	case "discovery.group_address":
		updated.Discovery.GroupAddress = value
	case "control.timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		updated.Control.Timeout = d
	case "control.retries":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		updated.Control.Retries = n
	case "log_level":
		updated.LogLevel = strings.ToLower(value)
	default:
		return fmt.Errorf("unknown setting %q (valid: %s)", key, strings.Join(Keys, ", "))
	}

	if err := updated.validateKey(key); err != nil {
		return err
	}
	*s = updated
	return nil
}
