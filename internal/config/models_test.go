package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/rokuctl/internal/discovery"
)

func TestNewSettings(t *testing.T) {
	s := NewSettings()

	assert.Equal(t, CurrentVersion, s.Version)
	assert.Equal(t, time.Second, s.Discovery.Timeout)
	assert.Equal(t, "window", s.Discovery.TimeoutPolicy)
	assert.Equal(t, 32, s.Discovery.TTL)
	assert.Equal(t, "239.255.255.250:1900", s.Discovery.GroupAddress)
	assert.Equal(t, 0, s.Control.Retries)
	assert.Empty(t, s.Device.Serial)
	assert.Empty(t, s.Device.StaticAddress)
	require.NoError(t, s.Validate())
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{"defaults", func(*Settings) {}, ""},
		{"static address", func(s *Settings) { s.Device.StaticAddress = "http://192.168.1.50:8060/" }, ""},
		{"https static address", func(s *Settings) { s.Device.StaticAddress = "https://roku.lan:8060/" }, ""},
		{"static address without scheme", func(s *Settings) { s.Device.StaticAddress = "192.168.1.50:8060" }, "device.static_address"},
		{"static address without host", func(s *Settings) { s.Device.StaticAddress = "http:///" }, "device.static_address"},
		{"bad version", func(s *Settings) { s.Version = 2 }, "unsupported config version"},
		{"zero timeout", func(s *Settings) { s.Discovery.Timeout = 0 }, "discovery.timeout"},
		{"bad policy", func(s *Settings) { s.Discovery.TimeoutPolicy = "forever" }, "discovery.timeout_policy"},
		{"per-read policy", func(s *Settings) { s.Discovery.TimeoutPolicy = "per-read" }, ""},
		{"ttl too large", func(s *Settings) { s.Discovery.TTL = 256 }, "discovery.ttl"},
		{"bad group address", func(s *Settings) { s.Discovery.GroupAddress = "239.255.255.250" }, "discovery.group_address"},
		{"zero control timeout", func(s *Settings) { s.Control.Timeout = 0 }, "control.timeout"},
		{"negative retries", func(s *Settings) { s.Control.Retries = -1 }, "control.retries"},
		{"bad log level", func(s *Settings) { s.LogLevel = "trace" }, "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSettings()
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSettings_DiscoveryConfig(t *testing.T) {
	s := NewSettings()
	s.Device.Serial = "YN00AB123456"
	s.Device.StaticAddress = "http://192.168.1.50:8060/"

	assert.Equal(t, discovery.Config{
		Identity:      "YN00AB123456",
		StaticAddress: "http://192.168.1.50:8060/",
	}, s.DiscoveryConfig())
}

func TestSettings_NewDiscoveryClient(t *testing.T) {
	s := NewSettings()
	s.Discovery.Timeout = 3 * time.Second
	s.Discovery.TimeoutPolicy = "per-read"
	s.Discovery.TTL = 4
	s.Discovery.GroupAddress = "127.0.0.1:1901"

	client, err := s.NewDiscoveryClient()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, client.Timeout)
	assert.Equal(t, discovery.TimeoutPerRead, client.Policy)
	assert.Equal(t, 4, client.TTL)
	assert.Equal(t, "127.0.0.1:1901", client.GroupAddress)

	s.Discovery.TimeoutPolicy = "sometimes"
	_, err = s.NewDiscoveryClient()
	assert.Error(t, err)
}

func TestSettings_NewControlClient(t *testing.T) {
	s := NewSettings()
	s.Control.Timeout = 2 * time.Second
	s.Control.Retries = 2

	client := s.NewControlClient("http://192.168.1.50:8060/")
	assert.Equal(t, "http://192.168.1.50:8060/", client.BaseURL)
	assert.Equal(t, 2*time.Second, client.HTTPClient.Timeout)
	assert.Equal(t, 2, client.MaxRetries)
}

func TestSettings_Set(t *testing.T) {
	s := NewSettings()

	require.NoError(t, s.Set("device.serial", " YN00AB123456 "))
	require.NoError(t, s.Set("device.static_address", "http://192.168.1.50:8060/"))
	require.NoError(t, s.Set("discovery.timeout", "2500ms"))
	require.NoError(t, s.Set("discovery.timeout_policy", "per-read"))
	require.NoError(t, s.Set("discovery.ttl", "8"))
	require.NoError(t, s.Set("discovery.group_address", "127.0.0.1:1900"))
	require.NoError(t, s.Set("control.timeout", "3s"))
	require.NoError(t, s.Set("control.retries", "1"))
	require.NoError(t, s.Set("log_level", "DEBUG"))

	assert.Equal(t, "YN00AB123456", s.Device.Serial)
	assert.Equal(t, "http://192.168.1.50:8060/", s.Device.StaticAddress)
	assert.Equal(t, 2500*time.Millisecond, s.Discovery.Timeout)
	assert.Equal(t, "per-read", s.Discovery.TimeoutPolicy)
	assert.Equal(t, 8, s.Discovery.TTL)
	assert.Equal(t, "127.0.0.1:1900", s.Discovery.GroupAddress)
	assert.Equal(t, 3*time.Second, s.Control.Timeout)
	assert.Equal(t, 1, s.Control.Retries)
	assert.Equal(t, "debug", s.LogLevel)

	// Clearing is allowed
	require.NoError(t, s.Set("device.static_address", ""))
	assert.Empty(t, s.Device.StaticAddress)
}

func TestSettings_SetRejectsInvalid(t *testing.T) {
	s := NewSettings()

	tests := []struct {
		key   string
		value string
	}{
		{"device.nickname", "Living Room"},
		{"discovery.timeout", "soon"},
		{"discovery.timeout", "-1s"},
		{"discovery.ttl", "many"},
		{"discovery.ttl", "0"},
		{"control.retries", "-2"},
		{"device.static_address", "roku.lan"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			assert.Error(t, s.Set(tt.key, tt.value))
		})
	}

	// Nothing changed
	assert.Equal(t, NewSettings(), s)
}

func TestSettings_SetChecksOnlyTheChangedKey(t *testing.T) {
	s := NewSettings()
	s.Discovery.TTL = 300
	s.Control.Retries = -1

	require.NoError(t, s.Set("discovery.ttl", "16"))
	assert.Equal(t, 16, s.Discovery.TTL)
	assert.ErrorContains(t, s.Validate(), "control.retries")

	require.NoError(t, s.Set("control.retries", "0"))
	assert.NoError(t, s.Validate())
}
