package discovery

import (
	"fmt"
	"time"
)

// Source records how a device location was obtained
type Source string

const (
	// SourceDiscovered means the location came from a validated reply
	SourceDiscovered Source = "discovered"

	// SourceStatic means the location is the configured static address
	SourceStatic Source = "static"
)

// Device is a resolved device location.
// Location is either the configured static address or the LOCATION header of
// a reply that passed parsing and matching, never a partial value.
type Device struct {
	// Location is the ECP base URL (e.g., "http://192.168.1.50:8060/")
	Location string `json:"location"`

	// Identity is the matched USN (empty for static devices)
	Identity string `json:"identity,omitempty"`

	// Source tells whether the location was discovered or configured
	Source Source `json:"source"`

	// Addr is the address the reply came from (empty for static devices)
	Addr string `json:"addr,omitempty"`

	// DiscoveredAt is when the device was resolved
	DiscoveredAt time.Time `json:"discovered_at"`

	// Cause is why a static device stood in for discovery: an
	// ErrTypeNoDeviceFound or ErrTypeDiscovery *Error. Nil otherwise.
	Cause error `json:"-"`
}

// NewStaticDevice wraps a configured static address
func NewStaticDevice(address string) *Device {
	return &Device{
		Location:     address,
		Source:       SourceStatic,
		DiscoveredAt: time.Now(),
	}
}

func newDiscoveredDevice(resp *Response, addr string) *Device {
	return &Device{
		Location:     resp.Location,
		Identity:     resp.USN,
		Source:       SourceDiscovered,
		Addr:         addr,
		DiscoveredAt: time.Now(),
	}
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	if d.Source == SourceStatic {
		return fmt.Sprintf("Roku at %s (static)", d.Location)
	}
	return fmt.Sprintf("Roku %s at %s", d.Identity, d.Location)
}

// IsStatic reports whether the location is the configured fallback
func (d *Device) IsStatic() bool {
	return d.Source == SourceStatic
}
