package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/pion/transport/v3"
	"github.com/pion/transport/v3/stdnet"
	"go.uber.org/zap"
	"golang.org/x/net/ipv4"

	"github.com/muurk/rokuctl/internal/logging"
)

const (
	// DefaultTimeout is the receive window for one discovery attempt
	DefaultTimeout = 1 * time.Second

	// DefaultTTL is the multicast TTL for the probe
	DefaultTTL = 32

	// DefaultBufferSize is the largest reply datagram read in full
	DefaultBufferSize = 2048
)

// TimeoutPolicy selects how the receive timeout is applied
type TimeoutPolicy int

const (
	// TimeoutWindow applies a single deadline to the whole attempt. Replies
	// that do not match still consume the window.
	TimeoutWindow TimeoutPolicy = iota

	// TimeoutPerRead restarts the timeout after every datagram, so the attempt
	// only ends once the network has been quiet for a full timeout. A steady
	// stream of replies keeps it alive; bound it with a context deadline.
	TimeoutPerRead
)

// String returns the policy name used in flags and config files
func (p TimeoutPolicy) String() string {
	switch p {
	case TimeoutWindow:
		return "window"
	case TimeoutPerRead:
		return "per-read"
	default:
		return fmt.Sprintf("TimeoutPolicy(%d)", p)
	}
}

// ParseTimeoutPolicy parses "window" or "per-read". Empty means window.
func ParseTimeoutPolicy(s string) (TimeoutPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "window":
		return TimeoutWindow, nil
	case "per-read", "perread", "per_read":
		return TimeoutPerRead, nil
	default:
		return TimeoutWindow, fmt.Errorf("unknown timeout policy %q (expected window or per-read)", s)
	}
}

// Config selects which device to resolve. The client only reads it.
type Config struct {
	// Identity is matched as a substring of the reply USN. Empty matches any device.
	Identity string

	// StaticAddress is returned when discovery does not produce a match
	StaticAddress string
}

// Client finds devices with SSDP M-SEARCH probes.
// A Client holds no per-attempt state; every call opens and closes its own socket.
type Client struct {
	// GroupAddress is where the probe is sent (default "239.255.255.250:1900")
	GroupAddress string

	// SearchTarget is the ST value probed for and required in replies
	SearchTarget string

	// TTL is the multicast TTL of the probe
	TTL int

	// Timeout is the receive timeout, applied according to Policy
	Timeout time.Duration

	// Policy selects between a fixed window and a per-read timeout
	Policy TimeoutPolicy

	// BufferSize is the receive buffer per datagram
	BufferSize int

	// Net opens sockets. Nil uses the host network stack.
	Net transport.Net
}

// NewClient creates a client with the standard ECP settings
func NewClient() *Client {
	return &Client{
		GroupAddress: DefaultGroupAddress,
		SearchTarget: SearchTargetECP,
		TTL:          DefaultTTL,
		Timeout:      DefaultTimeout,
		Policy:       TimeoutWindow,
		BufferSize:   DefaultBufferSize,
	}
}

// Resolve finds the location of the device selected by cfg.
//
// The first reply that matches cfg.Identity wins. When nothing matches, or
// the socket fails, a non-empty cfg.StaticAddress is returned as a static
// device with the failure in Device.Cause. Otherwise the error is an *Error
// of type ErrTypeNoDeviceFound or ErrTypeDiscovery.
//
// Resolve blocks for up to Timeout. ctx can end it earlier but never later.
func (c *Client) Resolve(ctx context.Context, cfg Config) (*Device, error) {
	var found *Device

	err := c.search(ctx, func(resp *Response, addr string) bool {
		if !resp.Matches(cfg.Identity) {
			logging.Debug("Ignoring reply from other device",
				zap.String("addr", addr),
				zap.String("usn", resp.USN),
				zap.String("location", resp.Location),
			)
			return false
		}
		found = newDiscoveredDevice(resp, addr)
		return true
	})

	if err == nil {
		logging.Info("Found device",
			zap.String("usn", found.Identity),
			zap.String("location", found.Location),
			zap.String("addr", found.Addr),
		)
		return found, nil
	}

	fallback := cfg.StaticAddress != ""
	if errors.Is(err, errWindowElapsed) {
		err = newNoDeviceFoundError(cfg.Identity, c.timeout())
		logging.Warn("No device found",
			zap.String("identity", cfg.Identity),
			zap.Duration("timeout", c.timeout()),
			zap.Stringer("policy", c.Policy),
			zap.Bool("static_fallback", fallback),
		)
	} else {
		logging.Error("Discovery failed", zap.Error(err), zap.Bool("static_fallback", fallback))
	}

	// The static address is the standing answer; Cause keeps the failure
	// visible to callers that care whether the network works.
	if fallback {
		logging.Info("Using static address", zap.String("location", cfg.StaticAddress))
		device := NewStaticDevice(cfg.StaticAddress)
		device.Cause = err
		return device, nil
	}

	return nil, err
}

// Scan returns every device that answered within one timeout, in arrival
// order, de-duplicated by USN. Replies without a location are skipped.
func (c *Client) Scan(ctx context.Context) ([]*Device, error) {
	devices := make([]*Device, 0)
	seen := make(map[string]bool)

	err := c.search(ctx, func(resp *Response, addr string) bool {
		if resp.Location == "" {
			return false
		}
		key := resp.USN
		if key == "" {
			key = resp.Location
		}
		if !seen[key] {
			seen[key] = true
			devices = append(devices, newDiscoveredDevice(resp, addr))
		}
		return false
	})

	if errors.Is(err, errWindowElapsed) {
		return devices, nil
	}
	return devices, err
}

// visitFunc receives every reply that parsed. Returning true ends the search.
type visitFunc func(resp *Response, addr string) bool

// search sends one probe and feeds parsed replies to visit. It returns nil
// when visit ended the search, errWindowElapsed when the timeout passed, and
// an ErrTypeDiscovery *Error for anything else. The socket is closed on every
// path.
func (c *Client) search(ctx context.Context, visit visitFunc) error {
	network, err := c.network()
	if err != nil {
		return newDiscoveryError("create network", err)
	}

	query, err := NewQueryForAddress(c.groupAddress(), c.searchTarget())
	if err != nil {
		return newDiscoveryError("build query", err)
	}

	dst, err := network.ResolveUDPAddr("udp4", query.Address())
	if err != nil {
		return newDiscoveryError("resolve group address", err)
	}

	conn, err := network.ListenPacket("udp4", ":0")
	if err != nil {
		return newDiscoveryError("open socket", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			logging.Debug("Failed to close discovery socket", zap.Error(cerr))
		}
	}()

	// Without the TTL the probe still reaches the local segment (TTL 1), so
	// a failure here is not fatal.
	if err := ipv4.NewPacketConn(conn).SetMulticastTTL(c.ttl()); err != nil {
		logging.Warn("Failed to set multicast TTL", zap.Int("ttl", c.ttl()), zap.Error(err))
	}

	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Unix(1, 0))
	})
	defer stop()

	if c.Policy == TimeoutWindow {
		if err := conn.SetReadDeadline(c.deadline(ctx)); err != nil {
			return newDiscoveryError("set read deadline", err)
		}
	}

	payload := query.Bytes()
	logging.LogDatagram("sent", dst.String(), payload)
	if _, err := conn.WriteTo(payload, dst); err != nil {
		return newDiscoveryError("send query", err)
	}

	buf := make([]byte, c.bufferSize())
	for {
		if err := contextErr(ctx); err != nil {
			return err
		}

		if c.Policy == TimeoutPerRead {
			if err := conn.SetReadDeadline(c.deadline(ctx)); err != nil {
				return newDiscoveryError("set read deadline", err)
			}
			// A cancel that landed before this call had its past deadline
			// overwritten; catch it here rather than after a full timeout.
			if err := contextErr(ctx); err != nil {
				return err
			}
		}

		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			if cerr := contextErr(ctx); cerr != nil {
				return cerr
			}
			if isTimeout(err) {
				return errWindowElapsed
			}
			return newDiscoveryError("receive", err)
		}

		addr := ""
		if from != nil {
			addr = from.String()
		}
		data := buf[:n]
		logging.LogDatagram("received", addr, data)

		resp, err := ParseResponseFor(data, query.SearchTarget)
		if err != nil {
			logging.Warn("Failed to parse discovery reply", zap.String("addr", addr), zap.Error(err))
			continue
		}

		if visit(resp, addr) {
			return nil
		}
	}
}

// deadline is now+Timeout, or the context deadline if that comes first
func (c *Client) deadline(ctx context.Context) time.Time {
	d := time.Now().Add(c.timeout())
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(d) {
		return ctxDeadline
	}
	return d
}

// contextErr maps a finished context onto search results. An expired
// deadline is just a shorter window; cancellation is a failure.
func contextErr(ctx context.Context) error {
	switch err := ctx.Err(); {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return errWindowElapsed
	default:
		return newDiscoveryError("receive", err)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (c *Client) network() (transport.Net, error) {
	if c.Net != nil {
		return c.Net, nil
	}
	return stdnet.NewNet()
}

func (c *Client) groupAddress() string {
	if c.GroupAddress == "" {
		return DefaultGroupAddress
	}
	return c.GroupAddress
}

func (c *Client) searchTarget() string {
	if c.SearchTarget == "" {
		return SearchTargetECP
	}
	return c.SearchTarget
}

func (c *Client) ttl() int {
	if c.TTL <= 0 {
		return DefaultTTL
	}
	return c.TTL
}

func (c *Client) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func (c *Client) bufferSize() int {
	if c.BufferSize <= 0 {
		return DefaultBufferSize
	}
	return c.BufferSize
}
