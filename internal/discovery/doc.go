// Package discovery locates Roku devices on the local network with SSDP.
//
// A discovery attempt sends one M-SEARCH probe for the "roku:ecp" search
// target to 239.255.255.250:1900 and reads unicast replies until a reply
// matches or the receive timeout passes.
//
// # Discovery Process
//
//  1. Open a UDP socket on an ephemeral port and set the multicast TTL to 32
//  2. Send the probe once
//  3. Read replies of up to 2048 bytes each
//  4. Parse each reply; replies that fail to parse are logged and skipped
//  5. Stop at the first reply whose USN contains the configured identity
//
// An empty identity matches the first device that answers. If nothing
// matches, a configured static address is returned instead of the error.
//
// # Usage Example
//
//	client := discovery.NewClient()
//	device, err := client.Resolve(ctx, discovery.Config{Identity: "YH009E000000"})
//	if discovery.IsNoDeviceFound(err) {
//	    // nothing answered within the window
//	}
//	fmt.Println(device.Location) // "http://192.168.1.50:8060/"
//
// # Timeouts
//
// By default the timeout (1s) covers the whole attempt: replies that do not
// match still use up the window. TimeoutPerRead restarts the timeout after
// each datagram instead. A context deadline or cancellation can end an attempt
// early.
//
// # Thread Safety
//
// A Client may be shared. Each Resolve or Scan call owns its own socket, which
// is closed before the call returns.
package discovery
