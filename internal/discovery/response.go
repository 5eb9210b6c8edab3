package discovery

import (
	"strings"
)

// StatusLineOK is the only status line accepted in a reply
const StatusLineOK = "HTTP/1.1 200 OK"

// Response is one parsed reply datagram
type Response struct {
	// SearchTarget is the ST value as sent by the device
	SearchTarget string

	// Location is the LOCATION header, verbatim (e.g., "http://192.168.1.50:8060/")
	Location string

	// USN is the unique service name, verbatim (e.g., "uuid:roku:ecp:P0A070000007")
	USN string
}

// Matches reports whether the reply identifies the wanted device.
// An empty identity matches any reply. A reply without a location never
// matches since there is nothing to connect to.
func (r *Response) Matches(identity string) bool {
	if r.Location == "" {
		return false
	}
	return strings.Contains(r.USN, identity)
}

// ParseResponse parses a reply to an ECP search
func ParseResponse(data []byte) (*Response, error) {
	return ParseResponseFor(data, SearchTargetECP)
}

// ParseResponseFor parses a reply and accepts it only if its ST header equals
// searchTarget (case-insensitive). The returned error is always of type
// ErrTypeUnparseableReply.
func ParseResponseFor(data []byte, searchTarget string) (*Response, error) {
	lines := strings.Split(string(data), "\n")

	if strings.TrimSpace(lines[0]) != StatusLineOK {
		return nil, newUnparseableError("unexpected status line %q", truncate(strings.TrimSpace(lines[0]), 64))
	}

	want := strings.ToLower(searchTarget)
	matched := false
	resp := &Response{}

	for _, line := range lines[1:] {
		key, value, ok := splitHeader(line)
		if !ok {
			continue
		}

		switch key {
		case "st":
			resp.SearchTarget = value
			matched = strings.ToLower(value) == want
			if !matched {
				return nil, newUnparseableError("search target %q does not match %q", value, searchTarget)
			}
		case "location":
			resp.Location = value
		case "usn":
			resp.USN = value
		}
	}

	if !matched {
		return nil, newUnparseableError("missing ST header")
	}

	return resp, nil
}

// splitHeader splits a "Key: Value" line. Lines shorter than three bytes and
// lines whose first colon is missing, leading, or trailing are rejected.
func splitHeader(line string) (key, value string, ok bool) {
	if len(line) < 3 {
		return "", "", false
	}

	idx := strings.IndexByte(line, ':')
	if idx < 1 || idx >= len(line)-1 {
		return "", "", false
	}

	key = strings.ToLower(strings.TrimSpace(line[:idx]))
	value = strings.TrimSpace(line[idx+1:])
	return key, value, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
