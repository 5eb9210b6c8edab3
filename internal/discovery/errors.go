package discovery

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the category of a discovery failure
type ErrorType int

const (
	// ErrTypeUnparseableReply indicates a single reply could not be used.
	// It never ends a discovery attempt.
	ErrTypeUnparseableReply ErrorType = iota
	// ErrTypeNoDeviceFound indicates the window elapsed without a matching reply
	ErrTypeNoDeviceFound
	// ErrTypeDiscovery indicates a socket-level failure
	ErrTypeDiscovery
)

// Sentinels for errors.Is checks. They match any *Error of the same type.
var (
	ErrUnparseableReply = &Error{Type: ErrTypeUnparseableReply}
	ErrNoDeviceFound    = &Error{Type: ErrTypeNoDeviceFound}
	ErrDiscovery        = &Error{Type: ErrTypeDiscovery}
)

// errWindowElapsed ends the receive loop when the read deadline passes
var errWindowElapsed = errors.New("discovery window elapsed")

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeUnparseableReply:
		return "Unparseable Reply"
	case ErrTypeNoDeviceFound:
		return "No Device Found"
	case ErrTypeDiscovery:
		return "Discovery Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error is returned by the discovery client and the reply parser
type Error struct {
	Type    ErrorType // Category of error
	Op      string    // Socket operation that failed (ErrTypeDiscovery only)
	Message string    // Human-readable error message
	Err     error     // Underlying error (if any)
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is compare against the package sentinels
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Type == e.Type && t.Message == "" && t.Err == nil
}

// NewError creates an *Error for collaborators that report discovery
// outcomes on behalf of the client
func NewError(typ ErrorType, op, message string) *Error {
	return &Error{
		Type:    typ,
		Op:      op,
		Message: message,
	}
}

func newUnparseableError(format string, args ...any) *Error {
	return &Error{
		Type:    ErrTypeUnparseableReply,
		Message: fmt.Sprintf(format, args...),
	}
}

func newNoDeviceFoundError(identity string, window time.Duration) *Error {
	msg := fmt.Sprintf("no reply within %s", window)
	if identity != "" {
		msg = fmt.Sprintf("no reply matching %q within %s", identity, window)
	}
	return &Error{
		Type:    ErrTypeNoDeviceFound,
		Message: msg,
	}
}

func newDiscoveryError(op string, err error) *Error {
	return &Error{
		Type:    ErrTypeDiscovery,
		Op:      op,
		Message: "socket failure",
		Err:     err,
	}
}

// IsUnparseableReply checks if an error is a rejected reply
func IsUnparseableReply(err error) bool {
	return hasType(err, ErrTypeUnparseableReply)
}

// IsNoDeviceFound checks if discovery finished without a match
func IsNoDeviceFound(err error) bool {
	return hasType(err, ErrTypeNoDeviceFound)
}

// IsDiscoveryError checks if discovery failed at the socket level
func IsDiscoveryError(err error) bool {
	return hasType(err, ErrTypeDiscovery)
}

func hasType(err error, typ ErrorType) bool {
	var discErr *Error
	if errors.As(err, &discErr) {
		return discErr.Type == typ
	}
	return false
}

// GetTroubleshootingTips returns user-facing advice for a resolution failure
func GetTroubleshootingTips(err error) []string {
	switch {
	case IsNoDeviceFound(err):
		return []string{
			"Check that the Roku is powered on and on the same network segment",
			"Enable Settings > System > Advanced system settings > Control by mobile apps",
			"Check the configured serial against the device (Settings > System > About)",
			"Try a longer window with --timeout, or --per-read on busy networks",
			"Set a static address with --static to skip discovery",
		}
	case IsDiscoveryError(err):
		return []string{
			"Check that this machine has a network interface with multicast enabled",
			"Check that a firewall allows outbound UDP to 239.255.255.250:1900 and the replies",
			"Set a static address with --static to skip discovery",
		}
	default:
		return nil
	}
}
