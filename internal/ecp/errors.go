package ecp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"

	"github.com/muurk/rokuctl/internal/urls"
)

// ErrorType represents the category of a failed control call
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates the device did not answer in time
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates nothing listens on the ECP port
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates the location host could not be resolved
	ErrTypeDNS
	// ErrTypeHTTP indicates the device answered with a non-2xx status
	ErrTypeHTTP
	// ErrTypeValidation indicates the request was invalid before sending
	ErrTypeValidation
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeValidation:
		return "Validation Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// ControlError is returned when a control call fails
type ControlError struct {
	Type       ErrorType // Category of error
	Message    string    // Human-readable error message
	StatusCode int       // HTTP status code (ErrTypeHTTP only)
	Err        error     // Underlying error (if any)
	Retryable  bool      // Whether sending again may help
}

// Error implements the error interface
func (e *ControlError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *ControlError) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError maps a transport error onto a ControlError
func ClassifyNetworkError(err error) *ControlError {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return &ControlError{
			Type:    ErrTypeNetwork,
			Message: "Request cancelled",
			Err:     err,
		}
	}

	if os.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return &ControlError{
			Type:      ErrTypeTimeout,
			Message:   "Request timed out",
			Err:       err,
			Retryable: true,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &ControlError{
			Type:    ErrTypeDNS,
			Message: fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:     err,
		}
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return &ControlError{
			Type:      ErrTypeConnectionRefused,
			Message:   "Device refused connection",
			Err:       err,
			Retryable: true,
		}
	}

	return &ControlError{
		Type:      ErrTypeNetwork,
		Message:   "Network error occurred",
		Err:       err,
		Retryable: true,
	}
}

// NewNetworkError creates a network-level error with automatic classification
func NewNetworkError(message string, err error) *ControlError {
	classified := ClassifyNetworkError(err)
	if classified == nil {
		return &ControlError{Type: ErrTypeNetwork, Message: message, Retryable: true}
	}
	classified.Message = message
	return classified
}

// NewHTTPError creates an HTTP-level error
func NewHTTPError(statusCode int, message string) *ControlError {
	return &ControlError{
		Type:       ErrTypeHTTP,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  statusCode >= 500,
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string) *ControlError {
	return &ControlError{
		Type:    ErrTypeValidation,
		Message: message,
	}
}

// IsControlError checks if err came from a control call
func IsControlError(err error) bool {
	var ctrlErr *ControlError
	return errors.As(err, &ctrlErr)
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var ctrlErr *ControlError
	if errors.As(err, &ctrlErr) {
		return ctrlErr.Retryable
	}
	return false
}

// GetTroubleshootingTips returns user-facing advice for a failed control call
func GetTroubleshootingTips(err error) []string {
	var ctrlErr *ControlError
	if !errors.As(err, &ctrlErr) {
		return nil
	}

	switch ctrlErr.Type {
	case ErrTypeTimeout:
		return []string{
			"Check that the Roku is powered on and awake",
			"Try a longer --control-timeout",
		}
	case ErrTypeConnectionRefused:
		return []string{
			"Enable Settings > System > Advanced system settings > Control by mobile apps",
			"Check that the location points at port 8060",
		}
	case ErrTypeDNS:
		return []string{
			"Use an IP address in the static address instead of a hostname",
		}
	case ErrTypeHTTP:
		if ctrlErr.StatusCode == 403 {
			return []string{
				"The device rejected the command; set Control by mobile apps to Permissive",
				"See " + urls.ECPReference,
			}
		}
		return []string{
			"The device rejected the request; check the keyword and provider id",
			"See " + urls.ECPReference,
		}
	case ErrTypeValidation:
		return nil
	default:
		return []string{
			"Check that this machine is on the same network as the Roku",
			"Run 'rokuctl locate' to refresh the device location",
		}
	}
}
