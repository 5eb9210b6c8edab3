package ecp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"
)

func TestErrorType_String(t *testing.T) {
	tests := []struct {
		et   ErrorType
		want string
	}{
		{ErrTypeNetwork, "Network Error"},
		{ErrTypeTimeout, "Timeout"},
		{ErrTypeConnectionRefused, "Connection Refused"},
		{ErrTypeDNS, "DNS Error"},
		{ErrTypeHTTP, "HTTP Error"},
		{ErrTypeValidation, "Validation Error"},
		{ErrorType(99), "ErrorType(99)"},
	}

	for _, tt := range tests {
		if got := tt.et.String(); got != tt.want {
			t.Errorf("ErrorType(%d).String() = %q, want %q", tt.et, got, tt.want)
		}
	}
}

func TestControlError_Error(t *testing.T) {
	err := &ControlError{Type: ErrTypeHTTP, Message: "unexpected status code: 500"}
	if got := err.Error(); got != "HTTP Error: unexpected status code: 500" {
		t.Errorf("Error() = %q", got)
	}

	cause := errors.New("boom")
	err = &ControlError{Type: ErrTypeNetwork, Message: "POST request failed", Err: cause}
	if got := err.Error(); got != "Network Error: POST request failed (caused by: boom)" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
}

func TestClassifyNetworkError(t *testing.T) {
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}

	tests := []struct {
		name          string
		err           error
		wantType      ErrorType
		wantRetryable bool
	}{
		{"timeout", os.ErrDeadlineExceeded, ErrTypeTimeout, true},
		{"context deadline", context.DeadlineExceeded, ErrTypeTimeout, true},
		{"cancelled", context.Canceled, ErrTypeNetwork, false},
		{"dns", &net.DNSError{Name: "roku.lan", Err: "no such host"}, ErrTypeDNS, false},
		{"refused", refused, ErrTypeConnectionRefused, true},
		{"wrapped refused", fmt.Errorf("post: %w", refused), ErrTypeConnectionRefused, true},
		{"other", errors.New("reset"), ErrTypeNetwork, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyNetworkError(tt.err)
			if got.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", got.Type, tt.wantType)
			}
			if got.Retryable != tt.wantRetryable {
				t.Errorf("Retryable = %v, want %v", got.Retryable, tt.wantRetryable)
			}
		})
	}

	if ClassifyNetworkError(nil) != nil {
		t.Error("ClassifyNetworkError(nil) should be nil")
	}
}

func TestNewHTTPError_Retryable(t *testing.T) {
	if NewHTTPError(503, "").Retryable != true {
		t.Error("5xx should be retryable")
	}
	if NewHTTPError(404, "").Retryable != false {
		t.Error("4xx should not be retryable")
	}
}

func TestIsControlError(t *testing.T) {
	if !IsControlError(fmt.Errorf("search: %w", NewValidationError("x"))) {
		t.Error("wrapped ControlError not detected")
	}
	if IsControlError(errors.New("plain")) {
		t.Error("plain error detected as ControlError")
	}
}

func TestGetTroubleshootingTips(t *testing.T) {
	if tips := GetTroubleshootingTips(NewNetworkError("x", errors.New("reset"))); len(tips) == 0 {
		t.Error("expected tips for network error")
	}
	if tips := GetTroubleshootingTips(errors.New("plain")); tips != nil {
		t.Errorf("expected no tips, got %v", tips)
	}
}
