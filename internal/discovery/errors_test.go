package discovery

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrorType_String(t *testing.T) {
	assert.Equal(t, "Unparseable Reply", ErrTypeUnparseableReply.String())
	assert.Equal(t, "No Device Found", ErrTypeNoDeviceFound.String())
	assert.Equal(t, "Discovery Error", ErrTypeDiscovery.String())
	assert.Equal(t, "ErrorType(42)", ErrorType(42).String())
}

func TestError_Error(t *testing.T) {
	err := newDiscoveryError("receive", errors.New("boom"))
	assert.Equal(t, "Discovery Error: receive: socket failure (caused by: boom)", err.Error())

	err = newNoDeviceFoundError("ABC123", time.Second)
	assert.Equal(t, `No Device Found: no reply matching "ABC123" within 1s`, err.Error())

	err = newNoDeviceFoundError("", 500*time.Millisecond)
	assert.Equal(t, "No Device Found: no reply within 500ms", err.Error())

	err = NewError(ErrTypeDiscovery, "resolve", "resolver returned no location")
	assert.Equal(t, "Discovery Error: resolve: resolver returned no location", err.Error())
	assert.True(t, IsDiscoveryError(err))
	assert.ErrorIs(t, err, ErrDiscovery)
}

func TestError_Predicates(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		wantUnparseable bool
		wantNoDevice    bool
		wantDiscovery   bool
	}{
		{"unparseable", newUnparseableError("bad"), true, false, false},
		{"no device", newNoDeviceFoundError("", time.Second), false, true, false},
		{"discovery", newDiscoveryError("send query", errors.New("x")), false, false, true},
		{"wrapped", fmt.Errorf("refresh: %w", newNoDeviceFoundError("", time.Second)), false, true, false},
		{"plain", errors.New("plain"), false, false, false},
		{"nil", nil, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantUnparseable, IsUnparseableReply(tt.err))
			assert.Equal(t, tt.wantNoDevice, IsNoDeviceFound(tt.err))
			assert.Equal(t, tt.wantDiscovery, IsDiscoveryError(tt.err))
		})
	}
}

func TestError_IsSentinel(t *testing.T) {
	err := fmt.Errorf("locate: %w", newDiscoveryError("receive", context.Canceled))

	assert.ErrorIs(t, err, ErrDiscovery)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrNoDeviceFound)
	assert.NotErrorIs(t, err, ErrUnparseableReply)
}

func TestGetTroubleshootingTips(t *testing.T) {
	assert.NotEmpty(t, GetTroubleshootingTips(newNoDeviceFoundError("", time.Second)))
	assert.NotEmpty(t, GetTroubleshootingTips(newDiscoveryError("open socket", errors.New("x"))))
	assert.Nil(t, GetTroubleshootingTips(errors.New("other")))
}
