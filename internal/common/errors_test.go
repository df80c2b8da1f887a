package common

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err         error
		name        string
		wantCode    string
		wantDetails string
	}{
		{
			name:        "upstream error",
			err:         &UpstreamError{Endpoint: "https://api.example.com/client", StatusCode: 502},
			wantCode:    CodeAPI,
			wantDetails: "https://api.example.com/client returned 502",
		},
		{
			name:        "wrapped upstream error",
			err:         fmt.Errorf("fetch profile: %w", &UpstreamError{Endpoint: "x", StatusCode: 0, Err: errors.New("dial")}),
			wantCode:    CodeAPI,
			wantDetails: "x returned 0",
		},
		{
			name:        "validation error",
			err:         NewValidationError("allergies", errors.New("expected list")),
			wantCode:    CodeValidation,
			wantDetails: "Field: allergies",
		},
		{
			name:        "anything else",
			err:         errors.New("boom"),
			wantCode:    CodeInternal,
			wantDetails: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, details := Classify(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantDetails, details)
		})
	}
}

func TestUpstreamError_Message(t *testing.T) {
	netErr := &UpstreamError{Endpoint: "https://recipes", Err: errors.New("timeout")}
	assert.Contains(t, netErr.Error(), "network request")
	assert.ErrorContains(t, netErr, "timeout")

	statusErr := &UpstreamError{Endpoint: "https://recipes", StatusCode: 404}
	assert.Equal(t, "request to https://recipes failed with status 404", statusErr.Error())
}

func TestUserError_Unwrap(t *testing.T) {
	err := NewUserError("could not audit plan", ErrNoSlots)
	assert.ErrorIs(t, err, ErrNoSlots)
	assert.Equal(t, "could not audit plan: no meal slots to audit", err.Error())
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	_, err = ParseLevel("loud")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
