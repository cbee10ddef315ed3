package status

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromHTTPStatus(t *testing.T) {
	tests := []struct {
		code int
		want Status
	}{
		{200, Success},
		{400, ErrorBadRequest},
		{401, ErrorUnauthorized},
		{402, ErrorPaymentRequired},
		{403, ErrorForbidden},
		{404, ErrorNotFound},
		{429, ErrorRateLimit},
		{500, ErrorServer},
		{503, ErrorServer},
		{599, ErrorServer},
		{201, ErrorUnknown},
		{302, ErrorUnknown},
		{409, ErrorUnknown},
		{600, ErrorUnknown},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, FromHTTPStatus(tt.code))
		})
	}
}

func TestOf(t *testing.T) {
	assert.Equal(t, Success, Of(nil))
	assert.Equal(t, ErrorLocation, Of(New(ErrorLocation)))
	assert.Equal(t, ErrorRateLimit, Of(fmt.Errorf("track: %w", HTTP(ErrorRateLimit, nil))))
	assert.Equal(t, ErrorUnknown, Of(errors.New("boom")))
}

func TestErrorIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", HTTP(ErrorNotFound, map[string]interface{}{"meta": "x"}))

	assert.True(t, errors.Is(err, New(ErrorNotFound)))
	assert.False(t, errors.Is(err, New(ErrorServer)))
}

func TestNormalize(t *testing.T) {
	assert.Nil(t, Normalize(nil))

	cause := errors.New("boom")
	n := Normalize(cause)
	require.NotNil(t, n)
	assert.Equal(t, ErrorUnknown, n.Status)
	assert.True(t, errors.Is(n, cause))

	orig := HTTP(ErrorForbidden, map[string]interface{}{"meta": map[string]interface{}{"code": 403}})
	assert.Same(t, orig, Normalize(fmt.Errorf("ctx: %w", orig)))
}

func TestResponseOf(t *testing.T) {
	body := map[string]interface{}{"meta": map[string]interface{}{"code": float64(429)}}

	assert.Equal(t, body, ResponseOf(HTTP(ErrorRateLimit, body)))
	assert.Nil(t, ResponseOf(New(ErrorPublishableKey)))
	assert.Nil(t, ResponseOf(errors.New("other")))
}
