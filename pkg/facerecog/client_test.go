package facerecog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, time.Second, 200*time.Millisecond, zaptest.NewLogger(t))
}

func TestEncode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/encode", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "aW1n", body["image_base64"])

		_, _ = w.Write([]byte(`{"success":true,"encoding":[0.1,0.2,0.3]}`))
	})

	result := client.Encode(context.Background(), "aW1n")
	assert.True(t, result.Success)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, result.Encoding)
}

func TestAuthenticate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/authenticate", r.URL.Path)

		var body struct {
			Image string          `json:"image_base64"`
			Known []KnownEncoding `json:"known_encodings"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Known, 1)
		assert.Equal(t, uint(7), body.Known[0].UserID)

		_, _ = w.Write([]byte(`{"success":true,"authenticated":true,"user_id":7,"confidence":0.91,"distance":0.09}`))
	})

	result := client.Authenticate(context.Background(), "aW1n", []KnownEncoding{{UserID: 7, Encoding: []float64{0.1}}})
	assert.True(t, result.Success)
	assert.True(t, result.Authenticated)
	require.NotNil(t, result.UserID)
	assert.Equal(t, uint(7), *result.UserID)
	assert.InDelta(t, 0.91, result.Confidence, 0.0001)
}

func TestFailuresDegradeToServiceError(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non 2xx",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"success":true}`))
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"success":`))
			},
		},
		{
			name: "slow response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(500 * time.Millisecond)
				_, _ = w.Write([]byte(`{"success":true,"authenticated":true,"user_id":1}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)

			auth := client.Authenticate(context.Background(), "aW1n", nil)
			assert.False(t, auth.Success)
			assert.False(t, auth.Authenticated)
			assert.Equal(t, ServiceError, auth.Error)
			assert.True(t, auth.Unavailable)

			enc := client.Encode(context.Background(), "aW1n")
			assert.False(t, enc.Success)
			assert.Equal(t, ServiceError, enc.Error)
			assert.True(t, enc.Unavailable)
		})
	}
}

func TestUnreachableService(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(url, 100*time.Millisecond, 100*time.Millisecond, zaptest.NewLogger(t))
	result := client.Authenticate(context.Background(), "aW1n", nil)
	assert.False(t, result.Success)
	assert.Equal(t, ServiceError, result.Error)
	assert.True(t, result.Unavailable)
}
