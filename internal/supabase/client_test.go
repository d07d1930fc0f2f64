package supabase

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sleepywoodpecker/rp-goes-audio/internal/sensor"
)

const (
	testURL = "https://example.supabase.co/rest/v1/weather_data"
	testKey = "test-service-key"
)

func f32(v float32) *float32 {
	return &v
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client := NewClient(testURL, testKey, zap.NewNop())
	httpmock.ActivateNonDefault(client.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return client
}

func TestClient_PushReading(t *testing.T) {
	client := newTestClient(t)

	var captured *http.Request
	var capturedBody string
	httpmock.RegisterResponder(http.MethodPost, testURL,
		func(req *http.Request) (*http.Response, error) {
			captured = req
			body, err := io.ReadAll(req.Body)
			require.NoError(t, err)
			capturedBody = string(body)
			return httpmock.NewStringResponse(http.StatusCreated, ""), nil
		})

	err := client.PushReading(context.Background(), sensor.Reading{
		Temperature: f32(22.5),
		Humidity:    f32(48),
	})

	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.Equal(t, "application/x-www-form-urlencoded", captured.Header.Get("Content-Type"))
	assert.Equal(t, testKey, captured.Header.Get("apikey"))
	assert.Equal(t, testKey, captured.Header.Get("Authorization"))
	assert.Equal(t, "humidity=48&temperature=22.5", capturedBody)
}

func TestClient_PushReading_ServerError(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodPost, testURL,
		httpmock.NewStringResponder(http.StatusUnauthorized, `{"message":"invalid api key"}`))

	err := client.PushReading(context.Background(), sensor.Reading{
		Temperature: f32(22.5),
		Humidity:    f32(48),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestClient_PushReading_RejectsIncompleteReadings(t *testing.T) {
	client := newTestClient(t)

	tests := []struct {
		name    string
		reading sensor.Reading
	}{
		{"missing humidity", sensor.Reading{Temperature: f32(22.5)}},
		{"missing temperature", sensor.Reading{Humidity: f32(48)}},
		{"empty", sensor.Reading{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.PushReading(context.Background(), tt.reading)

			require.Error(t, err)
			assert.Contains(t, err.Error(), "incomplete reading")
		})
	}

	assert.Zero(t, httpmock.GetTotalCallCount(), "incomplete readings must never go on the wire")
}
