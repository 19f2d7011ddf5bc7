package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeatherCurrentReturnsFullPayload(t *testing.T) {
	payload := `{"current":{"temp_c":21.5},"alerts":{"alert":[]},"location":{"name":"Kyiv"}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.Equal(t, "50.45,30.52", r.URL.Query().Get("q"))
		assert.Equal(t, "yes", r.URL.Query().Get("alerts"))
		assert.Equal(t, "yes", r.URL.Query().Get("aqi"))
		w.Write([]byte(payload))
	}))
	defer server.Close()

	w := NewWeatherAPI(newTestClient(), server.URL, "secret")
	result, err := w.Current(context.Background(), 50.45, 30.52)
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(result))
}

func TestForecastDayShapesSingleDayResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2024-3-7", r.URL.Query().Get("dt"))
		w.Write([]byte(`{
			"forecast":{"forecastday":[{"date":"2024-03-07","day":{"maxtemp_c":9.1}}]},
			"alerts":{"alert":[{"headline":"storm"}]}
		}`))
	}))
	defer server.Close()

	w := NewWeatherAPI(newTestClient(), server.URL, "secret")
	result, err := w.ForecastDay(context.Background(), 50.45, 30.52, "2024-3-7")
	require.NoError(t, err)

	require.Contains(t, result, "2024-03-07")
	assert.JSONEq(t, `{"maxtemp_c":9.1}`, string(result["2024-03-07"]))
	require.Contains(t, result, "alerts")
	assert.JSONEq(t, `{"alert":[{"headline":"storm"}]}`, string(result["alerts"]))
}

func TestForecastDayOutOfRange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"forecast":{"forecastday":[]}}`))
	}))
	defer server.Close()

	w := NewWeatherAPI(newTestClient(), server.URL, "secret")
	_, err := w.ForecastDay(context.Background(), 50.45, 30.52, "2199-1-1")
	assert.ErrorIs(t, err, ErrDayOutOfRange)
}
