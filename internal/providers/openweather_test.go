package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telegeo/gateway/internal/common"
)

func hourEntry(t *testing.T, dt int64, aqi int) json.RawMessage {
	t.Helper()
	return json.RawMessage(fmt.Sprintf(`{"dt":%d,"main":{"aqi":%d}}`, dt, aqi))
}

func TestCurrentAirPollutionReturnsFirstReading(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.URL.Query().Get("appid"))
		assert.Equal(t, "50.45", r.URL.Query().Get("lat"))
		w.Write([]byte(`{"list":[{"dt":1,"main":{"aqi":2}},{"dt":2,"main":{"aqi":3}}]}`))
	}))
	defer server.Close()

	o := NewOpenWeather(newTestClient(), server.URL, server.URL, "key")
	reading, err := o.CurrentAirPollution(context.Background(), 50.45, 30.52)
	require.NoError(t, err)
	assert.JSONEq(t, `{"dt":1,"main":{"aqi":2}}`, string(reading))
}

func TestCurrentAirPollutionEmptyListIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"list":[]}`))
	}))
	defer server.Close()

	o := NewOpenWeather(newTestClient(), server.URL, server.URL, "key")
	_, err := o.CurrentAirPollution(context.Background(), 50.45, 30.52)
	assert.Error(t, err)
}

func TestAirPollutionForecastFiltersByDay(t *testing.T) {
	day := time.Date(2024, time.March, 7, 0, 0, 0, 0, time.Local)
	inDay1 := day.Add(3 * time.Hour).Unix()
	inDay2 := day.Add(20 * time.Hour).Unix()
	nextDay := day.Add(30 * time.Hour).Unix()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		payload := fmt.Sprintf(`{"list":[{"dt":%d,"main":{"aqi":1}},{"dt":%d,"main":{"aqi":2}},{"dt":%d,"main":{"aqi":3}}]}`,
			inDay1, inDay2, nextDay)
		w.Write([]byte(payload))
	}))
	defer server.Close()

	o := NewOpenWeather(newTestClient(), server.URL, server.URL, "key")
	hours, err := o.AirPollutionForecast(context.Background(), 50.45, 30.52, common.DayKey(day))
	require.NoError(t, err)
	require.Len(t, hours, 2)
	assert.JSONEq(t, fmt.Sprintf(`{"dt":%d,"main":{"aqi":1}}`, inDay1), string(hours[0]))
	assert.JSONEq(t, fmt.Sprintf(`{"dt":%d,"main":{"aqi":2}}`, inDay2), string(hours[1]))
}

func TestAirPollutionForecastNoMatchesIsEmptyNotError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"list":[{"dt":0,"main":{"aqi":1}}]}`))
	}))
	defer server.Close()

	o := NewOpenWeather(newTestClient(), server.URL, server.URL, "key")
	hours, err := o.AirPollutionForecast(context.Background(), 50.45, 30.52, "2199-1-1")
	require.NoError(t, err)
	assert.Empty(t, hours)
	assert.NotNil(t, hours)
}

func TestFilterHoursByDayIdempotentAndOrderPreserving(t *testing.T) {
	day := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.Local)
	key := common.DayKey(day)

	hours := []json.RawMessage{
		hourEntry(t, day.Add(1*time.Hour).Unix(), 1),
		hourEntry(t, day.Add(2*time.Hour).Unix(), 2),
		hourEntry(t, day.Add(26*time.Hour).Unix(), 3),
	}

	once := FilterHoursByDay(hours, key)
	require.Len(t, once, 2)

	twice := FilterHoursByDay(once, key)
	assert.Equal(t, once, twice)
}

func TestPrecipitationTile(t *testing.T) {
	tile := []byte{0x89, 0x50, 0x4e, 0x47}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/precipitation_new/15/19000/11000.png", r.URL.Path)
		assert.Equal(t, "key", r.URL.Query().Get("appid"))
		w.Header().Set("Content-Type", "image/png")
		w.Write(tile)
	}))
	defer server.Close()

	o := NewOpenWeather(newTestClient(), server.URL, server.URL, "key")
	body, contentType, err := o.PrecipitationTile(context.Background(), 19000, 11000, 15)
	require.NoError(t, err)
	assert.Equal(t, tile, body)
	assert.Equal(t, "image/png", contentType)
}
