package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/telegeo/gateway/internal/common"
)

// PrecipitationZoom is the default zoom for the precipitation overlay.
const PrecipitationZoom = 15

// OpenWeather adapts the OpenWeatherMap air pollution API and its
// precipitation tile layer. Both share one API key.
type OpenWeather struct {
	client    *Client
	pollution Config
	tiles     Config
}

func NewOpenWeather(client *Client, pollutionBaseURL, tileBaseURL, apiKey string) *OpenWeather {
	return &OpenWeather{
		client: client,
		pollution: Config{
			Name:     "openweathermap",
			BaseURL:  pollutionBaseURL,
			KeyParam: "appid",
			APIKey:   apiKey,
		},
		tiles: Config{
			Name:     "openweathermap-tiles",
			BaseURL:  tileBaseURL,
			KeyParam: "appid",
			APIKey:   apiKey,
		},
	}
}

func coordinateParams(lat, lon float64) url.Values {
	return url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(lon, 'f', -1, 64)},
	}
}

// CurrentAirPollution returns the most recent reading, i.e. the first
// element of the provider's pollution list.
func (o *OpenWeather) CurrentAirPollution(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	var payload struct {
		List []json.RawMessage `json:"list"`
	}
	if err := o.client.GetJSON(ctx, o.pollution, "", coordinateParams(lat, lon), &payload); err != nil {
		return nil, err
	}
	if len(payload.List) == 0 {
		return nil, fmt.Errorf("openweathermap returned an empty pollution list")
	}
	return payload.List[0], nil
}

// AirPollutionForecast returns the hourly forecast entries falling on the
// requested local calendar day. The day argument must already be a
// normalized day bucket key. An empty slice, never an error, is returned
// when no hours match.
func (o *OpenWeather) AirPollutionForecast(ctx context.Context, lat, lon float64, day string) ([]json.RawMessage, error) {
	var payload struct {
		List []json.RawMessage `json:"list"`
	}
	if err := o.client.GetJSON(ctx, o.pollution, "/forecast", coordinateParams(lat, lon), &payload); err != nil {
		return nil, err
	}
	return FilterHoursByDay(payload.List, day), nil
}

// FilterHoursByDay keeps the hourly entries whose `dt` timestamp falls on
// the given local day bucket, preserving order. Entries without a parseable
// timestamp are dropped.
func FilterHoursByDay(hours []json.RawMessage, day string) []json.RawMessage {
	matched := make([]json.RawMessage, 0, len(hours))
	for _, hour := range hours {
		var probe struct {
			Dt int64 `json:"dt"`
		}
		if err := json.Unmarshal(hour, &probe); err != nil {
			continue
		}
		if common.DayKey(time.Unix(probe.Dt, 0)) == day {
			matched = append(matched, hour)
		}
	}
	return matched
}

// PrecipitationTile fetches one precipitation overlay tile and returns its
// raw bytes together with the upstream Content-Type.
func (o *OpenWeather) PrecipitationTile(ctx context.Context, x, y, zoom int) ([]byte, string, error) {
	path := fmt.Sprintf("/precipitation_new/%d/%d/%d.png", zoom, x, y)
	return o.client.GetBytes(ctx, o.tiles, path, nil)
}
