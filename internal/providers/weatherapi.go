package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

// ErrDayOutOfRange is returned when the upstream forecast window does not
// cover the requested day.
var ErrDayOutOfRange = errors.New("forecast day must be within 14 days")

// WeatherAPI adapts the weatherapi.com forecast endpoint.
type WeatherAPI struct {
	client *Client
	cfg    Config
}

func NewWeatherAPI(client *Client, baseURL, apiKey string) *WeatherAPI {
	return &WeatherAPI{
		client: client,
		cfg: Config{
			Name:     "weatherapi",
			BaseURL:  baseURL,
			KeyParam: "key",
			APIKey:   apiKey,
			Defaults: url.Values{
				"alerts": {"yes"},
			},
		},
	}
}

func (w *WeatherAPI) query(lat, lon float64) url.Values {
	return url.Values{
		"q": {fmt.Sprintf("%v,%v", lat, lon)},
	}
}

// Current returns the full current-conditions payload, air quality index
// included.
func (w *WeatherAPI) Current(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	params := w.query(lat, lon)
	params.Set("aqi", "yes")

	var payload json.RawMessage
	if err := w.client.GetJSON(ctx, w.cfg, "", params, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// ForecastDay returns a single-key mapping from the resolved forecast date
// to that day's summary, plus the active alerts. The day argument must be a
// normalized day bucket key; ErrDayOutOfRange is returned when the upstream
// forecast window has no entry for it.
func (w *WeatherAPI) ForecastDay(ctx context.Context, lat, lon float64, day string) (map[string]json.RawMessage, error) {
	params := w.query(lat, lon)
	params.Set("dt", day)

	var payload struct {
		Forecast struct {
			Forecastday []struct {
				Date string          `json:"date"`
				Day  json.RawMessage `json:"day"`
			} `json:"forecastday"`
		} `json:"forecast"`
		Alerts json.RawMessage `json:"alerts"`
	}
	if err := w.client.GetJSON(ctx, w.cfg, "", params, &payload); err != nil {
		return nil, err
	}

	if len(payload.Forecast.Forecastday) == 0 {
		return nil, ErrDayOutOfRange
	}

	first := payload.Forecast.Forecastday[0]
	return map[string]json.RawMessage{
		first.Date: first.Day,
		"alerts":   payload.Alerts,
	}, nil
}
