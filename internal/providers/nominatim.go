package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ErrNoResults is returned when a search yields an empty result list.
var ErrNoResults = errors.New("address not found")

// ErrRejected is returned when the provider answered 200 but signalled an
// error of its own inside the payload.
var ErrRejected = errors.New("rejected by provider")

// Nominatim adapts the OpenStreetMap Nominatim geocoding API.
type Nominatim struct {
	client *Client
	cfg    Config
}

func NewNominatim(client *Client, baseURL string) *Nominatim {
	header := http.Header{}
	// Nominatim usage policy requires an identifying User-Agent.
	header.Set("User-Agent", "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:107.0) Gecko/20100101 Firefox/109.0")

	return &Nominatim{
		client: client,
		cfg: Config{
			Name:    "nominatim",
			BaseURL: baseURL,
			Defaults: url.Values{
				"format":         {"jsonv2"},
				"addressdetails": {"1"},
				"namedetails":    {"1"},
			},
			Header: header,
		},
	}
}

// Search geocodes a free-text address and returns the provider's first match
// unmodified, or ErrNoResults when the result list is empty.
func (n *Nominatim) Search(ctx context.Context, address string) (json.RawMessage, error) {
	params := url.Values{"q": {address}}

	var results []json.RawMessage
	if err := n.client.GetJSON(ctx, n.cfg, "/search", params, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}
	return results[0], nil
}

// Reverse resolves coordinates to an address. The provider payload is passed
// through unmodified unless it carries an error field, in which case
// ErrRejected wraps the provider's message.
func (n *Nominatim) Reverse(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	params := url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(lon, 'f', -1, 64)},
	}

	var result json.RawMessage
	if err := n.client.GetJSON(ctx, n.cfg, "/reverse", params, &result); err != nil {
		return nil, err
	}

	var probe struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(result, &probe); err == nil && probe.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrRejected, probe.Error)
	}
	return result, nil
}
