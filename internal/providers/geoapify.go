package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

const (
	// MapStyle is the Geoapify base-layer style served by the map route.
	MapStyle = "osm-bright"
	// MapZoom is the default zoom for the base map layer.
	MapZoom = 12

	placesRadiusMeters = 5000
	placesLimit        = 5
)

// Geoapify adapts the Geoapify map tile and places APIs.
type Geoapify struct {
	client *Client
	tiles  Config
	places Config
}

func NewGeoapify(client *Client, tileBaseURL, placesBaseURL, apiKey string) *Geoapify {
	return &Geoapify{
		client: client,
		tiles: Config{
			Name:     "geoapify-tiles",
			BaseURL:  tileBaseURL,
			KeyParam: "apiKey",
			APIKey:   apiKey,
		},
		places: Config{
			Name:     "geoapify-places",
			BaseURL:  placesBaseURL,
			KeyParam: "apiKey",
			APIKey:   apiKey,
		},
	}
}

// MapTile fetches one base-layer tile and returns its raw bytes together
// with the upstream Content-Type.
func (g *Geoapify) MapTile(ctx context.Context, x, y, zoom int) ([]byte, string, error) {
	path := fmt.Sprintf("/%s/%d/%d/%d.png", MapStyle, zoom, x, y)
	return g.client.GetBytes(ctx, g.tiles, path, nil)
}

// Places returns the provider's feature list for the given categories within
// a fixed radius around the query point, biased toward proximity.
func (g *Geoapify) Places(ctx context.Context, lat, lon float64, categories string) (json.RawMessage, error) {
	latStr := strconv.FormatFloat(lat, 'f', -1, 64)
	lonStr := strconv.FormatFloat(lon, 'f', -1, 64)
	params := url.Values{
		"categories": {categories},
		"filter":     {fmt.Sprintf("circle:%s,%s,%d", lonStr, latStr, placesRadiusMeters)},
		"bias":       {fmt.Sprintf("proximity:%s,%s", lonStr, latStr)},
		"limit":      {strconv.Itoa(placesLimit)},
	}

	var payload struct {
		Features json.RawMessage `json:"features"`
	}
	if err := g.client.GetJSON(ctx, g.places, "", params, &payload); err != nil {
		return nil, err
	}
	return payload.Features, nil
}
