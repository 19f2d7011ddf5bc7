package httpapi

import (
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/telegeo/gateway/internal/common"
	"github.com/telegeo/gateway/internal/geo"
)

// Parse helpers run before any upstream or store call; a returned error is a
// *fiber.Error carrying status 400 and the message placed into the
// {"error": ...} body.

func parseCoordinates(c *fiber.Ctx) (lat, lon float64, err error) {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	if latStr == "" || lonStr == "" {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "lat and lon are required parameters")
	}

	lat, latErr := strconv.ParseFloat(latStr, 64)
	lon, lonErr := strconv.ParseFloat(lonStr, 64)
	if latErr != nil || lonErr != nil || !isFinite(lat) || !isFinite(lon) {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "lat and lon must be numbers")
	}
	return lat, lon, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func parseAddress(c *fiber.Ctx) (string, error) {
	address := strings.TrimSpace(c.Query("address"))
	if address == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "address is a required parameter")
	}
	return address, nil
}

func parseCategories(c *fiber.Ctx) (string, error) {
	categories := strings.TrimSpace(c.Query("categories"))
	if categories == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "categories is a required parameter")
	}
	return categories, nil
}

// parseDay validates the day query parameter and normalizes it to a local
// day bucket key (YYYY-M-D, no zero padding).
func parseDay(c *fiber.Ctx) (string, error) {
	ts, err := common.ParseDay(c.Query("day"))
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid day")
	}
	return common.DayKey(ts), nil
}

func parseUserID(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	if raw == "" {
		return 0, fiber.NewError(fiber.StatusBadRequest, "id is a required parameter")
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "id must be a number")
	}
	return id, nil
}

// parseTile resolves the tile addressed by the request: explicit x/y indices
// when present, otherwise lat/lon converted through the slippy-map formula.
// Zoom is optional and defaults per adapter; indices are not range checked.
func parseTile(c *fiber.Ctx, deps Deps, defaultZoom int) (x, y, zoom int, err error) {
	zoom = defaultZoom
	if zoomStr := c.Query("zoom"); zoomStr != "" {
		zoom, err = strconv.Atoi(zoomStr)
		if err != nil {
			return 0, 0, 0, fiber.NewError(fiber.StatusBadRequest, "zoom must be a number")
		}
	}

	xStr := c.Query("x")
	yStr := c.Query("y")
	if xStr != "" || yStr != "" {
		if xStr == "" || yStr == "" {
			return 0, 0, 0, fiber.NewError(fiber.StatusBadRequest, "x and y are required parameters")
		}
		var xErr, yErr error
		x, xErr = strconv.Atoi(xStr)
		y, yErr = strconv.Atoi(yStr)
		if xErr != nil || yErr != nil {
			return 0, 0, 0, fiber.NewError(fiber.StatusBadRequest, "x and y must be numbers")
		}
		return x, y, zoom, nil
	}

	lat, lon, err := parseCoordinates(c)
	if err != nil {
		return 0, 0, 0, err
	}

	x, y = geo.TileForCoordinate(lat, lon, zoom)
	deps.Log.Debug("tile resolved from coordinates",
		"path", c.Path(), "zoom", zoom, "lat", lat, "lon", lon, "x", x, "y", y)
	return x, y, zoom, nil
}
