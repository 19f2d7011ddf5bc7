package httpapi

import (
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/telegeo/gateway/internal/providers"
	"github.com/telegeo/gateway/internal/store"
)

var validate = validator.New()

// Deps bundles everything the HTTP handlers need. Users is nil when the
// database could not be opened at startup; the db routes then answer 500.
type Deps struct {
	Log       *slog.Logger
	Geocoder  *providers.Nominatim
	Pollution *providers.OpenWeather
	Weather   *providers.WeatherAPI
	Maps      *providers.Geoapify
	Users     *store.UserStore
}

// New builds the Fiber application: global middleware, the centralized
// error handler producing {"error": <message>} bodies, and all routes.
func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "geodata-gateway",
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New())
	app.Use(recover.New())

	RegisterRoutes(app, deps)

	return app
}

// RegisterRoutes wires the adapter and db handler trees into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	v1 := app.Group("/v1")

	geocoding := v1.Group("/geocoding")
	geocoding.Get("/search", searchHandler(deps))
	geocoding.Get("/reverse", reverseHandler(deps))

	pollution := v1.Group("/air_pollution")
	pollution.Get("/", currentPollutionHandler(deps))
	pollution.Get("/forecast", pollutionForecastHandler(deps))

	weather := v1.Group("/weather")
	weather.Get("/current", currentWeatherHandler(deps))
	weather.Get("/forecast", weatherForecastHandler(deps))

	maps := v1.Group("/map")
	maps.Get("/", mapTileHandler(deps))
	maps.Get("/precipitations", precipitationTileHandler(deps))

	v1.Get("/places", placesHandler(deps))

	users := app.Group("/db/v1/user")
	users.Get("/:id", getUserHandler(deps))
	users.Post("/:id", createUserHandler(deps))
	users.Patch("/:id", updateUserHandler(deps))
}

func searchHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		address, err := parseAddress(c)
		if err != nil {
			return err
		}

		result, err := deps.Geocoder.Search(c.Context(), address)
		if err != nil {
			if errors.Is(err, providers.ErrNoResults) {
				return fiber.NewError(fiber.StatusNotFound, "address not found")
			}
			return upstreamError(c, deps, err)
		}
		return c.JSON(result)
	}
}

func reverseHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, lon, err := parseCoordinates(c)
		if err != nil {
			return err
		}

		result, err := deps.Geocoder.Reverse(c.Context(), lat, lon)
		if err != nil {
			if errors.Is(err, providers.ErrRejected) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return upstreamError(c, deps, err)
		}
		return c.JSON(result)
	}
}

func currentPollutionHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, lon, err := parseCoordinates(c)
		if err != nil {
			return err
		}

		reading, err := deps.Pollution.CurrentAirPollution(c.Context(), lat, lon)
		if err != nil {
			return upstreamError(c, deps, err)
		}
		return c.JSON(reading)
	}
}

func pollutionForecastHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, lon, err := parseCoordinates(c)
		if err != nil {
			return err
		}
		day, err := parseDay(c)
		if err != nil {
			return err
		}

		hours, err := deps.Pollution.AirPollutionForecast(c.Context(), lat, lon, day)
		if err != nil {
			return upstreamError(c, deps, err)
		}
		return c.JSON(hours)
	}
}

func currentWeatherHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, lon, err := parseCoordinates(c)
		if err != nil {
			return err
		}

		payload, err := deps.Weather.Current(c.Context(), lat, lon)
		if err != nil {
			return upstreamError(c, deps, err)
		}
		return c.JSON(payload)
	}
}

func weatherForecastHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, lon, err := parseCoordinates(c)
		if err != nil {
			return err
		}
		day, err := parseDay(c)
		if err != nil {
			return err
		}

		forecast, err := deps.Weather.ForecastDay(c.Context(), lat, lon, day)
		if err != nil {
			if errors.Is(err, providers.ErrDayOutOfRange) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return upstreamError(c, deps, err)
		}
		return c.JSON(forecast)
	}
}

func mapTileHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		x, y, zoom, err := parseTile(c, deps, providers.MapZoom)
		if err != nil {
			return err
		}

		tile, contentType, err := deps.Maps.MapTile(c.Context(), x, y, zoom)
		if err != nil {
			return upstreamError(c, deps, err)
		}
		return sendTile(c, tile, contentType)
	}
}

func precipitationTileHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		x, y, zoom, err := parseTile(c, deps, providers.PrecipitationZoom)
		if err != nil {
			return err
		}

		tile, contentType, err := deps.Pollution.PrecipitationTile(c.Context(), x, y, zoom)
		if err != nil {
			return upstreamError(c, deps, err)
		}
		return sendTile(c, tile, contentType)
	}
}

func placesHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, lon, err := parseCoordinates(c)
		if err != nil {
			return err
		}
		categories, err := parseCategories(c)
		if err != nil {
			return err
		}

		features, err := deps.Maps.Places(c.Context(), lat, lon, categories)
		if err != nil {
			return upstreamError(c, deps, err)
		}
		return c.JSON(features)
	}
}

func getUserHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseUserID(c)
		if err != nil {
			return err
		}
		if deps.Users == nil {
			return fiber.NewError(fiber.StatusInternalServerError, "db not connected")
		}

		user, err := deps.Users.GetUser(c.Context(), id)
		if err != nil {
			return storeError(c, deps, err)
		}
		return c.JSON(user)
	}
}

func createUserHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseUserID(c)
		if err != nil {
			return err
		}
		if deps.Users == nil {
			return fiber.NewError(fiber.StatusInternalServerError, "db not connected")
		}

		user, err := deps.Users.CreateUser(c.Context(), id)
		if err != nil {
			return storeError(c, deps, err)
		}
		return c.JSON(user)
	}
}

// coordinatesBody is the PATCH request body; both fields are required.
type coordinatesBody struct {
	Lat *float64 `json:"lat" validate:"required"`
	Lon *float64 `json:"lon" validate:"required"`
}

func updateUserHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseUserID(c)
		if err != nil {
			return err
		}

		var body coordinatesBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "lat and lon must be numbers")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "lat and lon are required parameters")
		}

		if deps.Users == nil {
			return fiber.NewError(fiber.StatusInternalServerError, "db not connected")
		}

		user, err := deps.Users.UpdateCoordinates(c.Context(), id, *body.Lat, *body.Lon)
		if err != nil {
			return storeError(c, deps, err)
		}
		return c.JSON(user)
	}
}

// upstreamError logs a failed provider call and maps it to a 500 response.
func upstreamError(c *fiber.Ctx, deps Deps, err error) error {
	deps.Log.ErrorContext(c.Context(), "upstream call failed", "path", c.Path(), "error", err)
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}

// storeError maps store failures to their canonical status codes.
func storeError(c *fiber.Ctx, deps Deps, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "user not found")
	case errors.Is(err, store.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, "user already exists")
	default:
		deps.Log.ErrorContext(c.Context(), "store operation failed", "path", c.Path(), "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

func sendTile(c *fiber.Ctx, tile []byte, contentType string) error {
	if contentType != "" {
		c.Set(fiber.HeaderContentType, contentType)
	}
	return c.Send(tile)
}
