package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds the gateway configuration: where to listen, where the
// user database lives, and the upstream provider credentials and base URLs.
type AppConfig struct {
	Env         string
	Port        string
	MetricsPort int

	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration

	// DBPath is the SQLite file holding the users table.
	DBPath string

	OpenWeatherAPIKey string
	WeatherAPIKey     string
	GeoapifyAPIKey    string

	NominatimBaseURL    string
	AirPollutionBaseURL string
	OWMTileBaseURL      string
	WeatherAPIBaseURL   string
	GeoapifyTileBaseURL string
	PlacesBaseURL       string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Env = getenvDefault("GATEWAY_ENV", "production")
	cfg.Port = getenvDefault("PORT", "8080")
	cfg.MetricsPort = getenvInt("METRICS_PORT", 9090)
	cfg.DBPath = getenvDefault("DB_PATH", "./db/db.sqlite3")

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.GeoapifyAPIKey = os.Getenv("GEOAPIFY_API_KEY")

	cfg.NominatimBaseURL = getenvDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org")
	cfg.AirPollutionBaseURL = getenvDefault("AIR_POLLUTION_BASE_URL", "https://api.openweathermap.org/data/2.5/air_pollution")
	cfg.OWMTileBaseURL = getenvDefault("OWM_TILE_BASE_URL", "https://tile.openweathermap.org/map")
	cfg.WeatherAPIBaseURL = getenvDefault("WEATHERAPI_BASE_URL", "https://api.weatherapi.com/v1/forecast.json")
	cfg.GeoapifyTileBaseURL = getenvDefault("GEOAPIFY_TILE_BASE_URL", "https://maps.geoapify.com/v1/tile")
	cfg.PlacesBaseURL = getenvDefault("PLACES_BASE_URL", "https://api.geoapify.com/v2/places")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
