package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"bishroute/internal/domain"
)

type Config struct {
	LogLevel        slog.Level
	HTTPAddr        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	OSRMMirrors     []string
	OSRMAttempts    int
	ProviderTimeout time.Duration
	GraphHopperURL  string
	GraphHopperKey  string

	OverpassURL  string
	FetchTimeout time.Duration
	StreetTTL    time.Duration
	Region       domain.BoundingBox

	TrafficSeed            int64
	TrafficRefreshInterval time.Duration

	NodeMergeRadiusM    float64
	SnapRadiusM         float64
	TrafficMatchRadiusM float64
	TrafficSampleM      float64
	MaxAlternatives     int
	EnhanceWorkers      int

	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimitPerWindow int
	RateLimitWindow    time.Duration
	RateLimitWhitelist []string
}

func Load() (*Config, error) {
	region, err := getBBoxEnv("REGION_BBOX", domain.BoundingBox{
		MinLat: 42.80, MinLng: 74.50, MaxLat: 42.92, MaxLng: 74.70,
	})
	if err != nil {
		return nil, err
	}

	mirrors := getCSVEnv("OSRM_MIRRORS")
	if len(mirrors) == 0 {
		mirrors = []string{
			"https://router.project-osrm.org/route/v1/driving",
			"https://routing.openstreetmap.de/routed-car/route/v1/driving",
		}
	}

	return &Config{
		LogLevel:        getLogLevelEnv("LOG_LEVEL", slog.LevelInfo),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		ReadTimeout:     getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getDurationEnv("WRITE_TIMEOUT", 90*time.Second),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),

		OSRMMirrors:     mirrors,
		OSRMAttempts:    getIntEnv("OSRM_ATTEMPTS", 2),
		ProviderTimeout: getDurationEnv("PROVIDER_TIMEOUT", 30*time.Second),
		GraphHopperURL:  getEnv("GRAPHHOPPER_URL", "https://graphhopper.com/api/1/route"),
		GraphHopperKey:  getEnv("GRAPHHOPPER_KEY", ""),

		OverpassURL:  getEnv("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
		FetchTimeout: getDurationEnv("FETCH_TIMEOUT", 45*time.Second),
		StreetTTL:    getDurationEnv("STREET_TTL", 24*time.Hour),
		Region:       region,

		TrafficSeed:            getInt64Env("TRAFFIC_SEED", 1),
		TrafficRefreshInterval: getDurationEnv("TRAFFIC_REFRESH_INTERVAL", time.Minute),

		NodeMergeRadiusM:    getFloatEnv("NODE_MERGE_RADIUS_M", 10),
		SnapRadiusM:         getFloatEnv("SNAP_RADIUS_M", 300),
		TrafficMatchRadiusM: getFloatEnv("TRAFFIC_MATCH_RADIUS_M", 500),
		TrafficSampleM:      getFloatEnv("TRAFFIC_SAMPLE_INTERVAL_M", 500),
		MaxAlternatives:     getIntEnv("MAX_ALTERNATIVES", 5),
		EnhanceWorkers:      getIntEnv("ENHANCE_WORKERS", 4),

		RedisEnabled:  getBoolEnv("REDIS_ENABLED", false),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		RateLimitPerWindow: getIntEnv("RATE_LIMIT_PER_WINDOW", 120),
		RateLimitWindow:    getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
		RateLimitWhitelist: getCSVEnv("RATE_LIMIT_WHITELIST"),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getInt64Env(key string, defaultVal int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func getFloatEnv(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func getLogLevelEnv(key string, defaultVal slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}

	switch strings.ToLower(v) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return defaultVal
	}
}

func getCSVEnv(key string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}

	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			result = append(result, t)
		}
	}
	return result
}

// getBBoxEnv parses "minLat,minLng,maxLat,maxLng"
func getBBoxEnv(key string, defaultVal domain.BoundingBox) (domain.BoundingBox, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal, nil
	}

	parts := strings.Split(v, ",")
	if len(parts) != 4 {
		return domain.BoundingBox{}, fmt.Errorf("%s: expected minLat,minLng,maxLat,maxLng", key)
	}

	vals := make([]float64, 4)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return domain.BoundingBox{}, fmt.Errorf("%s: %w", key, err)
		}
		vals[i] = f
	}

	return domain.BoundingBox{MinLat: vals[0], MinLng: vals[1], MaxLat: vals[2], MaxLng: vals[3]}, nil
}
