package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

type apiConfig struct {
	prefs            *PreferenceStore
	geolocator       Geolocator
	owmWeatherURL    string
	owmForecastURL   string
	owmKey           string
	httpClient       *http.Client
	refreshThreshold int
	searchDebounce   time.Duration
	search           *SearchDebouncer
	port             string
	devMode          bool
	logger           *slog.Logger
}

// getRequiredEnv retrieves an environment variable by key, and fatals if it's not set.
func getRequiredEnv(key string, logger *slog.Logger) string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		logger.Error("environment variable must be set", "key", key)
		os.Exit(1)
	}
	return val
}

// getEnv retrieves an environment variable by key, with a fallback value.
func getEnv(key, fallback string, logger *slog.Logger) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	logger.Info("environment variable not set, using fallback", "key", key, "fallback", fallback)
	return fallback
}

// getEnvAsInt retrieves an environment variable as an integer, with a fallback value.
func getEnvAsInt(key string, fallback int, logger *slog.Logger) int {
	valStr, ok := os.LookupEnv(key)
	if !ok {
		logger.Info("environment variable not set, using fallback", "key", key, "fallback", fallback)
		return fallback
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		logger.Warn("invalid integer value for environment variable, using fallback", "key", key, "value", valStr, "error", err)
		return fallback
	}
	return val
}

func config() *apiConfig {
	devModeStr := os.Getenv("DEV_MODE")
	devMode, err := strconv.ParseBool(devModeStr)
	if err != nil {
		devMode = false
	}

	var logger *slog.Logger
	if devMode {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, relying on environment variables")
	}

	kv := newKVStore(logger)

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: &metricsTransport{wrapped: http.DefaultTransport},
	}

	cfg := apiConfig{
		prefs:            NewPreferenceStore(kv, logger),
		geolocator:       NewIPGeolocator(getEnv("GEOLOCATE_URL", "http://ip-api.com/json", logger), httpClient),
		owmWeatherURL:    getRequiredEnv("OWM_WEATHER_URL", logger),
		owmForecastURL:   getRequiredEnv("OWM_FORECAST_URL", logger),
		owmKey:           getRequiredEnv("OWM_KEY", logger),
		httpClient:       httpClient,
		refreshThreshold: getEnvAsInt("REFRESH_THRESHOLD_MIN", 10, logger),
		searchDebounce:   time.Duration(getEnvAsInt("SEARCH_DEBOUNCE_MS", 400, logger)) * time.Millisecond,
		port:             getEnv("PORT", "8080", logger),
		devMode:          devMode,
		logger:           logger,
	}
	cfg.search = NewSearchDebouncer(cfg.searchDebounce, cfg.settleSearch)

	return &cfg
}

// newKVStore builds the preference persistence backend. Redis is the
// default; PREFS_BACKEND=memcached selects the memcached backend instead.
func newKVStore(logger *slog.Logger) KVStore {
	backend := getEnv("PREFS_BACKEND", "redis", logger)

	if backend == "memcached" {
		addrs := getEnv("MEMCACHED_ADDRS", "localhost:11211", logger)
		store := NewMemcachedStore(addrs, 2*time.Second)
		if err := store.Ping(); err != nil {
			logger.Error("couldn't connect to cache", "backend", backend, "error", err)
			os.Exit(1)
		}
		return store
	}

	redisURL := getRequiredEnv("REDIS_URL", logger)
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Error("could not parse Redis URL", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(opt)
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Error("couldn't connect to cache", "backend", backend, "error", err)
		os.Exit(1)
	}
	return NewRedisStore(redisClient)
}
