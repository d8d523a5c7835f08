package main

import (
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config()
	cfg.logger.Debug("configuration loaded")
	defer cfg.search.Stop()

	mux := http.NewServeMux()

	mux.HandleFunc("/api/weather", cfg.handlerWeather)
	mux.HandleFunc("/api/refresh", cfg.handlerRefresh)
	mux.HandleFunc("/api/locate", cfg.handlerLocate)
	mux.HandleFunc("/api/search", cfg.handlerSearch)
	mux.HandleFunc("/api/favorites", cfg.handlerFavorites)
	mux.HandleFunc("/api/preferences", cfg.handlerPreferences)
	mux.HandleFunc("/api/config", cfg.handlerConfig)
	mux.Handle("/metrics", promhttp.Handler())

	if cfg.devMode {
		cfg.logger.Debug("development mode enabled. Registering /dev/reset-prefs endpoint.")
		mux.HandleFunc("/dev/reset-prefs", cfg.handlerResetPrefs)
	}

	server := &http.Server{
		Addr:    ":" + cfg.port,
		Handler: corsMiddleware(metricsMiddleware(mux)),
	}

	cfg.logger.Info("starting server", "port", cfg.port)
	err := server.ListenAndServe()
	if err != nil {
		cfg.logger.Error("server startup failed", "error", err)
		os.Exit(1)
	}
}
