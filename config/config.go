package config

import (
	"encoding/json"
	"log"
	"os"
)

type Config struct {
	ListenAddr         string  `json:"listenAddr"`
	MaxMaps            int     `json:"maxMaps"`
	MaxViewportsPerMap int     `json:"maxViewportsPerMap"`
	MaxViewportSize    int     `json:"maxViewportSize"`
	ImageRoot          string  `json:"imageRoot"`
	ZoomStep           float64 `json:"zoomStep"`
	MinZoom            float64 `json:"minZoom"`
	MaxZoom            float64 `json:"maxZoom"`
	ShowGrid           bool    `json:"showGrid"`
	ShowHUD            bool    `json:"showHUD"`
	PingIntervalMs     int     `json:"pingIntervalMs"`
	DatabaseURL        string  `json:"databaseURL"`
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:         ":3000",
		MaxMaps:            5,
		MaxViewportsPerMap: 10,
		MaxViewportSize:    4096,
		ImageRoot:          "assets/maps",
		ZoomStep:           1.5,
		MinZoom:            0.1,
		MaxZoom:            16,
		ShowGrid:           true,
		ShowHUD:            true,
		PingIntervalMs:     5000,
		DatabaseURL:        "",
	}
}

// Load reads a JSON config file at path. If the file is missing or invalid,
// it logs a warning and returns DefaultConfig(). Partial JSON is merged with defaults.
func Load(path string) Config {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("warning: could not read config file %q: %v, using defaults", path, err)
		return cfg
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		log.Printf("warning: invalid JSON in config file %q: %v, using defaults", path, err)
		return DefaultConfig()
	}

	if cfg.ZoomStep <= 1 || cfg.MinZoom <= 0 || cfg.MaxZoom < cfg.MinZoom {
		log.Printf("warning: invalid zoom settings in %q, using default zoom", path)
		d := DefaultConfig()
		cfg.ZoomStep, cfg.MinZoom, cfg.MaxZoom = d.ZoomStep, d.MinZoom, d.MaxZoom
	}

	if cfg.MaxViewportSize <= 0 {
		log.Printf("warning: invalid maxViewportSize in %q, using default", path)
		cfg.MaxViewportSize = DefaultConfig().MaxViewportSize
	}

	return cfg
}
