package main

import (
	"os"
	"strconv"
	"time"
)

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

type config struct {
	HTTPPort string

	ThingSpeakBase    string
	ThingSpeakTimeout time.Duration

	PollInterval  time.Duration
	DeviceTimeout time.Duration
	MaxConcurrent int
	ListPageSize  int

	PostgresDSN string

	RESTBase    string
	RESTKey     string
	RESTTimeout time.Duration

	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string

	MQTTHost     string
	MQTTPort     int
	MQTTUser     string
	MQTTPassword string
	MQTTClientID string

	LiveCacheTTL    time.Duration
	HistoryCacheTTL time.Duration
}

func loadConfig() config {
	return config{
		HTTPPort: env("PORT", "8080"),

		ThingSpeakBase:    env("THINGSPEAK_BASE_URL", ""),
		ThingSpeakTimeout: envDuration("THINGSPEAK_TIMEOUT", 8*time.Second),

		PollInterval:  envDuration("POLL_INTERVAL", time.Minute),
		DeviceTimeout: envDuration("DEVICE_TIMEOUT", 20*time.Second),
		MaxConcurrent: envInt("POLL_CONCURRENCY", 8),
		ListPageSize:  envInt("POLL_PAGE_SIZE", 500),

		PostgresDSN: env("POSTGRES_DSN", ""),

		RESTBase:    env("REST_BASE_URL", ""),
		RESTKey:     env("REST_API_KEY", ""),
		RESTTimeout: envDuration("REST_TIMEOUT", 6*time.Second),

		InfluxURL:    env("INFLUX_URL", ""),
		InfluxToken:  env("INFLUX_TOKEN", ""),
		InfluxOrg:    env("INFLUX_ORG", ""),
		InfluxBucket: env("INFLUX_BUCKET", ""),

		MQTTHost:     env("MQTT_HOST", ""),
		MQTTPort:     envInt("MQTT_PORT", 1883),
		MQTTUser:     env("MQTT_USER", ""),
		MQTTPassword: env("MQTT_PASS", ""),
		MQTTClientID: env("MQTT_CLIENT_ID", "aquanode-poller"),

		LiveCacheTTL:    envDuration("LIVE_CACHE_TTL", 30*time.Second),
		HistoryCacheTTL: envDuration("HISTORY_CACHE_TTL", time.Minute),
	}
}
