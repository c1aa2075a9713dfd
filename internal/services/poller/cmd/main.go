package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/evaratech/aquanode/internal/services/analytics"
	"github.com/evaratech/aquanode/internal/services/persistence"
	"github.com/evaratech/aquanode/internal/services/poller"
	"github.com/evaratech/aquanode/internal/services/telemetry"
	"github.com/evaratech/aquanode/pkg/cache"
	"github.com/evaratech/aquanode/pkg/mqtt"
	"github.com/evaratech/aquanode/pkg/ws"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := loadConfig()

	// --- Stores: Postgres primary, REST secondary ---
	if cfg.PostgresDSN == "" {
		log.Fatal("POSTGRES_DSN is required")
	}
	if cfg.RESTBase == "" {
		log.Fatal("REST_BASE_URL is required")
	}
	primary, err := persistence.NewPostgresStore(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres init failed: %v", err)
	}
	defer primary.Close()
	secondary := persistence.NewRESTStore(cfg.RESTBase, cfg.RESTKey, cfg.RESTTimeout)

	store := persistence.NewStore(primary, secondary)
	if err := store.Initialize(ctx); err != nil {
		// No store answers right now; keep running so the per-call fallback
		// picks up whichever backend recovers first.
		log.Printf("main: no store reachable at startup: %v", err)
	}

	// --- Telemetry provider ---
	tsClient := telemetry.NewClient(cfg.ThingSpeakBase, cfg.ThingSpeakTimeout)

	// --- Influx feed mirror (optional) ---
	sink := persistence.NewFeedSink(persistence.InfluxConfig{
		URL:    cfg.InfluxURL,
		Token:  cfg.InfluxToken,
		Org:    cfg.InfluxOrg,
		Bucket: cfg.InfluxBucket,
	})

	// --- Event fan-out: MQTT (optional) + websocket hub ---
	var mqttClient paho.Client
	var pub mqtt.IPublisher
	if cfg.MQTTHost != "" {
		client, err := mqtt.NewConn(ctx, &mqtt.Config{
			Host:     cfg.MQTTHost,
			Port:     cfg.MQTTPort,
			User:     cfg.MQTTUser,
			Password: cfg.MQTTPassword,
			ClientID: cfg.MQTTClientID,
		})
		if err != nil {
			log.Printf("main: mqtt connect failed: %v (event publishing disabled)", err)
		} else {
			mqttClient = client
			pub = mqtt.NewPublisher(client)
		}
	}
	hub := ws.NewHub()
	go hub.Run()
	bcast := poller.NewEventBroadcaster(pub, hub, "", "")

	// --- Poll engine ---
	engine := poller.New(poller.Config{
		Interval:      cfg.PollInterval,
		DeviceTimeout: cfg.DeviceTimeout,
		MaxConcurrent: cfg.MaxConcurrent,
		ListPageSize:  cfg.ListPageSize,
	}, store, tsClient, sink, bcast)
	go engine.Run(ctx)

	// --- Analytics API ---
	svc := analytics.NewService(store, tsClient,
		cache.New(cfg.LiveCacheTTL, 10000),
		cache.New(cfg.HistoryCacheTTL, 10000))

	mux := http.NewServeMux()
	analytics.Register(mux, svc)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, w, r)
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":         "ok",
			"store_mode":     store.ActiveMode(),
			"mqtt_connected": mqttClient != nil && mqttClient.IsConnectionOpen(),
			"ws_clients":     hub.ClientCount(),
		})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ready": true})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("poller HTTP listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()
	stop()

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shCtx)
	log.Println("poller: shutdown complete")
}
