package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"weathernode/internal/metrics"
	"weathernode/internal/ml"
	"weathernode/internal/sensors"
	"weathernode/internal/station"
	"weathernode/internal/upload"
	"weathernode/internal/wifi"
	"weathernode/pkg/config"
)

const firmwareVersion = "1.0.0"

func main() {
	log.Println("Starting Weather Station Node...")

	// Load configuration
	cfg := config.Load()

	deviceID := wifi.DeviceID()
	log.Printf("Device ID: %s", deviceID)

	// === Load the compiled forest model ===
	forest, err := ml.LoadForest(cfg.ModelPath)
	if err != nil {
		log.Printf("Model not found at %s, creating sample model: %v", cfg.ModelPath, err)
		if err := ml.CreateSampleForest(cfg.ModelPath); err != nil {
			log.Fatalf("Failed to create sample model: %v", err)
		}
		if forest, err = ml.LoadForest(cfg.ModelPath); err != nil {
			log.Fatalf("Failed to load sample model: %v", err)
		}
	}

	// Scaling constants ship inside the artifact so they can never
	// drift from the ones the forest was trained with.
	scaler, err := forest.ScalerFromArtifact()
	if err != nil {
		log.Fatalf("Failed to build scaler from model artifact: %v", err)
	}
	classifier := ml.NewClassifier(forest.Predict)

	// === Initialize connectivity ===
	link := wifi.NewSimLink(cfg.WiFiSimAssocDelay, cfg.WiFiSimDropChance, time.Now().UnixNano())
	conn, err := wifi.NewManager(wifi.Config{
		SSID:                cfg.WiFiSSID,
		Password:            cfg.WiFiPassword,
		AttemptTimeout:      cfg.WiFiAttemptTimeout,
		RetryDelay:          cfg.WiFiRetryDelay,
		MaxRetries:          cfg.WiFiMaxRetries,
		HealthCheckInterval: cfg.WiFiHealthInterval,
		AutoReconnect:       cfg.WiFiAutoReconnect,
	}, link)
	if err != nil {
		log.Fatalf("Failed to initialize connectivity: %v", err)
	}
	conn.AddListener(logListener{})

	// === Initialize metrics ===
	var recorder metrics.Recorder = metrics.Noop{}
	if cfg.MetricsEnabled {
		stationMetrics := metrics.NewStation(prometheus.DefaultRegisterer)
		conn.AddListener(stationMetrics)
		recorder = stationMetrics

		go func() {
			log.Printf("Metrics: serving on %s/metrics", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, promhttp.Handler()); err != nil {
				log.Printf("Metrics: listener stopped: %v", err)
			}
		}()
	}

	// === Initialize upload sinks ===
	var primary upload.Sink = upload.DisabledSink{SinkName: "thingspeak"}
	if cfg.ThingSpeakAPIKey != "" {
		ts, err := upload.NewThingSpeak(upload.ThingSpeakConfig{
			ServerURL: cfg.ThingSpeakURL,
			APIKey:    cfg.ThingSpeakAPIKey,
			ChannelID: cfg.ThingSpeakChannelID,
		})
		if err != nil {
			log.Fatalf("Failed to initialize ThingSpeak sink: %v", err)
		}
		primary = ts
	} else {
		log.Println("ThingSpeak: no API key configured, primary uploads disabled")
	}

	firebase, err := upload.NewFirebase(upload.FirebaseConfig{
		Host:     cfg.FirebaseHost,
		AuthKey:  cfg.FirebaseAuthKey,
		DeviceID: deviceID,
		Enabled:  cfg.FirebaseEnabled,
	})
	if err != nil {
		log.Fatalf("Failed to initialize Firebase sink: %v", err)
	}

	uploads, err := upload.NewManager(conn,
		primary, upload.SinkPolicy{MinInterval: cfg.ThingSpeakInterval},
		firebase, upload.SinkPolicy{
			MinInterval:       cfg.BackupInterval,
			CooldownThreshold: cfg.FirebaseMaxFails,
			Cooldown:          cfg.FirebaseCooldown,
		})
	if err != nil {
		log.Fatalf("Failed to initialize upload manager: %v", err)
	}

	var liveSink *upload.MQTTSink
	if cfg.MQTTEnabled {
		liveSink, err = upload.NewMQTTSink(upload.MQTTConfig{
			Broker:   cfg.MQTTBroker,
			ClientID: cfg.MQTTClientID,
			Username: cfg.MQTTUsername,
			Password: cfg.MQTTPassword,
			Topic:    cfg.MQTTTopic,
		})
		if err != nil {
			log.Printf("Live telemetry unavailable: %v", err)
		} else {
			defer liveSink.Close()
			uploads.AttachLive(liveSink, upload.SinkPolicy{})
		}
	}

	// === Initialize the pipeline ===
	sampler := sensors.NewSimulator()
	orchestrator, err := station.New(station.Config{
		WindowSize:      cfg.WindowSize,
		SampleInterval:  cfg.SampleInterval,
		PredictInterval: cfg.PredictInterval,
	}, station.Deps{
		Sampler:      sampler,
		Scaler:       scaler,
		Classifier:   classifier,
		Connectivity: conn,
		Uploads:      uploads,
		Recorder:     recorder,
		DeviceID:     deviceID,
	})
	if err != nil {
		log.Fatalf("Failed to initialize orchestrator: %v", err)
	}

	// === Start ===
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn.Connect()

	if err := firebase.SaveDeviceInfo(firmwareVersion, forest.ModelType); err != nil {
		log.Printf("Firebase: saving device info failed: %v", err)
	}
	if err := firebase.UpdateStatus(true); err != nil {
		log.Printf("Firebase: status update failed: %v", err)
	}

	go orchestrator.Run(ctx)

	log.Println("=== Weather Station Node is running ===")
	log.Printf("Window: %d samples, sampling every %s, predicting every %s",
		cfg.WindowSize, cfg.SampleInterval, cfg.PredictInterval)
	log.Printf("Model: %s (%d trees)", forest.ModelType, len(forest.Trees))
	log.Println("Press Ctrl+C to exit...")

	// === Wait for interrupt signal ===
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// === Graceful shutdown ===
	log.Println("Shutdown signal received, stopping...")
	cancel()

	// Give the loop time to log its run summary
	time.Sleep(500 * time.Millisecond)

	if err := firebase.UpdateStatus(false); err != nil {
		log.Printf("Firebase: status update failed: %v", err)
	}
	conn.Disconnect()

	stats := conn.Stats()
	log.Printf("Connection summary: %d attempts, %d connected, %d failed, online %s",
		stats.TotalAttempts, stats.SuccessfulConnections, stats.FailedConnections,
		stats.TotalConnectedDuration.Round(time.Second))
	log.Println("Shutdown complete. Goodbye!")
}

// logListener mirrors connection transitions into the log, standing in
// for the status LED on the reference hardware.
type logListener struct{}

func (logListener) OnStateChange(old, new wifi.State) {
	log.Printf("WiFi: %s -> %s", old, new)
}
