package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// WiFi Configuration
	WiFiSSID           string
	WiFiPassword       string
	WiFiAttemptTimeout time.Duration
	WiFiRetryDelay     time.Duration
	WiFiMaxRetries     int
	WiFiHealthInterval time.Duration
	WiFiAutoReconnect  bool
	WiFiSimAssocDelay  time.Duration
	WiFiSimDropChance  float64

	// Pipeline timing
	WindowSize      int
	SampleInterval  time.Duration
	PredictInterval time.Duration
	BackupInterval  time.Duration

	// ML Model Configuration
	ModelPath string

	// ThingSpeak Configuration (primary sink)
	ThingSpeakURL       string
	ThingSpeakAPIKey    string
	ThingSpeakChannelID string
	ThingSpeakInterval  time.Duration

	// Firebase Configuration (backup sink)
	FirebaseEnabled  bool
	FirebaseHost     string
	FirebaseAuthKey  string
	FirebaseMaxFails int
	FirebaseCooldown time.Duration

	// MQTT Configuration (optional live telemetry)
	MQTTEnabled  bool
	MQTTBroker   string
	MQTTClientID string
	MQTTUsername string
	MQTTPassword string
	MQTTTopic    string

	// Metrics endpoint
	MetricsEnabled bool
	MetricsAddr    string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		// WiFi Configuration
		WiFiSSID:           getEnv("WIFI_SSID", "COMFRI"),
		WiFiPassword:       getEnv("WIFI_PASSWORD", ""),
		WiFiAttemptTimeout: getEnvDuration("WIFI_ATTEMPT_TIMEOUT", 20*time.Second),
		WiFiRetryDelay:     getEnvDuration("WIFI_RETRY_DELAY", 5*time.Second),
		WiFiMaxRetries:     getEnvInt("WIFI_MAX_RETRIES", 5),
		WiFiHealthInterval: getEnvDuration("WIFI_HEALTH_INTERVAL", 10*time.Second),
		WiFiAutoReconnect:  getEnvBool("WIFI_AUTO_RECONNECT", true),
		WiFiSimAssocDelay:  getEnvDuration("WIFI_SIM_ASSOC_DELAY", 2*time.Second),
		WiFiSimDropChance:  getEnvFloat("WIFI_SIM_DROP_CHANCE", 0.0),

		// Pipeline timing
		WindowSize:      getEnvInt("WINDOW_SIZE", 15),
		SampleInterval:  getEnvDuration("SAMPLE_INTERVAL", time.Second),
		PredictInterval: getEnvDuration("PREDICT_INTERVAL", 15*time.Second),
		BackupInterval:  getEnvDuration("BACKUP_INTERVAL", 15*time.Second),

		// ML Model Configuration
		ModelPath: getEnv("MODEL_PATH", "./model/weather_forest.json"),

		// ThingSpeak Configuration
		ThingSpeakURL:       getEnv("THINGSPEAK_URL", "https://api.thingspeak.com"),
		ThingSpeakAPIKey:    getEnv("THINGSPEAK_API_KEY", ""),
		ThingSpeakChannelID: getEnv("THINGSPEAK_CHANNEL_ID", ""),
		ThingSpeakInterval:  getEnvDuration("THINGSPEAK_MIN_INTERVAL", 15*time.Second),

		// Firebase Configuration
		FirebaseEnabled:  getEnvBool("FIREBASE_ENABLED", false),
		FirebaseHost:     getEnv("FIREBASE_HOST", ""),
		FirebaseAuthKey:  getEnv("FIREBASE_AUTH_KEY", ""),
		FirebaseMaxFails: getEnvInt("FIREBASE_MAX_FAILS", 10),
		FirebaseCooldown: getEnvDuration("FIREBASE_COOLDOWN", 5*time.Minute),

		// MQTT Configuration
		MQTTEnabled:  getEnvBool("MQTT_ENABLED", false),
		MQTTBroker:   getEnv("MQTT_BROKER", "tcp://localhost:1883"),
		MQTTClientID: getEnv("MQTT_CLIENT_ID", "weathernode"),
		MQTTUsername: getEnv("MQTT_USERNAME", ""),
		MQTTPassword: getEnv("MQTT_PASSWORD", ""),
		MQTTTopic:    getEnv("MQTT_TOPIC", "weather/{device_id}/reading"),

		// Metrics endpoint
		MetricsEnabled: getEnvBool("METRICS_ENABLED", false),
		MetricsAddr:    getEnv("METRICS_ADDR", ":9090"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: failed to parse %s as int, using default: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Warning: failed to parse %s as float, using default: %v", key, err)
		return defaultValue
	}
	return floatValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Warning: failed to parse %s as bool, using default: %v", key, err)
		return defaultValue
	}
	return boolValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: failed to parse %s as duration, using default: %v", key, err)
		return defaultValue
	}
	return d
}
