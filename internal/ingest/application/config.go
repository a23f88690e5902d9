package application

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MQTTConfig configures the optional Home Assistant publisher.
type MQTTConfig struct {
	BrokerURL   string `yaml:"broker_url"`
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
}

// Config defines import subsystem configuration.
type Config struct {
	// MaxRows bounds one upload; anything beyond is rejected before
	// the session starts.
	MaxRows          int        `yaml:"max_rows"`
	DefaultOverwrite bool       `yaml:"default_overwrite"`
	MQTT             MQTTConfig `yaml:"mqtt"`
}

// LoadConfig loads config from yaml (IMPORT_CONFIG path) or env.
func LoadConfig() (Config, error) {
	cfg := Config{
		MaxRows:          getenvIntDefault("IMPORT_MAX_ROWS", 1000),
		DefaultOverwrite: os.Getenv("IMPORT_DEFAULT_OVERWRITE") == "true",
		MQTT: MQTTConfig{
			BrokerURL:   os.Getenv("MQTT_BROKER_URL"),
			ClientID:    getenvDefault("MQTT_CLIENT_ID", "energiebuch"),
			Username:    os.Getenv("MQTT_USERNAME"),
			Password:    os.Getenv("MQTT_PASSWORD"),
			TopicPrefix: getenvDefault("MQTT_TOPIC_PREFIX", "energiebuch"),
		},
	}

	if path := os.Getenv("IMPORT_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.MaxRows <= 0 {
		cfg.MaxRows = 1000
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
