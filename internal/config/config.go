package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	RealtimeChannel        string
	JWTSecret              string
	JWTTTL                 time.Duration
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	UploadMaxSizeMB        int
	DashboardCacheTTL      time.Duration
	NotificationKeepAlive  time.Duration
	AssistantAPIKey        string
	AssistantBaseURL       string
	AssistantModel         string
	AssistantMaxAttempts   int
	StaticMapKey           string
	SMTPHost               string
	SMTPPort               int
	SMTPUser               string
	SMTPPassword           string
	SMTPFrom               string
	ResetCodeTTL           time.Duration
	SeedEnabled            bool
	SeedToken              string
	TrackerTick            time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("HIKELINK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "HikeLink API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("realtime.channel", "hikelink")
	v.SetDefault("jwt.ttl", "72h")
	v.SetDefault("cloudinary.folder", "hikelink")
	v.SetDefault("upload.max_size_mb", 10)
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("notifications.keepalive", "30s")
	v.SetDefault("assistant.base_url", "https://api.mistral.ai/v1")
	v.SetDefault("assistant.model", "mistral-tiny")
	v.SetDefault("assistant.max_attempts", 3)
	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("reset.code_ttl", "15m")
	v.SetDefault("seed.enabled", false)
	v.SetDefault("tracker.tick", "1s")

	durations := map[string]time.Duration{}
	for _, key := range []string{"jwt.ttl", "dashboard.cache_ttl", "notifications.keepalive", "reset.code_ttl", "tracker.tick"} {
		parsed, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", key, err)
		}
		durations[key] = parsed
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		RealtimeChannel:        v.GetString("realtime.channel"),
		JWTSecret:              v.GetString("jwt.secret"),
		JWTTTL:                 durations["jwt.ttl"],
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		UploadMaxSizeMB:        v.GetInt("upload.max_size_mb"),
		DashboardCacheTTL:      durations["dashboard.cache_ttl"],
		NotificationKeepAlive:  durations["notifications.keepalive"],
		AssistantAPIKey:        v.GetString("assistant.api_key"),
		AssistantBaseURL:       v.GetString("assistant.base_url"),
		AssistantModel:         v.GetString("assistant.model"),
		AssistantMaxAttempts:   v.GetInt("assistant.max_attempts"),
		StaticMapKey:           v.GetString("staticmap.key"),
		SMTPHost:               v.GetString("smtp.host"),
		SMTPPort:               v.GetInt("smtp.port"),
		SMTPUser:               v.GetString("smtp.user"),
		SMTPPassword:           v.GetString("smtp.password"),
		SMTPFrom:               v.GetString("smtp.from"),
		ResetCodeTTL:           durations["reset.code_ttl"],
		SeedEnabled:            v.GetBool("seed.enabled"),
		SeedToken:              v.GetString("seed.token"),
		TrackerTick:            durations["tracker.tick"],
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.AssistantMaxAttempts <= 0 {
		cfg.AssistantMaxAttempts = 3
	}

	if cfg.TrackerTick <= 0 {
		cfg.TrackerTick = time.Second
	}

	if cfg.SMTPFrom == "" {
		cfg.SMTPFrom = cfg.SMTPUser
	}

	return cfg, nil
}
