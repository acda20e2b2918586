package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/lighthouse/internal/database"
	"github.com/lawnchairsociety/lighthouse/internal/geometry"
)

// AppConfig holds the lighthouse tool configuration.
type AppConfig struct {
	Build    BuildConfig     `yaml:"build"`
	Database database.Config `yaml:"database"`
	Server   ServerConfig    `yaml:"server"`
}

// BuildConfig holds defaults for builds started without explicit options.
type BuildConfig struct {
	// Preset is the preset built when none is named.
	Preset string `yaml:"preset"`

	// Quality is "draft" or "high".
	Quality string `yaml:"quality"`

	// PresetsFile optionally points at a YAML preset pack that replaces the
	// built-in presets.
	PresetsFile string `yaml:"presets_file"`
}

// ServerConfig holds control server settings.
type ServerConfig struct {
	Address     string            `yaml:"address"`
	WebSocket   WebSocketConfig   `yaml:"websocket"`
	Connections ConnectionsConfig `yaml:"connections"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
}

// RateLimitConfig throttles build commands per client IP.
type RateLimitConfig struct {
	// MaxBuilds is the number of builds allowed per window before a cooldown.
	MaxBuilds int `yaml:"max_builds"`

	// WindowSeconds is the length of the counting window.
	WindowSeconds int `yaml:"window_seconds"`

	// CooldownSeconds is the initial cooldown once the limit is hit.
	CooldownSeconds int `yaml:"cooldown_seconds"`

	// MaxCooldownSeconds caps the doubling cooldown.
	MaxCooldownSeconds int `yaml:"max_cooldown_seconds"`
}

// ConnectionsConfig holds connection limit settings.
type ConnectionsConfig struct {
	// MaxPerIP is the maximum concurrent connections from a single IP address.
	// 0 means unlimited.
	MaxPerIP int `yaml:"max_per_ip"`

	// MaxTotal is the maximum total concurrent connections. 0 means unlimited.
	MaxTotal int `yaml:"max_total"`

	// TrustedProxies lists the proxy addresses or CIDRs whose
	// X-Forwarded-For / X-Real-IP headers name the client. Headers from any
	// other peer are ignored.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// WebSocketConfig holds WebSocket-specific settings.
type WebSocketConfig struct {
	// AllowedOrigins is a list of origins allowed to connect via WebSocket.
	// Empty list enforces same-origin policy. "*" allows all origins.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxMessageSize is the maximum WebSocket message size in bytes.
	MaxMessageSize int64 `yaml:"max_message_size"`
}

// DefaultConfig returns an AppConfig with local defaults.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Build: BuildConfig{
			Preset:  "Shutter",
			Quality: string(geometry.QualityDraft),
		},
		Database: database.DefaultConfig("data/lighthouse.db"),
		Server: ServerConfig{
			Address: "127.0.0.1:8765",
			WebSocket: WebSocketConfig{
				AllowedOrigins: []string{}, // Same-origin only by default
				MaxMessageSize: 4096,
			},
			Connections: ConnectionsConfig{
				MaxPerIP: 3,
				MaxTotal: 32,
			},
			RateLimit: RateLimitConfig{
				MaxBuilds:          10,
				WindowSeconds:      60,
				CooldownSeconds:    15,
				MaxCooldownSeconds: 300,
			},
		},
	}
}

// LoadConfig loads configuration from a YAML file over the defaults.
// A missing file yields the defaults.
func LoadConfig(path string) (*AppConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil // Use defaults if file doesn't exist
		}
		return config, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config YAML: %w", err)
	}

	if _, err := geometry.ParseQuality(config.Build.Quality); err != nil {
		return DefaultConfig(), fmt.Errorf("invalid build quality: %w", err)
	}

	return config, nil
}

// DefaultQuality returns the configured quality tier.
func (b BuildConfig) DefaultQuality() geometry.Quality {
	q, err := geometry.ParseQuality(b.Quality)
	if err != nil {
		return geometry.QualityDraft
	}
	return q
}

// IsOriginAllowed checks if the given origin is allowed based on the config.
// Returns true if:
// - AllowedOrigins contains "*" (allow all)
// - AllowedOrigins contains the exact origin
// - AllowedOrigins is empty and origin matches the request host (same-origin)
func (c *WebSocketConfig) IsOriginAllowed(origin, requestHost string) bool {
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	return false
}

// isSameOrigin checks if the origin matches the request host.
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // No origin header means a non-browser client
	}

	// "http://localhost:3000" -> "localhost:3000"
	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")

	return originHost == requestHost
}
