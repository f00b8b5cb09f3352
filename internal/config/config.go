package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/guimove/tablefit/internal/allocation"
	"github.com/guimove/tablefit/internal/model"
)

// Config is the top-level configuration for TableFit.
type Config struct {
	Restaurant model.Settings    `mapstructure:"restaurant"`
	Policy     allocation.Policy `mapstructure:"policy"`
	Sources    SourcesConfig     `mapstructure:"sources"`
	Kubernetes KubernetesConfig  `mapstructure:"kubernetes"`
	Server     ServerConfig      `mapstructure:"server"`
	Output     OutputConfig      `mapstructure:"output"`
	Publish    PublishConfig     `mapstructure:"publish"`
	Log        LogConfig         `mapstructure:"log"`
}

// Settings source kinds.
const (
	SourceConfig    = "config"
	SourceFile      = "file"
	SourceHTTP      = "http"
	SourceConfigMap = "configmap"
	SourcePostgres  = "postgres"
	SourceNone      = "none"
)

type SourcesConfig struct {
	Settings     string        `mapstructure:"settings"` // config, file, http or configmap
	Bookings     string        `mapstructure:"bookings"` // none, file, http or postgres
	SettingsFile string        `mapstructure:"settings_file"`
	BookingsFile string        `mapstructure:"bookings_file"`
	APIURL       string        `mapstructure:"api_url"`
	APIToken     string        `mapstructure:"api_token"`
	Timeout      time.Duration `mapstructure:"timeout"`
	CacheDir     string        `mapstructure:"cache_dir"` // empty disables the settings cache
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	DatabaseURL  string        `mapstructure:"database_url"`
}

type KubernetesConfig struct {
	Kubeconfig string `mapstructure:"kubeconfig"`
	Context    string `mapstructure:"context"`
	Namespace  string `mapstructure:"namespace"`
	ConfigMap  string `mapstructure:"configmap"`
	Key        string `mapstructure:"key"`

	// Booking API service, used for the http sources when sources.api_url
	// is empty. A name wins over a selector.
	APIService  string `mapstructure:"api_service"`
	APISelector string `mapstructure:"api_selector"`
}

type ServerConfig struct {
	Listen       string        `mapstructure:"listen"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORSOrigins  []string      `mapstructure:"cors_origins"` // empty disables CORS
	MaxDays      int           `mapstructure:"max_days"`     // longest calendar served per request
}

type OutputConfig struct {
	Format string `mapstructure:"format"`
	Days   int    `mapstructure:"days"` // calendar length when --days is not given
}

type PublishConfig struct {
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"` // S3-compatible endpoint, e.g. R2 or MinIO
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Restaurant: model.Settings{
			TablesEnabled:      true,
			SlotDuration:       90,
			AdvanceBookingDays: 30,
			MinAdvanceMinutes:  60,
			Timezone:           "Local",
		},
		Policy: allocation.DefaultPolicy(),
		Sources: SourcesConfig{
			Settings: SourceConfig,
			Bookings: SourceNone,
			Timeout:  15 * time.Second,
			CacheTTL: 5 * time.Minute,
		},
		Kubernetes: KubernetesConfig{
			Namespace: "default",
			ConfigMap: "tablefit-settings",
			Key:       "settings.json",
		},
		Server: ServerConfig{
			Listen:       ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			MaxDays:      92,
		},
		Output: OutputConfig{
			Format: "table",
			Days:   30,
		},
		Publish: PublishConfig{
			Prefix: "calendar",
			Region: detectRegion(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// UsesAPI reports whether either source reads from the booking service API.
func (c *Config) UsesAPI() bool {
	return c.Sources.Settings == SourceHTTP || c.Sources.Bookings == SourceHTTP
}

// DiscoverAPI reports whether the API address must be found in Kubernetes.
func (c *Config) DiscoverAPI() bool {
	return c.UsesAPI() && c.Sources.APIURL == ""
}

func (c *Config) apiReachable() bool {
	return c.Sources.APIURL != "" || c.Kubernetes.APIService != "" || c.Kubernetes.APISelector != ""
}

// Validate checks the config for consistency.
func (c *Config) Validate() error {
	if err := c.Policy.Validate(); err != nil {
		return fmt.Errorf("policy: %w", err)
	}

	switch c.Sources.Settings {
	case SourceConfig:
		if err := c.Restaurant.Validate(); err != nil {
			return fmt.Errorf("restaurant: %w", err)
		}
	case SourceFile:
		if c.Sources.SettingsFile == "" {
			return fmt.Errorf("sources.settings_file is required for the file settings source")
		}
	case SourceHTTP:
		if !c.apiReachable() {
			return fmt.Errorf("sources.api_url or kubernetes.api_service/api_selector is required for the http settings source")
		}
	case SourceConfigMap:
		if c.Kubernetes.ConfigMap == "" {
			return fmt.Errorf("kubernetes.configmap is required for the configmap settings source")
		}
	default:
		return fmt.Errorf("settings source must be config, file, http, or configmap, got %q", c.Sources.Settings)
	}

	switch c.Sources.Bookings {
	case SourceNone:
	case SourceFile:
		if c.Sources.BookingsFile == "" {
			return fmt.Errorf("sources.bookings_file is required for the file bookings source")
		}
	case SourceHTTP:
		if !c.apiReachable() {
			return fmt.Errorf("sources.api_url or kubernetes.api_service/api_selector is required for the http bookings source")
		}
	case SourcePostgres:
		if c.Sources.DatabaseURL == "" {
			return fmt.Errorf("sources.database_url is required for the postgres bookings source")
		}
	default:
		return fmt.Errorf("bookings source must be none, file, http, or postgres, got %q", c.Sources.Bookings)
	}

	if c.Sources.Timeout <= 0 {
		return fmt.Errorf("sources timeout must be positive, got %v", c.Sources.Timeout)
	}
	if c.Sources.CacheTTL < 0 {
		return fmt.Errorf("sources cache_ttl must be non-negative, got %v", c.Sources.CacheTTL)
	}

	validFormats := map[string]bool{"table": true, "json": true, "markdown": true}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("output format must be table, json, or markdown, got %q", c.Output.Format)
	}
	if c.Output.Days <= 0 {
		c.Output.Days = 30
	}
	if c.Server.MaxDays <= 0 {
		c.Server.MaxDays = 92
	}

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log format must be console or json, got %q", c.Log.Format)
	}
	return nil
}

// detectRegion checks environment variables for the AWS region.
func detectRegion() string {
	if r := os.Getenv("AWS_REGION"); r != "" {
		return r
	}
	if r := os.Getenv("AWS_DEFAULT_REGION"); r != "" {
		return r
	}
	return "us-east-1"
}
