package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/guimove/tablefit/internal/model"
)

// EnvPrefix is prepended to environment overrides, e.g. TABLEFIT_SOURCES_DATABASE_URL.
const EnvPrefix = "TABLEFIT"

// envKeys are the settings most often supplied through the environment.
var envKeys = []string{
	"sources.settings",
	"sources.bookings",
	"sources.api_url",
	"sources.api_token",
	"sources.database_url",
	"sources.cache_dir",
	"kubernetes.kubeconfig",
	"kubernetes.namespace",
	"kubernetes.configmap",
	"kubernetes.api_service",
	"kubernetes.api_selector",
	"server.listen",
	"server.cors_origins",
	"publish.bucket",
	"publish.prefix",
	"publish.region",
	"publish.endpoint",
	"publish.access_key_id",
	"publish.secret_access_key",
	"log.level",
	"log.format",
}

// Load reads configuration from v on top of Default. A missing config file is
// only an error when explicitFile is set.
func Load(v *viper.Viper, explicitFile string) (Config, error) {
	cfg := Default()

	if explicitFile != "" {
		v.SetConfigFile(explicitFile)
	} else {
		v.SetConfigName("tablefit")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.tablefit")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || explicitFile != "" {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg, viper.DecodeHook(DecodeHook())); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// DecodeHook converts config scalars into durations, slices, dates and
// times of day.
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		timestampToDateHook,
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// YAML parsers may hand over unquoted ISO dates as time.Time.
func timestampToDateHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(model.Date{}) || from != reflect.TypeOf(time.Time{}) {
		return data, nil
	}
	return model.DateOf(data.(time.Time)), nil
}
