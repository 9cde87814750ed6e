// Package config provides configuration loading and validation for the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. RESUME_LENS_ENDPOINT.
const EnvPrefix = "RESUME_LENS"

// Config is the runtime configuration. Values come from defaults, an
// optional JSON or YAML file and RESUME_LENS_* environment variables, in
// increasing priority.
type Config struct {
	// Analysis endpoint
	Endpoint       string        `mapstructure:"endpoint" json:"endpoint,omitempty" validate:"required,url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" json:"request_timeout,omitempty" validate:"min=0"` // 0 waits indefinitely
	StrictSchema   bool          `mapstructure:"strict_schema" json:"strict_schema,omitempty"`                      // Validate successful bodies against the schema
	ExtractLocally bool          `mapstructure:"extract_locally" json:"extract_locally,omitempty"`                  // Send extracted text instead of the file

	// UI
	StepInterval time.Duration `mapstructure:"step_interval" json:"step_interval,omitempty" validate:"gt=0"`

	// Web front-end
	Port             int    `mapstructure:"port" json:"port,omitempty" validate:"min=1,max=65535"`
	MaxUploadBytes   int64  `mapstructure:"max_upload_bytes" json:"max_upload_bytes,omitempty" validate:"gt=0"`
	RateLimitPerHour int    `mapstructure:"rate_limit_per_hour" json:"rate_limit_per_hour,omitempty" validate:"min=0"` // 0 disables limiting
	RateLimitBurst   int    `mapstructure:"rate_limit_burst" json:"rate_limit_burst,omitempty" validate:"min=0"`
	RateLimitExempt  string `mapstructure:"rate_limit_exempt" json:"rate_limit_exempt,omitempty"` // Comma-separated client IPs

	// Logging
	LogLevel  string `mapstructure:"log_level" json:"log_level,omitempty" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" json:"log_format,omitempty" validate:"oneof=json console"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Endpoint:         "http://localhost:5000/api/analyze",
		StepInterval:     5500 * time.Millisecond,
		Port:             8080,
		MaxUploadBytes:   5 << 20,
		RateLimitPerHour: 30,
		RateLimitBurst:   5,
		LogLevel:         "info",
		LogFormat:        "console",
	}
}

func newViper() *viper.Viper {
	v := viper.New()

	d := Default()
	v.SetDefault("endpoint", d.Endpoint)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("strict_schema", d.StrictSchema)
	v.SetDefault("extract_locally", d.ExtractLocally)
	v.SetDefault("step_interval", d.StepInterval)
	v.SetDefault("port", d.Port)
	v.SetDefault("max_upload_bytes", d.MaxUploadBytes)
	v.SetDefault("rate_limit_per_hour", d.RateLimitPerHour)
	v.SetDefault("rate_limit_burst", d.RateLimitBurst)
	v.SetDefault("rate_limit_exempt", d.RateLimitExempt)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the configuration. An empty path skips the file and uses
// defaults plus environment.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return fmt.Errorf("config error: %w", err)
	}

	fe := validationErrors[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("config error: '%s' is required", fe.Field())
	case "url":
		return fmt.Errorf("config error: '%s' must be a URL", fe.Field())
	case "oneof":
		return fmt.Errorf("config error: '%s' must be one of [%s]", fe.Field(), fe.Param())
	default:
		return fmt.Errorf("config error: '%s' is out of range (%s=%s)", fe.Field(), fe.Tag(), fe.Param())
	}
}
