// Package config loads beanctl settings from an optional YAML file and BEANCTL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

var (
	ErrUnknownFormat           = errors.New("config: output format must be text or json")
	ErrTracingEndpointRequired = errors.New("config: tracing endpoint is required when tracing is enabled")
	ErrInvalidTimeout          = errors.New("config: timeout must be positive")
	ErrInvalidURL              = errors.New("config: URL must have scheme and host")
	ErrSamplingRate            = errors.New("config: sampling rate must be between 0 and 1")
)

type Config struct {
	Logging Logging `yaml:"logging"`
	Tracing Tracing `yaml:"tracing"`
	Metrics Metrics `yaml:"metrics"`
	// text or json
	Format string `yaml:"format" env:"BEANCTL_FORMAT" env-default:"text"`
}

type Logging struct {
	Level    string `yaml:"level" env:"BEANCTL_LOG_LEVEL" env-default:"info"`
	Format   string `yaml:"format" env:"BEANCTL_LOG_FORMAT" env-default:"text"`
	Output   string `yaml:"output" env:"BEANCTL_LOG_OUTPUT" env-default:"stderr"`
	FilePath string `yaml:"filePath" env:"BEANCTL_LOG_FILE_PATH"`
	// megabytes
	MaxSize    int  `yaml:"maxSize" env:"BEANCTL_LOG_MAX_SIZE" env-default:"100"`
	MaxBackups int  `yaml:"maxBackups" env:"BEANCTL_LOG_MAX_BACKUPS" env-default:"3"`
	MaxAge     int  `yaml:"maxAge" env:"BEANCTL_LOG_MAX_AGE" env-default:"7"`
	Compress   bool `yaml:"compress" env:"BEANCTL_LOG_COMPRESS" env-default:"true"`
}

type Tracing struct {
	Enabled      bool          `yaml:"enabled" env:"BEANCTL_TRACING_ENABLED" env-default:"false"`
	Endpoint     string        `yaml:"endpoint" env:"BEANCTL_TRACING_ENDPOINT"`
	ServiceName  string        `yaml:"serviceName" env:"BEANCTL_TRACING_SERVICE_NAME" env-default:"beanctl"`
	Insecure     bool          `yaml:"insecure" env:"BEANCTL_TRACING_INSECURE" env-default:"true"`
	Timeout      time.Duration `yaml:"timeout" env:"BEANCTL_TRACING_TIMEOUT" env-default:"5s"`
	SamplingRate float64       `yaml:"samplingRate" env:"BEANCTL_TRACING_SAMPLING_RATE" env-default:"1"`
}

type Metrics struct {
	PushgatewayURL string        `yaml:"pushgatewayURL" env:"BEANCTL_PUSHGATEWAY_URL"`
	JobName        string        `yaml:"jobName" env:"BEANCTL_METRICS_JOB" env-default:"beanctl"`
	Timeout        time.Duration `yaml:"timeout" env:"BEANCTL_METRICS_TIMEOUT" env-default:"10s"`
}

// Reads config file at path, if any, then environment variables.
// Environment variables override values from the file.
func Load(path string) (*Config, error) {
	cfg := new(Config)

	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}

	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Format != FormatText && c.Format != FormatJSON {
		return fmt.Errorf("%w, got %q", ErrUnknownFormat, c.Format)
	}

	if err := c.Tracing.Validate(); err != nil {
		return err
	}

	return c.Metrics.Validate()
}

func (t *Tracing) Validate() error {
	if !t.Enabled {
		return nil
	}

	if t.Endpoint == "" {
		return ErrTracingEndpointRequired
	}

	if u, err := url.Parse(t.Endpoint); err != nil || u.Host == "" {
		return fmt.Errorf("tracing endpoint %q: %w", t.Endpoint, ErrInvalidURL)
	}

	if t.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if t.SamplingRate < 0 || t.SamplingRate > 1 {
		return fmt.Errorf("%w, got %g", ErrSamplingRate, t.SamplingRate)
	}

	return nil
}

// Enabled reports whether metrics should be pushed.
func (m *Metrics) Enabled() bool {
	return m.PushgatewayURL != ""
}

func (m *Metrics) Validate() error {
	if !m.Enabled() {
		return nil
	}

	if u, err := url.Parse(m.PushgatewayURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("pushgateway %q: %w", m.PushgatewayURL, ErrInvalidURL)
	}

	if m.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	return nil
}
