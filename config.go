package pennant

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvConfig carries client defaults loadable from the environment. It covers
// the knobs an operator tunes without redeploying: hook policy, logging and
// telemetry.
type EnvConfig struct {
	HookTimeout time.Duration `env:"PENNANT_HOOK_TIMEOUT" envDefault:"5s"`
	FailFast    bool          `env:"PENNANT_FAIL_FAST" envDefault:"false"`
	LogLevel    string        `env:"PENNANT_LOG_LEVEL" envDefault:"info"`
	Telemetry   bool          `env:"PENNANT_TELEMETRY" envDefault:"false"`
}

// LoadEnvConfig parses PENNANT_* environment variables.
func LoadEnvConfig() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, &ConfigError{Field: "env", Message: err.Error()}
	}
	return cfg, nil
}

// Options expands the config into client options, to be combined with
// programmatic ones:
//
//	cfg, _ := pennant.LoadEnvConfig()
//	client, err := pennant.New(append(cfg.Options(), pennant.WithProvider(p))...)
func (c EnvConfig) Options() []Option {
	opts := []Option{
		WithFailFast(c.FailFast),
		WithLogLevel(c.LogLevel),
		WithTelemetry(c.Telemetry),
	}
	if c.HookTimeout > 0 {
		opts = append(opts, WithHookTimeout(c.HookTimeout))
	}
	return opts
}
