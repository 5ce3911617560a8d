package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

const DefaultEnvFile = ".env"

type options struct {
	envFile  string
	explicit bool
}

type Option func(*options)

// WithEnvFile loads path instead of ./.env. A missing explicit file is an error.
func WithEnvFile(path string) Option {
	return func(o *options) {
		if p := strings.TrimSpace(path); p != "" {
			o.envFile = p
			o.explicit = true
		}
	}
}

// New exports the env file into the process environment, without touching
// variables that are already set, then processes T with envconfig.
func New[T any](prefix string, opts ...Option) (*T, error) {
	o := options{envFile: DefaultEnvFile}
	for _, opt := range opts {
		opt(&o)
	}

	if o.explicit {
		if err := exportEnvironment(o.envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	} else if err := exportEnvironmentIfExists(o.envFile); err != nil {
		return nil, fmt.Errorf("failed to load default env file: %w", err)
	}

	var conf T
	if err := envconfig.Process(prefix, &conf); err != nil {
		return nil, err
	}

	return &conf, nil
}

func exportEnvironmentIfExists(filepath string) error {
	info, err := os.Stat(filepath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	return exportEnvironment(filepath)
}

func exportEnvironment(filepath string) error {
	v := viper.New()
	v.SetConfigFile(filepath)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	for k, val := range v.AllSettings() {
		key := strings.ToUpper(k)
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, fmt.Sprint(val)); err != nil {
			return err
		}
	}

	return nil
}
