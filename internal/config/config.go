package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Simplici0/margin/internal/logging"
)

const (
	defaultDBPath = "./margin.db"
	defaultPort   = "8080"
	defaultEnv    = "development"
	configName    = "margin"
)

// Config holds application configuration sourced from the environment, an
// optional .env file and an optional margin.toml.
type Config struct {
	Env          string         `mapstructure:"app_env"`
	DBPath       string         `mapstructure:"db_path"`
	Port         string         `mapstructure:"port"`
	ProfilesPath string         `mapstructure:"profiles_path"`
	Logging      logging.Config `mapstructure:"log"`
}

// IsDev reports whether the process runs in the development environment.
func (c Config) IsDev() bool {
	return c.Env == defaultEnv
}

// Load reads configuration. A missing .env or config file is not an error;
// explicit environment variables always win.
func Load() (Config, error) {
	// godotenv never overwrites variables that are already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("toml")
	v.AddConfigPath("config")
	v.AddConfigPath(".")

	v.SetDefault("app_env", defaultEnv)
	v.SetDefault("db_path", defaultDBPath)
	v.SetDefault("port", defaultPort)
	v.SetDefault("profiles_path", "")
	defaults := logging.DefaultConfig()
	v.SetDefault("log.level", defaults.Level)
	v.SetDefault("log.format", defaults.Format)
	v.SetDefault("log.output", defaults.Output)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}
