package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	databaseName   = "data"
	collectionName = "prices"
)

// Config ...
type Config struct {
	SecretID      string
	SecretsRegion string
	LogLevel      zapcore.Level
}

// LoadConfig reads the function settings from the environment.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetDefault("secret_id", "mongoCredentials")
	v.SetDefault("secrets_region", "us-east-1")
	v.SetDefault("log_level", "info")
	v.AutomaticEnv()

	cfg := &Config{
		SecretID:      v.GetString("secret_id"),
		SecretsRegion: v.GetString("secrets_region"),
	}
	level, err := zapcore.ParseLevel(v.GetString("log_level"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid LOG_LEVEL")
	}
	cfg.LogLevel = level
	return cfg, nil
}

func newLogger(level zapcore.Level) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
