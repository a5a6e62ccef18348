// Package config loads application settings from a JSON file with sane
// defaults for every key.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Load reads configuration from proofmark.cfg.json in configDir and sets
// default values. A missing file is not an error; defaults apply.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")

	viper.SetDefault("author.id", "local")
	viper.SetDefault("author.name", "Reviewer")

	viper.SetDefault("storage.type", "sqlite")
	viper.SetDefault("storage.path", "./proofmark.db")
	viper.SetDefault("storage.project", "default")

	viper.SetDefault("history.depth", 20)
	viper.SetDefault("canvas.strokeWidth", 3)
	viper.SetDefault("canvas.pxPerInch", 10)

	viper.SetConfigName("proofmark.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetFloat64 returns a float config value.
func GetFloat64(key string) float64 {
	return viper.GetFloat64(key)
}
