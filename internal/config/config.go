// Package config loads application configuration from
// ~/.config/blocktrack/blocktrack.yaml with BLOCKTRACK_* environment
// overrides. Everything has a default; a missing config file is fine.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mpeters/blocktrack/internal/store"
)

type Config struct {
	DBPath               string
	LogPath              string
	NotificationsEnabled bool
	TestDuration         int
}

// Load reads configuration, applying defaults for anything unset.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("blocktrack")
	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else if cfgDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(cfgDir, "blocktrack"))
	}

	v.SetEnvPrefix("BLOCKTRACK")
	v.AutomaticEnv()

	dbPath, err := store.DefaultDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve default db path: %w", err)
	}
	v.SetDefault("db_path", dbPath)
	v.SetDefault("log_path", filepath.Join(filepath.Dir(dbPath), "blocktrack.log"))
	v.SetDefault("notifications_enabled", true)
	v.SetDefault("test_duration", 5)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		DBPath:               v.GetString("db_path"),
		LogPath:              v.GetString("log_path"),
		NotificationsEnabled: v.GetBool("notifications_enabled"),
		TestDuration:         v.GetInt("test_duration"),
	}
	if cfg.TestDuration <= 0 {
		cfg.TestDuration = 5
	}
	return cfg, nil
}
