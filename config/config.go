package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Tee-sheet grid shape. The grid covers [OPEN_HOUR, CLOSE_HOUR) in
	// fixed intervals; every slot carries the same capacity.
	OpenHour            int `mapstructure:"OPEN_HOUR"`
	CloseHour           int `mapstructure:"CLOSE_HOUR"`
	SlotIntervalMinutes int `mapstructure:"SLOT_INTERVAL_MINUTES"`
	SlotCapacity        int `mapstructure:"SLOT_CAPACITY"`

	// MaxOverrideExtra caps how far an overridden move may push a slot
	// past its capacity. Zero means no ceiling.
	MaxOverrideExtra int `mapstructure:"MAX_OVERRIDE_EXTRA"`

	// Background stats reconciliation cadence.
	ReconcileInterval time.Duration `mapstructure:"RECONCILE_INTERVAL"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("OPEN_HOUR", 6)
	viper.SetDefault("CLOSE_HOUR", 20)
	viper.SetDefault("SLOT_INTERVAL_MINUTES", 15)
	viper.SetDefault("SLOT_CAPACITY", 4)
	viper.SetDefault("MAX_OVERRIDE_EXTRA", 0)
	viper.SetDefault("RECONCILE_INTERVAL", "30s")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
