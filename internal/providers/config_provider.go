package providers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"ecometrics/internal/structures"
)

const appName = "EcoMetrics"

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	dir := filepath.Dir(flags.ConfigPath)
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("unable to load .env: %w", err)
	}

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(dir)
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	v.SetDefault("webServer.host", "0.0.0.0")
	v.SetDefault("webServer.port", 8080)
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.saveInterval", 30*time.Second)
	v.SetDefault("ledger.perPage", 30)
	v.SetDefault("ledger.maxPerPage", 100)
	v.SetDefault("ledger.timezone", "UTC")
	v.SetDefault("cache.ttl", 30*time.Second)

	v.BindEnv("logger.level", "ECO_LOG_LEVEL")
	v.BindEnv("storage.driver", "ECO_STORAGE_DRIVER")
	v.BindEnv("storage.dsn", "ECO_STORAGE_DSN")
	v.BindEnv("cache.enabled", "ECO_CACHE_ENABLED")
	v.BindEnv("cache.size", "ECO_CACHE_SIZE")
	v.BindEnv("ledger.timezone", "ECO_TIMEZONE")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = appName
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
