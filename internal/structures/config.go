package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

// StorageConfig selects the ledger backend. SnapshotPath and SaveInterval
// only apply to the memory driver.
type StorageConfig struct {
	Driver       string        `yaml:"driver" validate:"required|in:memory,sqlite,postgres"`
	DSN          string        `yaml:"dsn"`
	SnapshotPath string        `yaml:"snapshotPath" validate:"unixPath"`
	SaveInterval time.Duration `yaml:"saveInterval"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type LedgerConfig struct {
	PerPage    int    `yaml:"perPage" validate:"min:1"`
	MaxPerPage int    `yaml:"maxPerPage" validate:"min:1"`
	Timezone   string `yaml:"timezone"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	WebServer Server        `yaml:"webServer"`
	Storage   StorageConfig `yaml:"storage"`
	Logger    LoggerConfig  `yaml:"logger"`
	Ledger    LedgerConfig  `yaml:"ledger"`
	Cache     CacheConfig   `yaml:"cache"`
	Metrics   MetricsConfig `yaml:"metrics"`
}
