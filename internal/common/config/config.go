// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	Prediction    PredictionConfig    `mapstructure:"prediction"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Regions       RegionsConfig       `mapstructure:"regions"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	GinMode         string `mapstructure:"gin_mode"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// PredictionConfig points at the external prediction endpoint.
type PredictionConfig struct {
	EndpointURL string `mapstructure:"endpoint_url"`
	APIKey      string `mapstructure:"api_key"`
	Timeout     int    `mapstructure:"timeout"` // milliseconds
}

// Storage drivers for the snapshot key-value port.
const (
	StorageDriverRedis         = "redis"
	StorageDriverPostgres      = "postgres"
	StorageDriverElasticsearch = "elasticsearch"
	StorageDriverMemory        = "memory"
)

type StorageConfig struct {
	Driver      string `mapstructure:"driver"`
	SnapshotKey string `mapstructure:"snapshot_key"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
	Table          string `mapstructure:"table"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"` // Single URL for backwards compatibility
	Index     string   `mapstructure:"index"`
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RegionsConfig locates the region catalog file.
type RegionsConfig struct {
	CatalogPath string `mapstructure:"catalog_path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"` // comma-separated: stdout, stderr or file paths
}

type ObservabilityConfig struct {
	ServiceName    string  `mapstructure:"service_name"`
	MetricsEnabled bool    `mapstructure:"metrics_enabled"`
	TraceSampling  float64 `mapstructure:"trace_sampling"`
}
