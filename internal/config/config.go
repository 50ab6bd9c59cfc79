package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Database *dbConfig
	Service  *svcConfig
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"pvb"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`
}

type svcConfig struct {
	Address         string `envconfig:"PVB_SERVICE_ADDRESS" default:":3443"`
	MetricsAddress  string `envconfig:"PVB_SERVICE_METRICS_ADDRESS" default:":8080"`
	BaseUrl         string `envconfig:"PVB_SERVICE_BASE_URL" default:"https://localhost:3443"`
	LogLevel        string `envconfig:"PVB_SERVICE_LOG_LEVEL" default:"info"`
	MigrationFolder string `envconfig:"PVB_SERVICE_MIGRATIONS_FOLDER" default:""`
	// number of per-item workers a bulk call fans out to
	BulkWorkers int `envconfig:"PVB_SERVICE_BULK_WORKERS" default:"4"`
	Auth        Auth
}

type Auth struct {
	AuthenticationType string `envconfig:"PVB_SERVICE_AUTH" default:""`
	JwtSigningKey      string `envconfig:"PVB_SERVICE_JWT_KEY" default:""`
}

func New() (*Config, error) {
	cfg := &Config{
		Database: &dbConfig{},
		Service:  &svcConfig{},
	}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func NewDefault() *Config {
	cfg := &Config{
		Database: &dbConfig{
			Type: "sqlite",
			Name: ":memory:",
		},
		Service: &svcConfig{
			LogLevel:    "info",
			BulkWorkers: 4,
		},
	}
	return cfg
}
