package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	HTTP struct {
		Port            string        `env:"PORT" env-default:"8080"`
		ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
	}
	Storage struct {
		DataFile    string `env:"ORDERS_DATA_FILE" env-default:"data/orders.json"`
		DatabaseURL string `env:"DATABASE_URL"`
	}
	Metrics struct {
		Enabled bool   `env:"METRICS_ENABLED" env-default:"true"`
		Token   string `env:"METRICS_TOKEN"`
	}
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Addr() string {
	return ":" + c.HTTP.Port
}

// UsePostgres reports whether orders live in Postgres instead of the data file.
func (c Config) UsePostgres() bool {
	return c.Storage.DatabaseURL != ""
}
