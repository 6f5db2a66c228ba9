package config

import "fmt"

// DBConfig contains PostgreSQL connection settings.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"rolegate"`
	Password string `env:"PASSWORD" envDefault:"rolegate"`
	Name     string `env:"NAME"     envDefault:"rolegate"`
	SSLMode  string `env:"SSLMODE"  envDefault:"disable"`

	// RunMigrationsOnStart applies pending migrations during bootstrap.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// DSN returns the PostgreSQL connection string.
func (d DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// RedisConfig contains Redis connection settings for the session store.
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
}
