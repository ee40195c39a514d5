package config

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	AppPort  string `env:"APP_PORT"  envDefault:"8080"`
	AppEnv   string `env:"APP_ENV"   envDefault:"production"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DBDriver    string `env:"DB_DRIVER"    envDefault:"mysql"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`

	MySQLHost string `env:"MYSQL_HOST" envDefault:"mysql"`
	MySQLPort string `env:"MYSQL_PORT" envDefault:"3306"`
	MySQLDB   string `env:"MYSQL_DB"   envDefault:"loanledger"`
	MySQLUser string `env:"MYSQL_USER" envDefault:"loanledger"`
	MySQLPass string `env:"MYSQL_PASS" envDefault:"loanledger"`

	PostgresDSN string `env:"POSTGRES_DSN"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"loanledger.db"`

	RedisAddr    string `env:"REDIS_ADDR"              envDefault:"redis:6379"`
	RedisDB      int    `env:"REDIS_DB"                envDefault:"0"`
	IdempTTLSecs int    `env:"IDEMPOTENCY_TTL_SECONDS" envDefault:"300"`

	DefaultAnnualRate decimal.Decimal `env:"DEFAULT_ANNUAL_RATE" envDefault:"12.0"`

	SweepInterval          time.Duration `env:"SWEEP_INTERVAL"           envDefault:"24h"`
	StaleDisbursementAfter time.Duration `env:"STALE_DISBURSEMENT_AFTER" envDefault:"15m"`

	TransferTimeout     time.Duration `env:"TRANSFER_TIMEOUT"      envDefault:"5s"`
	TransferMaxAttempts int           `env:"TRANSFER_MAX_ATTEMPTS" envDefault:"3"`
	TransferLatency     time.Duration `env:"TRANSFER_LATENCY"      envDefault:"0s"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	c := &Config{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case DriverMySQL:
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return errors.New("missing POSTGRES_DSN")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (mysql|postgres|sqlite)", c.DBDriver)
	}
	if c.DefaultAnnualRate.IsNegative() {
		return fmt.Errorf("DEFAULT_ANNUAL_RATE must not be negative, got %s", c.DefaultAnnualRate)
	}
	if c.TransferMaxAttempts < 1 {
		return errors.New("TRANSFER_MAX_ATTEMPTS must be at least 1")
	}
	if c.TransferTimeout <= 0 || c.SweepInterval <= 0 || c.StaleDisbursementAfter <= 0 {
		return errors.New("TRANSFER_TIMEOUT, SWEEP_INTERVAL and STALE_DISBURSEMENT_AFTER must be positive")
	}
	if c.IdempTTLSecs <= 0 {
		return errors.New("IDEMPOTENCY_TTL_SECONDS must be positive")
	}
	return nil
}

func (c *Config) IdempotencyTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

func (c *Config) Development() bool { return c.AppEnv == "development" }

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME, loc=UTC keeps due dates stable
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
