package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const EnvProduction = "production"

// MinJWTKeyLength is the minimum size of the HS256 signing key in bytes.
const MinJWTKeyLength = 32

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"8080"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		Driver         string `env:"DRIVER" envDefault:"postgres"`
		DSN            string `env:"DSN,required,notEmpty"`
		ConnectTimeout int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout   int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		MaxOpenConns   int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns   int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime    int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	JWT struct {
		Key           string `env:"KEY,required,notEmpty,unset"`
		Issuer        string `env:"ISSUER,required,notEmpty"`
		Audience      string `env:"AUDIENCE,required,notEmpty"`
		ExpiryMinutes int    `env:"EXPIRY_MINUTES,required,notEmpty"`
	} `envPrefix:"JWT_"`
	Auth struct {
		BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`
	} `envPrefix:"AUTH_"`
	InitialAccount struct {
		Username string `env:"USERNAME"`
		Password string `env:"PASSWORD,unset"`
		Name     string `env:"NAME" envDefault:"Administrator"`
		Email    string `env:"EMAIL"`
	} `envPrefix:"INITIAL_ACCOUNT_"`
	Redis struct {
		Addr     string `env:"ADDR"`
		Password string `env:"PASSWORD"`
		DB       int    `env:"DB" envDefault:"0"`
		LockTTL  int    `env:"LOCK_TTL" envDefault:"10"` // 秒
	} `envPrefix:"REDIS_"`
	RabbitMQ struct {
		DSN            string `env:"DSN"`
		Queue          string `env:"QUEUE" envDefault:"email_queue"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Email struct {
		SMTP struct {
			Username    string `env:"USERNAME"`
			Password    string `env:"PASSWORD"`
			Host        string `env:"HOST"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	Seed struct {
		User struct {
			Password string `env:"PASSWORD"`
			Domain   string `env:"DOMAIN" envDefault:"example.com"`
		} `envPrefix:"USER_"`
	} `envPrefix:"SEED_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the service must not start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if len(c.JWT.Key) < MinJWTKeyLength {
		return fmt.Errorf("JWT_KEY must be at least %d bytes", MinJWTKeyLength)
	}
	if c.JWT.ExpiryMinutes <= 0 {
		return errors.New("JWT_EXPIRY_MINUTES must be positive")
	}

	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("AUTH_BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	if c.InitialAccount.Username != "" && (c.InitialAccount.Password == "" || c.InitialAccount.Email == "") {
		return errors.New("INITIAL_ACCOUNT_PASSWORD and INITIAL_ACCOUNT_EMAIL are required with INITIAL_ACCOUNT_USERNAME")
	}

	return nil
}

func (c *Config) TokenExpiry() time.Duration {
	return time.Duration(c.JWT.ExpiryMinutes) * time.Minute
}

func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.Database.QueryTimeout) * time.Second
}
