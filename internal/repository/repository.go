package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/oracle312/AuthService/internal/config"
	"github.com/oracle312/AuthService/internal/domain"
)

// Store is the account store shared by the Postgres and SQLite repositories.
type Store interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
}

// NewStore picks the repository matching the configured driver.
func NewStore(cfg *config.Config, dbpool *sql.DB) Store {
	if cfg.Database.Driver == config.DriverSQLite {
		return NewSQLiteRepository(cfg, dbpool)
	}
	return NewRepository(cfg, dbpool)
}

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}

func (r *Repository) queryTimeout() time.Duration {
	return r.cfg.QueryTimeout()
}
