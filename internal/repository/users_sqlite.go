package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oracle312/AuthService/internal/config"
	"github.com/oracle312/AuthService/internal/domain"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteRepository stores users in SQLite. Used for local runs and tests.
type SQLiteRepository struct {
	cfg       *config.Config
	dbpool    *sql.DB
	writeLock sync.Mutex // SQLite 不支持并发写
}

func NewSQLiteRepository(cfg *config.Config, dbpool *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}

func (r *SQLiteRepository) queryTimeout() time.Duration {
	return r.cfg.QueryTimeout()
}

const sqliteUserColumns = `id, username, email, password_hash, name, position, department, created_at, is_active`

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + sqliteUserColumns + ` FROM users WHERE id = ?`

	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout())
	defer cancel()

	return scanSQLiteUser(r.dbpool.QueryRowContext(ctx, query, id))
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + sqliteUserColumns + ` FROM users WHERE username = ?`

	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout())
	defer cancel()

	return scanSQLiteUser(r.dbpool.QueryRowContext(ctx, query, username))
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, user *domain.User) error {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout())
	defer cancel()

	createdAt := time.Now().UTC().Truncate(time.Second)

	query := `
		INSERT INTO users (username, email, password_hash, name, position, department, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	args := []any{user.Username, user.Email, user.PasswordHash, user.Name, nullable(user.Position), nullable(user.Department), createdAt.Unix()}
	res, err := r.dbpool.ExecContext(ctx, query, args...)
	if err != nil {
		var liteErr *sqlite.Error
		if errors.As(err, &liteErr) {
			switch liteErr.Code() {
			case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
				return fmt.Errorf("%w: %s", domain.ErrDuplicateUser, liteErr.Error())
			}
		}
		return fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}

	user.ID = id
	user.CreatedAt = createdAt
	user.IsActive = true

	return nil
}

func scanSQLiteUser(row *sql.Row) (*domain.User, error) {
	var (
		user      domain.User
		createdAt int64
	)

	dst := []any{&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Name, &user.Position, &user.Department, &createdAt, &user.IsActive}
	if err := row.Scan(dst...); err != nil {
		return nil, translateNoRows(err)
	}

	user.CreatedAt = time.Unix(createdAt, 0).UTC()

	return &user, nil
}
