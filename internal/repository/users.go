package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oracle312/AuthService/internal/domain"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

func (r *Repository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `
		SELECT username, email, password_hash, name, position, department, created_at, is_active
		FROM users WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout())
	defer cancel()

	user := &domain.User{
		ID: id,
	}

	dst := []any{&user.Username, &user.Email, &user.PasswordHash, &user.Name, &user.Position, &user.Department, &user.CreatedAt, &user.IsActive}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, translateNoRows(err)
	}

	return user, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, name, position, department, created_at, is_active
		FROM users WHERE username = $1
	`

	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout())
	defer cancel()

	user := &domain.User{
		Username: username,
	}

	dst := []any{&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Position, &user.Department, &user.CreatedAt, &user.IsActive}
	if err := r.dbpool.QueryRowContext(ctx, query, username).Scan(dst...); err != nil {
		return nil, translateNoRows(err)
	}

	return user, nil
}

// CreateUser inserts the user and fills in the generated columns.
// The unique constraints are the only uniqueness check; a violation of either
// one is reported as domain.ErrDuplicateUser.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout())
	defer cancel()

	query := `
		INSERT INTO users (username, email, password_hash, name, position, department)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, is_active
	`

	args := []any{user.Username, user.Email, user.PasswordHash, user.Name, nullable(user.Position), nullable(user.Department)}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.CreatedAt, &user.IsActive); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			switch pgErr.ConstraintName {
			case "users_username_key", "users_email_key":
				return fmt.Errorf("%w: %s", domain.ErrDuplicateUser, pgErr.ConstraintName)
			}
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// nullable turns an optional column into NULL or its value.
func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func translateNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrUserNotFound
	}
	return fmt.Errorf("query user: %w", err)
}
