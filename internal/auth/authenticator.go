// Package auth holds the credential protocol: bcrypt password hashing,
// signup, credential verification and HS256 token issuance.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oracle312/AuthService/internal/config"
	"github.com/oracle312/AuthService/internal/domain"
)

// AccountStore persists users. Implementations translate unique-constraint
// violations into domain.ErrDuplicateUser and missing rows into
// domain.ErrUserNotFound.
type AccountStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
}

type MailPublisher interface {
	Publish(ctx context.Context, msg domain.MailMessage) error
}

type SignupInput struct {
	Username   string
	Password   string
	Name       string
	Email      string
	Position   *string
	Department *string
}

type Authenticator struct {
	store      AccountStore
	guard      SignupGuard
	mailer     MailPublisher
	bcryptCost int

	// dummyHash is compared against when the username is unknown so that
	// both failure paths pay the bcrypt cost.
	dummyHash string
}

func NewAuthenticator(cfg *config.Config, store AccountStore, guard SignupGuard, mailer MailPublisher) (*Authenticator, error) {
	dummyHash, err := HashPassword("dummy-password-for-unknown-users", cfg.Auth.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash dummy password: %w", err)
	}

	return &Authenticator{
		store:      store,
		guard:      guard,
		mailer:     mailer,
		bcryptCost: cfg.Auth.BcryptCost,
		dummyHash:  dummyHash,
	}, nil
}

// Signup creates the account. It fails with domain.ErrDuplicateUser when the
// username or the email is already taken, and with ErrPasswordTooLong when
// the password exceeds MaxPasswordBytes.
func (a *Authenticator) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	if len(in.Password) > MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	release, err := a.guard.Acquire(ctx, "username_"+in.Username, "email_"+in.Email)
	if err != nil {
		return nil, err
	}
	defer release()

	passwordHash, err := HashPassword(in.Password, a.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: passwordHash,
		Name:         in.Name,
		Position:     in.Position,
		Department:   in.Department,
	}
	if err := a.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("已创建用户", "id", user.ID, "username", user.Username)

	// 账户已经创建成功，邮件发送失败不影响注册结果
	msg := domain.MailMessage{
		Type: domain.MailTypeWelcome,
		To:   user.Email,
		Data: domain.WelcomeMailData{
			Name:     user.Name,
			Username: user.Username,
		},
	}
	if err := a.mailer.Publish(ctx, msg); err != nil {
		slog.Warn("无法发送欢迎邮件", "username", user.Username, "error", err)
	}

	return user, nil
}

// Authenticate verifies the credentials. An unknown username and a wrong
// password both yield domain.ErrInvalidCredentials.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (domain.Identity, error) {
	user, err := a.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_, _ = ComparePasswordAndHash(password, a.dummyHash)
			return domain.Identity{}, domain.ErrInvalidCredentials
		}
		return domain.Identity{}, fmt.Errorf("get user: %w", err)
	}

	ok, err := ComparePasswordAndHash(password, user.PasswordHash)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("compare password: %w", err)
	}
	if !ok {
		return domain.Identity{}, domain.ErrInvalidCredentials
	}

	return user.Identity(), nil
}

// Profile returns the account behind a validated token subject.
func (a *Authenticator) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	return a.store.GetUserByID(ctx, userID)
}
