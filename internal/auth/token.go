package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/oracle312/AuthService/internal/config"
	"github.com/oracle312/AuthService/internal/domain"
)

type AuthClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// UserID parses the subject back into the user identifier.
func (c *AuthClaims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// TokenIssuer signs and validates HS256 bearer tokens. It keeps no state
// besides its configuration: tokens are neither stored nor revocable.
type TokenIssuer struct {
	key      []byte
	issuer   string
	audience string
	expiry   time.Duration
}

func NewTokenIssuer(cfg *config.Config) *TokenIssuer {
	return &TokenIssuer{
		key:      []byte(cfg.JWT.Key),
		issuer:   cfg.JWT.Issuer,
		audience: cfg.JWT.Audience,
		expiry:   cfg.TokenExpiry(),
	}
}

func (ti *TokenIssuer) Issue(identity domain.Identity, now time.Time) (domain.SignedToken, error) {
	expiresAt := jwt.NewNumericDate(now.Add(ti.expiry))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Name: identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(identity.UserID, 10),
			Issuer:    ti.issuer,
			Audience:  jwt.ClaimStrings{ti.audience},
			ExpiresAt: expiresAt,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	})

	ss, err := token.SignedString(ti.key)
	if err != nil {
		return domain.SignedToken{}, fmt.Errorf("sign token: %w", err)
	}

	return domain.SignedToken{
		Token:  ss,
		Expiry: expiresAt.Time,
	}, nil
}

// Validate accepts a token only if it is HS256-signed with our key, carries
// our issuer and audience, and now is not past its expiry.
func (ti *TokenIssuer) Validate(tokenString string, now time.Time) (*AuthClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(ti.issuer),
		jwt.WithAudience(ti.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	claims := &AuthClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return ti.key, nil
	})
	if err != nil {
		return nil, errors.Join(domain.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	if _, err := claims.UserID(); err != nil {
		return nil, errors.Join(domain.ErrInvalidToken, fmt.Errorf("subject: %w", err))
	}

	return claims, nil
}
