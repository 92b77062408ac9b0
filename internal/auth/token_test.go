package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oracle312/AuthService/internal/config"
	"github.com/oracle312/AuthService/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Key = strings.Repeat("s", config.MinJWTKeyLength)
	cfg.JWT.Issuer = "auth-service"
	cfg.JWT.Audience = "auth-clients"
	cfg.JWT.ExpiryMinutes = 60
	cfg.Database.QueryTimeout = 5
	return cfg
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	ti := NewTokenIssuer(testConfig())

	signed, err := ti.Issue(domain.Identity{UserID: 42, Name: "Alice A"}, testNow)
	require.NoError(t, err)
	require.NotEmpty(t, signed.Token)
	assert.Equal(t, testNow.Add(time.Hour), signed.Expiry)

	claims, err := ti.Validate(signed.Token, testNow)
	require.NoError(t, err)

	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "Alice A", claims.Name)
	assert.Equal(t, "auth-service", claims.Issuer)
	assert.Equal(t, jwt.ClaimStrings{"auth-clients"}, claims.Audience)
	assert.Equal(t, testNow, claims.IssuedAt.Time)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenIssuer_ExpiryBoundary(t *testing.T) {
	ti := NewTokenIssuer(testConfig())

	signed, err := ti.Issue(domain.Identity{UserID: 1, Name: "a"}, testNow)
	require.NoError(t, err)

	_, err = ti.Validate(signed.Token, signed.Expiry.Add(-time.Second))
	require.NoError(t, err)

	_, err = ti.Validate(signed.Token, signed.Expiry.Add(time.Second))
	require.ErrorIs(t, err, domain.ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenIssuer_UniqueIDs(t *testing.T) {
	ti := NewTokenIssuer(testConfig())

	a, err := ti.Issue(domain.Identity{UserID: 1, Name: "a"}, testNow)
	require.NoError(t, err)
	b, err := ti.Issue(domain.Identity{UserID: 1, Name: "a"}, testNow)
	require.NoError(t, err)

	assert.NotEqual(t, a.Token, b.Token)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	cfg := testConfig()
	ti := NewTokenIssuer(cfg)

	signed, err := ti.Issue(domain.Identity{UserID: 1, Name: "a"}, testNow)
	require.NoError(t, err)

	otherKey := testConfig()
	otherKey.JWT.Key = strings.Repeat("x", config.MinJWTKeyLength)

	otherIssuer := testConfig()
	otherIssuer.JWT.Issuer = "someone-else"

	otherAudience := testConfig()
	otherAudience.JWT.Audience = "another-api"

	claims := func(sub string) AuthClaims {
		return AuthClaims{
			Name: "a",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   sub,
				Issuer:    cfg.JWT.Issuer,
				Audience:  jwt.ClaimStrings{cfg.JWT.Audience},
				ExpiresAt: jwt.NewNumericDate(testNow.Add(time.Hour)),
			},
		}
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims("1")).SignedString([]byte(cfg.JWT.Key))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims("1")).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims("alice")).SignedString([]byte(cfg.JWT.Key))
	require.NoError(t, err)

	noExpiry := claims("1")
	noExpiry.ExpiresAt = nil
	withoutExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, noExpiry).SignedString([]byte(cfg.JWT.Key))
	require.NoError(t, err)

	parts := strings.Split(signed.Token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := []struct {
		name   string
		issuer *TokenIssuer
		token  string
	}{
		{name: "wrong key", issuer: NewTokenIssuer(otherKey), token: signed.Token},
		{name: "wrong issuer", issuer: NewTokenIssuer(otherIssuer), token: signed.Token},
		{name: "wrong audience", issuer: NewTokenIssuer(otherAudience), token: signed.Token},
		{name: "other hmac algorithm", issuer: ti, token: hs512},
		{name: "alg none", issuer: ti, token: unsigned},
		{name: "non numeric subject", issuer: ti, token: badSubject},
		{name: "missing expiry", issuer: ti, token: withoutExp},
		{name: "tampered payload", issuer: ti, token: tampered},
		{name: "garbage", issuer: ti, token: "not.a.jwt"},
		{name: "empty", issuer: ti, token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.issuer.Validate(tt.token, testNow)
			require.ErrorIs(t, err, domain.ErrInvalidToken)
		})
	}
}
