package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AlibekovAA/task-tracker/backend/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/task-tracker/backend/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/task-tracker/backend/internal/common/errors"
	"github.com/AlibekovAA/task-tracker/backend/internal/observability/metrics"
)

// Manager issues and verifies signed, expiring access tokens.
type Manager interface {
	Issue(userID string) (string, time.Time, error)
	Verify(token string) (string, error)
}

type JWTManager struct {
	secret      []byte
	ttl         time.Duration
	clock       clock.Clock
	idGenerator commoncrypto.IDGenerator
}

func NewJWTManager(secret string, ttl time.Duration, clk clock.Clock, idGenerator commoncrypto.IDGenerator) *JWTManager {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	if idGenerator == nil {
		idGenerator = commoncrypto.NewUUIDGenerator()
	}
	return &JWTManager{
		secret:      []byte(secret),
		ttl:         ttl,
		clock:       clk,
		idGenerator: idGenerator,
	}
}

func (m *JWTManager) Issue(userID string) (string, time.Time, error) {
	jti, err := m.idGenerator.NewID()
	if err != nil {
		return "", time.Time{}, err
	}

	now := m.clock.Now()
	expiresAt := now.Add(m.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := t.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	metrics.AccessTokensIssued.Inc()
	return tokenString, claims.ExpiresAt.Time, nil
}

func (m *JWTManager) Verify(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", commonerrors.ErrTokenExpired.WithCause(err)
		}
		return "", commonerrors.ErrInvalidToken.WithCause(err)
	}
	if !parsed.Valid {
		return "", commonerrors.ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", commonerrors.ErrInvalidToken.WithCause(errors.New("missing sub claim"))
	}
	return claims.Subject, nil
}
