package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/saccodesk/backoffice/internal/core/domain"
	"github.com/saccodesk/backoffice/internal/core/ports"
)

const tokenIssuer = "sacco-backoffice"

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// JWTSessionTokens signs the browser's handle on a server-side session.
// The token only names the session; nothing of the upstream credential is in it.
type JWTSessionTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var _ ports.SessionTokens = (*JWTSessionTokens)(nil)

func NewJWTSessionTokens(secret string, ttl time.Duration) *JWTSessionTokens {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &JWTSessionTokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *JWTSessionTokens) Issue(sessionID string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	claims := sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, exp, nil
}

func (t *JWTSessionTokens) Parse(token string) (string, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return "", errors.Join(domain.ErrUnauthenticated, err)
	}
	if claims.SessionID == "" {
		return "", fmt.Errorf("%w: token has no session", domain.ErrUnauthenticated)
	}
	return claims.SessionID, nil
}
