package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-matchmaker/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "matchmaker"

// Claims holds the session token payload.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 session tokens with the session secret.
type Provider struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	if cfg.Session.Secret == "" {
		return nil, errors.New("session secret is empty")
	}
	if cfg.Session.TTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %s", cfg.Session.TTL)
	}
	return &Provider{secret: []byte(cfg.Session.Secret), expiry: cfg.Session.TTL, now: time.Now}, nil
}

// Expiry is the lifetime of issued tokens.
func (p *Provider) Expiry() time.Duration { return p.expiry }

func (p *Provider) Sign(userID string) (string, error) {
	now := p.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(p.now))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
