package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pedidos-api/internal/config"
	"pedidos-api/internal/entities"

	"github.com/golang-jwt/jwt/v5"
)

// TokenPayload is the identity claim carried by an issued token.
type TokenPayload struct {
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type tokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type authService struct {
	logger *slog.Logger
	cfg    config.JWT
}

func NewAuthService(logger *slog.Logger, cfg config.JWT) *authService {
	return &authService{
		logger: logger.With(slog.String("service", "auth")),
		cfg:    cfg,
	}
}

// Authenticate checks the credentials against the configured development
// account (exact, case-sensitive match) and issues a signed HS256 token.
// The returned payload is taken from the encoded claims, so any cookie or
// session built from its expiry agrees exactly with what Verify accepts.
func (s *authService) Authenticate(ctx context.Context, username, password string) (string, TokenPayload, error) {
	if username != s.cfg.DevUser || password != s.cfg.DevPass {
		s.logger.WarnContext(ctx, "login rejected", slog.String("username", username))
		return "", TokenPayload{}, entities.ErrInvalidCredentials
	}

	// NumericDate serializes at second precision; truncate up front so the
	// payload matches the claims a later Verify will decode.
	now := time.Now().Truncate(time.Second)
	claims := tokenClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", TokenPayload{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return token, TokenPayload{
		Username:  claims.Username,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Verify parses and checks a token. Malformed, forged and expired tokens all
// collapse to the same error kind: callers learn nothing about which check
// failed.
func (s *authService) Verify(token string) (TokenPayload, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return []byte(s.cfg.Secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return TokenPayload{}, entities.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || claims.ExpiresAt == nil {
		return TokenPayload{}, entities.ErrInvalidToken
	}

	payload := TokenPayload{
		Username:  claims.Username,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		payload.IssuedAt = claims.IssuedAt.Time
	}
	return payload, nil
}
