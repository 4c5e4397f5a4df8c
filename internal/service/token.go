package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pribylovaa/sqlchat/internal/models"
)

type tokenClaims struct {
	Type models.TokenType `json:"type"`
	jwt.RegisteredClaims
}

// TokenCodec выпускает и проверяет подписанные HS256 токены
// с полями {sub, type, iat, exp}. Секрет неизменяем после создания.
type TokenCodec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// CodecOption настраивает TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock подменяет источник времени (для тестов).
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		c.now = now
	}
}

// NewTokenCodec создаёт кодек с секретом подписи и сроками жизни токенов.
func NewTokenCodec(secret string, accessTTL, refreshTTL time.Duration, opts ...CodecOption) *TokenCodec {
	c := &TokenCodec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// TTL возвращает срок жизни токена указанного типа.
func (c *TokenCodec) TTL(t models.TokenType) time.Duration {
	if t == models.TokenTypeRefresh {
		return c.refreshTTL
	}

	return c.accessTTL
}

// Create выпускает токен типа t для subject.
func (c *TokenCodec) Create(subject string, t models.TokenType) (string, error) {
	const op = "service.token.Create"

	if !t.Valid() {
		return "", fmt.Errorf("%s: %w: %q", op, ErrInvalidTokenType, t)
	}

	now := c.now().UTC()
	claims := tokenClaims{
		Type: t,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.TTL(t))),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// Decode проверяет токен и возвращает его subject.
func (c *TokenCodec) Decode(token string, want models.TokenType) (string, error) {
	parsed, err := c.Parse(token, want)
	if err != nil {
		return "", err
	}

	return parsed.Subject, nil
}

// DecodeAccess — Decode для access-токена.
func (c *TokenCodec) DecodeAccess(token string) (string, error) {
	return c.Decode(token, models.TokenTypeAccess)
}

// DecodeRefresh — Decode для refresh-токена.
func (c *TokenCodec) DecodeRefresh(token string) (string, error) {
	return c.Decode(token, models.TokenTypeRefresh)
}

// Parse проверяет подпись, алгоритм, срок действия, тип и subject токена.
// Любая ошибка оборачивает ErrInvalidToken; причина (ErrTokenExpired,
// ErrTokenType) доступна через errors.Is для диагностики.
func (c *TokenCodec) Parse(token string, want models.TokenType) (*models.Token, error) {
	const op = "service.token.Parse"

	if !want.Valid() {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrInvalidTokenType, want)
	}

	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (interface{}, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, ErrTokenExpired)
		}

		return nil, fmt.Errorf("%s: %w: %v", op, ErrInvalidToken, err)
	}

	if claims.Type != want {
		return nil, fmt.Errorf("%s: %w: %w: got %q, want %q", op, ErrInvalidToken, ErrTokenType, claims.Type, want)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%s: %w: empty subject", op, ErrInvalidToken)
	}

	out := &models.Token{
		Subject: claims.Subject,
		Type:    claims.Type,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}

	return out, nil
}
