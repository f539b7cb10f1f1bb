// Package auth verifies the bearer tokens issued by the identity service.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"easysign/internal/config"
	"easysign/internal/domain/entity"
)

var (
	ErrMissingToken = errors.New("auth: missing bearer token")
	ErrInvalidToken = errors.New("auth: invalid token")
)

// Claims carried by identity service tokens. Subject holds the user id.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Signer converts the claims into the acting identity
func (c *Claims) Signer() entity.Signer {
	return entity.Signer{
		UserID: c.Subject,
		Email:  entity.NormalizeEmail(c.Email),
		Name:   c.Name,
	}
}

// TokenService validates and, for local development and tests, issues HS256 tokens
type TokenService interface {
	Verify(token string) (*Claims, error)
	Issue(signer entity.Signer, ttl time.Duration) (string, error)
}

type tokenService struct {
	secret []byte
	issuer string
	parser *jwt.Parser
	logger *zap.Logger
}

func NewTokenService(cfg *config.Config, logger *zap.Logger) (TokenService, error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Auth.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Auth.Issuer))
	}

	return &tokenService{
		secret: []byte(cfg.Auth.JWTSecret),
		issuer: cfg.Auth.Issuer,
		parser: jwt.NewParser(opts...),
		logger: logger,
	}, nil
}

func (s *tokenService) Verify(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		s.logger.Debug("Token rejected", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, fmt.Errorf("%w: token must carry sub and email", ErrInvalidToken)
	}

	return claims, nil
}

func (s *tokenService) Issue(signer entity.Signer, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: signer.Email,
		Name:  signer.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   signer.UserID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
