package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/yanqian/beachsafety/pkg/errors"
)

// Service exposes the admin session workflow.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	ValidateToken(ctx context.Context, token string) (Claims, error)
	SessionTTL() time.Duration
}

type service struct {
	cfg    Config
	clock  clockwork.Clock
	logger *slog.Logger
}

const (
	tokenTypeSession = "admin_session"
	adminSubject     = "admin"
	defaultTTL       = 8 * time.Hour
)

// NewService constructs a Service instance.
func NewService(cfg Config, clock clockwork.Clock, logger *slog.Logger) Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultTTL
	}
	return &service{
		cfg:    cfg,
		clock:  clock,
		logger: logger.With("component", "auth.service"),
	}
}

func (s *service) SessionTTL() time.Duration {
	return s.cfg.SessionTTL
}

func (s *service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	if !s.configured() {
		return LoginResponse{}, apperrors.Wrap(apperrors.CodeAuthNotConfigured, "admin password is not configured", nil)
	}
	if strings.TrimSpace(req.Password) == "" {
		return LoginResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "password cannot be empty", nil)
	}
	if !s.checkPassword(req.Password) {
		s.logger.Warn("admin login rejected")
		return LoginResponse{}, apperrors.Wrap(apperrors.CodeUnauthorized, "invalid password", nil)
	}
	token, expiresAt, err := s.generateToken()
	if err != nil {
		return LoginResponse{}, err
	}
	s.logger.Info("admin session issued", "expires_at", expiresAt)
	return LoginResponse{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *service) ValidateToken(ctx context.Context, token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token missing", nil)
	}
	if s.cfg.Secret == "" {
		return Claims{}, apperrors.Wrap(apperrors.CodeAuthNotConfigured, "session secret is not configured", nil)
	}
	claims, err := s.parseToken(token)
	if err != nil {
		return Claims{}, err
	}
	if claims.TokenType != tokenTypeSession {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token type mismatch", nil)
	}
	return claims, nil
}

func (s *service) configured() bool {
	return s.cfg.Secret != "" && (s.cfg.PasswordHash != "" || s.cfg.Password != "")
}

func (s *service) checkPassword(password string) bool {
	if s.cfg.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(s.cfg.Password), []byte(password)) == 1
}

func (s *service) generateToken() (string, time.Time, error) {
	now := s.clock.Now()
	expiresAt := now.Add(s.cfg.SessionTTL)
	claims := tokenClaims{
		TokenType: tokenTypeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminSubject,
			ID:        newTokenID(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", time.Time{}, apperrors.Wrap(apperrors.CodeAuthError, "failed to sign token", err)
	}
	return signed, expiresAt, nil
}

func (s *service) parseToken(token string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token validation failed", err)
	}
	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token invalid", nil)
	}
	return Claims{
		Subject:   claims.Subject,
		SessionID: claims.ID,
		TokenType: claims.TokenType,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

type tokenClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"type"`
}

func newTokenID(now time.Time) string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return strconv.FormatInt(now.UnixNano(), 10)
	}
	return hex.EncodeToString(buf)
}
