package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/yanqian/beachsafety/pkg/errors"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_LoginAndValidate(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC))
	svc := NewService(Config{Password: "tide-pool", Secret: "test-secret"}, clock, newTestLogger())

	resp, err := svc.Login(context.Background(), LoginRequest{Password: "tide-pool"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.Equal(t, clock.Now().Add(8*time.Hour), resp.ExpiresAt)
	require.Equal(t, 8*time.Hour, svc.SessionTTL())

	claims, err := svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	require.Equal(t, "admin", claims.Subject)
	require.NotEmpty(t, claims.SessionID)
	require.True(t, resp.ExpiresAt.Equal(claims.ExpiresAt))

	clock.Advance(9 * time.Hour)
	_, err = svc.ValidateToken(context.Background(), resp.Token)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))
}

func TestService_LoginWithBcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-surf"), bcrypt.MinCost)
	require.NoError(t, err)
	svc := NewService(Config{PasswordHash: string(hash), Password: "ignored", Secret: "k"}, clockwork.NewFakeClock(), newTestLogger())

	_, err = svc.Login(context.Background(), LoginRequest{Password: "s3cret-surf"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginRequest{Password: "ignored"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
}

func TestService_LoginFailures(t *testing.T) {
	unconfigured := NewService(Config{Secret: "k"}, clockwork.NewFakeClock(), newTestLogger())
	_, err := unconfigured.Login(context.Background(), LoginRequest{Password: "anything"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeAuthNotConfigured))

	svc := NewService(Config{Password: "right", Secret: "k"}, clockwork.NewFakeClock(), newTestLogger())
	_, err = svc.Login(context.Background(), LoginRequest{Password: "  "})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	_, err = svc.Login(context.Background(), LoginRequest{Password: "wrong"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
}

func TestService_RejectsForeignTokens(t *testing.T) {
	clock := clockwork.NewFakeClock()
	issuer := NewService(Config{Password: "p", Secret: "other-secret"}, clock, newTestLogger())
	resp, err := issuer.Login(context.Background(), LoginRequest{Password: "p"})
	require.NoError(t, err)

	svc := NewService(Config{Password: "p", Secret: "test-secret"}, clock, newTestLogger())
	_, err = svc.ValidateToken(context.Background(), resp.Token)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))

	_, err = svc.ValidateToken(context.Background(), "")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))
	_, err = svc.ValidateToken(context.Background(), "not-a-jwt")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))
}
