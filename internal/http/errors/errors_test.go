package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pribylovaa/sqlchat/internal/service"
	"github.com/pribylovaa/sqlchat/internal/session"
	"github.com/stretchr/testify/require"
)

func TestToHTTP_BaseMapping(t *testing.T) {
	t.Parallel()

	wrap := func(err error) error { return fmt.Errorf("op: %w", err) }

	tcs := []struct {
		name       string
		in         error
		wantStatus int
		wantCode   string
	}{
		{"invalid_credentials", wrap(service.ErrInvalidCredentials), http.StatusUnauthorized, "invalid_credentials"},
		{"unauthenticated", wrap(service.ErrUnauthenticated), http.StatusUnauthorized, "unauthenticated"},
		{"expired_token", fmt.Errorf("op: %w: %w", service.ErrInvalidToken, service.ErrTokenExpired), http.StatusUnauthorized, "unauthenticated"},
		{"no_refresh", wrap(session.ErrNoRefreshToken), http.StatusUnauthorized, "no_refresh_token"},
		{"bad_refresh", wrap(session.ErrInvalidRefresh), http.StatusUnauthorized, "invalid_refresh_token"},
		{"email_taken", wrap(service.ErrEmailTaken), http.StatusConflict, "email_taken"},
		{"invalid_email", wrap(service.ErrInvalidEmail), http.StatusBadRequest, "invalid_email"},
		{"weak_password", wrap(service.ErrWeakPassword), http.StatusBadRequest, "weak_password"},
		{"unsupported_db", wrap(service.ErrUnsupportedDB), http.StatusBadRequest, "unsupported_database"},
		{"invalid_input", wrap(service.ErrInvalidInput), http.StatusBadRequest, "invalid_argument"},
		{"conn_not_found", wrap(service.ErrConnectionNotFound), http.StatusNotFound, "not_found"},
		{"canceled", wrap(context.Canceled), StatusClientClosedRequest, "canceled"},
		{"deadline", wrap(context.DeadlineExceeded), http.StatusGatewayTimeout, "deadline_exceeded"},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			gotStatus, resp := ToHTTP(tc.in)
			require.Equal(t, tc.wantStatus, gotStatus)
			require.Equal(t, tc.wantCode, resp.Error.Code)
			require.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestToHTTP_TokenReasonNotLeaked(t *testing.T) {
	t.Parallel()

	_, expired := ToHTTP(fmt.Errorf("x: %w: %w", service.ErrInvalidToken, service.ErrTokenExpired))
	_, wrongType := ToHTTP(fmt.Errorf("x: %w: %w", service.ErrInvalidToken, service.ErrTokenType))
	require.Equal(t, expired, wrongType)
}

func TestToHTTP_NilError_Returns500Internal(t *testing.T) {
	t.Parallel()

	gotStatus, resp := ToHTTP(nil)
	require.Equal(t, http.StatusInternalServerError, gotStatus)
	require.Equal(t, "internal", resp.Error.Code)
	require.Equal(t, "internal error", resp.Error.Message)
}

func TestWriteError_WithRequestID(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "rid-1")
	rec := httptest.NewRecorder()

	WriteError(rec, req, service.ErrEmailTaken)

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "email_taken", body.Error.Code)
	require.Equal(t, "Email already registered", body.Error.Message)
	require.Equal(t, "rid-1", body.Error.RequestID)
}
