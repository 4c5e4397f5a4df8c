package handlers

import (
	"log/slog"
	"net/http"

	apierrors "github.com/pribylovaa/sqlchat/internal/http/errors"
	"github.com/pribylovaa/sqlchat/internal/http/middleware"
	"github.com/pribylovaa/sqlchat/internal/models"
	logctx "github.com/pribylovaa/sqlchat/internal/pkg/log"
	"github.com/pribylovaa/sqlchat/internal/service"
)

func (h *Handlers) SignUp(w http.ResponseWriter, r *http.Request) {
	var in models.SignUpRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	_, err := h.Auth.SignUp(r.Context(), service.SignUpInput{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  in.Password,
	})
	h.Metrics.ObserveAuth("signup", err == nil)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.MessageResponse{OK: true, Message: "Account created successfully"})
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in models.LoginRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	user, err := h.Auth.Login(r.Context(), in.Email, in.Password)
	h.Metrics.ObserveAuth("login", err == nil)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	pair, err := h.Sessions.IssueLogin(user.ID)
	if err != nil {
		logctx.From(r.Context()).Error("session_issue_failed",
			slog.String("user_id", user.ID.String()),
			slog.String("err", err.Error()),
		)
		apierrors.WriteError(w, r, err)
		return
	}

	h.Sessions.Apply(w, pair.Cookies()...)
	writeJSON(w, http.StatusOK, models.MessageResponse{OK: true, Message: "Login successful"})
}

func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	access, err := h.Sessions.RefreshFromRequest(r)
	h.Metrics.ObserveAuth("refresh", err == nil)
	if err != nil {
		logctx.From(r.Context()).Debug("refresh_rejected", slog.String("err", err.Error()))
		apierrors.WriteError(w, r, err)
		return
	}

	h.Sessions.Apply(w, access)
	writeJSON(w, http.StatusOK, models.MessageResponse{OK: true, Message: "Access token refreshed"})
}

// Logout удаляет обе cookie сессии; аутентификация не требуется.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.Metrics.ObserveAuth("logout", true)
	h.Sessions.Apply(w, h.Sessions.Terminate()...)
	writeJSON(w, http.StatusOK, models.MessageResponse{OK: true, Message: "Logged out"})
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		apierrors.WriteError(w, r, service.ErrUnauthenticated)
		return
	}

	writeJSON(w, http.StatusOK, models.UserToResponse(user))
}
