package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	apierrors "github.com/pribylovaa/sqlchat/internal/http/errors"
	"github.com/pribylovaa/sqlchat/internal/http/middleware"
	"github.com/pribylovaa/sqlchat/internal/models"
	"github.com/pribylovaa/sqlchat/internal/service"
)

// TestConnection пробует подключиться к внешней БД, ничего не сохраняя.
// Сбой подключения — это 200 с ok=false, а не ошибка API.
func (h *Handlers) TestConnection(w http.ResponseWriter, r *http.Request) {
	var in models.ConnectionRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	res, err := h.Connections.Test(r.Context(), in.ToParams())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.MessageResponse{OK: res.OK, Message: res.Message})
}

func (h *Handlers) SaveConnection(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		apierrors.WriteError(w, r, service.ErrUnauthenticated)
		return
	}

	var in models.ConnectionRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	conn, err := h.Connections.Save(r.Context(), user.ID, in.ToParams())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.ConnectionCreatedResponse{OK: true, ConnectionID: conn.ID})
}

func (h *Handlers) ListConnections(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		apierrors.WriteError(w, r, service.ErrUnauthenticated)
		return
	}

	conns, err := h.Connections.List(r.Context(), user.ID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ConnectionsToResponse(conns))
}

// TestSavedConnection перепроверяет сохранённое подключение текущего пользователя.
func (h *Handlers) TestSavedConnection(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		apierrors.WriteError(w, r, service.ErrUnauthenticated)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, fmt.Errorf("%w: bad connection id", service.ErrInvalidInput))
		return
	}

	res, err := h.Connections.TestSaved(r.Context(), user.ID, id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.MessageResponse{OK: res.OK, Message: res.Message})
}
