package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pribylovaa/sqlchat/internal/http/middleware"
	"github.com/pribylovaa/sqlchat/internal/service"
	"github.com/pribylovaa/sqlchat/internal/session"
)

// maxBodyBytes — предел размера JSON-тела запроса.
const maxBodyBytes = 1 << 20

// Handlers агрегирует зависимости хендлеров.
type Handlers struct {
	Auth        *service.Service
	Sessions    *session.Manager
	Connections *service.Connections
	Metrics     *middleware.Metrics
}

// New собирает хендлеры. metrics может быть nil.
func New(auth *service.Service, sessions *session.Manager, conns *service.Connections, metrics *middleware.Metrics) *Handlers {
	return &Handlers{
		Auth:        auth,
		Sessions:    sessions,
		Connections: conns,
		Metrics:     metrics,
	}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
// Любая ошибка разбора оборачивает service.ErrInvalidInput (400).
func decodeStrict(w http.ResponseWriter, r *http.Request, value any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(value); err != nil {
		return fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
	}

	return nil
}
