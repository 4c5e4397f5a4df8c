// errors стандартизирует ответы об ошибках HTTP-слоя.
// На вход принимается ошибка бизнес-слоя (обёртка над сентинелами service/session),
// на выход:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей (причина отказа
//     токена или пароля никогда не раскрывается).
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/sqlchat/internal/service"
	"github.com/pribylovaa/sqlchat/internal/session"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// APIError — единый формат для фронта.
// Code — короткий стабильный код для машиночитаемой обработки на FE.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

type mapping struct {
	target  error
	status  int
	code    string
	message string
}

// Порядок важен: более специфичные ошибки раньше обёрнутых в них общих
// (session.ErrNoRefreshToken оборачивает service.ErrUnauthenticated).
var table = []mapping{
	{session.ErrNoRefreshToken, http.StatusUnauthorized, "no_refresh_token", "No refresh token"},
	{session.ErrInvalidRefresh, http.StatusUnauthorized, "invalid_refresh_token", "Invalid/expired refresh token"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password"},
	{service.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated", "Not authenticated"},
	{service.ErrInvalidToken, http.StatusUnauthorized, "unauthenticated", "Not authenticated"},
	{service.ErrEmailTaken, http.StatusConflict, "email_taken", "Email already registered"},
	{service.ErrInvalidEmail, http.StatusBadRequest, "invalid_email", "Invalid email address"},
	{service.ErrWeakPassword, http.StatusBadRequest, "weak_password", "Password must be at least 8 characters"},
	{service.ErrUnsupportedDB, http.StatusBadRequest, "unsupported_database", "Unsupported database type"},
	{service.ErrInvalidInput, http.StatusBadRequest, "invalid_argument", "invalid argument"},
	{service.ErrConnectionNotFound, http.StatusNotFound, "not_found", "Connection not found"},
	{context.Canceled, StatusClientClosedRequest, "canceled", "canceled"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"},
}

// ToHTTP конвертирует ошибку в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil - это программная ошибка вызова: возвращаем 500/internal,
//     чтобы не послать "200 OK" с телом ошибки и не маскировать баг.
//   - известный сентинел (через errors.Is) - статус и сообщение из таблицы.
//   - прочее - 500/internal (без утечки деталей).
func ToHTTP(err error) (int, ErrorResponse) {
	if err != nil {
		for _, m := range table {
			if errors.Is(err, m.target) {
				return m.status, ErrorResponse{
					Error: APIError{
						Code:    m.code,
						Message: m.message,
					},
				}
			}
		}
	}

	return http.StatusInternalServerError, ErrorResponse{
		Error: APIError{
			Code:    "internal",
			Message: "internal error",
		},
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	// Прокидываем request_id для фронта, чтобы он мог репортить баги с привязкой.
	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
