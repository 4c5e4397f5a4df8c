// service содержит бизнес-логику приложения:
// хэширование паролей, выпуск/проверку токенов, аутентификацию запросов,
// регистрацию/вход пользователей и работу с подключениями к внешним БД.
//
// Основные аспекты:
//   - Пакет не хранит состояние запроса; все типы безопасны для конкурентного
//     использования при условии, что переданное хранилище потокобезопасно.
//   - Ошибки возвращаются как обёртки над переменными ниже и маппятся
//     HTTP-слоем (internal/http/errors) на коды ответа.
package service

import (
	"errors"

	"github.com/pribylovaa/sqlchat/internal/storage"
)

var (
	// ErrInvalidCredentials — пара email/пароль неверна или пользователь не найден.
	// HTTP 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated — запрос не удалось связать с пользователем
	// (нет токена, токен недействителен, пользователь удалён). HTTP 401.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidToken — токен некорректен: подпись, алгоритм, срок, тип или subject.
	// HTTP 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия токена истёк.
	// Всегда оборачивается вместе с ErrInvalidToken.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenType — тип токена не совпадает с ожидаемым операцией.
	// Всегда оборачивается вместе с ErrInvalidToken.
	ErrTokenType = errors.New("unexpected token type")

	// ErrInvalidTokenType — запрошен выпуск токена неизвестного типа (ошибка программиста).
	ErrInvalidTokenType = errors.New("invalid token type")

	// ErrEmailTaken — e-mail уже занят другим пользователем.
	// HTTP 409.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidEmail — e-mail имеет некорректный формат.
	// HTTP 400.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrWeakPassword — пароль короче минимально допустимой длины.
	// HTTP 400.
	ErrWeakPassword = errors.New("password is too weak")

	// ErrInvalidInput — прочие ошибки валидации входных данных.
	// HTTP 400.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedDB — тип внешней БД не поддерживается.
	// HTTP 400.
	ErrUnsupportedDB = errors.New("unsupported database type")

	// ErrConnectionNotFound — у пользователя нет подключения с таким ID.
	// HTTP 404.
	ErrConnectionNotFound = errors.New("connection not found")
)

// Service описывает регистрацию и вход пользователей.
type Service struct {
	users  storage.UserStorage
	hasher *Hasher
}

// New создаёт новый экземпляр Service.
func New(users storage.UserStorage, hasher *Hasher) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
	}
}
