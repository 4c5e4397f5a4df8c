package models

import "time"

// TokenType — назначение токена: доступ к API или обновление доступа.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Valid сообщает, является ли значение одним из известных типов токена.
func (t TokenType) Valid() bool {
	switch t {
	case TokenTypeAccess, TokenTypeRefresh:
		return true
	default:
		return false
	}
}

func (t TokenType) String() string {
	return string(t)
}

// Token — разобранное содержимое подписанного токена.
// Токены не хранятся на сервере: их подлинность определяется подписью.
type Token struct {
	Subject   string
	Type      TokenType
	IssuedAt  time.Time
	ExpiresAt time.Time
}
