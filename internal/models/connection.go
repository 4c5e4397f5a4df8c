package models

import (
	"time"

	"github.com/google/uuid"
)

// Connection — сохранённые параметры подключения пользователя к внешней БД.
// Пароль хранится только в зашифрованном виде.
type Connection struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	DBType            string
	Host              string
	Port              int
	DBName            string
	Username          string
	EncryptedPassword []byte
	CreatedAt         time.Time
}

// ConnectionParams — параметры подключения в открытом виде,
// как их присылает клиент при проверке или сохранении.
type ConnectionParams struct {
	DBType   string
	Host     string
	Port     int
	DBName   string
	Username string
	Password string
}
