package models

import (
	"time"

	"github.com/google/uuid"
)

// User - модель пользователя в системе.
//
// PasswordHash хранит закодированный хэш (argon2id в формате PHC
// или bcrypt для учётных записей, созданных до перехода на argon2id).
type User struct {
	ID           uuid.UUID
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
