// Входные/выходные модели REST API.
package models

import (
	"time"

	"github.com/google/uuid"
)

type SignUpRequest struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MessageResponse — ответ вида {"ok": true, "message": "..."}; его проверяет фронт.
type MessageResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

type UserResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
}

func UserToResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}

type ConnectionRequest struct {
	DBType   string `json:"db_type"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	DBName   string `json:"db_name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r ConnectionRequest) ToParams() ConnectionParams {
	return ConnectionParams{
		DBType:   r.DBType,
		Host:     r.Host,
		Port:     r.Port,
		DBName:   r.DBName,
		Username: r.Username,
		Password: r.Password,
	}
}

type ConnectionCreatedResponse struct {
	OK           bool      `json:"ok"`
	ConnectionID uuid.UUID `json:"connection_id"`
}

// ConnectionResponse — сохранённое подключение без пароля.
type ConnectionResponse struct {
	ID        string    `json:"id"`
	DBType    string    `json:"db_type"`
	Host      string    `json:"host"`
	Port      int       `json:"port"`
	DBName    string    `json:"db_name"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type ConnectionListResponse struct {
	Connections []ConnectionResponse `json:"connections"`
}

func ConnectionsToResponse(conns []Connection) ConnectionListResponse {
	out := ConnectionListResponse{Connections: make([]ConnectionResponse, 0, len(conns))}
	for _, c := range conns {
		out.Connections = append(out.Connections, ConnectionResponse{
			ID:        c.ID.String(),
			DBType:    c.DBType,
			Host:      c.Host,
			Port:      c.Port,
			DBName:    c.DBName,
			Username:  c.Username,
			CreatedAt: c.CreatedAt,
		})
	}

	return out
}
