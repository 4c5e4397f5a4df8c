// session выдаёт и удаляет cookie сессии (access_token / refresh_token)
// и реализует обновление access-токена по refresh-токену.
// Сессия целиком живёт в cookie клиента: серверного хранилища нет.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/sqlchat/internal/config"
	"github.com/pribylovaa/sqlchat/internal/models"
	"github.com/pribylovaa/sqlchat/internal/service"
)

var (
	// ErrNoRefreshToken — запрос без refresh-cookie.
	ErrNoRefreshToken = fmt.Errorf("no refresh token: %w", service.ErrUnauthenticated)
	// ErrInvalidRefresh — refresh-токен недействителен или истёк.
	ErrInvalidRefresh = fmt.Errorf("invalid or expired refresh token: %w", service.ErrUnauthenticated)
)

// Codec выпускает и проверяет токены.
type Codec interface {
	Create(subject string, t models.TokenType) (string, error)
	Decode(token string, want models.TokenType) (string, error)
	TTL(t models.TokenType) time.Duration
}

// Pair — cookie, выставляемые при входе.
type Pair struct {
	Access  *http.Cookie
	Refresh *http.Cookie
}

// Cookies возвращает пару в порядке access, refresh.
func (p *Pair) Cookies() []*http.Cookie {
	return []*http.Cookie{p.Access, p.Refresh}
}

// Manager формирует cookie сессии по настройкам конфигурации.
type Manager struct {
	codec Codec
	cfg   config.CookieConfig
}

// NewManager создаёт Manager.
func NewManager(codec Codec, cfg config.CookieConfig) *Manager {
	return &Manager{
		codec: codec,
		cfg:   cfg,
	}
}

// AccessName — имя cookie с access-токеном.
func (m *Manager) AccessName() string { return m.cfg.AccessName }

// RefreshName — имя cookie с refresh-токеном.
func (m *Manager) RefreshName() string { return m.cfg.RefreshName }

// IssueLogin выпускает access и refresh токены пользователя и оборачивает их в cookie.
func (m *Manager) IssueLogin(userID uuid.UUID) (*Pair, error) {
	const op = "session.IssueLogin"

	access, err := m.issue(userID.String(), models.TokenTypeAccess)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refresh, err := m.issue(userID.String(), models.TokenTypeRefresh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Pair{Access: access, Refresh: refresh}, nil
}

// Refresh проверяет refresh-токен и выпускает новый access-cookie для того же subject.
// Пользователь в хранилище не проверяется: удалённый пользователь
// отсеется на следующем защищённом запросе.
func (m *Manager) Refresh(refreshValue string) (*http.Cookie, error) {
	const op = "session.Refresh"

	if refreshValue == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNoRefreshToken)
	}

	sub, err := m.codec.Decode(refreshValue, models.TokenTypeRefresh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrInvalidRefresh, err)
	}

	access, err := m.issue(sub, models.TokenTypeAccess)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return access, nil
}

// RefreshFromRequest — Refresh по cookie входящего запроса.
func (m *Manager) RefreshFromRequest(r *http.Request) (*http.Cookie, error) {
	c, err := r.Cookie(m.cfg.RefreshName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return m.Refresh("")
		}

		return nil, err
	}

	return m.Refresh(c.Value)
}

// Terminate возвращает cookie, удаляющие обе cookie сессии.
// Результат не зависит от состояния и одинаков при повторных вызовах.
func (m *Manager) Terminate() []*http.Cookie {
	return []*http.Cookie{
		m.expired(m.cfg.AccessName),
		m.expired(m.cfg.RefreshName),
	}
}

// Apply выставляет cookie в ответ.
func (m *Manager) Apply(w http.ResponseWriter, cookies ...*http.Cookie) {
	for _, c := range cookies {
		http.SetCookie(w, c)
	}
}

func (m *Manager) issue(subject string, t models.TokenType) (*http.Cookie, error) {
	token, err := m.codec.Create(subject, t)
	if err != nil {
		return nil, err
	}

	name := m.cfg.AccessName
	if t == models.TokenTypeRefresh {
		name = m.cfg.RefreshName
	}

	c := m.base(name)
	c.Value = token
	c.MaxAge = int(m.codec.TTL(t) / time.Second)

	return c, nil
}

func (m *Manager) expired(name string) *http.Cookie {
	c := m.base(name)
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)

	return c
}

func (m *Manager) base(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Path:     m.cfg.Path,
		Domain:   m.cfg.Domain,
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: m.cfg.SameSiteMode(),
	}
}
