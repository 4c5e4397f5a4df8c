package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pribylovaa/sqlchat/internal/models"
	"github.com/pribylovaa/sqlchat/internal/pkg/log"
	"github.com/pribylovaa/sqlchat/internal/pkg/redact"
	"github.com/pribylovaa/sqlchat/internal/storage"
)

// MinPasswordLen — минимальная длина пароля в символах.
const MinPasswordLen = 8

// SignUpInput — данные формы регистрации.
type SignUpInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// SignUp регистрирует нового пользователя.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*models.User, error) {
	const op = "service.auth.SignUp"

	lg := log.From(ctx)

	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	if first == "" || last == "" {
		return nil, fmt.Errorf("%s: %w: first and last name are required", op, ErrInvalidInput)
	}

	email, err := validateEmail(in.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := validatePassword(in.Password); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.users.UserByEmail(ctx, email)
	if err == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		lg.Error("password_hash_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		FirstName:    first,
		LastName:     last,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("user_signed_up",
		slog.String("user_id", user.ID.String()),
		slog.String("email", redact.Email(email)),
	)

	return user, nil
}

// Login проверяет email и пароль и возвращает пользователя.
// Неизвестный email и неверный пароль неразличимы для вызывающего.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	const op = "service.auth.Login"

	lg := log.From(ctx)

	normEmail, err := validateEmail(email)
	if err != nil || password == "" {
		// Та же стоимость ответа, что и у неизвестного email.
		s.hasher.Verify(ctx, password, s.hasher.dummy)
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := s.users.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Выравниваем время ответа с веткой существующего пользователя.
			s.hasher.Verify(ctx, password, s.hasher.dummy)
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !s.hasher.Verify(ctx, password, user.PasswordHash) {
		lg.Info("login_rejected",
			slog.String("email", redact.Email(normEmail)),
		)
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user, password)
	}

	return user, nil
}

// rehash переводит хэш пароля на текущий алгоритм/параметры.
// Ошибки только логируются: вход уже подтверждён.
func (s *Service) rehash(ctx context.Context, user *models.User, password string) {
	const op = "service.auth.rehash"

	lg := log.From(ctx)

	hash, err := s.hasher.Hash(password)
	if err != nil {
		lg.Error("password_rehash_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return
	}

	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		lg.Error("password_rehash_save_failed",
			slog.String("op", op),
			slog.String("user_id", user.ID.String()),
			slog.String("err", err.Error()),
		)
		return
	}

	user.PasswordHash = hash
	lg.Info("password_rehashed",
		slog.String("user_id", user.ID.String()),
	)
}

// validateEmail проверяет базовый формат email и обрезает пробелы снаружи.
func validateEmail(raw string) (string, error) {
	const op = "service.auth.validateEmail"

	email := strings.TrimSpace(raw)
	if email == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	return strings.ToLower(email), nil
}

// validatePassword проверяет минимальную длину пароля.
func validatePassword(pw string) error {
	const op = "service.auth.validatePassword"

	if utf8.RuneCountInString(pw) < MinPasswordLen {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	return nil
}
