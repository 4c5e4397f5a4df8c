package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pribylovaa/sqlchat/internal/config"
	"github.com/pribylovaa/sqlchat/internal/pkg/log"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const argon2Prefix = "$argon2id$"

// Верхние границы параметров из хэша: защищают Verify от хэшей,
// требующих неадекватных ресурсов.
const (
	maxArgon2MemoryKiB = 1 << 21
	maxArgon2Time      = 16
	maxArgon2KeyLen    = 128
)

// errMalformedHash — хэш не удалось разобрать; наружу не выходит,
// Verify в этом случае просто возвращает false.
var errMalformedHash = errors.New("malformed password hash")

type argon2Params struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	saltLength  uint32
	keyLength   uint32
}

// Hasher хэширует пароли (argon2id) и проверяет их по хэшам
// argon2id и bcrypt (учётные записи, созданные до перехода на argon2id).
type Hasher struct {
	params     argon2Params
	bcryptCost int
	dummy      string
}

// NewHasher создаёт Hasher с параметрами из конфигурации.
func NewHasher(cfg config.AuthConfig) (*Hasher, error) {
	const op = "service.password.NewHasher"

	h := &Hasher{
		params: argon2Params{
			memory:      cfg.Argon2.Memory,
			iterations:  cfg.Argon2.Iterations,
			parallelism: cfg.Argon2.Parallelism,
			saltLength:  cfg.Argon2.SaltLength,
			keyLength:   cfg.Argon2.KeyLength,
		},
		bcryptCost: cfg.BcryptCost,
	}

	// Хэш-пустышка для выравнивания времени ответа при неизвестном email.
	dummy, err := h.Hash("dummy-password-for-timing")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	h.dummy = dummy

	return h, nil
}

// Hash возвращает argon2id-хэш пароля в формате PHC:
// $argon2id$v=19$m=<KiB>,t=<iter>,p=<par>$<salt>$<hash>.
func (h *Hasher) Hash(password string) (string, error) {
	const op = "service.password.Hash"

	salt := make([]byte, h.params.saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.iterations, h.params.memory, h.params.parallelism, h.params.keyLength)

	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Prefix,
		argon2.Version,
		h.params.memory, h.params.iterations, h.params.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// HashBcrypt возвращает bcrypt-хэш; нужен для совместимости со старыми данными.
func (h *Hasher) HashBcrypt(password string) (string, error) {
	const op = "service.password.HashBcrypt"

	b, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(b), nil
}

// Verify проверяет пароль по закодированному хэшу.
// Неизвестный или повреждённый формат хэша даёт false без паники.
func (h *Hasher) Verify(ctx context.Context, password, encoded string) bool {
	const op = "service.password.Verify"

	ok, err := h.verify(password, encoded)
	if err != nil && !errors.Is(err, errMalformedHash) {
		log.From(ctx).Error("password_verify_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	}

	return ok
}

// NeedsRehash сообщает, что хэш устарел: bcrypt или argon2id с другими параметрами.
func (h *Hasher) NeedsRehash(encoded string) bool {
	if isBcrypt(encoded) {
		return true
	}

	p, _, _, err := decodeArgon2(encoded)
	if err != nil {
		return false
	}

	return p.memory != h.params.memory ||
		p.iterations != h.params.iterations ||
		p.parallelism != h.params.parallelism ||
		p.keyLength != h.params.keyLength
}

func (h *Hasher) verify(password, encoded string) (bool, error) {
	switch {
	case strings.HasPrefix(encoded, argon2Prefix):
		p, salt, want, err := decodeArgon2(encoded)
		if err != nil {
			return false, err
		}

		got := argon2.IDKey([]byte(password), salt, p.iterations, p.memory, p.parallelism, p.keyLength)

		return subtle.ConstantTimeCompare(got, want) == 1, nil

	case isBcrypt(encoded):
		err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		case isMalformedBcrypt(err):
			return false, fmt.Errorf("%w: %v", errMalformedHash, err)
		default:
			return false, err
		}

	default:
		return false, errMalformedHash
	}
}

func decodeArgon2(encoded string) (argon2Params, []byte, []byte, error) {
	var p argon2Params

	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, hash
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return p, nil, nil, errMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, errMalformedHash
	}

	var par uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &par); err != nil {
		return p, nil, nil, errMalformedHash
	}
	if p.memory == 0 || p.memory > maxArgon2MemoryKiB ||
		p.iterations == 0 || p.iterations > maxArgon2Time ||
		par == 0 || par > 255 {
		return p, nil, nil, errMalformedHash
	}
	p.parallelism = uint8(par)

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, errMalformedHash
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 || len(key) > maxArgon2KeyLen {
		return p, nil, nil, errMalformedHash
	}

	p.saltLength = uint32(len(salt))
	p.keyLength = uint32(len(key))

	return p, salt, key, nil
}

func isBcrypt(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}

func isMalformedBcrypt(err error) bool {
	var (
		prefixErr  bcrypt.InvalidHashPrefixError
		costErr    bcrypt.InvalidCostError
		versionErr bcrypt.HashVersionTooNewError
		b64Err     base64.CorruptInputError
	)

	return errors.Is(err, bcrypt.ErrHashTooShort) ||
		errors.As(err, &prefixErr) ||
		errors.As(err, &costErr) ||
		errors.As(err, &versionErr) ||
		errors.As(err, &b64Err)
}
