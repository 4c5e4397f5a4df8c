package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
)

var errCiphertextTooShort = errors.New("ciphertext too short")

// Sealer шифрует секреты внешних подключений AES-256-GCM.
// Ключ выводится как SHA-256 от ключа из конфигурации;
// результат Seal — nonce || ciphertext.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer создаёт Sealer из ключа конфигурации.
func NewSealer(key string) (*Sealer, error) {
	const op = "service.crypto.NewSealer"

	if key == "" {
		return nil, fmt.Errorf("%s: empty key", op)
	}

	sum := sha256.Sum256([]byte(key))

	block, err := aes.NewCipher(sum[:])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Sealer{aead: aead}, nil
}

// Seal шифрует plaintext со случайным nonce.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	const op = "service.crypto.Seal"

	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open расшифровывает результат Seal.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	const op = "service.crypto.Open"

	ns := s.aead.NonceSize()
	if len(sealed) < ns+s.aead.Overhead() {
		return nil, fmt.Errorf("%s: %w", op, errCiphertextTooShort)
	}

	plain, err := s.aead.Open(nil, sealed[:ns], sealed[ns:], nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return plain, nil
}
