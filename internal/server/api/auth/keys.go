// Package auth implements the optional password authentication of the
// control API: a PBKDF2 derived key, an HMAC handshake exchanging nonces and a
// ChaCha20-Poly1305 framed connection keyed per session.
package auth

import (
	"crypto/pbkdf2"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the length of derived and session keys.
	KeySize          = 32
	PBKDF2Iterations = 100000
	PBKDF2Salt       = "flightstick-key-v1"

	sessionInfo = "flightstick-session-v1"
)

// ErrEmptyPassword is returned by DeriveKey for an empty password.
var ErrEmptyPassword = errors.New("password cannot be empty")

// DeriveKey stretches password to a KeySize byte key.
func DeriveKey(password string) ([]byte, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}
	return pbkdf2.Key(sha256.New, password, []byte(PBKDF2Salt), PBKDF2Iterations, KeySize)
}

// DeriveSessionKey expands key into a per-connection key with HKDF-SHA256,
// salted with the server nonce followed by the client nonce.
func DeriveSessionKey(key, serverNonce, clientNonce []byte) []byte {
	salt := make([]byte, 0, len(serverNonce)+len(clientNonce))
	salt = append(salt, serverNonce...)
	salt = append(salt, clientNonce...)

	out := make([]byte, KeySize)
	// A single block never exhausts the HKDF reader.
	_, _ = io.ReadFull(hkdf.New(sha256.New, key, salt, []byte(sessionInfo)), out)
	return out
}

const (
	AutoGenKeyLength = 16
	Base62Chars      = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Bytes at or above this bound are rejected so every base62 char is
	// equally likely.
	base62Bound = 256 - 256%len(Base62Chars)
)

// GenerateKey creates a random base62 password of AutoGenKeyLength chars.
func GenerateKey() (string, error) {
	return generateKey(rand.Reader)
}

func generateKey(r io.Reader) (string, error) {
	key := make([]byte, 0, AutoGenKeyLength)
	buf := make([]byte, AutoGenKeyLength)
	for len(key) < AutoGenKeyLength {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= base62Bound || len(key) == AutoGenKeyLength {
				continue
			}
			key = append(key, Base62Chars[int(b)%len(Base62Chars)])
		}
	}
	return string(key), nil
}
