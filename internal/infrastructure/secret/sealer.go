// Package secret seals the password a session holds between the password and
// OTP steps.
package secret

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/saccodesk/backoffice/internal/core/ports"
)

const (
	keySize   = 32
	nonceSize = 24
	hkdfInfo  = "backoffice/session-credential/v1"
)

var ErrUnsealable = errors.New("sealed value cannot be opened")

// Sealer encrypts with nacl/secretbox under a key derived from the session secret.
type Sealer struct {
	key [keySize]byte
}

var _ ports.CredentialSealer = (*Sealer)(nil)

func NewSealer(sessionSecret string) (*Sealer, error) {
	if sessionSecret == "" {
		return nil, errors.New("sealer: empty secret")
	}
	s := &Sealer{}
	r := hkdf.New(sha256.New, []byte(sessionSecret), nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(r, s.key[:]); err != nil {
		return nil, fmt.Errorf("sealer: derive key: %w", err)
	}
	return s, nil
}

// Seal returns nonce||box.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("sealer: nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, &s.key), nil
}

func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, ErrUnsealable
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])

	out, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, ErrUnsealable
	}
	return out, nil
}
