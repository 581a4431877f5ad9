package token

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/hkdf"
)

// Alphabet is the set of bytes derived tokens are drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// DefaultBlake3Context is the derive-key context used when none is set.
const DefaultBlake3Context = "hatbox nfc-wrangler 2026-10 access token"

// DefaultHKDFInfo is the HKDF info used when none is set.
const DefaultHKDFInfo = "hatbox access token"

// Static is a fixed token, for deployments that provision a known tag.
type Static string

// NewStatic validates s as a token.
func NewStatic(s string) (Static, error) {
	if len(s) != Size {
		return "", fmt.Errorf("%w: got %d", ErrBadLength, len(s))
	}
	return Static(s), nil
}

// Token copies the fixed value.
func (s Static) Token(dst []byte) error {
	if len(s) != Size {
		return fmt.Errorf("%w: got %d", ErrBadLength, len(s))
	}
	copy(dst, s)
	return nil
}

// HKDF derives the token with HKDF-SHA256.
type HKDF struct {
	Secret []byte
	Salt   []byte
	Info   string
}

// Token expands the secret and maps it into Alphabet.
func (h HKDF) Token(dst []byte) error {
	if len(h.Secret) == 0 {
		return ErrNoSecret
	}
	info := h.Info
	if info == "" {
		info = DefaultHKDFInfo
	}
	return mapAlphabet(dst, hkdf.New(sha256.New, h.Secret, h.Salt, []byte(info)))
}

// Blake3 derives the token with BLAKE3 in derive-key mode.
type Blake3 struct {
	Secret  []byte
	Context string
}

// blake3Stream is enough key material for rejection sampling to finish
// with overwhelming probability.
const blake3Stream = 128

// Token derives key material and maps it into Alphabet.
func (b Blake3) Token(dst []byte) error {
	if len(b.Secret) == 0 {
		return ErrNoSecret
	}
	dkContext := b.Context
	if dkContext == "" {
		dkContext = DefaultBlake3Context
	}
	var material [blake3Stream]byte
	blake3.DeriveKey(dkContext, b.Secret, material[:])
	return mapAlphabet(dst, bytes.NewReader(material[:]))
}

// errExhausted means the key stream ran out before dst was filled.
var errExhausted = errors.New("key stream exhausted")

// mapAlphabet fills dst from r by rejection sampling so every Alphabet
// byte is equally likely.
func mapAlphabet(dst []byte, r io.Reader) error {
	const limit = 256 - 256%len(Alphabet)
	var one [1]byte
	for i := 0; i < len(dst); {
		if _, err := io.ReadFull(r, one[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return errExhausted
			}
			return err
		}
		if int(one[0]) >= limit {
			continue
		}
		dst[i] = Alphabet[int(one[0])%len(Alphabet)]
		i++
	}
	return nil
}
