package token

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/hatbox-go/hatbox/pkg/tagdata"
)

// Size is the number of token bytes.
const Size = 10

// Buffer holds a token followed by a zero terminator.
type Buffer [Size + 1]byte

// Errors.
var (
	ErrNoSource     = errors.New("no token source")
	ErrNotPrintable = errors.New("token byte not printable")
	ErrBadLength    = errors.New("token must be 10 bytes")
	ErrNoSecret     = errors.New("token secret is empty")
)

// Source produces token bytes.
type Source interface {
	// Token fills dst, which is exactly Size bytes long.
	Token(dst []byte) error
}

// Derive fills buf from src and terminates it. On failure buf is left
// zeroed.
func Derive(src Source, buf *Buffer) error {
	buf.Reset()
	if src == nil {
		return ErrNoSource
	}
	if err := src.Token(buf[:Size]); err != nil {
		buf.Reset()
		return fmt.Errorf("derive token: %w", err)
	}
	for i, b := range buf[:Size] {
		if !tagdata.Printable(b) {
			buf.Reset()
			return fmt.Errorf("%w: %#x at %d", ErrNotPrintable, b, i)
		}
	}
	buf[Size] = 0
	return nil
}

// Equal compares exactly Size bytes of window against the token in
// constant time. A window of any other length never matches.
func Equal(window []byte, buf *Buffer) bool {
	if len(window) != Size {
		return false
	}
	return subtle.ConstantTimeCompare(window, buf[:Size]) == 1
}

// Reset zeroes the buffer.
func (b *Buffer) Reset() {
	clear(b[:])
}

// Bytes returns the token bytes without the terminator.
func (b *Buffer) Bytes() []byte {
	return b[:Size]
}

// String returns the token as text.
func (b *Buffer) String() string {
	return string(b[:Size])
}
