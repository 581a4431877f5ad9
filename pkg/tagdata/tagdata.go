// Package tagdata sanitizes raw NFC tag contents into a fixed-capacity,
// always-terminated text buffer.
package tagdata

// Capacity is the size of a CardBuffer including its terminator.
const Capacity = 512

// MaxLen is the longest content a CardBuffer can hold.
const MaxLen = Capacity - 1

// CardBuffer holds sanitized tag text followed by at least one zero byte.
// Every byte before the first zero is in the printable range [32,126).
type CardBuffer [Capacity]byte

// Printable reports whether b may appear in a CardBuffer.
func Printable(b byte) bool {
	return b >= 32 && b < 126
}

// Sanitize zeroes dst and copies raw into it, stopping at the first
// non-printable byte or once MaxLen bytes have been copied. It returns the
// number of bytes copied. Bytes of raw beyond the stop point are ignored.
func Sanitize(raw []byte, dst *CardBuffer) int {
	dst.Reset()
	n := 0
	for n < MaxLen && n < len(raw) && Printable(raw[n]) {
		dst[n] = raw[n]
		n++
	}
	return n
}

// Reset zeroes the buffer.
func (c *CardBuffer) Reset() {
	clear(c[:])
}

// Len returns the length of the content before the terminator.
func (c *CardBuffer) Len() int {
	for i, b := range c {
		if b == 0 {
			return i
		}
	}
	// Unreachable for buffers filled by Sanitize.
	return MaxLen
}

// Bytes returns the content without the terminator. The slice aliases
// the buffer.
func (c *CardBuffer) Bytes() []byte {
	return c[:c.Len()]
}

// String returns the content as a string.
func (c *CardBuffer) String() string {
	return string(c.Bytes())
}

// Window returns the first n bytes of the buffer, terminator and padding
// included, clamped to the buffer's capacity. It is used for fixed-width
// comparisons.
func (c *CardBuffer) Window(n int) []byte {
	if n < 0 {
		n = 0
	}
	if n > Capacity {
		n = Capacity
	}
	return c[:n]
}

// Equal reports whether the content is exactly s.
func (c *CardBuffer) Equal(s string) bool {
	return c.String() == s
}
