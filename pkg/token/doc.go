// Package token derives the short access token the wrangler compares
// against tag contents.
//
// A token is Size printable bytes produced by a Source. Derivation is pure:
// the same source always yields the same token, so a tag can be written
// once with the expected value. Sources map key material into an
// alphanumeric alphabet so tokens survive tag sanitization.
package token
