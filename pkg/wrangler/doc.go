// Package wrangler runs the NFC request loop.
//
// The daemon asks the broker's NFC reader for tag data, sanitizes it into a
// fixed card buffer and compares it against a derived access token. A
// matching tag triggers a diagnostic blink on the neopixel strip. When
// effects are enabled, tags naming a light effect ("solid", "blink",
// "pulse", "rainbow", "rainbow_wave") start that effect.
//
// The daemon owns a single broker connection for its whole life. Losing it
// is fatal: Run returns an error matching client.ErrConnection. Timeouts,
// device and protocol errors are logged and the loop carries on. Stop (or
// a signal installed with NotifySignals) ends the loop between iterations;
// Run then releases the connection exactly once and returns nil.
package wrangler
