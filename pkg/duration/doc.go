// Package duration expires timed effects on broker devices.
//
// Blink, pulse and rainbow commands carry a duration in seconds. The broker
// starts a timer when it accepts such a command; when the timer fires the
// device returns to its idle state.
//
// # Per-Device Tracking
//
// Each device has at most one timer. A new timed effect replaces the running
// timer for that device, and an untimed effect (solid color) cancels it.
// A duration of zero means the effect runs until replaced.
//
// # Shutdown
//
// Timers are not persisted. Stopping the broker cancels every pending timer
// without running expiry callbacks.
package duration
