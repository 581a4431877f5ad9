// Package broker implements a simulated hatbox broker.
//
// The broker owns the hat's devices and answers protocol requests on a
// local socket. This implementation drives no hardware: devices are
// in-memory simulations, which makes it suitable for development and for
// end-to-end tests of the wrangler.
//
// Actuator commands (switch, neopixel, print) are acknowledged as soon as
// they are accepted and then run in the background; reads wait for the
// device. Each device runs one command at a time.
//
// Neopixel effects with a non-zero duration end when it elapses and the
// strip goes dark.
package broker
