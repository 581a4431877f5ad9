// Package client implements the hatbox protocol client.
//
// A Conn is opened once with Connect, used for a sequence of synchronous
// Send calls (one outstanding request at a time, no implicit retries), and
// released once with Close.
//
// Send failures fall into four classes, each matchable with errors.Is:
//
//	ErrConnection  transport lost; the Conn is dead and every later Send fails fast
//	ErrProtocol    the broker's answer could not be understood
//	ErrDevice      the broker reported a device-level failure (*DeviceError)
//	ErrTimeout     no complete response in time; the Conn stays usable
//
// A response that arrives after its request timed out is discarded when
// the next Send reads past it.
package client
