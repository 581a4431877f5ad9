// Package transport provides the hatbox transport layer.
//
// The transport layer handles:
//   - Endpoint parsing and dialing (unix sockets, tcp for development)
//   - Length-prefixed message framing
//   - Read and write deadlines with partial-frame detection
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│      CBOR Messages             │
//	├────────────────────────────────┤
//	│   Length-Prefix Framing (4B)   │
//	├────────────────────────────────┤
//	│  Unix stream socket (or TCP)   │
//	└────────────────────────────────┘
//
// # Partial Frames
//
// A frame is written with a single Write call. If a write or read fails
// after part of a frame has crossed the socket, the byte stream is out of
// sync and the connection cannot be reused; such failures wrap
// ErrPartialFrame. A read deadline that expires before any byte of the
// next frame arrives leaves the stream intact and wraps ErrTimeout.
package transport
