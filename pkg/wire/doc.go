// Package wire defines the CBOR wire format types for the hatbox protocol.
//
// The hatbox protocol carries commands from a local client (usually the
// NFC wrangler daemon) to the broker that owns the hat's devices. Messages
// are CBOR (RFC 8949) maps with integer keys, each sent as one
// length-prefixed frame over a stream socket.
//
// # Message Types
//
//   - Hello / HelloAck: first frame in each direction, version negotiation
//   - Request: client to broker, one command for one device
//   - Response: broker to client, status plus optional payload
//
// # Absent vs Zero
//
// Command fields are pointers or nil-able slices so that a field that is
// not legal for a command kind is absent from the encoding rather than
// encoded as zero. The broker rejects commands carrying fields their kind
// does not define.
package wire
