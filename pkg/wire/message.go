package wire

import (
	"errors"
	"fmt"
)

// CBOR map keys for message encoding.
const (
	KeyMessageID = 1
	KeyDeviceID  = 2
	KeyCommand   = 3

	KeyStatus  = 2
	KeyPayload = 3
	KeyMessage = 4
)

// Protocol constants.
const (
	// Magic identifies a hatbox Hello frame.
	Magic = "hatbox"

	// ProtocolVersion is the version spoken by this implementation.
	ProtocolVersion uint8 = 1

	// MaxMessageSize is the largest frame body either side accepts.
	MaxMessageSize = 4096

	// ColorLen is the encoded length of a color (r, g, b).
	ColorLen = 3
)

// Validation errors.
var (
	ErrInvalidMessageID = errors.New("message id 0 is reserved")
	ErrInvalidKind      = errors.New("invalid command kind")
	ErrInvalidColor     = errors.New("color must be 3 bytes")
	ErrBadMagic         = errors.New("bad hello magic")
)

// Hello is the first frame a client sends.
//
// CBOR encoding:
//
//	{
//	  1: magic,     // text: "hatbox"
//	  2: version,   // uint8
//	  3: clientId   // text
//	}
type Hello struct {
	Magic    string `cbor:"1,keyasint"`
	Version  uint8  `cbor:"2,keyasint"`
	ClientID string `cbor:"3,keyasint,omitempty"`
}

// Validate checks the hello magic.
func (h *Hello) Validate() error {
	if h.Magic != Magic {
		return fmt.Errorf("%w: %q", ErrBadMagic, h.Magic)
	}
	return nil
}

// HelloAck is the broker's answer to Hello.
//
// CBOR encoding:
//
//	{
//	  1: version,   // uint8: broker version
//	  2: status,    // uint8: 0=accepted
//	  3: brokerId,  // text
//	  4: message    // text, set on rejection
//	}
type HelloAck struct {
	Version  uint8  `cbor:"1,keyasint"`
	Status   Status `cbor:"2,keyasint"`
	BrokerID string `cbor:"3,keyasint,omitempty"`
	Message  string `cbor:"4,keyasint,omitempty"`
}

// Command is the wire form of a device command. Only the fields legal
// for Kind are present.
//
// CBOR encoding:
//
//	{
//	  1: kind,       // uint8
//	  2: duration,   // uint32
//	  3: color,      // bytes(3): r, g, b
//	  4: frequency,  // uint32
//	  5: blanks,     // uint32
//	  6: timeout,    // float64 seconds
//	  7: text        // text
//	}
type Command struct {
	Kind      CommandKind `cbor:"1,keyasint"`
	Duration  *uint32     `cbor:"2,keyasint,omitempty"`
	Color     []byte      `cbor:"3,keyasint,omitempty"`
	Frequency *uint32     `cbor:"4,keyasint,omitempty"`
	Blanks    *uint32     `cbor:"5,keyasint,omitempty"`
	Timeout   *float64    `cbor:"6,keyasint,omitempty"`
	Text      *string     `cbor:"7,keyasint,omitempty"`
}

// Validate checks the kind and the shape of the color field.
func (c *Command) Validate() error {
	if !c.Kind.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidKind, c.Kind)
	}
	if c.Color != nil && len(c.Color) != ColorLen {
		return fmt.Errorf("%w: got %d", ErrInvalidColor, len(c.Color))
	}
	return nil
}

// Request carries one command for one device.
//
// CBOR encoding:
//
//	{
//	  1: messageId,  // uint32, never 0
//	  2: deviceId,   // uint8
//	  3: command     // Command
//	}
type Request struct {
	MessageID uint32   `cbor:"1,keyasint"`
	DeviceID  DeviceID `cbor:"2,keyasint"`
	Command   Command  `cbor:"3,keyasint"`
}

// Validate checks if the request is valid.
func (r *Request) Validate() error {
	if r.MessageID == 0 {
		return ErrInvalidMessageID
	}
	return r.Command.Validate()
}

// Response is the broker's answer to a Request.
//
// CBOR encoding:
//
//	{
//	  1: messageId,  // uint32: matches request
//	  2: status,     // uint8
//	  3: payload,    // bytes, omitted when empty
//	  4: message     // text, human-readable detail on failure
//	}
type Response struct {
	MessageID uint32 `cbor:"1,keyasint"`
	Status    Status `cbor:"2,keyasint"`
	Payload   []byte `cbor:"3,keyasint,omitempty"`
	Message   string `cbor:"4,keyasint,omitempty"`
}

// IsSuccess returns true if the response indicates success.
func (r *Response) IsSuccess() bool {
	return r.Status.IsSuccess()
}
