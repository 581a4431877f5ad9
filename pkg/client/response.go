package client

import "github.com/hatbox-go/hatbox/pkg/wire"

// Response is a successful broker reply. The caller owns it and must call
// Release once the payload has been consumed.
type Response struct {
	Status  wire.Status
	Message string

	payload []byte
}

// NewResponse builds a successful response carrying payload. The Response
// takes ownership of payload.
func NewResponse(payload []byte) *Response {
	return &Response{Status: wire.StatusSuccess, payload: payload}
}

// Payload returns the response bytes. Nil after Release.
func (r *Response) Payload() []byte {
	if r == nil {
		return nil
	}
	return r.payload
}

// Len returns the payload length.
func (r *Response) Len() int {
	return len(r.Payload())
}

// Release zeroes and drops the payload. Safe to call more than once.
func (r *Response) Release() {
	if r == nil {
		return
	}
	clear(r.payload)
	r.payload = nil
}
