package wire

// Status represents a response status code.
type Status uint8

const (
	// StatusSuccess indicates the command was accepted (async) or completed.
	StatusSuccess Status = 0

	// StatusInvalidDevice indicates no device is registered under the id.
	StatusInvalidDevice Status = 1

	// StatusUnsupportedCommand indicates the device does not support the command.
	StatusUnsupportedCommand Status = 2

	// StatusDeviceFailure indicates the device failed while executing the command.
	StatusDeviceFailure Status = 3

	// StatusMalformedRequest indicates the broker could not decode the request.
	StatusMalformedRequest Status = 4

	// StatusNoData indicates a read completed its timeout without data.
	StatusNoData Status = 5

	// StatusVersionMismatch indicates the handshake was rejected.
	StatusVersionMismatch Status = 6
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusInvalidDevice:
		return "INVALID_DEVICE"
	case StatusUnsupportedCommand:
		return "UNSUPPORTED_COMMAND"
	case StatusDeviceFailure:
		return "DEVICE_FAILURE"
	case StatusMalformedRequest:
		return "MALFORMED_REQUEST"
	case StatusNoData:
		return "NO_DATA"
	case StatusVersionMismatch:
		return "VERSION_MISMATCH"
	default:
		return "UNKNOWN"
	}
}

// IsSuccess returns true if the status indicates success.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess
}
