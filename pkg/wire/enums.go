package wire

import "strconv"

// DeviceID identifies a device registered with the broker.
type DeviceID uint8

const (
	// DeviceNFC is the NFC reader.
	DeviceNFC DeviceID = 1

	// DeviceNeopixel is the neopixel light strip.
	DeviceNeopixel DeviceID = 2
)

// String returns the well-known device name, or the numeric id.
func (d DeviceID) String() string {
	switch d {
	case DeviceNFC:
		return "NFC"
	case DeviceNeopixel:
		return "NEOPIXEL"
	default:
		return "DEVICE_" + strconv.Itoa(int(d))
	}
}

// CommandKind identifies the variant of a command on the wire.
type CommandKind uint8

const (
	KindEnable  CommandKind = 1
	KindDisable CommandKind = 2
	KindToggle  CommandKind = 3

	KindSolidColor  CommandKind = 10
	KindBlink       CommandKind = 11
	KindPulse       CommandKind = 12
	KindRainbow     CommandKind = 13
	KindRainbowWave CommandKind = 14

	KindReadData CommandKind = 20

	KindPrint CommandKind = 30
)

// String returns the command kind name.
func (k CommandKind) String() string {
	switch k {
	case KindEnable:
		return "ENABLE"
	case KindDisable:
		return "DISABLE"
	case KindToggle:
		return "TOGGLE"
	case KindSolidColor:
		return "SOLID_COLOR"
	case KindBlink:
		return "BLINK"
	case KindPulse:
		return "PULSE"
	case KindRainbow:
		return "RAINBOW"
	case KindRainbowWave:
		return "RAINBOW_WAVE"
	case KindReadData:
		return "READ_DATA"
	case KindPrint:
		return "PRINT"
	default:
		return "UNKNOWN"
	}
}

// IsValid returns true if the kind is a known command kind.
func (k CommandKind) IsValid() bool {
	return k.String() != "UNKNOWN"
}
