// Package command defines the closed set of commands the hat's devices
// understand.
//
// Each command kind is its own type carrying only the fields legal for it.
// Values are built through validating constructors and are immutable once
// built. Encode produces the wire form; Decode is its exhaustive inverse
// and rejects wire commands that carry fields their kind does not define.
//
// Commands group by device class:
//
//	Switch:    Enable, Disable, Toggle
//	Neopixel:  SolidColor, Blink, Pulse, Rainbow, RainbowWave
//	NFC:       ReadData
//	Printer:   Print
package command
