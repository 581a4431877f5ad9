package command

import (
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/hatbox-go/hatbox/pkg/wire"
)

// Defaults used by the broker's neopixel driver when a caller has no
// preference.
const (
	DefaultBlinkFrequency       = 2
	DefaultPulseFrequency       = 2
	DefaultPulseBlanks          = 0
	DefaultRainbowFrequency     = 200
	DefaultRainbowWaveFrequency = 10
)

// MaxPrintLen bounds Print text so a request always fits in one frame.
const MaxPrintLen = 3072

// Command is implemented by every command kind in this package and by
// nothing else.
type Command interface {
	Kind() wire.CommandKind
	Encode() wire.Command
	String() string
	sealed()
}

// EnableCommand switches a device on.
type EnableCommand struct{}

// DisableCommand switches a device off.
type DisableCommand struct{}

// ToggleCommand flips a switch device.
type ToggleCommand struct{}

// SolidColorCommand lights the strip in one color.
type SolidColorCommand struct {
	Color Color
}

// BlinkCommand blinks the strip for Duration seconds.
type BlinkCommand struct {
	Duration  uint32
	Color     Color
	Frequency uint32
}

// PulseCommand pulses the strip, inserting Blanks dark steps per cycle.
type PulseCommand struct {
	Duration  uint32
	Color     Color
	Frequency uint32
	Blanks    uint32
}

// RainbowCommand cycles the whole strip through the color wheel.
type RainbowCommand struct {
	Duration  uint32
	Frequency uint32
}

// RainbowWaveCommand runs the color wheel along the strip.
type RainbowWaveCommand struct {
	Duration  uint32
	Frequency uint32
}

// ReadDataCommand reads one tag from the NFC reader.
type ReadDataCommand struct {
	timeout    time.Duration
	hasTimeout bool
}

// PrintCommand prints text on the hat's printer.
type PrintCommand struct {
	text string
}

// Enable returns a switch-on command.
func Enable() EnableCommand { return EnableCommand{} }

// Disable returns a switch-off command.
func Disable() DisableCommand { return DisableCommand{} }

// Toggle returns a switch-flip command.
func Toggle() ToggleCommand { return ToggleCommand{} }

// SolidColor returns a solid color command.
func SolidColor(c Color) SolidColorCommand {
	return SolidColorCommand{Color: c}
}

// Blink validates and returns a blink command.
func Blink(duration int, c Color, frequency int) (BlinkCommand, error) {
	d, err := count("Blink", "duration", duration)
	if err != nil {
		return BlinkCommand{}, err
	}
	f, err := count("Blink", "frequency", frequency)
	if err != nil {
		return BlinkCommand{}, err
	}
	return BlinkCommand{Duration: d, Color: c, Frequency: f}, nil
}

// Pulse validates and returns a pulse command.
func Pulse(duration int, c Color, frequency, blanks int) (PulseCommand, error) {
	d, err := count("Pulse", "duration", duration)
	if err != nil {
		return PulseCommand{}, err
	}
	f, err := count("Pulse", "frequency", frequency)
	if err != nil {
		return PulseCommand{}, err
	}
	b, err := count("Pulse", "blanks", blanks)
	if err != nil {
		return PulseCommand{}, err
	}
	return PulseCommand{Duration: d, Color: c, Frequency: f, Blanks: b}, nil
}

// Rainbow validates and returns a rainbow command.
func Rainbow(duration, frequency int) (RainbowCommand, error) {
	d, err := count("Rainbow", "duration", duration)
	if err != nil {
		return RainbowCommand{}, err
	}
	f, err := count("Rainbow", "frequency", frequency)
	if err != nil {
		return RainbowCommand{}, err
	}
	return RainbowCommand{Duration: d, Frequency: f}, nil
}

// RainbowWave validates and returns a rainbow wave command.
func RainbowWave(duration, frequency int) (RainbowWaveCommand, error) {
	d, err := count("RainbowWave", "duration", duration)
	if err != nil {
		return RainbowWaveCommand{}, err
	}
	f, err := count("RainbowWave", "frequency", frequency)
	if err != nil {
		return RainbowWaveCommand{}, err
	}
	return RainbowWaveCommand{Duration: d, Frequency: f}, nil
}

// ReadData returns a read that waits on the reader without a timeout.
func ReadData() ReadDataCommand {
	return ReadDataCommand{}
}

// ReadDataTimeout returns a read that gives up after d.
func ReadDataTimeout(d time.Duration) (ReadDataCommand, error) {
	if d < 0 {
		return ReadDataCommand{}, invalid("ReadData", "timeout", d, "must not be negative")
	}
	return ReadDataCommand{timeout: d, hasTimeout: true}, nil
}

// Print validates and returns a print command.
func Print(text string) (PrintCommand, error) {
	if !utf8.ValidString(text) {
		return PrintCommand{}, invalid("Print", "text", text, "not valid UTF-8")
	}
	if len(text) > MaxPrintLen {
		return PrintCommand{}, invalid("Print", "text", len(text), fmt.Sprintf("longer than %d bytes", MaxPrintLen))
	}
	return PrintCommand{text: text}, nil
}

// Timeout returns the read timeout and whether one is set.
func (c ReadDataCommand) Timeout() (time.Duration, bool) {
	return c.timeout, c.hasTimeout
}

// Text returns the text to print.
func (c PrintCommand) Text() string {
	return c.text
}

func count(cmd, field string, v int) (uint32, error) {
	if v < 0 {
		return 0, invalid(cmd, field, v, "must not be negative")
	}
	if uint64(v) > math.MaxUint32 {
		return 0, invalid(cmd, field, v, "exceeds uint32")
	}
	return uint32(v), nil
}

func (EnableCommand) Kind() wire.CommandKind      { return wire.KindEnable }
func (DisableCommand) Kind() wire.CommandKind     { return wire.KindDisable }
func (ToggleCommand) Kind() wire.CommandKind      { return wire.KindToggle }
func (SolidColorCommand) Kind() wire.CommandKind  { return wire.KindSolidColor }
func (BlinkCommand) Kind() wire.CommandKind       { return wire.KindBlink }
func (PulseCommand) Kind() wire.CommandKind       { return wire.KindPulse }
func (RainbowCommand) Kind() wire.CommandKind     { return wire.KindRainbow }
func (RainbowWaveCommand) Kind() wire.CommandKind { return wire.KindRainbowWave }
func (ReadDataCommand) Kind() wire.CommandKind    { return wire.KindReadData }
func (PrintCommand) Kind() wire.CommandKind       { return wire.KindPrint }

func (EnableCommand) sealed()      {}
func (DisableCommand) sealed()     {}
func (ToggleCommand) sealed()      {}
func (SolidColorCommand) sealed()  {}
func (BlinkCommand) sealed()       {}
func (PulseCommand) sealed()       {}
func (RainbowCommand) sealed()     {}
func (RainbowWaveCommand) sealed() {}
func (ReadDataCommand) sealed()    {}
func (PrintCommand) sealed()       {}

func (EnableCommand) String() string  { return "Enable" }
func (DisableCommand) String() string { return "Disable" }
func (ToggleCommand) String() string  { return "Toggle" }

func (c SolidColorCommand) String() string {
	return fmt.Sprintf("SolidColor(%s)", c.Color)
}

func (c BlinkCommand) String() string {
	return fmt.Sprintf("Blink(%d, %s, %d)", c.Duration, c.Color, c.Frequency)
}

func (c PulseCommand) String() string {
	return fmt.Sprintf("Pulse(%d, %s, %d, %d)", c.Duration, c.Color, c.Frequency, c.Blanks)
}

func (c RainbowCommand) String() string {
	return fmt.Sprintf("Rainbow(%d, %d)", c.Duration, c.Frequency)
}

func (c RainbowWaveCommand) String() string {
	return fmt.Sprintf("RainbowWave(%d, %d)", c.Duration, c.Frequency)
}

func (c ReadDataCommand) String() string {
	if !c.hasTimeout {
		return "ReadData()"
	}
	return fmt.Sprintf("ReadData(%s)", c.timeout)
}

func (c PrintCommand) String() string {
	return fmt.Sprintf("Print(%q)", c.text)
}

// IsAsync reports whether the broker acknowledges cmd before running it.
// Only reads wait for the device.
func IsAsync(cmd Command) bool {
	return cmd.Kind() != wire.KindReadData
}
