package command

import (
	"fmt"
	"math"
	"time"

	"github.com/hatbox-go/hatbox/pkg/wire"
)

func (c EnableCommand) Encode() wire.Command  { return wire.Command{Kind: c.Kind()} }
func (c DisableCommand) Encode() wire.Command { return wire.Command{Kind: c.Kind()} }
func (c ToggleCommand) Encode() wire.Command  { return wire.Command{Kind: c.Kind()} }

func (c SolidColorCommand) Encode() wire.Command {
	return wire.Command{Kind: c.Kind(), Color: c.Color.bytes()}
}

func (c BlinkCommand) Encode() wire.Command {
	return wire.Command{
		Kind:      c.Kind(),
		Duration:  ptr(c.Duration),
		Color:     c.Color.bytes(),
		Frequency: ptr(c.Frequency),
	}
}

func (c PulseCommand) Encode() wire.Command {
	return wire.Command{
		Kind:      c.Kind(),
		Duration:  ptr(c.Duration),
		Color:     c.Color.bytes(),
		Frequency: ptr(c.Frequency),
		Blanks:    ptr(c.Blanks),
	}
}

func (c RainbowCommand) Encode() wire.Command {
	return wire.Command{Kind: c.Kind(), Duration: ptr(c.Duration), Frequency: ptr(c.Frequency)}
}

func (c RainbowWaveCommand) Encode() wire.Command {
	return wire.Command{Kind: c.Kind(), Duration: ptr(c.Duration), Frequency: ptr(c.Frequency)}
}

func (c ReadDataCommand) Encode() wire.Command {
	w := wire.Command{Kind: c.Kind()}
	if c.hasTimeout {
		w.Timeout = ptr(c.timeout.Seconds())
	}
	return w
}

func (c PrintCommand) Encode() wire.Command {
	return wire.Command{Kind: c.Kind(), Text: ptr(c.text)}
}

// field set bits, used to check a wire command carries exactly the fields
// of its kind.
const (
	fDuration = 1 << iota
	fColor
	fFrequency
	fBlanks
	fTimeout
	fText
)

var required = map[wire.CommandKind]int{
	wire.KindEnable:      0,
	wire.KindDisable:     0,
	wire.KindToggle:      0,
	wire.KindSolidColor:  fColor,
	wire.KindBlink:       fDuration | fColor | fFrequency,
	wire.KindPulse:       fDuration | fColor | fFrequency | fBlanks,
	wire.KindRainbow:     fDuration | fFrequency,
	wire.KindRainbowWave: fDuration | fFrequency,
	wire.KindReadData:    0,
	wire.KindPrint:       fText,
}

func present(w wire.Command) int {
	var set int
	if w.Duration != nil {
		set |= fDuration
	}
	if w.Color != nil {
		set |= fColor
	}
	if w.Frequency != nil {
		set |= fFrequency
	}
	if w.Blanks != nil {
		set |= fBlanks
	}
	if w.Timeout != nil {
		set |= fTimeout
	}
	if w.Text != nil {
		set |= fText
	}
	return set
}

// Decode converts a wire command back into its typed form. Missing
// fields, fields not defined for the kind, and out of range values are
// reported as ErrMalformed.
func Decode(w wire.Command) (Command, error) {
	want, ok := required[w.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown kind %d", ErrMalformed, w.Kind)
	}
	allowed := want
	if w.Kind == wire.KindReadData {
		allowed |= fTimeout
	}
	got := present(w)
	if got&want != want || got&^allowed != 0 {
		return nil, fmt.Errorf("%w: %s has fields %06b, want %06b", ErrMalformed, w.Kind, got, want)
	}
	if w.Color != nil && len(w.Color) != wire.ColorLen {
		return nil, fmt.Errorf("%w: color length %d", ErrMalformed, len(w.Color))
	}

	switch w.Kind {
	case wire.KindEnable:
		return Enable(), nil
	case wire.KindDisable:
		return Disable(), nil
	case wire.KindToggle:
		return Toggle(), nil
	case wire.KindSolidColor:
		return SolidColor(colorFromBytes(w.Color)), nil
	case wire.KindBlink:
		return BlinkCommand{Duration: *w.Duration, Color: colorFromBytes(w.Color), Frequency: *w.Frequency}, nil
	case wire.KindPulse:
		return PulseCommand{
			Duration:  *w.Duration,
			Color:     colorFromBytes(w.Color),
			Frequency: *w.Frequency,
			Blanks:    *w.Blanks,
		}, nil
	case wire.KindRainbow:
		return RainbowCommand{Duration: *w.Duration, Frequency: *w.Frequency}, nil
	case wire.KindRainbowWave:
		return RainbowWaveCommand{Duration: *w.Duration, Frequency: *w.Frequency}, nil
	case wire.KindReadData:
		if w.Timeout == nil {
			return ReadData(), nil
		}
		secs := *w.Timeout
		if math.IsNaN(secs) || secs < 0 || secs > math.MaxInt64/float64(time.Second) {
			return nil, fmt.Errorf("%w: timeout %v", ErrMalformed, secs)
		}
		return ReadDataCommand{timeout: time.Duration(math.Round(secs * float64(time.Second))), hasTimeout: true}, nil
	case wire.KindPrint:
		cmd, err := Print(*w.Text)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return cmd, nil
	}
	return nil, fmt.Errorf("%w: unknown kind %d", ErrMalformed, w.Kind)
}

func ptr[T any](v T) *T {
	return &v
}
