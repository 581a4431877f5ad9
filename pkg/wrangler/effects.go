package wrangler

import (
	"errors"

	"github.com/hatbox-go/hatbox/pkg/command"
)

// Effect names a tag may carry.
const (
	EffectSolid       = "solid"
	EffectBlink       = "blink"
	EffectPulse       = "pulse"
	EffectRainbow     = "rainbow"
	EffectRainbowWave = "rainbow_wave"
)

// EffectNames lists every recognized effect name.
var EffectNames = []string{EffectSolid, EffectBlink, EffectPulse, EffectRainbow, EffectRainbowWave}

// ErrUnknownEffect is returned for tag content that names no effect.
var ErrUnknownEffect = errors.New("unknown effect")

// MatchEffect is the diagnostic blink shown when a tag carries the access
// token.
func MatchEffect() command.Command {
	cmd, _ := command.Blink(DefaultEffectDuration, command.White, command.DefaultBlinkFrequency)
	return cmd
}

// Command builds the neopixel command for the named effect.
func (e EffectsConfig) Command(name string) (command.Command, error) {
	color := command.White
	if e.Color != nil {
		color = *e.Color
	}
	duration := DefaultEffectDuration
	if e.Duration != nil {
		duration = *e.Duration
	}

	switch name {
	case EffectSolid:
		return command.SolidColor(color), nil
	case EffectBlink:
		return command.Blink(duration, color, e.Frequency)
	case EffectPulse:
		return command.Pulse(duration, color, e.Frequency, command.DefaultPulseBlanks)
	case EffectRainbow:
		return command.Rainbow(duration, e.RainbowFrequency)
	case EffectRainbowWave:
		return command.RainbowWave(duration, e.RainbowFrequency)
	default:
		return nil, ErrUnknownEffect
	}
}
