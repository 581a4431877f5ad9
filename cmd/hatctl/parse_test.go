package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hatbox-go/hatbox/pkg/command"
	"github.com/hatbox-go/hatbox/pkg/wire"
)

func TestParseDevice(t *testing.T) {
	tests := []struct {
		in      string
		want    wire.DeviceID
		wantErr bool
	}{
		{in: "nfc", want: 1},
		{in: "NeoPixel", want: 2},
		{in: "printer", want: 4},
		{in: "7", want: 7},
		{in: "0", wantErr: true},
		{in: "256", wantErr: true},
		{in: "lamp", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDevice(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommand(t *testing.T) {
	green := command.Color{G: 0xff}
	white := command.White

	mustBlink := func(d, f int) command.Command {
		c, err := command.Blink(d, white, f)
		require.NoError(t, err)
		return c
	}
	mustRead := func(d time.Duration) command.Command {
		c, err := command.ReadDataTimeout(d)
		require.NoError(t, err)
		return c
	}

	tests := []struct {
		name string
		args []string
		want command.Command
	}{
		{name: "enable", want: command.Enable()},
		{name: "off", want: command.Disable()},
		{name: "toggle", want: command.Toggle()},
		{name: "solid", args: []string{"#00ff00"}, want: command.SolidColor(green)},
		{name: "blink", args: []string{"5", "#ffffff"}, want: mustBlink(5, command.DefaultBlinkFrequency)},
		{name: "blink", args: []string{"5", "ffffff", "4"}, want: mustBlink(5, 4)},
		{name: "read", want: command.ReadData()},
		{name: "read", args: []string{"2s"}, want: mustRead(2 * time.Second)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCommand(tt.name, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommandKinds(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want wire.CommandKind
	}{
		{"pulse", []string{"3", "#ff0000", "2"}, wire.KindPulse},
		{"pulse", []string{"3", "#ff0000", "2", "1"}, wire.KindPulse},
		{"rainbow", []string{"3", "10"}, wire.KindRainbow},
		{"rainbow_wave", []string{"3", "10"}, wire.KindRainbowWave},
		{"print", []string{"HELLO", "WORLD"}, wire.KindPrint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCommand(tt.name, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Kind())
		})
	}

	cmd, err := parseCommand("print", []string{"HELLO", "WORLD"})
	require.NoError(t, err)
	assert.Equal(t, "HELLO WORLD", cmd.(command.PrintCommand).Text())
}

func TestParseCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"enable", []string{"x"}},
		{"solid", nil},
		{"solid", []string{"green"}},
		{"blink", []string{"five", "#ffffff"}},
		{"blink", []string{"-1", "#ffffff"}},
		{"pulse", []string{"3", "#ff0000"}},
		{"rainbow", []string{"3"}},
		{"read", []string{"soon"}},
		{"print", nil},
		{"dance", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCommand(tt.name, tt.args)
			assert.Error(t, err)
		})
	}
}
