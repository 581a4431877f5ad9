package broker

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hatbox-go/hatbox/pkg/wire"
)

// DeviceSpec describes one device to register.
type DeviceSpec struct {
	ID   uint8  `yaml:"id"`
	Kind string `yaml:"kind"`
	Name string `yaml:"name"`
}

// DefaultDevices is the hat's standard layout.
func DefaultDevices() []DeviceSpec {
	return []DeviceSpec{
		{ID: uint8(wire.DeviceNFC), Kind: "nfc", Name: "nfc_reader"},
		{ID: uint8(wire.DeviceNeopixel), Kind: "neopixel", Name: "neopixels"},
		{ID: 3, Kind: "switch", Name: "headlamp"},
		{ID: 4, Kind: "printer", Name: "printer"},
	}
}

// DeviceOptions tune the simulated devices.
type DeviceOptions struct {
	// PrinterOut receives printed text (default os.Stdout).
	PrinterOut io.Writer

	// PrintDelay simulates printer warm-up.
	PrintDelay time.Duration

	// NFCQueue is how many tag scans the reader buffers (default 16).
	NFCQueue int
}

// NewDevice builds a simulated device of the given kind.
func NewDevice(kind string, opts DeviceOptions) (Device, error) {
	switch kind {
	case "nfc":
		return NewNFCReader(opts.NFCQueue), nil
	case "neopixel":
		return NewNeopixel(), nil
	case "switch":
		return NewSwitch(), nil
	case "printer":
		out := opts.PrinterOut
		if out == nil {
			out = os.Stdout
		}
		return NewPrinter(out, opts.PrintDelay), nil
	default:
		return nil, fmt.Errorf("unknown device kind %q", kind)
	}
}

// RegisterSpecs builds and registers every device in specs.
func (s *Server) RegisterSpecs(specs []DeviceSpec, opts DeviceOptions) error {
	for _, spec := range specs {
		dev, err := NewDevice(spec.Kind, opts)
		if err != nil {
			return fmt.Errorf("device %d (%s): %w", spec.ID, spec.Name, err)
		}
		if err := s.Register(wire.DeviceID(spec.ID), dev); err != nil {
			return err
		}
	}
	return nil
}

// NFCReader returns the first registered NFC reader.
func (s *Server) NFCReader() (*NFCReader, bool) {
	s.devicesMu.RLock()
	defer s.devicesMu.RUnlock()

	var best *NFCReader
	var bestID wire.DeviceID
	for id, r := range s.devices {
		if nfc, ok := r.dev.(*NFCReader); ok && (best == nil || id < bestID) {
			best, bestID = nfc, id
		}
	}
	return best, best != nil
}
