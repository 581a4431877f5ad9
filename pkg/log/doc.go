// Package log provides structured protocol logging for hatbox connections.
//
// This package defines the Logger interface and Event types for capturing
// protocol-level events at the transport (raw frames) and wire (decoded
// messages) layers, plus connection state changes and errors. It is separate
// from operational logging (slog): protocol capture is a machine-readable
// trace of every frame exchanged with the broker.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// For capture: write to a binary file
//	cfg.ProtocolLogger, _ = log.NewFileLogger("/var/log/hatbox/wrangler.hlog")
//
//	// Both
//	cfg.ProtocolLogger = log.NewMultiLogger(adapter, fileLogger)
//
// # File Format
//
// Capture files are a concatenation of CBOR-encoded Events with the .hlog
// extension. The hatbox-log tool views and summarizes them.
package log
