package commands

import (
	"fmt"
	"io"

	"github.com/hatbox-go/hatbox/pkg/log"
)

// RunFilter copies the events matching filter into a new capture file and
// reports how many were written to w.
func RunFilter(path, output string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	logger, err := log.NewFileLogger(output)
	if err != nil {
		return fmt.Errorf("failed to create output logger: %w", err)
	}

	count := 0
	err = each(reader, func(event log.Event) error {
		logger.Log(event)
		count++
		return nil
	})
	if cerr := logger.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if dropped := logger.Dropped(); dropped > 0 {
		return fmt.Errorf("failed to write %d of %d events", dropped, count)
	}

	fmt.Fprintf(w, "Filtered %d events to %s\n", count, output)
	return nil
}
