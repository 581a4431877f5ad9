package wrangler

import (
	"os"
	"os/signal"
)

// NotifySignals calls Stop when any of sigs arrives. The returned function
// uninstalls the handler.
func (d *Daemon) NotifySignals(sigs ...os.Signal) func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-ch:
				d.logger.Info("received signal, stopping", "signal", sig.String())
				d.Stop()
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}
