package cli

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// SetupSignalHandler returns a context that is cancelled on SIGINT or
// SIGTERM. A second signal exits the process immediately. The returned
// stop function releases the signal handler.
func SetupSignalHandler(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	stopped := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			signal.Stop(sigChan)
			close(stopped)
			cancel()
		})
	}

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-stopped:
			return
		case <-parent.Done():
			return
		}
		select {
		case <-sigChan:
			os.Exit(ExitError)
		case <-stopped:
		}
	}()

	return ctx, stop
}
