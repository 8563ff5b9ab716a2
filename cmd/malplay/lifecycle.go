package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
)

// waitForInterrupt blocks until SIGINT or SIGTERM arrives, then calls
// shutdown and returns. Grounded on the teacher's deleted
// pkg/tts/lifecycle.go LifecycleManager, trimmed to the single
// shutdown hook malplay needs.
func waitForInterrupt(shutdown func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("malplay: received signal, shutting down", "signal", sig.String())
	signal.Stop(sigCh)
	shutdown()
}
