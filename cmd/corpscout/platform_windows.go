//go:build windows

package main

import (
	"os"
	"os/signal"
	"syscall"
)

func registerSignals(ch chan<- os.Signal) {
	// Windows only supports SIGINT (Ctrl+C); SIGTERM is not available.
	signal.Notify(ch, syscall.SIGINT)
}
