package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
)

// Exit statuses let scripts tell a bad document from an outage.
const (
	exitFailure     = 1
	exitBadDocument = 2
	exitUnavailable = 3
	exitNotFound    = 4
)

// exitError is a user-facing failure with its own exit status.
type exitError struct {
	msg  string
	code int
}

func (e *exitError) Error() string { return e.msg }

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitFailure
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(exitCode(err))
	}
}
