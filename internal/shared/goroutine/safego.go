// Package goroutine provides utilities for safely launching goroutines with panic recovery.
package goroutine

import (
	"fmt"
	"runtime/debug"
	"time"

	"warden/internal/shared/logger"
)

// SafeGo launches a goroutine with panic recovery. If the goroutine panics,
// the panic is caught and logged with stack trace instead of crashing the process.
func SafeGo(log logger.Interface, name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("goroutine panicked",
					"goroutine", name,
					"panic", fmt.Sprintf("%v", r),
					"stack", string(debug.Stack()),
				)
			}
		}()
		fn()
	}()
}

// SafeAfter runs fn on a detached goroutine after the given delay, with the
// same panic recovery as SafeGo. The timer is not cancellable; callers that
// need cancellation should manage their own context.
func SafeAfter(log logger.Interface, name string, delay time.Duration, fn func()) {
	SafeGo(log, name, func() {
		time.Sleep(delay)
		fn()
	})
}
