package health

import (
	"context"
	"fmt"
	"os"
)

// Pinger is anything that can verify its connection, such as the session
// store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PathCheck fails when path cannot be stat'ed. It is registered for the
// layer source so a vanished mount shows up in the readiness probe.
func PathCheck(path string) CheckFunc {
	return func(ctx context.Context) error {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("source unavailable: %w", err)
		}
		return nil
	}
}

// PingCheck fails when p cannot be reached.
func PingCheck(p Pinger) CheckFunc {
	return func(ctx context.Context) error {
		return p.Ping(ctx)
	}
}
