// Package backend assembles a ready-to-use expense ledger for a configured
// storage backend.
package backend

import (
	"context"

	"outlay/internal/ledger"
)

// Result contains the assembled ledger and its cleanup function. Cleanup
// closes the gateway and the AMQP connection; callers run it at shutdown.
type Result struct {
	Ledger  *ledger.Ledger
	Cleanup func() error
}

// Factory creates ledgers based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}
