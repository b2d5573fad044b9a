package backend

import (
	appconfig "outlay/internal/config"
)

// Type names a storage backend for the expense ledger.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer.
func (t Type) String() string {
	return string(t)
}

// IsValid reports whether the backend type is one the factory can build.
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Config holds everything needed to assemble a ledger. AMQP fields are
// optional; an empty URL disables event publishing.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// Event publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// FromAppConfig maps the application configuration onto a backend config.
func FromAppConfig(cfg *appconfig.Config) Config {
	return Config{
		Type:         Type(cfg.DataBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
		AMQPURL:      cfg.AMQPURL,
		AMQPExchange: cfg.AMQPExchange,
		AMQPQueue:    cfg.AMQPQueue,
	}
}
