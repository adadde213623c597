// Package backend builds the configured bill store implementation.
package backend

import (
	"context"
	"fmt"

	"billed/internal/bill"
	"billed/internal/core"
)

// Type selects a bill store implementation.
type Type string

const (
	MemoryBackend Type = "memory"
	SQLiteBackend Type = "sqlite"
	RemoteBackend Type = "remote"
)

func (t Type) String() string { return string(t) }

func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend, RemoteBackend:
		return true
	default:
		return false
	}
}

// Reviewer applies admin review decisions. The remote backend does not
// implement it: reviews there belong to the remote API itself.
type Reviewer interface {
	UpdateStatus(ctx context.Context, id string, status core.Status, commentAdmin string) error
}

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result bundles the built store with its optional review surface and
// cleanup function.
type Result struct {
	Store    bill.Store
	Reviewer Reviewer // nil when the backend has no local review surface
	Cleanup  CleanupFunc
}

// Config holds what each backend needs to come up.
type Config struct {
	Type Type

	// SQLite backend
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Remote backend
	RemoteAPIURL string
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case RemoteBackend:
		if c.RemoteAPIURL == "" {
			return fmt.Errorf("remote API URL is required for remote backend")
		}
	}
	return nil
}
