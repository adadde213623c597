// Package bill implements the employee bill lifecycle: listing submitted
// bills for display and driving the new-bill form from file selection
// through submission.
package bill

import (
	"context"

	"billed/internal/core"
)

// Destinations understood by the Navigator.
const (
	PathBills   = "/bills"
	PathNewBill = "/bills/new"
)

// Ports for outbound collaborators. Implementations live in the store,
// session and http packages; tests substitute small fakes.
type (
	// Store is the remote bill collection. It owns the canonical state of
	// every persisted bill; controllers only hold working copies.
	Store interface {
		List(ctx context.Context) ([]core.Bill, error)
		Create(ctx context.Context, draft core.Bill) (core.Bill, error)
	}

	// Navigator performs a page transition to a destination path.
	Navigator interface {
		Navigate(path string)
	}

	// ModalOpener displays a receipt file preview.
	ModalOpener interface {
		ShowFile(fileURL, fileName string)
	}

	// Session exposes the current authenticated user, if any.
	Session interface {
		CurrentUser() (core.User, bool)
	}
)
