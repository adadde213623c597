// Package archive defines the outbound port for the bill archive.
package archive

import (
	"context"

	"billed/internal/core"
)

// Appender pushes one bill to the archive and returns a row reference.
type Appender interface {
	Append(ctx context.Context, b core.Bill) (rowRef string, err error)
}
