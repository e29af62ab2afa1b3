// Package sheets defines the export port the sync worker writes to.
package sheets

import (
	"context"

	"khata/internal/core"
)

// TransactionWriter appends a transaction row to an external sheet and
// returns a reference to the written row. The export is append-only: edits
// re-append, deletes append a void marker.
type TransactionWriter interface {
	Append(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	AppendVoid(ctx context.Context, transactionID string) (rowRef string, err error)
}
