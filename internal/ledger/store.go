package ledger

import (
	"context"
	"errors"
)

// ErrClaimNotFound indicates a status update targeted a row that does not exist.
var ErrClaimNotFound = errors.New("claim not found")

// Store defines the persistence contract for the claims ledger.
type Store interface {
	// Append adds a new claim row and assigns its stable id. A failed append
	// must propagate so the caller never reports a commit that was lost.
	Append(ctx context.Context, claim *Claim) error
	// ListUnapproved returns every claim whose status is not Approved, in
	// insertion order. The scan is restartable: records already approved are
	// simply skipped on the next run.
	ListUnapproved(ctx context.Context) ([]Claim, error)
	// SetStatus updates exactly one claim's status in place, keyed by the
	// stable id assigned at append time. The update is idempotent.
	SetStatus(ctx context.Context, id int64, status Status) error
}
