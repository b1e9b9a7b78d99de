package ledger

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used in tests and local development.
// It mirrors the postgres semantics: stable monotonic ids, insertion-order
// scans, idempotent status updates.
type MemoryStore struct {
	mu     sync.RWMutex
	claims []Claim
	nextID int64
}

// NewMemoryStore returns an empty in-memory ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

// Append adds a claim row and assigns its id.
func (s *MemoryStore) Append(ctx context.Context, claim *Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if claim.Timestamp.IsZero() {
		claim.Timestamp = time.Now().UTC()
	}

	claim.ID = s.nextID
	s.nextID++
	s.claims = append(s.claims, *claim)

	return nil
}

// ListUnapproved returns pending claims in insertion order.
func (s *MemoryStore) ListUnapproved(ctx context.Context) ([]Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []Claim
	for _, claim := range s.claims {
		if claim.TxnStatus != StatusApproved {
			pending = append(pending, claim)
		}
	}

	return pending, nil
}

// SetStatus updates one claim's status keyed by id.
func (s *MemoryStore) SetStatus(ctx context.Context, id int64, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.claims {
		if s.claims[i].ID == id {
			s.claims[i].TxnStatus = status
			return nil
		}
	}

	return ErrClaimNotFound
}

// Get returns a copy of the claim with the given id, for assertions in tests.
func (s *MemoryStore) Get(id int64) (Claim, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, claim := range s.claims {
		if claim.ID == id {
			return claim, true
		}
	}

	return Claim{}, false
}

// Len returns the total number of rows in the ledger.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.claims)
}
