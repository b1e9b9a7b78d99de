// Package chain queries blockchain explorers to confirm submitted transactions.
package chain

import (
	"context"
	"fmt"

	"github.com/kiris-store/checkout-bot/internal/domain"
)

// Verifier reports whether a transaction is confirmed on its network.
// An error means the explorer could not answer; it never implies the
// transaction failed.
type Verifier interface {
	Confirmed(ctx context.Context, txHash string) (bool, error)
}

// Registry maps networks to their verifier implementation.
type Registry map[domain.Network]Verifier

// ForNetwork returns the verifier responsible for the given network.
func (r Registry) ForNetwork(n domain.Network) (Verifier, error) {
	verifier, ok := r[n]
	if !ok || verifier == nil {
		return nil, fmt.Errorf("no verifier registered for network %s", n)
	}

	return verifier, nil
}
