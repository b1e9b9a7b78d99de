package domain

import "fmt"

// Wallets maps each supported network to the store's receiving address.
type Wallets map[Network]string

// Address returns the wallet address for the given network.
func (w Wallets) Address(n Network) (string, error) {
	addr, ok := w[n]
	if !ok || addr == "" {
		return "", fmt.Errorf("no wallet address configured for network %s", n)
	}

	return addr, nil
}
