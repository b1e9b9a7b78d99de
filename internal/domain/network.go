// Package domain holds the shared payment domain types.
package domain

import "fmt"

// Network identifies the blockchain network a payment claim was made on.
type Network string

const (
	// NetworkTron is the TRON network (TRC20 transfers).
	NetworkTron Network = "TRON"
	// NetworkEth is the Ethereum network (ERC20 transfers).
	NetworkEth Network = "ETH"
)

// Networks lists every network offered to the buyer, in presentation order.
var Networks = []Network{NetworkTron, NetworkEth}

// ParseNetwork converts raw callback data into a Network.
func ParseNetwork(raw string) (Network, error) {
	switch Network(raw) {
	case NetworkTron:
		return NetworkTron, nil
	case NetworkEth:
		return NetworkEth, nil
	default:
		return "", fmt.Errorf("unknown network %q", raw)
	}
}

// Label returns the user-facing name of the network.
func (n Network) Label() string {
	switch n {
	case NetworkTron:
		return "TRON (TRC20)"
	case NetworkEth:
		return "ETH (ERC20)"
	default:
		return string(n)
	}
}

// Valid reports whether the network is one of the supported values.
func (n Network) Valid() bool {
	return n == NetworkTron || n == NetworkEth
}
