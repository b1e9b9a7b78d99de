package state

// validTransitions contains the permitted forward transitions in the checkout FSM.
var validTransitions = map[State][]State{
	StateIdle: {
		StateAwaitingOrderNumber,
	},
	StateAwaitingOrderNumber: {
		StateAwaitingCryptoChoice,
	},
	StateAwaitingCryptoChoice: {
		StateAwaitingTransactionHash,
	},
	StateAwaitingTransactionHash: {
		StateAwaitingHashConfirmation,
	},
	StateAwaitingHashConfirmation: {
		StateClosed,
		StateAwaitingTransactionHash,
	},
	StateClosed: {},
}

// IsTransitionAllowed reports whether moving from one state to another is valid.
// Idle and awaiting_order_number are reachable from anywhere: the first is the
// cancel path, the second is the restart path taken when the claim guard trips.
func IsTransitionAllowed(from, to State) bool {
	if to == StateIdle || to == StateAwaitingOrderNumber {
		return true
	}

	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	for _, state := range allowed {
		if state == to {
			return true
		}
	}

	return false
}
