package store

// Declare database key prefix for objects
const (
	// KeyFaucetState holds the single serialized FaucetState snapshot blob.
	KeyFaucetState = "faucet:state"

	// PrefixClaim holds one write-through audit row per granted claim,
	// keyed by zero-padded sequence so prefix iteration yields
	// insertion order.
	PrefixClaim = "claim:"

	// KeyClaimSeq is the next audit row sequence number.
	KeyClaimSeq = "claim_seq"
)
