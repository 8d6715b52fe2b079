package types

// ClaimRecord is one granted claim: which identity was paid and how much.
type ClaimRecord struct {
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
}

// FaucetState is the full durable state of the faucet. It is the exact
// shape written to storage at suspend and read back at resume; every
// field must round-trip losslessly.
type FaucetState struct {
	AuthorizedAdmins  []string      `json:"authorized_admins"`
	FaucetEnabled     bool          `json:"faucet_enabled"`
	ClaimCode         string        `json:"claim_code"`
	ClaimAmount       uint64        `json:"claim_amount"`
	ClaimedIdentities []string      `json:"claimed_identities"`
	RecentClaims      []ClaimRecord `json:"recent_claims"`
	TotalClaims       []ClaimRecord `json:"total_claims"`
}
