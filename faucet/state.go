package faucet

import (
	"sort"

	"faucetd/types"
)

// RecentClaimsLimit bounds the recent-claims log. The newest claim sits
// at index 0; the entry past the limit is evicted from the back.
const RecentClaimsLimit = 10

// snapshotLocked converts the in-memory state to its durable form.
// Caller must hold s.mu.
func (s *Service) snapshotLocked() *types.FaucetState {
	admins := make([]string, 0, len(s.admins))
	for admin := range s.admins {
		admins = append(admins, admin)
	}
	sort.Strings(admins)

	claimed := make([]string, 0, len(s.claimed))
	for identity := range s.claimed {
		claimed = append(claimed, identity)
	}
	sort.Strings(claimed)

	recent := make([]types.ClaimRecord, len(s.recentClaims))
	copy(recent, s.recentClaims)

	total := make([]types.ClaimRecord, len(s.totalClaims))
	copy(total, s.totalClaims)

	return &types.FaucetState{
		AuthorizedAdmins:  admins,
		FaucetEnabled:     s.enabled,
		ClaimCode:         s.claimCode,
		ClaimAmount:       s.claimAmount,
		ClaimedIdentities: claimed,
		RecentClaims:      recent,
		TotalClaims:       total,
	}
}

// restoreLocked replaces the in-memory state with the durable form.
// Caller must hold s.mu.
func (s *Service) restoreLocked(state *types.FaucetState) {
	s.admins = make(map[string]struct{}, len(state.AuthorizedAdmins))
	for _, admin := range state.AuthorizedAdmins {
		s.admins[admin] = struct{}{}
	}

	s.claimed = make(map[string]struct{}, len(state.ClaimedIdentities))
	for _, identity := range state.ClaimedIdentities {
		s.claimed[identity] = struct{}{}
	}

	s.enabled = state.FaucetEnabled
	s.claimCode = state.ClaimCode
	s.claimAmount = state.ClaimAmount

	s.recentClaims = make([]types.ClaimRecord, len(state.RecentClaims))
	copy(s.recentClaims, state.RecentClaims)
	if len(s.recentClaims) > RecentClaimsLimit {
		s.recentClaims = s.recentClaims[:RecentClaimsLimit]
	}

	s.totalClaims = make([]types.ClaimRecord, len(state.TotalClaims))
	copy(s.totalClaims, state.TotalClaims)
}
