package faucet

import (
	"sync"

	"faucetd/errors"
	"faucetd/logx"
	"faucetd/monitoring"
	"faucetd/store"
	"faucetd/types"
)

// Service owns the faucet state. All reads and mutations go through its
// single mutex: the claim engine is a check-then-mutate sequence, so
// every operation runs inside one critical section.
type Service struct {
	store store.FaucetStore

	mu           sync.Mutex
	admins       map[string]struct{}
	enabled      bool
	claimCode    string
	claimAmount  uint64
	claimed      map[string]struct{}
	recentClaims []types.ClaimRecord // index 0 is the newest claim
	totalClaims  []types.ClaimRecord
}

// FaucetInfo is a public summary of the faucet configuration.
type FaucetInfo struct {
	Enabled          bool     `json:"enabled"`
	ClaimAmount      uint64   `json:"claim_amount"`
	AuthorizedAdmins []string `json:"authorized_admins"`
	ClaimedCount     int      `json:"claimed_count"`
	TotalClaimCount  int      `json:"total_claim_count"`
}

func NewService(st store.FaucetStore) *Service {
	return &Service{
		store:   st,
		admins:  make(map[string]struct{}),
		claimed: make(map[string]struct{}),
	}
}

// DeployDefaults are the deploy-time configuration values applied on a
// first-ever start, before any admin has touched the faucet.
type DeployDefaults struct {
	Enabled   bool
	Amount    uint64
	ClaimCode string
}

// Initialize seeds a fresh faucet with its first admins and deploy
// defaults. Called once at deploy time, before any other operation; the
// admin set must never be empty afterwards.
func (s *Service) Initialize(seedAdmins []string, defaults DeployDefaults) error {
	if len(seedAdmins) == 0 {
		return errors.NewInvalidRequestError("at least one seed admin is required")
	}
	for _, admin := range seedAdmins {
		if err := types.ValidateIdentity(admin); err != nil {
			return errors.NewInvalidIdentityError()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, admin := range seedAdmins {
		s.admins[admin] = struct{}{}
	}
	s.enabled = defaults.Enabled
	s.claimAmount = defaults.Amount
	s.claimCode = defaults.ClaimCode
	monitoring.SetFaucetEnabled(s.enabled)
	logx.Info("FAUCET", "Initialized with ", len(s.admins), " admin(s)")
	return nil
}

// Restore replaces the live state with a previously persisted snapshot.
func (s *Service) Restore(state *types.FaucetState) error {
	if state == nil {
		return errors.NewSnapshotFailureError("cannot restore nil state")
	}
	if len(state.AuthorizedAdmins) == 0 {
		return errors.NewSnapshotFailureError("snapshot has no authorized admins")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.restoreLocked(state)
	monitoring.SetFaucetEnabled(s.enabled)
	monitoring.SetClaimedIdentities(len(s.claimed))
	monitoring.SetTotalClaims(len(s.totalClaims))
	logx.Info("FAUCET", "Restored state: ", len(s.claimed), " claimed identities, ", len(s.totalClaims), " total claims")
	return nil
}

// Snapshot returns a copy of the full state in its durable form.
func (s *Service) Snapshot() *types.FaucetState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// SetFaucetEnabled turns claiming on or off.
func (s *Service) SetFaucetEnabled(caller string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isAuthorizedLocked(caller) {
		monitoring.IncreaseUnauthorizedCount()
		return errors.NewUnauthorizedError()
	}

	s.enabled = enabled
	monitoring.SetFaucetEnabled(enabled)
	monitoring.RecordAdminMutation("toggle_faucet")
	logx.Info("FAUCET", "Faucet enabled set to ", enabled, " by ", caller)
	return nil
}

// SetClaimCode replaces the shared claim code. Any string is accepted,
// including empty.
func (s *Service) SetClaimCode(caller string, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isAuthorizedLocked(caller) {
		monitoring.IncreaseUnauthorizedCount()
		return errors.NewUnauthorizedError()
	}

	s.claimCode = code
	monitoring.RecordAdminMutation("set_claim_code")
	logx.Info("FAUCET", "Claim code updated by ", caller)
	return nil
}

// SetClaimAmount replaces the reward recorded per claim. Zero is accepted.
func (s *Service) SetClaimAmount(caller string, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isAuthorizedLocked(caller) {
		monitoring.IncreaseUnauthorizedCount()
		return errors.NewUnauthorizedError()
	}

	s.claimAmount = amount
	monitoring.RecordAdminMutation("set_claim_amount")
	logx.Info("FAUCET", "Claim amount set to ", amount, " by ", caller)
	return nil
}

// ResetClaimedIdentities clears the eligibility set. The recent and
// total claim logs are untouched: history outlives a reset.
func (s *Service) ResetClaimedIdentities(caller string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isAuthorizedLocked(caller) {
		monitoring.IncreaseUnauthorizedCount()
		return errors.NewUnauthorizedError()
	}

	s.claimed = make(map[string]struct{})
	monitoring.SetClaimedIdentities(0)
	monitoring.RecordAdminMutation("reset_claimed_identities")
	logx.Info("FAUCET", "Claimed identities reset by ", caller)
	return nil
}

// AddAdmin inserts identity into the authorized admin set.
func (s *Service) AddAdmin(caller string, identity string) error {
	if err := types.ValidateIdentity(identity); err != nil {
		return errors.NewInvalidIdentityError()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isAuthorizedLocked(caller) {
		monitoring.IncreaseUnauthorizedCount()
		return errors.NewUnauthorizedError()
	}

	s.admins[identity] = struct{}{}
	monitoring.RecordAdminMutation("add_admin")
	logx.Info("FAUCET", "Admin ", identity, " added by ", caller)
	return nil
}

// RemoveAdmin removes identity from the authorized admin set. Removing
// the last admin would make the faucet permanently unmanageable, so it
// is rejected.
func (s *Service) RemoveAdmin(caller string, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isAuthorizedLocked(caller) {
		monitoring.IncreaseUnauthorizedCount()
		return errors.NewUnauthorizedError()
	}

	if _, ok := s.admins[identity]; !ok {
		return errors.NewInvalidRequestError("identity is not an admin")
	}
	if len(s.admins) == 1 {
		return errors.NewInvalidRequestError("cannot remove the last admin")
	}

	delete(s.admins, identity)
	monitoring.RecordAdminMutation("remove_admin")
	logx.Info("FAUCET", "Admin ", identity, " removed by ", caller)
	return nil
}

// Claim grants claimAmount to caller when the faucet is enabled, the
// submitted code matches byte-exactly, and caller has never claimed.
// The checks run in that order and the first failure aborts with no
// mutation at all.
func (s *Service) Claim(caller string, submittedCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		monitoring.RecordRejectedClaim(monitoring.ClaimFaucetDisabled)
		return errors.NewFaucetDisabledError()
	}
	if submittedCode != s.claimCode {
		monitoring.RecordRejectedClaim(monitoring.ClaimInvalidCode)
		return errors.NewInvalidCodeError()
	}
	if _, ok := s.claimed[caller]; ok {
		monitoring.RecordRejectedClaim(monitoring.ClaimAlreadyClaimed)
		return errors.NewAlreadyClaimedError()
	}

	record := types.ClaimRecord{Address: caller, Amount: s.claimAmount}

	// Write the audit row before mutating memory so a storage failure
	// leaves the in-memory state untouched.
	if s.store != nil {
		if err := s.store.AppendClaimRecord(&record); err != nil {
			logx.Error("FAUCET", "Failed to append audit record for ", caller, ": ", err)
			return errors.NewFaucetError(errors.ErrCodeInternal, errors.ErrMsgInternal)
		}
	}

	s.claimed[caller] = struct{}{}
	s.recentClaims = append([]types.ClaimRecord{record}, s.recentClaims...)
	if len(s.recentClaims) > RecentClaimsLimit {
		s.recentClaims = s.recentClaims[:RecentClaimsLimit]
	}
	s.totalClaims = append(s.totalClaims, record)

	monitoring.IncreaseGrantedClaimCount()
	monitoring.SetClaimedIdentities(len(s.claimed))
	monitoring.SetTotalClaims(len(s.totalClaims))
	logx.Info("FAUCET", "Claim granted: ", caller, " amount ", record.Amount)
	return nil
}

// GetRecentClaims returns a copy of the bounded recent-claims log,
// newest first.
func (s *Service) GetRecentClaims() []types.ClaimRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.ClaimRecord, len(s.recentClaims))
	copy(out, s.recentClaims)
	return out
}

// GetTotalClaims returns a copy of the full audit trail in insertion
// order.
func (s *Service) GetTotalClaims() []types.ClaimRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.ClaimRecord, len(s.totalClaims))
	copy(out, s.totalClaims)
	return out
}

// Info returns a public summary of the current configuration.
func (s *Service) Info() FaucetInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.snapshotLocked()
	return FaucetInfo{
		Enabled:          s.enabled,
		ClaimAmount:      s.claimAmount,
		AuthorizedAdmins: state.AuthorizedAdmins,
		ClaimedCount:     len(s.claimed),
		TotalClaimCount:  len(s.totalClaims),
	}
}
