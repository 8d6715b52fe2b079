package store

import (
	"encoding/binary"
	"fmt"

	"faucetd/db"
	"faucetd/jsonx"
	"faucetd/logx"
	"faucetd/types"
)

// FaucetStore persists faucet state. The snapshot blob written at
// suspend is the source of truth for resume; the per-claim audit rows
// are written at claim time so the audit trail survives a crash that
// happens between snapshots.
type FaucetStore interface {
	// Snapshot blob operations
	StoreState(state *types.FaucetState) error
	LoadState() (*types.FaucetState, error)
	HasState() (bool, error)

	// Write-through audit operations
	AppendClaimRecord(record *types.ClaimRecord) error
	ListClaimRecords() ([]types.ClaimRecord, error)

	MustClose()
}

type GenericFaucetStore struct {
	dbProvider db.DatabaseProvider
}

func NewGenericFaucetStore(dbProvider db.DatabaseProvider) (*GenericFaucetStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}

	return &GenericFaucetStore{
		dbProvider: dbProvider,
	}, nil
}

// StoreState writes the full serialized faucet state under the state key.
func (s *GenericFaucetStore) StoreState(state *types.FaucetState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}

	stateData, err := jsonx.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal faucet state: %w", err)
	}

	if err := s.dbProvider.Put([]byte(KeyFaucetState), stateData); err != nil {
		return fmt.Errorf("failed to store faucet state: %w", err)
	}

	return nil
}

// LoadState reads the serialized faucet state, returning nil when no
// snapshot has ever been written.
func (s *GenericFaucetStore) LoadState() (*types.FaucetState, error) {
	data, err := s.dbProvider.Get([]byte(KeyFaucetState))
	if err != nil {
		return nil, fmt.Errorf("failed to get faucet state: %w", err)
	}

	if data == nil {
		return nil, nil
	}

	var state types.FaucetState
	if err := jsonx.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal faucet state: %w", err)
	}

	return &state, nil
}

// HasState checks whether a snapshot blob exists.
func (s *GenericFaucetStore) HasState() (bool, error) {
	return s.dbProvider.Has([]byte(KeyFaucetState))
}

// AppendClaimRecord writes one audit row and bumps the sequence counter
// in a single batch.
func (s *GenericFaucetStore) AppendClaimRecord(record *types.ClaimRecord) error {
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}

	seq, err := s.nextClaimSeq()
	if err != nil {
		return err
	}

	recordData, err := jsonx.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal claim record: %w", err)
	}

	seqData := make([]byte, 8)
	binary.BigEndian.PutUint64(seqData, seq+1)

	batch := s.dbProvider.Batch()
	defer batch.Close()
	batch.Put([]byte(s.claimKey(seq)), recordData)
	batch.Put([]byte(KeyClaimSeq), seqData)
	if err := batch.Write(); err != nil {
		return fmt.Errorf("failed to append claim record: %w", err)
	}

	return nil
}

// ListClaimRecords returns every audit row in insertion order.
func (s *GenericFaucetStore) ListClaimRecords() ([]types.ClaimRecord, error) {
	iterableProvider, ok := s.dbProvider.(db.IterableProvider)
	if !ok {
		return nil, fmt.Errorf("database provider does not support iteration")
	}

	var records []types.ClaimRecord
	err := iterableProvider.IteratePrefix([]byte(PrefixClaim), func(key, value []byte) bool {
		var record types.ClaimRecord
		if err := jsonx.Unmarshal(value, &record); err != nil {
			logx.Error("FAUCET_STORE", "Failed to unmarshal claim record ", string(key), ": ", err)
			return true
		}
		records = append(records, record)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate claim records: %w", err)
	}

	return records, nil
}

func (s *GenericFaucetStore) nextClaimSeq() (uint64, error) {
	data, err := s.dbProvider.Get([]byte(KeyClaimSeq))
	if err != nil {
		return 0, fmt.Errorf("failed to get claim sequence: %w", err)
	}
	if len(data) != 8 {
		return 0, nil
	}
	return binary.BigEndian.Uint64(data), nil
}

func (s *GenericFaucetStore) claimKey(seq uint64) string {
	return fmt.Sprintf("%s%016d", PrefixClaim, seq)
}

func (s *GenericFaucetStore) MustClose() {
	err := s.dbProvider.Close()
	if err != nil {
		logx.Error("FAUCET_STORE", "Failed to close provider")
	}
}
