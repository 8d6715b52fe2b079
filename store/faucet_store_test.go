package store

import (
	"fmt"
	"testing"

	"faucetd/db"
	"faucetd/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryStore(t *testing.T) *GenericFaucetStore {
	t.Helper()
	st, err := NewGenericFaucetStore(db.NewMemoryProvider())
	require.NoError(t, err)
	return st
}

func TestStoreStateRoundTrip(t *testing.T) {
	st := newMemoryStore(t)

	has, err := st.HasState()
	require.NoError(t, err)
	assert.False(t, has, "fresh store should have no state")

	loaded, err := st.LoadState()
	require.NoError(t, err)
	assert.Nil(t, loaded, "fresh store should load nil state")

	state := &types.FaucetState{
		AuthorizedAdmins:  []string{"admin-a", "admin-b"},
		FaucetEnabled:     true,
		ClaimCode:         "CODE",
		ClaimAmount:       500,
		ClaimedIdentities: []string{"user-1", "user-2"},
		RecentClaims: []types.ClaimRecord{
			{Address: "user-2", Amount: 500},
			{Address: "user-1", Amount: 250},
		},
		TotalClaims: []types.ClaimRecord{
			{Address: "user-1", Amount: 250},
			{Address: "user-2", Amount: 500},
		},
	}
	require.NoError(t, st.StoreState(state))

	has, err = st.HasState()
	require.NoError(t, err)
	assert.True(t, has)

	loaded, err = st.LoadState()
	require.NoError(t, err)
	assert.Equal(t, state, loaded)
}

func TestStoreStateOverwrites(t *testing.T) {
	st := newMemoryStore(t)

	require.NoError(t, st.StoreState(&types.FaucetState{ClaimAmount: 1}))
	require.NoError(t, st.StoreState(&types.FaucetState{ClaimAmount: 2}))

	loaded, err := st.LoadState()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), loaded.ClaimAmount)
}

func TestStoreStateRejectsNil(t *testing.T) {
	st := newMemoryStore(t)
	assert.Error(t, st.StoreState(nil))
	assert.Error(t, st.AppendClaimRecord(nil))
}

func TestAppendClaimRecordOrdering(t *testing.T) {
	st := newMemoryStore(t)

	// Past ten rows the zero-padded keys must still iterate in
	// insertion order.
	const n = 25
	for i := 0; i < n; i++ {
		rec := &types.ClaimRecord{Address: fmt.Sprintf("user-%d", i), Amount: uint64(i)}
		require.NoError(t, st.AppendClaimRecord(rec))
	}

	rows, err := st.ListClaimRecords()
	require.NoError(t, err)
	require.Len(t, rows, n)
	for i, row := range rows {
		assert.Equal(t, fmt.Sprintf("user-%d", i), row.Address)
		assert.Equal(t, uint64(i), row.Amount)
	}
}

func TestClaimRecordsUntouchedByStateWrites(t *testing.T) {
	st := newMemoryStore(t)

	require.NoError(t, st.AppendClaimRecord(&types.ClaimRecord{Address: "user-1", Amount: 9}))
	require.NoError(t, st.StoreState(&types.FaucetState{}))

	rows, err := st.ListClaimRecords()
	require.NoError(t, err)
	assert.Len(t, rows, 1, "snapshot writes must not disturb audit rows")
}

func TestLevelDBBackedStore(t *testing.T) {
	provider, err := db.NewLevelDBProvider(t.TempDir())
	require.NoError(t, err)

	st, err := NewGenericFaucetStore(provider)
	require.NoError(t, err)
	defer st.MustClose()

	state := &types.FaucetState{
		AuthorizedAdmins: []string{"admin"},
		ClaimAmount:      77,
	}
	require.NoError(t, st.StoreState(state))
	require.NoError(t, st.AppendClaimRecord(&types.ClaimRecord{Address: "user", Amount: 77}))

	loaded, err := st.LoadState()
	require.NoError(t, err)
	assert.Equal(t, state, loaded)

	rows, err := st.ListClaimRecords()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "user", rows[0].Address)
}
