package snapshot

import (
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"faucetd/db"
	"faucetd/errors"
	"faucetd/faucet"
	"faucetd/store"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIdentity(t *testing.T) string {
	t.Helper()
	pubKey, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return base58.Encode(pubKey)
}

func TestSuspendResumeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	admin := newTestIdentity(t)

	provider, err := db.NewLevelDBProvider(dir)
	require.NoError(t, err)
	st, err := store.NewGenericFaucetStore(provider)
	require.NoError(t, err)

	svc := faucet.NewService(st)
	mgr := NewManager(svc, st)

	defaults := faucet.DeployDefaults{Enabled: true, Amount: 9, ClaimCode: "rt"}
	require.NoError(t, mgr.Resume([]string{admin}, defaults))

	claimers := make([]string, 12)
	for i := range claimers {
		claimers[i] = newTestIdentity(t)
		require.NoError(t, svc.Claim(claimers[i], "rt"))
	}

	want := svc.Snapshot()
	require.NoError(t, mgr.Suspend())
	st.MustClose()

	// Simulate a process restart against the same directory.
	provider2, err := db.NewLevelDBProvider(dir)
	require.NoError(t, err)
	st2, err := store.NewGenericFaucetStore(provider2)
	require.NoError(t, err)
	defer st2.MustClose()

	svc2 := faucet.NewService(st2)
	mgr2 := NewManager(svc2, st2)
	require.NoError(t, mgr2.Resume([]string{admin}, defaults))

	assert.Equal(t, want, svc2.Snapshot(), "resumed state must match suspended state")

	// Eligibility survives the restart.
	err = svc2.Claim(claimers[0], "rt")
	assert.True(t, errors.IsCode(err, errors.ErrCodeAlreadyClaimed))
}

func TestResumeFreshStateInitializes(t *testing.T) {
	admin := newTestIdentity(t)
	st, err := store.NewGenericFaucetStore(db.NewMemoryProvider())
	require.NoError(t, err)

	svc := faucet.NewService(st)
	mgr := NewManager(svc, st)
	require.NoError(t, mgr.Resume([]string{admin}, faucet.DeployDefaults{Enabled: true, Amount: 4}))

	info := svc.Info()
	assert.True(t, info.Enabled)
	assert.Equal(t, uint64(4), info.ClaimAmount)
	assert.True(t, svc.IsAuthorized(admin))
}

func TestExportImportFile(t *testing.T) {
	admin := newTestIdentity(t)
	user := newTestIdentity(t)
	dir := t.TempDir()

	st, err := store.NewGenericFaucetStore(db.NewMemoryProvider())
	require.NoError(t, err)
	svc := faucet.NewService(st)
	mgr := NewManager(svc, st)
	require.NoError(t, svc.Initialize([]string{admin}, faucet.DeployDefaults{Enabled: true, Amount: 3}))
	require.NoError(t, svc.Claim(user, ""))

	// A stale snapshot JSON gets pruned by export.
	stale := filepath.Join(dir, "snapshot-old.json")
	require.NoError(t, os.WriteFile(stale, []byte("{}"), 0644))

	path, err := mgr.ExportFile(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), path)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "old snapshot file should be removed")

	file, err := ReadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, file.Meta.ID)
	assert.Equal(t, formatVersion, file.Meta.Version)
	assert.False(t, file.Meta.CreatedAt.IsZero())
	assert.Equal(t, *svc.Snapshot(), file.State)

	// Import into a blank service restores and persists the state.
	st2, err := store.NewGenericFaucetStore(db.NewMemoryProvider())
	require.NoError(t, err)
	svc2 := faucet.NewService(st2)
	mgr2 := NewManager(svc2, st2)
	require.NoError(t, mgr2.ImportFile(path))

	assert.Equal(t, svc.Snapshot(), svc2.Snapshot())
	persisted, err := st2.LoadState()
	require.NoError(t, err)
	assert.Equal(t, svc.Snapshot(), persisted)
}

func TestImportFileRejectsMissingOrBadFile(t *testing.T) {
	st, err := store.NewGenericFaucetStore(db.NewMemoryProvider())
	require.NoError(t, err)
	mgr := NewManager(faucet.NewService(st), st)

	err = mgr.ImportFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeSnapshotFailure))

	// A structurally valid file with an adminless state is rejected by
	// Restore, not silently accepted.
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"meta":{"id":"x","version":1},"state":{}}`), 0644))
	err = mgr.ImportFile(bad)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSnapshotFailure))
}

func TestSuspendFailureSurfacesAsSnapshotFailure(t *testing.T) {
	admin := newTestIdentity(t)

	dir := t.TempDir()
	provider, err := db.NewLevelDBProvider(dir)
	require.NoError(t, err)
	st, err := store.NewGenericFaucetStore(provider)
	require.NoError(t, err)

	svc := faucet.NewService(st)
	require.NoError(t, svc.Initialize([]string{admin}, faucet.DeployDefaults{}))
	mgr := NewManager(svc, st)

	// A closed provider makes the store write fail; Suspend must report
	// snapshot_failure instead of pretending the state is safe.
	require.NoError(t, provider.Close())
	err = mgr.Suspend()
	assert.True(t, errors.IsCode(err, errors.ErrCodeSnapshotFailure), "got %v", err)
}
