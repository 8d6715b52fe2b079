package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"faucetd/errors"
	"faucetd/faucet"
	"faucetd/jsonx"
	"faucetd/logx"
	"faucetd/monitoring"
	"faucetd/store"
	"faucetd/types"

	"github.com/google/uuid"
)

const FileName = "snapshot-latest.json"

const formatVersion = 1

type SnapshotMeta struct {
	ID        string    `json:"id"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

type SnapshotFile struct {
	Meta  SnapshotMeta      `json:"meta"`
	State types.FaucetState `json:"state"`
}

// Manager drives the suspend/resume lifecycle: the full faucet state is
// written to the store before the process goes away and read back when
// it comes up. Without this every restart would erase the claim history
// and the eligibility set.
type Manager struct {
	svc *faucet.Service
	st  store.FaucetStore
}

func NewManager(svc *faucet.Service, st store.FaucetStore) *Manager {
	return &Manager{svc: svc, st: st}
}

// Suspend serializes the live state into the store. A failure here is
// fatal to the shutdown path: the caller must keep the process (and its
// consistent in-memory state) alive rather than lose the snapshot.
func (m *Manager) Suspend() error {
	state := m.svc.Snapshot()
	if err := m.st.StoreState(state); err != nil {
		logx.Error("SNAPSHOT", "Suspend failed: ", err)
		return errors.NewSnapshotFailureError(err.Error())
	}
	monitoring.IncreaseSnapshotCount()
	logx.Info("SNAPSHOT", "State persisted: ", len(state.ClaimedIdentities), " claimed, ", len(state.TotalClaims), " total claims")
	return nil
}

// Resume loads the persisted snapshot into the live state. On the
// first-ever start there is no snapshot, so the faucet initializes to
// the deploy defaults with seedAdmins as the authorized set.
func (m *Manager) Resume(seedAdmins []string, defaults faucet.DeployDefaults) error {
	state, err := m.st.LoadState()
	if err != nil {
		return errors.NewSnapshotFailureError(err.Error())
	}
	if state == nil {
		logx.Info("SNAPSHOT", "No snapshot found, initializing fresh state")
		return m.svc.Initialize(seedAdmins, defaults)
	}
	return m.svc.Restore(state)
}

// ExportFile writes an operator-readable snapshot file into dir and
// prunes any older snapshot JSONs so only the latest remains.
func (m *Manager) ExportFile(dir string) (string, error) {
	file := SnapshotFile{
		Meta: SnapshotMeta{
			ID:        uuid.NewString(),
			Version:   formatVersion,
			CreatedAt: time.Now().UTC(),
		},
		State: *m.svc.Snapshot(),
	}

	data, err := jsonx.MarshalIndent(file, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot directory: %w", err)
	}

	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot file: %w", err)
	}

	if err := cleanupOldSnapshots(dir, path); err != nil {
		logx.Error("SNAPSHOT", "Failed to cleanup old snapshots:", err)
	}

	return path, nil
}

// ImportFile replaces the live state with the contents of an exported
// snapshot file and persists it immediately.
func (m *Manager) ImportFile(path string) error {
	file, err := ReadFile(path)
	if err != nil {
		return errors.NewSnapshotFailureError(err.Error())
	}
	if err := m.svc.Restore(&file.State); err != nil {
		return err
	}
	return m.Suspend()
}

// ReadFile loads an exported snapshot file from disk
func ReadFile(path string) (*SnapshotFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s SnapshotFile
	if err := jsonx.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func cleanupOldSnapshots(dir, latestPath string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read snapshot dir: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		filePath := filepath.Join(dir, file.Name())
		if filePath != latestPath {
			if err := os.Remove(filePath); err != nil {
				logx.Error("SNAPSHOT", "Failed to remove old snapshot:", filePath, err)
			}
		}
	}

	return nil
}
