package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPopulateDefaults_FillsEmptyNodeID(t *testing.T) {
	cfg := &Config{}
	cfg.PopulateDefaults()

	if cfg.Node.ID == "" {
		t.Fatal("Node.ID is empty after PopulateDefaults()")
	}
	if cfg.Node.ReplicaID == 0 {
		t.Fatal("Node.ReplicaID is 0 after PopulateDefaults()")
	}
}

func TestPopulateDefaults_DerivesReplicaIDFromExplicitID(t *testing.T) {
	cfg := &Config{Node: NodeConfig{ID: "replica-a"}}
	cfg.PopulateDefaults()

	want := HashReplicaID("replica-a")
	if cfg.Node.ReplicaID != want {
		t.Fatalf("Node.ReplicaID = %d, want %d (derived from ID)", cfg.Node.ReplicaID, want)
	}
}

func TestPopulateDefaults_PreservesExplicitReplicaID(t *testing.T) {
	cfg := &Config{Node: NodeConfig{ID: "replica-a", ReplicaID: 42}}
	cfg.PopulateDefaults()

	if cfg.Node.ReplicaID != 42 {
		t.Fatalf("Node.ReplicaID = %d, want 42 (explicit value preserved)", cfg.Node.ReplicaID)
	}
}

func TestPopulateDefaults_FillsZeroValuedSubConfigs(t *testing.T) {
	cfg := &Config{}
	cfg.PopulateDefaults()

	if cfg.Sequence.Reclamation.TombstoneThreshold != defaultSequence.Reclamation.TombstoneThreshold {
		t.Errorf("TombstoneThreshold = %d, want %d", cfg.Sequence.Reclamation.TombstoneThreshold, defaultSequence.Reclamation.TombstoneThreshold)
	}
	if cfg.Sequence.Orphans.MaxBuffer != defaultSequence.Orphans.MaxBuffer {
		t.Errorf("MaxBuffer = %d, want %d", cfg.Sequence.Orphans.MaxBuffer, defaultSequence.Orphans.MaxBuffer)
	}
	if cfg.Coordinator.HeartbeatIntervalMs != defaultCoordinator.HeartbeatIntervalMs {
		t.Errorf("HeartbeatIntervalMs = %d, want %d", cfg.Coordinator.HeartbeatIntervalMs, defaultCoordinator.HeartbeatIntervalMs)
	}
	if cfg.Persistence.SnapDir != defaultPersistence.SnapDir {
		t.Errorf("SnapDir = %q, want %q", cfg.Persistence.SnapDir, defaultPersistence.SnapDir)
	}
}

func TestValidate_RejectsZeroReplicaID(t *testing.T) {
	cfg := Default()
	cfg.Node.ID = "x"
	// ReplicaID deliberately left at zero, bypassing PopulateDefaults.
	if err := cfg.Validate(); !errors.Is(err, ErrZeroReplicaID) {
		t.Fatalf("Validate() error = %v, want ErrZeroReplicaID", err)
	}
}

func TestValidate_RejectsNonPositiveHeartbeatInterval(t *testing.T) {
	cfg := Default()
	cfg.Node.ReplicaID = 1
	cfg.Coordinator.HeartbeatIntervalMs = 0
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidHeartbeatInterval) {
		t.Fatalf("Validate() error = %v, want ErrInvalidHeartbeatInterval", err)
	}
}

func TestValidate_RejectsPeerTimeoutNotExceedingHeartbeatInterval(t *testing.T) {
	cfg := Default()
	cfg.Node.ReplicaID = 1
	cfg.Coordinator.HeartbeatIntervalMs = 1000
	cfg.Coordinator.PeerTimeoutMs = 1000
	if err := cfg.Validate(); !errors.Is(err, ErrPeerTimeoutTooShort) {
		t.Fatalf("Validate() error = %v, want ErrPeerTimeoutTooShort", err)
	}
}

func TestValidate_RejectsMinPeersBelowOne(t *testing.T) {
	cfg := Default()
	cfg.Node.ReplicaID = 1
	cfg.Coordinator.MinPeers = 0
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidMinPeers) {
		t.Fatalf("Validate() error = %v, want ErrInvalidMinPeers", err)
	}
}

func TestValidate_RejectsNonPositiveSnapshotInterval(t *testing.T) {
	cfg := Default()
	cfg.Node.ReplicaID = 1
	cfg.Persistence.SnapshotIntervalMs = 0
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidSnapshotInterval) {
		t.Fatalf("Validate() error = %v, want ErrInvalidSnapshotInterval", err)
	}
}

func TestValidate_AcceptsDefaultsOnceReplicaIDIsSet(t *testing.T) {
	cfg := Default()
	cfg.Node.ReplicaID = 1
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}
}

func TestRead_ParsesYAMLFixture(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "omnisync.yaml")
	const doc = `
node:
  id: replica-a
  replica_id: 7
seeds: [1, 2]
coordinator:
  heartbeat_interval_ms: 1000
  peer_timeout_ms: 5000
  min_peers: 2
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if cfg.Node.ID != "replica-a" || cfg.Node.ReplicaID != 7 {
		t.Fatalf("Node = %+v, want {ID: replica-a, ReplicaID: 7}", cfg.Node)
	}
	if len(cfg.Seeds) != 2 || cfg.Seeds[0] != 1 || cfg.Seeds[1] != 2 {
		t.Fatalf("Seeds = %v, want [1 2]", cfg.Seeds)
	}
	if cfg.Coordinator.MinPeers != 2 {
		t.Fatalf("Coordinator.MinPeers = %d, want 2", cfg.Coordinator.MinPeers)
	}
}

func TestRead_MissingFileReturnsError(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Read() error = nil, want an error for a missing file")
	}
}
