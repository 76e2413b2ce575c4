package config

import (
	"hash/fnv"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Node        NodeConfig        `yaml:"node"`
	Seeds       []uint64          `yaml:"seeds"`
	Sequence    SequenceConfig    `yaml:"sequence"`
	Coordinator CoordinatorConfig `yaml:"coordinator"`
	Persistence PersistenceConfig `yaml:"persistence"`
}

// NodeConfig identifies this replica. ReplicaID is the numeric identity
// actually used by the sequence and the wire formats; when left at zero
// it is derived from ID so operators can configure a human-readable name
// instead of picking disjoint integers by hand.
type NodeConfig struct {
	ID        string `yaml:"id"`
	ReplicaID uint64 `yaml:"replica_id"`
}

type ReclaimationConfig struct {
	AutoGC             bool   `yaml:"auto_gc"`
	TombstoneThreshold int    `yaml:"tombstone_threshold"`
	MinAge             uint64 `yaml:"min_age"`
}

type OrphanConfig struct {
	MaxBuffer int    `yaml:"max_buffer"`
	MaxAge    uint64 `yaml:"max_age"`
}

type SequenceConfig struct {
	Reclamation ReclaimationConfig `yaml:"reclamation"`
	Orphans     OrphanConfig       `yaml:"orphans"`
}

type CoordinatorConfig struct {
	HeartbeatIntervalMs int  `yaml:"heartbeat_interval_ms"`
	PeerTimeoutMs       int  `yaml:"peer_timeout_ms"`
	GCIntervalMs        int  `yaml:"gc_interval_ms"`
	AutoGC              bool `yaml:"auto_gc"`
	MinPeers            int  `yaml:"min_peers"`
}

type PersistenceConfig struct {
	SnapDir            string `yaml:"snap_dir"`
	SnapshotIntervalMs int    `yaml:"snapshot_interval_ms"`
}

func Read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// HashReplicaID derives a stable numeric replica id from a human-readable
// node id, for operators who would rather name nodes than number them.
func HashReplicaID(id string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	return h.Sum64()
}
