package config

import "github.com/google/uuid"

var defaultNode = NodeConfig{
	ID: "node",
}

var defaultSequence = SequenceConfig{
	Reclamation: ReclaimationConfig{
		AutoGC:             true,
		TombstoneThreshold: 1000,
		MinAge:             500,
	},
	Orphans: OrphanConfig{
		MaxBuffer: 10000,
		MaxAge:    5000,
	},
}

var defaultCoordinator = CoordinatorConfig{
	HeartbeatIntervalMs: 5000,
	PeerTimeoutMs:       30000,
	GCIntervalMs:        60000,
	AutoGC:              true,
	MinPeers:            1,
}

var defaultPersistence = PersistenceConfig{
	SnapDir:            "snap",
	SnapshotIntervalMs: 30000,
}

func Default() *Config {
	return &Config{
		Node:        defaultNode,
		Seeds:       []uint64{},
		Sequence:    defaultSequence,
		Coordinator: defaultCoordinator,
		Persistence: defaultPersistence,
	}
}

func (c *NodeConfig) PopulateDefaults() {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	if c.ReplicaID == 0 {
		c.ReplicaID = HashReplicaID(c.ID)
	}
}

func (c *ReclaimationConfig) PopulateDefaults() {
	if c.TombstoneThreshold == 0 {
		c.TombstoneThreshold = defaultSequence.Reclamation.TombstoneThreshold
	}
	if c.MinAge == 0 {
		c.MinAge = defaultSequence.Reclamation.MinAge
	}
}

func (c *OrphanConfig) PopulateDefaults() {
	if c.MaxBuffer == 0 {
		c.MaxBuffer = defaultSequence.Orphans.MaxBuffer
	}
	if c.MaxAge == 0 {
		c.MaxAge = defaultSequence.Orphans.MaxAge
	}
}

func (c *SequenceConfig) PopulateDefaults() {
	c.Reclamation.PopulateDefaults()
	c.Orphans.PopulateDefaults()
}

func (c *CoordinatorConfig) PopulateDefaults() {
	if c.HeartbeatIntervalMs == 0 {
		c.HeartbeatIntervalMs = defaultCoordinator.HeartbeatIntervalMs
	}
	if c.PeerTimeoutMs == 0 {
		c.PeerTimeoutMs = defaultCoordinator.PeerTimeoutMs
	}
	if c.GCIntervalMs == 0 {
		c.GCIntervalMs = defaultCoordinator.GCIntervalMs
	}
	if c.MinPeers == 0 {
		c.MinPeers = defaultCoordinator.MinPeers
	}
}

func (c *PersistenceConfig) PopulateDefaults() {
	if c.SnapDir == "" {
		c.SnapDir = defaultPersistence.SnapDir
	}
	if c.SnapshotIntervalMs == 0 {
		c.SnapshotIntervalMs = defaultPersistence.SnapshotIntervalMs
	}
}

func (c *Config) PopulateDefaults() {
	c.Node.PopulateDefaults()
	c.Sequence.PopulateDefaults()
	c.Coordinator.PopulateDefaults()
	c.Persistence.PopulateDefaults()
}
