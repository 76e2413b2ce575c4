package config

func (c *Config) Validate() error {
	if err := c.Node.Validate(); err != nil {
		return err
	}
	if err := c.Coordinator.Validate(); err != nil {
		return err
	}
	if err := c.Persistence.Validate(); err != nil {
		return err
	}
	return nil
}

func (c *NodeConfig) Validate() error {
	if c.ReplicaID == 0 {
		return ErrZeroReplicaID
	}
	return nil
}

func (c *CoordinatorConfig) Validate() error {
	if c.HeartbeatIntervalMs <= 0 {
		return ErrInvalidHeartbeatInterval
	}
	if c.PeerTimeoutMs <= 0 {
		return ErrInvalidPeerTimeout
	}
	if c.PeerTimeoutMs <= c.HeartbeatIntervalMs {
		return ErrPeerTimeoutTooShort
	}
	if c.MinPeers < 1 {
		return ErrInvalidMinPeers
	}
	return nil
}

func (c *PersistenceConfig) Validate() error {
	if c.SnapshotIntervalMs <= 0 {
		return ErrInvalidSnapshotInterval
	}
	return nil
}
