package config

import "errors"

var ErrConfigIsNil = errors.New("config is nil")
var ErrZeroReplicaID = errors.New("replica id resolved to zero")
var ErrInvalidHeartbeatInterval = errors.New("heartbeat interval must be positive")
var ErrInvalidPeerTimeout = errors.New("peer timeout must be positive")
var ErrPeerTimeoutTooShort = errors.New("peer timeout must exceed heartbeat interval")
var ErrInvalidMinPeers = errors.New("min peers must be at least 1")
var ErrInvalidSnapshotInterval = errors.New("snapshot interval must be positive")
