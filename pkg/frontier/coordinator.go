// Package frontier coordinates tombstone reclamation across a set of
// replicas by tracking each peer's reported version map and computing the
// pointwise minimum across every peer currently considered active.
package frontier

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"omnisync/pkg/rga"
)

// Config tunes heartbeat cadence, peer liveness and reclamation scheduling.
type Config struct {
	HeartbeatInterval time.Duration
	PeerTimeout       time.Duration
	GCInterval        time.Duration
	AutoGC            bool
	MinPeers          int
}

// peerState tracks the last version map a peer reported and when.
type peerState struct {
	version  rga.VersionMap
	lastSeen time.Time
	active   bool
}

// Coordinator tracks peer version maps and computes the safe reclamation
// frontier. It does not itself perform I/O; SendHeartbeat takes a
// caller-supplied send function and Perform takes the sequence to reclaim,
// so the coordinator stays transport-agnostic.
type Coordinator struct {
	mu     sync.Mutex
	selfID uint64
	cfg    Config

	peers     map[uint64]*peerState
	lastGC    time.Time
	myVersion rga.VersionMap
}

// New creates a coordinator for selfID. selfID is never registered as a
// peer of itself.
func New(selfID uint64, cfg Config) *Coordinator {
	return &Coordinator{
		selfID:    selfID,
		cfg:       cfg,
		peers:     make(map[uint64]*peerState),
		lastGC:    time.Now(),
		myVersion: rga.NewVersionMap(selfID),
	}
}

// RegisterPeer adds peer_id to the set of known peers. It is a no-op if
// peer_id is this coordinator's own id or already registered.
func (c *Coordinator) RegisterPeer(peerID uint64) {
	if peerID == c.selfID {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registerLocked(peerID)
}

func (c *Coordinator) registerLocked(peerID uint64) {
	if _, ok := c.peers[peerID]; ok {
		return
	}
	c.peers[peerID] = &peerState{lastSeen: time.Now()}
}

// UpdatePeerState records the version map most recently observed from
// peer_id, auto-registering unknown peers the way a heartbeat from a peer
// this coordinator never explicitly registered still counts.
func (c *Coordinator) UpdatePeerState(peerID uint64, vm rga.VersionMap) {
	if peerID == c.selfID {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registerLocked(peerID)
	st := c.peers[peerID]
	st.version = vm
	st.lastSeen = time.Now()
	st.active = true
}

// RemovePeer forgets a peer entirely, e.g. on a clean disconnect.
func (c *Coordinator) RemovePeer(peerID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.peers, peerID)
}

// UpdateSelf records this replica's own version map, called after local
// operations so ComputeFrontier accounts for them.
func (c *Coordinator) UpdateSelf(vm rga.VersionMap) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.myVersion = vm
}

// ActivePeers returns the ids of peers that have reported at least once
// and within PeerTimeout of now.
func (c *Coordinator) ActivePeers() []uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activePeerIDsLocked()
}

func (c *Coordinator) activePeerIDsLocked() []uint64 {
	now := time.Now()
	var active []uint64
	for id, st := range c.peers {
		if st.active && now.Sub(st.lastSeen) < c.cfg.PeerTimeout {
			active = append(active, id)
		}
	}
	return active
}

// ComputeFrontier returns the pointwise minimum version map across this
// replica and every currently active peer. With no active peers it
// returns an empty version map: by the absent-implies-zero rule that is
// a no-op input to GC, so reclamation never removes a tombstone no other
// replica has had a chance to observe.
func (c *Coordinator) ComputeFrontier() rga.VersionMap {
	c.mu.Lock()
	defer c.mu.Unlock()

	active := c.activePeerIDsLocked()
	if len(active) == 0 {
		return rga.Minimum()
	}

	maps := []rga.VersionMap{c.myVersion}
	for _, id := range active {
		maps = append(maps, c.peers[id].version)
	}
	return rga.Minimum(maps...)
}

// ShouldTrigger reports whether an automatic reclamation cycle is due:
// auto-GC enabled, at least MinPeers active, and GCInterval elapsed since
// the last run.
func (c *Coordinator) ShouldTrigger() bool {
	if !c.cfg.AutoGC {
		return false
	}
	c.mu.Lock()
	active := len(c.activePeerIDsLocked())
	sinceGC := time.Since(c.lastGC)
	c.mu.Unlock()
	if active < c.cfg.MinPeers {
		return false
	}
	return sinceGC >= c.cfg.GCInterval
}

// Perform computes the current frontier and runs reclamation against seq,
// returning the number of tombstones removed.
func (c *Coordinator) Perform(seq *rga.Sequence) int {
	frontier := c.ComputeFrontier()
	removed := seq.GC(frontier)
	c.mu.Lock()
	c.lastGC = time.Now()
	c.mu.Unlock()
	return removed
}

// SendHeartbeat fans out this replica's version map to every registered
// peer concurrently via sendFn, returning the first error encountered (if
// any) once every call has returned.
func (c *Coordinator) SendHeartbeat(ctx context.Context, sendFn func(ctx context.Context, peerID uint64, vm rga.VersionMap) error) error {
	c.mu.Lock()
	ids := make([]uint64, 0, len(c.peers))
	for id := range c.peers {
		ids = append(ids, id)
	}
	mine := c.myVersion
	c.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			return sendFn(gctx, id, mine)
		})
	}
	return g.Wait()
}

// ReceiveHeartbeat is the inbound counterpart to SendHeartbeat's sendFn.
func (c *Coordinator) ReceiveHeartbeat(peerID uint64, vm rga.VersionMap) {
	c.UpdatePeerState(peerID, vm)
}
