package rga

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// ReclaimConfig tunes when and how tombstones may be safely removed.
type ReclaimConfig struct {
	AutoGC             bool
	TombstoneThreshold int
	MinAge             uint64
}

// OrphanConfig bounds the buffer of atoms whose parent has not yet arrived.
type OrphanConfig struct {
	MaxBuffer int
	MaxAge    uint64
}

// Sequence is a single replica's view of the replicated growable array. It
// is not safe for concurrent use by multiple goroutines; see Guarded for
// a mutex-wrapped variant.
type Sequence struct {
	replicaID uint64
	clock     LogicalClock
	version   VersionMap

	atoms []Atom
	index map[OpId]int

	orphans     map[OpId][]Atom
	orphanCount int

	pendingDelete mapset.Set[OpId]
	tombstones    int

	reclaimCfg ReclaimConfig
	orphanCfg  OrphanConfig
	stats      GCStats
}

// New creates an empty sequence owned by replicaID, seeded with the head
// sentinel at position 0.
func New(replicaID uint64, reclaimCfg ReclaimConfig, orphanCfg OrphanConfig) *Sequence {
	s := &Sequence{
		replicaID:     replicaID,
		version:       NewVersionMap(replicaID),
		atoms:         []Atom{sentinelAtom()},
		index:         map[OpId]int{SentinelID: 0},
		orphans:       make(map[OpId][]Atom),
		pendingDelete: newOpIdSet(),
		reclaimCfg:    reclaimCfg,
		orphanCfg:     orphanCfg,
	}
	return s
}

func newOpIdSet() mapset.Set[OpId] {
	return mapset.NewThreadUnsafeSet[OpId]()
}

func (s *Sequence) ReplicaID() uint64   { return s.replicaID }
func (s *Sequence) Clock() uint64       { return s.clock.Peek() }
func (s *Sequence) VersionMap() VersionMap { return s.version.Clone() }
func (s *Sequence) TombstoneCount() int { return s.tombstones }
func (s *Sequence) OrphanCount() int    { return s.orphanCount }
func (s *Sequence) PendingDeleteCount() int { return s.pendingDelete.Cardinality() }
func (s *Sequence) Stats() GCStats      { return s.stats }

// SetConfig replaces the reclamation and orphan-buffering configuration,
// for sequences restored from a snapshot (which carry neither).
func (s *Sequence) SetConfig(reclaimCfg ReclaimConfig, orphanCfg OrphanConfig) {
	s.reclaimCfg = reclaimCfg
	s.orphanCfg = orphanCfg
}

// Len returns the number of visible (non-tombstone, non-sentinel) atoms.
func (s *Sequence) Len() int {
	n := 0
	for _, a := range s.atoms {
		if a.isContent() {
			n++
		}
	}
	return n
}

// RawLen returns the total number of atoms in the container, including
// the sentinel and tombstones.
func (s *Sequence) RawLen() int {
	return len(s.atoms)
}

// String concatenates the payload byte of every visible atom in order.
func (s *Sequence) String() string {
	var b strings.Builder
	for _, a := range s.atoms {
		if a.isContent() {
			b.WriteByte(a.Payload)
		}
	}
	return b.String()
}

func (s *Sequence) advanceLocal() uint64 {
	seq := s.clock.Tick()
	s.version.Update(s.replicaID, seq)
	return seq
}

// locateParentPos finds the position the atom to the immediate left of
// visibleIndex currently occupies (clamped to the last atom in the
// container, tombstone or not, once visibleIndex exceeds visible length).
func (s *Sequence) locateParentPos(visibleIndex int) int {
	if visibleIndex <= 0 {
		return 0
	}
	remaining := visibleIndex
	for i := 1; i < len(s.atoms); i++ {
		if s.atoms[i].isContent() {
			remaining--
			if remaining == 0 {
				return i
			}
		}
	}
	return len(s.atoms) - 1
}

// locateVisiblePos finds the position of the nth (0-indexed) visible atom.
func (s *Sequence) locateVisiblePos(visibleIndex int) (int, bool) {
	if visibleIndex < 0 {
		return 0, false
	}
	count := 0
	for i := 1; i < len(s.atoms); i++ {
		if s.atoms[i].isContent() {
			if count == visibleIndex {
				return i, true
			}
			count++
		}
	}
	return 0, false
}

// Insert performs a local insertion anchored after the visible atom at
// visibleIndex-1 (the head sentinel for 0) and returns the new atom for
// the caller to broadcast. The sibling rule places the new atom after any
// existing atoms anchored to the same parent with smaller ids, so it does
// not always end up at visibleIndex.
func (s *Sequence) Insert(visibleIndex int, payload byte) Atom {
	seq := s.advanceLocal()
	parentPos := s.locateParentPos(visibleIndex)
	atom := Atom{
		ID:      OpId{ReplicaID: s.replicaID, Seq: seq},
		Origin:  s.atoms[parentPos].ID,
		Payload: payload,
		Deleted: false,
	}
	s.applyAtom(atom)
	return atom
}

// Delete performs a local deletion at the given visible index and returns
// the id of the tombstoned atom, or SentinelID if the index is out of
// range (a no-op).
func (s *Sequence) Delete(visibleIndex int) OpId {
	pos, ok := s.locateVisiblePos(visibleIndex)
	if !ok {
		return SentinelID
	}
	s.atoms[pos].Deleted = true
	s.tombstones++
	s.advanceLocal()
	id := s.atoms[pos].ID
	s.maybeAutoGC()
	return id
}

// RemoteMerge is the core RGA ordering rule, applied to an atom observed
// from another replica (or, via Insert, from this one).
func (s *Sequence) RemoteMerge(atom Atom) {
	s.clock.Merge(atom.ID.Seq)
	s.version.Update(atom.ID.ReplicaID, atom.ID.Seq)
	s.applyAtom(atom)
}

// RemoteDelete applies a delete observed from another replica. If the
// target is not yet known, the delete is parked in the pending-delete
// set until the insert arrives.
func (s *Sequence) RemoteDelete(target OpId) {
	pos, ok := s.index[target]
	if !ok {
		s.pendingDelete.Add(target)
		return
	}
	if !s.atoms[pos].Deleted {
		s.atoms[pos].Deleted = true
		s.tombstones++
	}
	s.maybeAutoGC()
}

// applyAtom performs steps 3-7 of the remote-merge algorithm: duplicate
// check, parent lookup (or orphan admission), the RGA sibling scan,
// insertion, pending-delete resolution, orphan replay, and the automatic
// reclamation trigger. It does not touch the clock or version map, so
// Insert can share it without double-ticking the clock.
func (s *Sequence) applyAtom(atom Atom) {
	if _, exists := s.index[atom.ID]; exists {
		return
	}

	parentPos, ok := s.index[atom.Origin]
	if !ok {
		s.admitOrphan(atom)
		return
	}

	pos := s.insertPositionForMerge(parentPos, atom)
	s.insertAt(pos, atom)

	if s.pendingDelete.Contains(atom.ID) {
		s.atoms[pos].Deleted = true
		s.tombstones++
		s.pendingDelete.Remove(atom.ID)
	}

	s.replayOrphans(atom.ID)
	s.maybeAutoGC()
}

// insertPositionForMerge implements the sibling-scan tie-break rule: walk
// forward from the parent until leaving its subtree, stopping either at
// the first sibling whose id is greater than the new atom's (insert
// before it, so siblings stay in ascending id order) or at the first atom
// whose origin has a smaller seq than the new atom's origin.
func (s *Sequence) insertPositionForMerge(parentPos int, atom Atom) int {
	i := parentPos + 1
	for i < len(s.atoms) {
		c := s.atoms[i]
		if c.Origin.Seq < atom.Origin.Seq {
			break
		}
		if c.Origin == atom.Origin && atom.ID.Less(c.ID) {
			break
		}
		i++
	}
	return i
}

// insertAt inserts atom at position pos in the ordered container and
// reindexes every atom whose position shifted.
func (s *Sequence) insertAt(pos int, atom Atom) {
	s.atoms = append(s.atoms, Atom{})
	copy(s.atoms[pos+1:], s.atoms[pos:])
	s.atoms[pos] = atom
	for i := pos; i < len(s.atoms); i++ {
		s.index[s.atoms[i].ID] = i
	}
}

func (s *Sequence) maybeAutoGC() {
	if s.reclaimCfg.AutoGC && s.tombstones >= s.reclaimCfg.TombstoneThreshold {
		s.gcLocal(s.reclaimCfg.MinAge)
	}
}

// Delta returns every non-sentinel atom this sequence holds that the
// given peer version map has not yet observed, in container order.
func (s *Sequence) Delta(peer VersionMap) []Atom {
	var out []Atom
	for _, a := range s.atoms {
		if a.ID.IsSentinel() {
			continue
		}
		if a.ID.Seq > peer.Get(a.ID.ReplicaID) {
			out = append(out, a)
		}
	}
	return out
}

// ApplyDelta consumes a batch of atoms produced by Delta. Every atom is
// merged through RemoteMerge; a tombstoned atom is first recorded through
// RemoteDelete, so a receiver that never saw its insert places it and
// tombstones it in the same merge.
func (s *Sequence) ApplyDelta(atoms []Atom) {
	for _, a := range atoms {
		if a.Deleted {
			s.RemoteDelete(a.ID)
			a.Deleted = false
		}
		s.RemoteMerge(a)
	}
}

// MemoryStats reports container sizes: counts, not allocations or
// byte-level histograms.
type MemoryStats struct {
	AtomCount          int
	TombstoneCount     int
	OrphanCount        int
	PendingDeleteCount int
}

func (s *Sequence) MemoryStats() MemoryStats {
	return MemoryStats{
		AtomCount:          len(s.atoms),
		TombstoneCount:     s.tombstones,
		OrphanCount:        s.orphanCount,
		PendingDeleteCount: s.pendingDelete.Cardinality(),
	}
}
