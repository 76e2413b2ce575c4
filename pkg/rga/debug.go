package rga

import "github.com/sanity-io/litter"

// DebugDump returns a structured, human-readable rendering of the
// sequence's internal state, for logs and tests. It exists because
// toString() deliberately discards everything but visible payload bytes,
// which is useless when diagnosing an orphan buildup or a reclamation
// bug.
func (s *Sequence) DebugDump() string {
	view := struct {
		ReplicaID     uint64
		Clock         uint64
		Atoms         []Atom
		OrphanCount   int
		PendingDelete []OpId
		Tombstones    int
		Stats         GCStats
	}{
		ReplicaID:     s.replicaID,
		Clock:         s.clock.Peek(),
		Atoms:         s.atoms,
		OrphanCount:   s.orphanCount,
		PendingDelete: s.pendingDelete.ToSlice(),
		Tombstones:    s.tombstones,
		Stats:         s.stats,
	}
	return litter.Sdump(view)
}
