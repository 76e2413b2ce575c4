package rga

import "time"

// GCStats tracks reclamation run timing: run count, totals, last, peak,
// and running average.
type GCStats struct {
	TotalRuns              uint64
	TotalTombstonesRemoved uint64
	TotalGCTimeNanos       uint64
	LastGCTimeNanos        uint64
	PeakGCTimeNanos        uint64
	AvgGCTimeNanos         float64
}

func (g *GCStats) record(d time.Duration, removed int) {
	ns := uint64(d.Nanoseconds())
	g.TotalRuns++
	g.TotalTombstonesRemoved += uint64(removed)
	g.TotalGCTimeNanos += ns
	g.LastGCTimeNanos = ns
	if ns > g.PeakGCTimeNanos {
		g.PeakGCTimeNanos = ns
	}
	g.AvgGCTimeNanos = float64(g.TotalGCTimeNanos) / float64(g.TotalRuns)
}

// GC removes every tombstone whose id is at or below the supplied
// frontier (absent replica entries count as 0, so they contribute
// nothing to removal). Safe to call with an empty frontier: it is then a
// no-op, by the absent-implies-zero rule.
func (s *Sequence) GC(frontier VersionMap) int {
	start := time.Now()

	var doomed []OpId
	for _, a := range s.atoms {
		if a.Deleted && a.ID.Seq <= frontier.Get(a.ID.ReplicaID) {
			doomed = append(doomed, a.ID)
		}
	}

	removed := s.removeAtoms(doomed)
	s.stats.record(time.Since(start), removed)
	return removed
}

// GCLocal removes tombstones older than the local clock minus age. This
// is only safe for single-participant scenarios; using it while other
// replicas might still replay a delete is the caller's responsibility.
func (s *Sequence) GCLocal(age uint64) int {
	return s.gcLocal(age)
}

func (s *Sequence) gcLocal(age uint64) int {
	start := time.Now()

	cur := s.clock.Peek()
	var cutoff uint64
	if cur > age {
		cutoff = cur - age
	}

	var doomed []OpId
	for _, a := range s.atoms {
		if a.Deleted && a.ID.Seq <= cutoff {
			doomed = append(doomed, a.ID)
		}
	}

	removed := s.removeAtoms(doomed)
	s.stats.record(time.Since(start), removed)
	return removed
}

// removeAtoms deletes the named atoms from the ordered container and the
// index in a single pass, then decrements the tombstone counter.
func (s *Sequence) removeAtoms(ids []OpId) int {
	if len(ids) == 0 {
		return 0
	}

	doomed := make(map[OpId]struct{}, len(ids))
	for _, id := range ids {
		doomed[id] = struct{}{}
	}

	kept := s.atoms[:0]
	for _, a := range s.atoms {
		if _, gone := doomed[a.ID]; gone {
			delete(s.index, a.ID)
			continue
		}
		kept = append(kept, a)
	}
	s.atoms = kept

	for i, a := range s.atoms {
		s.index[a.ID] = i
	}

	s.tombstones -= len(ids)
	return len(ids)
}
