package rga

import "sort"

// admitOrphan buffers an atom whose parent has not arrived yet, enforcing
// the max-age rejection and max-buffer eviction policies.
func (s *Sequence) admitOrphan(atom Atom) {
	if s.orphanCfg.MaxAge > 0 {
		cur := s.clock.Peek()
		if cur > atom.ID.Seq && cur-atom.ID.Seq > s.orphanCfg.MaxAge {
			// Rejected: too stale to be worth buffering. The originating
			// peer will retransmit it, or it will arrive via delta sync.
			return
		}
	}

	s.orphans[atom.Origin] = append(s.orphans[atom.Origin], atom)
	s.orphanCount++

	if s.orphanCfg.MaxBuffer > 0 && s.orphanCount > s.orphanCfg.MaxBuffer {
		s.evictOldestOrphans()
	}
}

type orphanRef struct {
	origin OpId
	atom   Atom
}

// evictOldestOrphans permanently drops roughly 10% of buffered orphans,
// preferring the smallest id.Seq (oldest) first. Evicted atoms must be
// retransmitted by their originating peer to re-enter the system.
func (s *Sequence) evictOldestOrphans() {
	all := make([]orphanRef, 0, s.orphanCount)
	for origin, list := range s.orphans {
		for _, a := range list {
			all = append(all, orphanRef{origin: origin, atom: a})
		}
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].atom.ID.Seq < all[j].atom.ID.Seq
	})

	toEvict := len(all) / 10
	if toEvict == 0 && len(all) > 0 {
		toEvict = 1
	}

	evict := make(map[OpId]struct{}, toEvict)
	for i := 0; i < toEvict; i++ {
		evict[all[i].atom.ID] = struct{}{}
	}

	for origin, list := range s.orphans {
		kept := list[:0]
		for _, a := range list {
			if _, gone := evict[a.ID]; gone {
				s.orphanCount--
				continue
			}
			kept = append(kept, a)
		}
		if len(kept) == 0 {
			delete(s.orphans, origin)
		} else {
			s.orphans[origin] = kept
		}
	}
}

// replayOrphans detaches every atom waiting on parentID and merges each
// through applyAtom in turn; this may cascade if those atoms are in turn
// parents of further buffered orphans.
func (s *Sequence) replayOrphans(parentID OpId) {
	batch, ok := s.orphans[parentID]
	if !ok {
		return
	}
	delete(s.orphans, parentID)
	s.orphanCount -= len(batch)

	for _, a := range batch {
		s.applyAtom(a)
	}
}
