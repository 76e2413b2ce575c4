package rga

// Atom is a single insertion record: the unit of content the replicated
// sequence orders and, when deleted, tombstones rather than removes.
type Atom struct {
	ID      OpId
	Origin  OpId
	Payload byte
	Deleted bool
}

func sentinelAtom() Atom {
	return Atom{ID: SentinelID, Origin: SentinelID, Payload: 0, Deleted: false}
}

// isContent reports whether the atom carries a visible character, i.e.
// it is neither the sentinel nor tombstoned.
func (a Atom) isContent() bool {
	return !a.ID.IsSentinel() && !a.Deleted
}
