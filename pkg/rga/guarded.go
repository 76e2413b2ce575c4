package rga

import "sync"

// Guarded wraps a Sequence behind a single mutex for callers that share
// one replica instance across goroutines. Per the design note this
// replica relies on, finer-grained locking of internal fields is not
// attempted: the RGA scan crosses multiple fields atomically and partial
// locking would not preserve that.
type Guarded struct {
	mu  sync.Mutex
	seq *Sequence
}

func NewGuarded(seq *Sequence) *Guarded {
	return &Guarded{seq: seq}
}

func (g *Guarded) Insert(visibleIndex int, payload byte) Atom {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq.Insert(visibleIndex, payload)
}

func (g *Guarded) Delete(visibleIndex int) OpId {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq.Delete(visibleIndex)
}

func (g *Guarded) RemoteMerge(atom Atom) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq.RemoteMerge(atom)
}

func (g *Guarded) RemoteDelete(target OpId) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq.RemoteDelete(target)
}

func (g *Guarded) Delta(peer VersionMap) []Atom {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq.Delta(peer)
}

func (g *Guarded) ApplyDelta(atoms []Atom) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq.ApplyDelta(atoms)
}

func (g *Guarded) GC(frontier VersionMap) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq.GC(frontier)
}

func (g *Guarded) String() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq.String()
}

// WithSequence runs fn while holding the lock, for callers that need
// access to operations Guarded does not wrap directly (e.g. VersionMap,
// Stats).
func (g *Guarded) WithSequence(fn func(*Sequence)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.seq)
}
