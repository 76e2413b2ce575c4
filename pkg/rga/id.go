// Package rga implements a Replicated Growable Array: a sequence CRDT
// that lets independent replicas insert and delete characters concurrently
// and converge to a byte-identical result without central coordination.
package rga

// OpId uniquely identifies an operation: the replica that issued it and
// the replica-local sequence number it was issued under.
type OpId struct {
	ReplicaID uint64
	Seq       uint64
}

// SentinelID is the reserved identity of the head atom. It never
// participates in payload output and always occupies position 0.
var SentinelID = OpId{ReplicaID: 0, Seq: 0}

// Less orders OpIds by seq first, then by replica id, giving a total,
// deterministic order that sibling atoms use to break insertion ties.
func (a OpId) Less(b OpId) bool {
	if a.Seq != b.Seq {
		return a.Seq < b.Seq
	}
	return a.ReplicaID < b.ReplicaID
}

func (a OpId) IsSentinel() bool {
	return a == SentinelID
}
