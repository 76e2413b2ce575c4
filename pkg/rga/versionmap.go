package rga

import (
	"encoding/binary"
	"io"

	"golang.org/x/exp/constraints"
)

// Ordering is the tri-valued (actually four-valued, counting equality)
// result of comparing two version maps causally.
type Ordering int

const (
	Equal Ordering = iota
	Less
	Greater
	Concurrent
)

// VersionMap tracks, per replica, the highest sequence number this
// replica has observed from that replica. It is used both for causal
// comparison (delta sync) and as the basis for reclamation frontiers.
type VersionMap struct {
	owner   uint64
	entries map[uint64]uint64
}

// NewVersionMap creates a version map seeded with owner -> 0.
func NewVersionMap(owner uint64) VersionMap {
	return VersionMap{
		owner:   owner,
		entries: map[uint64]uint64{owner: 0},
	}
}

// Get returns the highest observed seq for r, or 0 if unknown.
func (v VersionMap) Get(r uint64) uint64 {
	return v.entries[r]
}

// Owner returns the replica id this version map was seeded for.
func (v VersionMap) Owner() uint64 {
	return v.owner
}

// TickOwner increments the owner's own entry and returns the new value.
func (v VersionMap) TickOwner() uint64 {
	next := v.entries[v.owner] + 1
	v.entries[v.owner] = next
	return next
}

// Update sets entries[r] = max(entries[r], seq).
func (v VersionMap) Update(r uint64, seq uint64) {
	if seq > v.entries[r] {
		v.entries[r] = seq
	}
}

// Clone returns an independent copy, for handing to callers that must not
// observe further mutation (broadcast, coordinator bookkeeping).
func (v VersionMap) Clone() VersionMap {
	out := make(map[uint64]uint64, len(v.entries))
	for k, val := range v.entries {
		out[k] = val
	}
	return VersionMap{owner: v.owner, entries: out}
}

// Merge performs a pointwise max of other into v.
func (v VersionMap) Merge(other VersionMap) {
	for r, seq := range other.entries {
		v.Update(r, seq)
	}
}

// Encode writes v's entries in the same LEB128 form the compact atom
// codec uses: a varint count followed by that many (replica, seq) varint
// pairs. The owner is not part of the wire form; Decode leaves it unset.
func (v VersionMap) Encode(w io.Writer) error {
	var buf [binary.MaxVarintLen64]byte

	n := binary.PutUvarint(buf[:], uint64(len(v.entries)))
	if _, err := w.Write(buf[:n]); err != nil {
		return err
	}
	for r, seq := range v.entries {
		n = binary.PutUvarint(buf[:], r)
		if _, err := w.Write(buf[:n]); err != nil {
			return err
		}
		n = binary.PutUvarint(buf[:], seq)
		if _, err := w.Write(buf[:n]); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads a version map written by Encode. It reads r one byte at a
// time regardless of what r is, so it never consumes bytes past the
// encoded map even when r has more data after it. The result carries no
// owner; callers that need one should Update/Merge it into a map created
// by NewVersionMap.
func Decode(r io.Reader) (VersionMap, error) {
	br := singleByteReader{r}
	vm := VersionMap{entries: make(map[uint64]uint64)}

	count, err := binary.ReadUvarint(br)
	if err != nil {
		return vm, err
	}
	for i := uint64(0); i < count; i++ {
		replica, err := binary.ReadUvarint(br)
		if err != nil {
			return vm, err
		}
		seq, err := binary.ReadUvarint(br)
		if err != nil {
			return vm, err
		}
		vm.entries[replica] = seq
	}
	return vm, nil
}

// singleByteReader adapts an io.Reader to io.ByteReader one byte at a
// time, so binary.ReadUvarint never reads ahead of the varint it decodes.
type singleByteReader struct{ r io.Reader }

func (s singleByteReader) ReadByte() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(s.r, buf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return 0, err
	}
	return buf[0], nil
}

// replicas returns the union of replica ids known to all inputs.
func replicaUnion[T any](maps []VersionMap) map[uint64]T {
	keys := make(map[uint64]T)
	for _, m := range maps {
		for r := range m.entries {
			var zero T
			keys[r] = zero
		}
	}
	return keys
}

// Minimum returns a version map whose entry for every replica id seen in
// any input is the minimum across all inputs (absent entries count as 0).
// The result is not tied to any single owner; Owner() on the result is 0.
func Minimum(maps ...VersionMap) VersionMap {
	result := VersionMap{owner: 0, entries: make(map[uint64]uint64)}
	if len(maps) == 0 {
		return result
	}
	keys := replicaUnion[struct{}](maps)
	for r := range keys {
		min := maps[0].Get(r)
		for _, m := range maps[1:] {
			min = minInt(min, m.Get(r))
		}
		if min > 0 {
			result.entries[r] = min
		}
	}
	return result
}

func minInt[T constraints.Integer](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// Compare returns the causal relationship of a to b: Less iff a[r]<=b[r]
// for every r with at least one strict inequality, Greater symmetrically,
// Equal when every entry matches, else Concurrent.
func Compare(a, b VersionMap) Ordering {
	keys := replicaUnion[struct{}]([]VersionMap{a, b})

	lessOrEqual, strictLess := true, false
	greaterOrEqual, strictGreater := true, false

	for r := range keys {
		av, bv := a.Get(r), b.Get(r)
		if av > bv {
			lessOrEqual = false
			strictGreater = true
		} else if av < bv {
			greaterOrEqual = false
			strictLess = true
		}
	}

	switch {
	case lessOrEqual && greaterOrEqual:
		return Equal
	case lessOrEqual && strictLess:
		return Less
	case greaterOrEqual && strictGreater:
		return Greater
	default:
		return Concurrent
	}
}
