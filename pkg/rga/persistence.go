package rga

import (
	"encoding/binary"
	"errors"
	"io"
)

var (
	// ErrInvalidFormat is returned by Load when the magic does not match
	// or the persisted version is unrecognized. The receiving sequence is
	// left unchanged.
	ErrInvalidFormat = errors.New("rga: invalid persistence format")
)

var magic = [4]byte{'O', 'M', 'N', 'I'}

const (
	formatNoVersionMap = 1
	formatWithVersionMap = 2
	currentFormat = formatWithVersionMap
)

// Save writes the sequence to w using the persistence format: magic,
// version byte, owner, clock, version map, atom count, then atoms.
func (s *Sequence) Save(w io.Writer) error {
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	if err := writeByte(w, currentFormat); err != nil {
		return err
	}
	if err := writeU64(w, s.replicaID); err != nil {
		return err
	}
	if err := writeU64(w, s.clock.Peek()); err != nil {
		return err
	}

	if err := s.version.Encode(w); err != nil {
		return err
	}

	if err := writeU64(w, uint64(len(s.atoms))); err != nil {
		return err
	}
	for _, a := range s.atoms {
		if err := writeAtom(w, a); err != nil {
			return err
		}
	}
	return nil
}

// Load reads a sequence previously written by Save. A version-1 file (no
// version map) starts from an empty version map. For either version, the
// loaded atoms are then scanned and each replica's entry is raised to at
// least the highest seq among its atoms. The tombstone counter is always recomputed
// from the loaded atoms rather than trusted from the stream, so it
// matches the actual number of deleted atoms regardless of what wrote
// the file.
func Load(r io.Reader) (*Sequence, error) {
	var gotMagic [4]byte
	if _, err := io.ReadFull(r, gotMagic[:]); err != nil {
		return nil, ErrInvalidFormat
	}
	if gotMagic != magic {
		return nil, ErrInvalidFormat
	}

	ver, err := readByte(r)
	if err != nil {
		return nil, ErrInvalidFormat
	}
	if ver != formatNoVersionMap && ver != formatWithVersionMap {
		return nil, ErrInvalidFormat
	}

	owner, err := readU64(r)
	if err != nil {
		return nil, ErrInvalidFormat
	}
	clockVal, err := readU64(r)
	if err != nil {
		return nil, ErrInvalidFormat
	}

	vmap := NewVersionMap(owner)
	if ver == formatWithVersionMap {
		decoded, err := Decode(r)
		if err != nil {
			return nil, ErrInvalidFormat
		}
		vmap.Merge(decoded)
	}

	atomCount, err := readU64(r)
	if err != nil {
		return nil, ErrInvalidFormat
	}

	atoms := make([]Atom, 0, atomCount)
	for i := uint64(0); i < atomCount; i++ {
		a, err := readAtom(r)
		if err != nil {
			return nil, ErrInvalidFormat
		}
		atoms = append(atoms, a)
	}
	if len(atoms) == 0 || atoms[0].ID != SentinelID {
		return nil, ErrInvalidFormat
	}

	s := &Sequence{
		replicaID:     owner,
		version:       vmap,
		atoms:         atoms,
		index:         make(map[OpId]int, len(atoms)),
		orphans:       make(map[OpId][]Atom),
		pendingDelete: newOpIdSet(),
	}
	s.clock.value.Store(clockVal)

	tombstones := 0
	for i, a := range atoms {
		s.index[a.ID] = i
		if a.Deleted {
			tombstones++
		}
		s.version.Update(a.ID.ReplicaID, a.ID.Seq)
	}
	s.tombstones = tombstones

	return s, nil
}

func writeByte(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

func readByte(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func writeU64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readU64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func writeAtom(w io.Writer, a Atom) error {
	if err := writeU64(w, a.ID.ReplicaID); err != nil {
		return err
	}
	if err := writeU64(w, a.ID.Seq); err != nil {
		return err
	}
	if err := writeU64(w, a.Origin.ReplicaID); err != nil {
		return err
	}
	if err := writeU64(w, a.Origin.Seq); err != nil {
		return err
	}
	if err := writeByte(w, a.Payload); err != nil {
		return err
	}
	deleted := byte(0)
	if a.Deleted {
		deleted = 1
	}
	return writeByte(w, deleted)
}

func readAtom(r io.Reader) (Atom, error) {
	var a Atom
	var err error
	if a.ID.ReplicaID, err = readU64(r); err != nil {
		return a, err
	}
	if a.ID.Seq, err = readU64(r); err != nil {
		return a, err
	}
	if a.Origin.ReplicaID, err = readU64(r); err != nil {
		return a, err
	}
	if a.Origin.Seq, err = readU64(r); err != nil {
		return a, err
	}
	payload, err := readByte(r)
	if err != nil {
		return a, err
	}
	a.Payload = payload
	deleted, err := readByte(r)
	if err != nil {
		return a, err
	}
	a.Deleted = deleted != 0
	return a, nil
}
