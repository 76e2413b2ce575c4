package wire

import (
	"bytes"
	"encoding/binary"
	"io"

	"omnisync/pkg/rga"
)

// PackCompact encodes an atom using LEB128 varints for the four id/origin
// fields, followed by the raw payload byte and a one-byte deleted flag.
// Unlike the fixed format, its size varies with the magnitude of the ids,
// which matters once replica ids and sequence numbers are large and a
// sequence has been running long enough that most ids no longer fit in a
// single byte.
func PackCompact(a rga.Atom) []byte {
	buf := make([]byte, 0, FixedSize)
	var scratch [binary.MaxVarintLen64]byte
	putUvarint := func(v uint64) {
		n := binary.PutUvarint(scratch[:], v)
		buf = append(buf, scratch[:n]...)
	}
	putUvarint(a.ID.ReplicaID)
	putUvarint(a.ID.Seq)
	putUvarint(a.Origin.ReplicaID)
	putUvarint(a.Origin.Seq)
	buf = append(buf, a.Payload)
	if a.Deleted {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	return buf
}

// UnpackCompact decodes a LEB128-encoded atom from r. It returns
// ErrVarintOverflow if any of the four varints would require more than 10
// bytes to decode, and ErrShortBuffer if the stream ends before a
// complete atom is read.
func UnpackCompact(r io.ByteReader) (rga.Atom, error) {
	var a rga.Atom

	// readUvarint tracks the byte count itself rather than going through
	// binary.ReadUvarint and pattern-matching its error, since that
	// sentinel is unexported and its text is not a stable API to depend
	// on.
	readUvarint := func() (uint64, error) {
		var v uint64
		var shift uint
		for i := 0; i < binary.MaxVarintLen64; i++ {
			b, err := r.ReadByte()
			if err != nil {
				return 0, ErrShortBuffer
			}
			if b < 0x80 {
				if i == binary.MaxVarintLen64-1 && b > 1 {
					return 0, ErrVarintOverflow
				}
				return v | uint64(b)<<shift, nil
			}
			v |= uint64(b&0x7f) << shift
			shift += 7
		}
		return 0, ErrVarintOverflow
	}

	var err error
	if a.ID.ReplicaID, err = readUvarint(); err != nil {
		return a, err
	}
	if a.ID.Seq, err = readUvarint(); err != nil {
		return a, err
	}
	if a.Origin.ReplicaID, err = readUvarint(); err != nil {
		return a, err
	}
	if a.Origin.Seq, err = readUvarint(); err != nil {
		return a, err
	}

	payload, err := r.ReadByte()
	if err != nil {
		return a, ErrShortBuffer
	}
	a.Payload = payload

	deleted, err := r.ReadByte()
	if err != nil {
		return a, ErrShortBuffer
	}
	a.Deleted = deleted != 0

	return a, nil
}

// UnpackCompactBytes is a convenience wrapper around UnpackCompact for
// callers holding a plain byte slice rather than a bytes.Reader. It
// returns the number of bytes consumed alongside the decoded atom.
func UnpackCompactBytes(buf []byte) (rga.Atom, int, error) {
	r := bytes.NewReader(buf)
	a, err := UnpackCompact(r)
	if err != nil {
		return a, 0, err
	}
	return a, len(buf) - r.Len(), nil
}

// PackVersionMapEntries encodes a flattened (replicaID, seq) view of a
// version map as a u32 count followed by count pairs of little-endian
// u64s. rga.Sequence.Save does not use this form: it writes its
// version-map section with rga.VersionMap.Encode, as LEB128 varints.
func PackVersionMapEntries(entries map[uint64]uint64) []byte {
	buf := make([]byte, 4, 4+16*len(entries))
	binary.LittleEndian.PutUint32(buf, uint32(len(entries)))
	for replica, seq := range entries {
		var pair [16]byte
		binary.LittleEndian.PutUint64(pair[0:8], replica)
		binary.LittleEndian.PutUint64(pair[8:16], seq)
		buf = append(buf, pair[:]...)
	}
	return buf
}

// UnpackVersionMapEntries decodes the form produced by
// PackVersionMapEntries.
func UnpackVersionMapEntries(buf []byte) (map[uint64]uint64, error) {
	if len(buf) < 4 {
		return nil, ErrShortBuffer
	}
	count := binary.LittleEndian.Uint32(buf)
	buf = buf[4:]
	if len(buf) < int(count)*16 {
		return nil, ErrShortBuffer
	}
	entries := make(map[uint64]uint64, count)
	for i := uint32(0); i < count; i++ {
		pair := buf[i*16 : i*16+16]
		replica := binary.LittleEndian.Uint64(pair[0:8])
		seq := binary.LittleEndian.Uint64(pair[8:16])
		entries[replica] = seq
	}
	return entries, nil
}
