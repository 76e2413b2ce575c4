package wire

import (
	"encoding/binary"

	"omnisync/pkg/rga"
)

// FixedSize is the exact size in bytes of the fixed-width debug encoding.
const FixedSize = 34

// PackFixed encodes an atom into the 34-byte fixed-width debug format:
// id.replica(8) || id.seq(8) || origin.replica(8) || origin.seq(8) ||
// payload(1) || deleted(1), all little-endian.
func PackFixed(a rga.Atom) []byte {
	buf := make([]byte, FixedSize)
	binary.LittleEndian.PutUint64(buf[0:8], a.ID.ReplicaID)
	binary.LittleEndian.PutUint64(buf[8:16], a.ID.Seq)
	binary.LittleEndian.PutUint64(buf[16:24], a.Origin.ReplicaID)
	binary.LittleEndian.PutUint64(buf[24:32], a.Origin.Seq)
	buf[32] = a.Payload
	if a.Deleted {
		buf[33] = 1
	}
	return buf
}

// UnpackFixed decodes a 34-byte fixed-width atom. It returns ErrShortBuffer
// if buf is smaller than FixedSize.
func UnpackFixed(buf []byte) (rga.Atom, error) {
	var a rga.Atom
	if len(buf) < FixedSize {
		return a, ErrShortBuffer
	}
	a.ID.ReplicaID = binary.LittleEndian.Uint64(buf[0:8])
	a.ID.Seq = binary.LittleEndian.Uint64(buf[8:16])
	a.Origin.ReplicaID = binary.LittleEndian.Uint64(buf[16:24])
	a.Origin.Seq = binary.LittleEndian.Uint64(buf[24:32])
	a.Payload = buf[32]
	a.Deleted = buf[33] != 0
	return a, nil
}
