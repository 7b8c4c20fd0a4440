package types

import (
	"encoding/binary"
	"io"

	"github.com/dchest/siphash"
	"golang.org/x/exp/constraints"

	"relalg/pkg/primitives"
)

// siphash keys for field fingerprints. Fixed so that digests are stable
// across processes.
const (
	hashKey0 uint64 = 0x736f6d6570736575
	hashKey1 uint64 = 0x646f72616e646f6d
)

// compareOrdered is a three-way comparison that sorts NaN before every
// other value, matching cmp.Compare.
func compareOrdered[T constraints.Ordered](a, b T) int {
	aNaN := a != a
	bNaN := b != b
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return -1
	case bNaN:
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// predicateHolds evaluates op against two fields of the same type.
func predicateHolds(op primitives.Predicate, a, b Field) bool {
	return op.Holds(Order(a, b))
}

// HashBytes computes the siphash fingerprint of data.
func HashBytes(data []byte) primitives.HashCode {
	return primitives.HashCode(siphash.Hash(hashKey0, hashKey1, data))
}

// serializeUint32 writes a uint32 value to the writer in big-endian byte order.
func serializeUint32(w io.Writer, v uint32) error {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	_, err := w.Write(b)
	return err
}

// serializeUint64 writes a uint64 value to the writer in big-endian byte order.
func serializeUint64(w io.Writer, v uint64) error {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	_, err := w.Write(b)
	return err
}

// serializeBytes writes a 4-byte length prefix followed by data.
func serializeBytes(w io.Writer, data []byte) error {
	if err := serializeUint32(w, uint32(len(data))); err != nil { // #nosec G115
		return err
	}
	_, err := w.Write(data)
	return err
}

// toBytes32 converts a uint32 value to a 4-byte big-endian slice.
func toBytes32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

// toBytes64 converts a uint64 value to an 8-byte big-endian slice.
func toBytes64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
