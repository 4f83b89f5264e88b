package format

import (
	"encoding/binary"
	"errors"
)

var ErrVarintOverflow = errors.New("format: varint overflows 64 bits")

// AppendUvarint appends v as an unsigned LEB128 varint.
func AppendUvarint(b []byte, v uint64) []byte {
	return binary.AppendUvarint(b, v)
}

// ReadUvarint decodes a varint from the start of b and returns the number
// of bytes it used.
func ReadUvarint(b []byte) (uint64, int, error) {
	v, n := binary.Uvarint(b)
	switch {
	case n == 0:
		return 0, 0, errShort
	case n < 0:
		return 0, 0, ErrVarintOverflow
	}
	return v, n, nil
}
