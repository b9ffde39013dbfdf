package fastmsgpack

import (
	"encoding/binary"

	"github.com/vmihailenco/msgpack/v4/codes"
)

// AppendInt32 appends a 32 bits int in fixed length
func AppendInt32(buffer []byte, value int32) []byte {
	return binary.BigEndian.AppendUint32(append(buffer, byte(codes.Int32)), uint32(value))
}

// AppendInt64 appends a 64 bits int in fixed length
func AppendInt64(buffer []byte, value int64) []byte {
	return binary.BigEndian.AppendUint64(append(buffer, byte(codes.Int64)), uint64(value))
}

// AppendExt8 appends an extension value of exactly 8 bytes, given as two big-endian halves
func AppendExt8(buffer []byte, typeID int8, high uint32, low uint32) []byte {
	buffer = append(buffer, byte(codes.FixExt8), byte(typeID))
	buffer = binary.BigEndian.AppendUint32(buffer, high)
	return binary.BigEndian.AppendUint32(buffer, low)
}
