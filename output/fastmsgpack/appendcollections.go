package fastmsgpack

import (
	"encoding/binary"
	"math"

	"github.com/vmihailenco/msgpack/v4/codes"
)

// AppendArrayLen appends the header of array in the shortest form
func AppendArrayLen(buffer []byte, arrayLen int) []byte {
	switch {
	case arrayLen <= 15:
		return append(buffer, byte(codes.FixedArrayLow)|byte(arrayLen))
	case arrayLen <= math.MaxUint16:
		return binary.BigEndian.AppendUint16(append(buffer, byte(codes.Array16)), uint16(arrayLen))
	default:
		return binary.BigEndian.AppendUint32(append(buffer, byte(codes.Array32)), uint32(arrayLen))
	}
}

// AppendMapLen appends the header of map in the shortest form
func AppendMapLen(buffer []byte, mapLen int) []byte {
	switch {
	case mapLen <= 15:
		return append(buffer, byte(codes.FixedMapLow)|byte(mapLen))
	case mapLen <= math.MaxUint16:
		return binary.BigEndian.AppendUint16(append(buffer, byte(codes.Map16)), uint16(mapLen))
	default:
		return binary.BigEndian.AppendUint32(append(buffer, byte(codes.Map32)), uint32(mapLen))
	}
}

// AppendString appends a string in the shortest form
func AppendString(buffer []byte, str string) []byte {
	strLen := len(str)
	switch {
	case strLen <= 31:
		buffer = append(buffer, byte(codes.FixedStrLow)|byte(strLen))
	case strLen <= math.MaxUint8:
		buffer = append(buffer, byte(codes.Str8), byte(strLen))
	case strLen <= math.MaxUint16:
		buffer = binary.BigEndian.AppendUint16(append(buffer, byte(codes.Str16)), uint16(strLen))
	default:
		buffer = binary.BigEndian.AppendUint32(append(buffer, byte(codes.Str32)), uint32(strLen))
	}
	return append(buffer, str...)
}

// AppendBinLen appends the header of binary data in the shortest form, to be followed by the data itself
func AppendBinLen(buffer []byte, binLen int) []byte {
	switch {
	case binLen <= math.MaxUint8:
		return append(buffer, byte(codes.Bin8), byte(binLen))
	case binLen <= math.MaxUint16:
		return binary.BigEndian.AppendUint16(append(buffer, byte(codes.Bin16)), uint16(binLen))
	default:
		return binary.BigEndian.AppendUint32(append(buffer, byte(codes.Bin32)), uint32(binLen))
	}
}
