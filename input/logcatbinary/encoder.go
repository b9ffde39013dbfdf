package logcatbinary

import (
	"encoding/binary"

	"github.com/relex/logcat-agent/base"
)

// AppendEntry appends the v1 binary entry of item to buf, with extraHeader bytes of zero after the fixed header
//
// Messages longer than the 16-bit payload limit are truncated
func AppendEntry(buf []byte, item base.LogItem, extraHeader int) []byte {
	payloadLen := 1 + len(item.Tag) + 1 + len(item.Message) + 1
	if payloadLen > 0xFFFF {
		item.Message = item.Message[:len(item.Message)-(payloadLen-0xFFFF)]
		payloadLen = 0xFFFF
	}
	buf = binary.LittleEndian.AppendUint16(buf, uint16(payloadLen))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(HeaderV1Size+extraHeader))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(item.PID))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(item.TID))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(item.Timestamp.Unix()))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(item.Timestamp.Nanosecond()))
	for i := 0; i < extraHeader; i++ {
		buf = append(buf, 0)
	}
	buf = append(buf, item.Level.Priority())
	buf = append(buf, item.Tag...)
	buf = append(buf, 0)
	buf = append(buf, item.Message...)
	buf = append(buf, 0)
	return buf
}
