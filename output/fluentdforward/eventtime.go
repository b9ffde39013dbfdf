package fluentdforward

import (
	"time"

	"github.com/relex/logcat-agent/output/fastmsgpack"
)

// eventTimeExtType is the msgpack extension type of fluentd EventTime
const eventTimeExtType = 0

// AppendEventTime appends a timestamp as EventTime of nanosecond precision
func AppendEventTime(buffer []byte, value time.Time) []byte {
	return fastmsgpack.AppendExt8(buffer, eventTimeExtType, uint32(value.Unix()), uint32(value.Nanosecond()))
}
