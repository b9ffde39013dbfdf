package fluentdforward

import (
	"github.com/relex/fluentlib/dump"
	"github.com/relex/fluentlib/protocol/forwardprotocol"
	"github.com/relex/logcat-agent/base"
	"github.com/relex/logcat-agent/output/fastmsgpack"
)

// Record fields of each event
const (
	FieldPID     = "pid"
	FieldTID     = "tid"
	FieldLevel   = "level"
	FieldTag     = "tag"
	FieldMessage = "message"
	FieldUUID    = "uuid"
)

const numRecordFields = 6

// appendEvent appends an item as EventEntry: [EventTime, {record}]
func appendEvent(buffer []byte, item *base.LogItem) []byte {
	buffer = fastmsgpack.AppendArrayLen(buffer, 2)
	buffer = AppendEventTime(buffer, item.Timestamp)
	buffer = fastmsgpack.AppendMapLen(buffer, numRecordFields)
	buffer = fastmsgpack.AppendString(buffer, FieldPID)
	buffer = fastmsgpack.AppendInt32(buffer, item.PID)
	buffer = fastmsgpack.AppendString(buffer, FieldTID)
	buffer = fastmsgpack.AppendInt32(buffer, item.TID)
	buffer = fastmsgpack.AppendString(buffer, FieldLevel)
	buffer = fastmsgpack.AppendString(buffer, item.Level.String())
	buffer = fastmsgpack.AppendString(buffer, FieldTag)
	buffer = fastmsgpack.AppendString(buffer, item.Tag)
	buffer = fastmsgpack.AppendString(buffer, FieldMessage)
	buffer = fastmsgpack.AppendString(buffer, item.Message)
	buffer = fastmsgpack.AppendString(buffer, FieldUUID)
	return fastmsgpack.AppendString(buffer, item.UUID().String())
}

// NewEventEntry creates the same event as forwarded, as a decoded structure
func NewEventEntry(item base.LogItem) forwardprotocol.EventEntry {
	return forwardprotocol.EventEntry{
		Time: forwardprotocol.EventTime{Time: item.Timestamp},
		Record: map[string]interface{}{
			FieldPID:     item.PID,
			FieldTID:     item.TID,
			FieldLevel:   item.Level.String(),
			FieldTag:     item.Tag,
			FieldMessage: item.Message,
			FieldUUID:    item.UUID().String(),
		},
	}
}

// FormatEventJSON formats an item in the JSON used by fluentd tools to dump events
func FormatEventJSON(item base.LogItem, tag string, indented bool) ([]byte, error) {
	return dump.FormatEventInJSON(NewEventEntry(item), tag, indented)
}
