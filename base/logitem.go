package base

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LogItem is one parsed log line
//
// LogItem is a value type and must not be modified after creation. Chunks of items are shared by all sinks.
//
// Parsers produce Timestamp in UTC, so that items of the same content are equal by ==.
type LogItem struct {
	Timestamp time.Time
	PID       int32
	TID       int32
	Level     LogLevel
	Tag       string
	Message   string
}

var logItemNamespace = uuid.MustParse("1a8aec4b-880b-4d8a-be1b-4fae5a869f5a")

// LogItemTimeLayout is the timestamp layout in String(), same as "threadtime" format of logcat
const LogItemTimeLayout = "01-02 15:04:05.000"

// String formats the item as a logcat "threadtime" line in local time, without trailing newline
func (item LogItem) String() string {
	level := item.Level.Identifier()
	if level == "" {
		level = "?"
	}
	return fmt.Sprintf("%s %5d %5d %s %s: %s", item.Timestamp.Local().Format(LogItemTimeLayout), item.PID, item.TID, level, item.Tag, item.Message)
}

// UUID returns a name-based UUID (v5) of all fields, so that equal items always share the same UUID
func (item LogItem) UUID() uuid.UUID {
	var name strings.Builder
	name.Grow(len(item.Tag) + len(item.Message) + 64)
	name.WriteString(item.Timestamp.UTC().Format(time.RFC3339Nano))
	name.WriteByte('\n')
	name.WriteString(strconv.FormatInt(int64(item.PID), 10))
	name.WriteByte('\n')
	name.WriteString(strconv.FormatInt(int64(item.TID), 10))
	name.WriteByte('\n')
	name.WriteString(item.Level.Identifier())
	name.WriteByte('\n')
	name.WriteString(item.Tag)
	name.WriteByte('\n')
	name.WriteString(item.Message)
	return uuid.NewSHA1(logItemNamespace, []byte(name.String()))
}
