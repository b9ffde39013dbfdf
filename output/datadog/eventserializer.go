package datadog

import (
	"encoding/json"

	"github.com/relex/logcat-agent/base"
)

// event is the JSON object of one log item, with Datadog reserved attributes
type event struct {
	Source    string `json:"ddsource,omitempty"`
	Tags      string `json:"ddtags,omitempty"`
	Service   string `json:"service,omitempty"`
	Hostname  string `json:"hostname,omitempty"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
	Status    string `json:"status"`
	Message   string `json:"message"`
	Logcat    struct {
		PID   int32  `json:"pid"`
		TID   int32  `json:"tid"`
		Tag   string `json:"tag"`
		Level string `json:"level"`
		UUID  string `json:"uuid"`
	} `json:"logcat"`
}

// statusByLevel maps log levels to Datadog status
var statusByLevel = map[base.LogLevel]string{
	base.LevelUnknown: "info",
	base.LevelVerbose: "debug",
	base.LevelDebug:   "debug",
	base.LevelInfo:    "info",
	base.LevelWarning: "warn",
	base.LevelError:   "error",
	base.LevelFatal:   "emergency",
}

type eventSerializer struct {
	config SerializationConfig
}

// SerializeItem encodes one item as JSON object
func (serializer *eventSerializer) SerializeItem(item *base.LogItem) ([]byte, error) {
	ev := event{
		Source:    serializer.config.Source,
		Tags:      serializer.config.Tags,
		Service:   serializer.config.Service,
		Hostname:  serializer.config.Hostname,
		Timestamp: item.Timestamp.UnixMilli(),
		Status:    statusByLevel[item.Level],
		Message:   item.Message,
	}
	if ev.Status == "" {
		ev.Status = "info"
	}
	ev.Logcat.PID = item.PID
	ev.Logcat.TID = item.TID
	ev.Logcat.Tag = item.Tag
	ev.Logcat.Level = item.Level.String()
	ev.Logcat.UUID = item.UUID().String()
	return json.Marshal(&ev)
}
