package btest

import (
	"fmt"
	"time"

	"github.com/relex/logcat-agent/base"
)

// NewTestItems creates items with distinct messages, one for each given name
func NewTestItems(names ...string) []base.LogItem {
	items := make([]base.LogItem, 0, len(names))
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, name := range names {
		items = append(items, base.LogItem{
			Timestamp: start.Add(time.Duration(i) * time.Millisecond),
			PID:       100,
			TID:       int32(100 + i),
			Level:     base.LevelInfo,
			Tag:       "Test",
			Message:   fmt.Sprintf("item %s", name),
		})
	}
	return items
}
