package bmatch

import (
	"strconv"

	"github.com/relex/logcat-agent/base"
)

// LogMatcher matches log items which satisfy all of its field conditions
//
// An empty matcher matches everything
type LogMatcher struct {
	fieldMatches []fieldMatch
}

type fieldMatch struct {
	field string
	get   itemFieldGetter
	match func(value string) bool
}

type itemFieldGetter func(item *base.LogItem) string

var itemFieldGetters = map[string]itemFieldGetter{
	"tag":     func(item *base.LogItem) string { return item.Tag },
	"message": func(item *base.LogItem) string { return item.Message },
	"level":   func(item *base.LogItem) string { return item.Level.Identifier() },
	"pid":     func(item *base.LogItem) string { return strconv.FormatInt(int64(item.PID), 10) },
	"tid":     func(item *base.LogItem) string { return strconv.FormatInt(int64(item.TID), 10) },
}

// Match checks whether the given item matches all conditions
func (m LogMatcher) Match(item *base.LogItem) bool {
	for _, fm := range m.fieldMatches {
		if !fm.match(fm.get(item)) {
			return false
		}
	}
	return true
}

// Empty returns true if there is no condition
func (m LogMatcher) Empty() bool {
	return len(m.fieldMatches) == 0
}
