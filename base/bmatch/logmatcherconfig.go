package bmatch

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// LogMatcherConfig maps item field names to conditions, e.g. {tag: !!glob Activity*}
//
// Supported fields: tag, message, level (identifier letter), pid and tid
type LogMatcherConfig map[string]ValueMatch

// NewMatcher creates a LogMatcher which checks cheaper conditions first
func (cmap LogMatcherConfig) NewMatcher() LogMatcher {
	fields := maps.Keys(cmap)
	slices.SortFunc(fields, func(a, b string) bool {
		if cmap[a].cost == cmap[b].cost {
			return a < b
		}
		return cmap[a].cost < cmap[b].cost
	})

	fieldMatches := make([]fieldMatch, 0, len(cmap))
	for _, field := range fields {
		fieldMatches = append(fieldMatches, fieldMatch{
			field: field,
			get:   itemFieldGetters[field],
			match: cmap[field].match,
		})
	}
	return LogMatcher{fieldMatches}
}

// VerifyConfig checks all field names
func (cmap LogMatcherConfig) VerifyConfig() error {
	for field, match := range cmap {
		if _, found := itemFieldGetters[field]; !found {
			return fmt.Errorf("invalid match field '%s'", field)
		}
		if match.match == nil { // empty value in map doesn't go through unmarshalling
			return fmt.Errorf("missing match value for '%s'", field)
		}
	}
	return nil
}
