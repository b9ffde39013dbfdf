// Package bmatch matches log items by conditions on their text fields
package bmatch

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
	"github.com/relex/logcat-agent/util"
	"gopkg.in/yaml.v3"
)

// ValueMatch is a condition on one string value, e.g. "starts with ActivityManager", without the field name
//
// In YAML it's written as a scalar with a matcher tag, e.g. `!!glob Activity*`
type ValueMatch struct {
	match       func(value string) bool
	description string
	cost        int // relative cost, cheaper matches are checked first
}

type valueMatchConstructor func(expr string) (ValueMatch, error)

var valueMatchConstructors = map[string]valueMatchConstructor{
	"!!str":         newStringMatch("==", 1, func(v, expr string) bool { return v == expr }),
	"!!str-eq":      newStringMatch("==", 1, func(v, expr string) bool { return v == expr }),
	"!!str-not":     newStringMatch("!=", 1, func(v, expr string) bool { return v != expr }),
	"!!str-start":   newStringMatch("ˆ=", 1, strings.HasPrefix),
	"!!str-end":     newStringMatch("$=", 1, strings.HasSuffix),
	"!!str-contain": newStringMatch("*=", 500, strings.Contains),
	"!!glob":        newGlobMatch,
	"!!regex":       newRegexMatch,
}

// NewValueMatch creates a ValueMatch by matcher tag, e.g. "!!glob", and expression
func NewValueMatch(tag string, expr string) (ValueMatch, error) {
	creator, found := valueMatchConstructors[tag]
	if !found {
		return ValueMatch{}, fmt.Errorf("unsupported value-match tag: %s", tag)
	}
	return creator(expr)
}

// Match checks the value
func (match ValueMatch) Match(value string) bool {
	return match.match(value)
}

// MarshalYAML provides custom marshalling to export readable document. The result is not reversible.
func (match ValueMatch) MarshalYAML() (interface{}, error) {
	return match.description, nil
}

func (match ValueMatch) String() string {
	return match.description
}

// UnmarshalYAML creates the match from tagged scalar
func (match *ValueMatch) UnmarshalYAML(value *yaml.Node) error {
	if _, found := valueMatchConstructors[value.Tag]; !found {
		return util.NewYamlError(value, fmt.Sprintf("unsupported value-match tag: %s", value.Tag))
	}
	m, err := NewValueMatch(value.Tag, value.Value)
	if err != nil {
		return util.NewYamlError(value, fmt.Sprintf("failed value-match of tag %s: %s", value.Tag, err.Error()))
	}
	*match = m
	return nil
}

func newStringMatch(operator string, baseCost int, test func(v string, expr string) bool) valueMatchConstructor {
	return func(expr string) (ValueMatch, error) {
		if expr == "" {
			return ValueMatch{}, fmt.Errorf("value is empty")
		}
		return ValueMatch{
			match:       func(v string) bool { return test(v, expr) },
			description: operator + " " + expr,
			cost:        baseCost + len(expr)/2,
		}, nil
	}
}

func newGlobMatch(expr string) (ValueMatch, error) {
	g, err := glob.Compile(expr)
	if err != nil {
		return ValueMatch{}, err
	}
	return ValueMatch{
		match:       g.Match,
		description: "~= " + expr,
		cost:        2000 + len(expr),
	}, nil
}

func newRegexMatch(expr string) (ValueMatch, error) {
	regex, err := regexp.Compile(expr)
	if err != nil {
		return ValueMatch{}, err
	}
	return ValueMatch{
		match:       regex.MatchString,
		description: "=~ " + expr,
		cost:        20000 + len(expr),
	}, nil
}
