package rewritesink

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/relex/logcat-agent/base"
)

// Rule ops
const (
	OpRedactEmail = "redactEmail"
	OpTruncate    = "truncate"
	OpReplace     = "replace"
)

// Rewritable fields
const (
	FieldMessage = "message"
	FieldTag     = "tag"
)

// RuleConfig defines one rewrite of a text field
type RuleConfig struct {
	Op          string `yaml:"op"`          // redactEmail, truncate or replace
	Field       string `yaml:"field"`       // message (default) or tag
	MaxLength   int    `yaml:"maxLen"`      // truncate: max length in bytes before suffix
	Suffix      string `yaml:"suffix"`      // truncate: appended to truncated values
	Pattern     string `yaml:"pattern"`     // replace: regular expression
	Replacement string `yaml:"replacement"` // replace: template as in Regexp.Expand; redactEmail: default "REDACTED"
}

type rule struct {
	field   string
	rewrite func(value string) string // returns the same string if unchanged
}

// VerifyConfig checks the op and its parameters
func (cfg *RuleConfig) VerifyConfig() error {
	switch cfg.Field {
	case "", FieldMessage, FieldTag:
	default:
		return fmt.Errorf(".field: unsupported field '%s'", cfg.Field)
	}
	switch cfg.Op {
	case OpRedactEmail:
	case OpTruncate:
		if cfg.MaxLength <= 0 {
			return fmt.Errorf(".maxLen must be larger than zero: %d", cfg.MaxLength)
		}
	case OpReplace:
		if cfg.Pattern == "" {
			return fmt.Errorf(".pattern is unspecified")
		}
		if _, err := regexp.Compile(cfg.Pattern); err != nil {
			return fmt.Errorf(".pattern: %w", err)
		}
	case "":
		return fmt.Errorf(".op is unspecified")
	default:
		return fmt.Errorf(".op: unsupported op '%s'", cfg.Op)
	}
	return nil
}

func (cfg *RuleConfig) newRule() rule {
	r := rule{field: cfg.Field}
	if r.field == "" {
		r.field = FieldMessage
	}
	switch cfg.Op {
	case OpRedactEmail:
		replacement := cfg.Replacement
		if replacement == "" {
			replacement = DefaultEmailReplacement
		}
		r.rewrite = func(value string) string {
			result, _ := redactEmails(value, replacement)
			return result
		}
	case OpTruncate:
		maxLength, suffix := cfg.MaxLength, cfg.Suffix
		r.rewrite = func(value string) string {
			return truncate(value, maxLength, suffix)
		}
	case OpReplace:
		pattern, replacement := regexp.MustCompile(cfg.Pattern), cfg.Replacement
		r.rewrite = func(value string) string {
			if !pattern.MatchString(value) {
				return value
			}
			return pattern.ReplaceAllString(value, replacement)
		}
	}
	return r
}

// apply rewrites the field of item and returns true if changed
func (r rule) apply(item *base.LogItem) bool {
	var field *string
	if r.field == FieldTag {
		field = &item.Tag
	} else {
		field = &item.Message
	}
	result := r.rewrite(*field)
	if result == *field {
		return false
	}
	*field = result
	return true
}

// truncate cuts value to at most maxLength bytes at a rune boundary and appends suffix
//
// Values not longer than maxLength plus the suffix are kept as they are
func truncate(value string, maxLength int, suffix string) string {
	if len(value) <= maxLength+len(suffix) {
		return value
	}
	end := maxLength
	for end > 0 && !utf8.RuneStart(value[end]) {
		end--
	}
	return value[:end] + suffix
}
