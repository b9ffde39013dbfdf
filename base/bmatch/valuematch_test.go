package bmatch

import (
	"fmt"
	"testing"

	"github.com/relex/logcat-agent/util"
	"github.com/stretchr/testify/assert"
)

type valueMatchTestData struct {
	Value ValueMatch `yaml:"value"`
}

func TestValueMatchString(t *testing.T) {
	if m := tryBuildMatch(t, `value: !!str ActivityManager`); m != nil {
		assert.True(t, m.Match("ActivityManager"))
		assert.False(t, m.Match("ActivityManager2"))
		assert.Equal(t, "== ActivityManager", m.String())
	}
	if m := tryBuildMatch(t, `value: !!str-not chatty`); m != nil {
		assert.True(t, m.Match("vold"))
		assert.False(t, m.Match("chatty"))
	}
	if m := tryBuildMatch(t, `value: !!str-start Activity`); m != nil {
		assert.True(t, m.Match("ActivityTaskManager"))
		assert.False(t, m.Match("[Activity]"))
	}
	if m := tryBuildMatch(t, `value: !!str-end Service`); m != nil {
		assert.True(t, m.Match("WifiService"))
		assert.False(t, m.Match("Service[1]"))
	}
	if m := tryBuildMatch(t, `value: !!str-contain ANR`); m != nil {
		assert.True(t, m.Match("ANR in com.example"))
		assert.False(t, m.Match("anr"))
	}
}

func TestValueMatchGlob(t *testing.T) {
	if m := tryBuildMatch(t, `value: !!glob "Activity*"`); m != nil {
		assert.True(t, m.Match("ActivityManager"))
		assert.False(t, m.Match("WindowManager"))
	}
	if m := tryBuildMatch(t, `value: !!glob "{vold,netd}"`); m != nil {
		assert.True(t, m.Match("netd"))
		assert.False(t, m.Match("installd"))
	}
}

func TestValueMatchRegex(t *testing.T) {
	if m := tryBuildMatch(t, `value: !!regex ^Start proc \d+`); m != nil {
		assert.True(t, m.Match("Start proc 1234:com.example"))
		assert.False(t, m.Match("Start proc x"))
	}
	d := &valueMatchTestData{}
	err := util.UnmarshalYamlString(`value: !!regex ^Hello[.*World`, d)
	if assert.NotNil(t, err) {
		assert.Contains(t, err.Error(), "yaml line 1:8: failed value-match of tag !!regex: error parsing regexp: ")
	}
}

func TestValueMatchInvalid(t *testing.T) {
	d := &valueMatchTestData{}
	assert.Equal(t, fmt.Errorf("yaml line 1:8: unsupported value-match tag: !!hello"), util.UnmarshalYamlString(`value: !!hello x`, d))

	_, err := NewValueMatch("!!str-start", "")
	assert.EqualError(t, err, "value is empty")
	_, err = NewValueMatch("!!len-gt", "1")
	assert.EqualError(t, err, "unsupported value-match tag: !!len-gt")
}

func tryBuildMatch(t *testing.T, matcherYAML string) *ValueMatch {
	d := &valueMatchTestData{}
	if assert.Nil(t, util.UnmarshalYamlString(matcherYAML, d)) {
		return &d.Value
	}
	return nil
}
