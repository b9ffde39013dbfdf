package fluentdforward

import (
	"os"
	"testing"

	"github.com/relex/fluentlib/protocol/forwardprotocol"
	"github.com/relex/logcat-agent/base"
	"github.com/relex/logcat-agent/base/btest"
	"github.com/relex/logcat-agent/defs"
	"github.com/stretchr/testify/assert"
)

var allMessageModes = []forwardprotocol.MessageMode{
	forwardprotocol.ModeForward,
	forwardprotocol.ModePackedForward,
	forwardprotocol.ModeCompressedPackedForward,
}

func TestMain(m *testing.M) {
	defs.EnableTestMode()
	os.Exit(m.Run())
}

func newTestItems() []base.LogItem {
	items := btest.NewTestItems("A", "B", "C")
	items[1].Level = base.LevelError
	items[1].Tag = "ActivityManager"
	items[2].Message = "日本語 \"quoted\"\nnext line"
	return items
}

func assertEntries(t *testing.T, items []base.LogItem, entries []forwardprotocol.EventEntry, msg string) {
	if !assert.Len(t, entries, len(items), msg) {
		return
	}
	for i, item := range items {
		entry := entries[i]
		assert.Equal(t, item.Timestamp.UnixNano(), entry.Time.UnixNano(), msg)
		assert.EqualValues(t, item.PID, entry.Record[FieldPID], msg)
		assert.EqualValues(t, item.TID, entry.Record[FieldTID], msg)
		assert.Equal(t, item.Level.String(), entry.Record[FieldLevel], msg)
		assert.Equal(t, item.Tag, entry.Record[FieldTag], msg)
		assert.Equal(t, item.Message, entry.Record[FieldMessage], msg)
		assert.Equal(t, item.UUID().String(), entry.Record[FieldUUID], msg)
		assert.Len(t, entry.Record, numRecordFields, msg)
	}
}
