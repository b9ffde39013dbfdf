package bpack

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/relex/logcat-agent/base"
	"github.com/stretchr/testify/assert"
	"github.com/vmihailenco/msgpack/v4"
)

func TestItemPack(t *testing.T) {
	items := []base.LogItem{
		{Timestamp: time.Unix(1700000000, 123456789).UTC(), PID: 1, TID: 2, Level: base.LevelError, Tag: "Tag", Message: "boom"},
		{Timestamp: time.Unix(0, 0).UTC(), PID: -1, TID: 0, Level: base.LevelUnknown, Tag: "", Message: "multi\nline"},
	}
	buf := &bytes.Buffer{}
	encoder := msgpack.NewEncoder(buf)
	for _, item := range items {
		assert.Nil(t, EncodeItem(encoder, item))
	}
	encoded := buf.Bytes()

	decoder := msgpack.NewDecoder(bytes.NewReader(encoded))
	for i, expected := range items {
		item, err := DecodeItem(decoder)
		assert.Nil(t, err, i)
		assert.Equal(t, expected, item, i)
	}
	_, err := DecodeItem(decoder)
	assert.ErrorIs(t, err, io.EOF)

	truncated := msgpack.NewDecoder(bytes.NewReader(encoded[:len(encoded)-3]))
	_, err = DecodeItem(truncated)
	assert.Nil(t, err)
	_, err = DecodeItem(truncated)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
