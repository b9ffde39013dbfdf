// Package bpack defines the msgpack layout of LogItem streams
//
// Each item is an array of [unix nanoseconds, pid, tid, level, tag, message]
package bpack

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/relex/logcat-agent/base"
	"github.com/vmihailenco/msgpack/v4"
)

const itemArrayLen = 6

// EncodeItem writes one item to encoder
func EncodeItem(encoder *msgpack.Encoder, item base.LogItem) error {
	if err := encoder.EncodeArrayLen(itemArrayLen); err != nil {
		return err
	}
	if err := encoder.EncodeInt(item.Timestamp.UnixNano()); err != nil {
		return err
	}
	if err := encoder.EncodeInt(int64(item.PID)); err != nil {
		return err
	}
	if err := encoder.EncodeInt(int64(item.TID)); err != nil {
		return err
	}
	if err := encoder.EncodeUint(uint64(item.Level)); err != nil {
		return err
	}
	if err := encoder.EncodeString(item.Tag); err != nil {
		return err
	}
	return encoder.EncodeString(item.Message)
}

// DecodeItem reads one item from decoder
//
// It returns io.EOF only if the stream ends before the item starts
func DecodeItem(decoder *msgpack.Decoder) (base.LogItem, error) {
	item := base.LogItem{}
	n, err := decoder.DecodeArrayLen()
	if err != nil {
		return item, err
	}
	if n != itemArrayLen {
		return item, fmt.Errorf("invalid item array length %d", n)
	}

	nanos, err := decoder.DecodeInt64()
	if err != nil {
		return item, unexpectedEOF(err)
	}
	item.Timestamp = time.Unix(0, nanos).UTC()
	if item.PID, err = decoder.DecodeInt32(); err != nil {
		return item, unexpectedEOF(err)
	}
	if item.TID, err = decoder.DecodeInt32(); err != nil {
		return item, unexpectedEOF(err)
	}
	level, err := decoder.DecodeUint8()
	if err != nil {
		return item, unexpectedEOF(err)
	}
	item.Level = base.LogLevel(level)
	if item.Tag, err = decoder.DecodeString(); err != nil {
		return item, unexpectedEOF(err)
	}
	if item.Message, err = decoder.DecodeString(); err != nil {
		return item, unexpectedEOF(err)
	}
	return item, nil
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
