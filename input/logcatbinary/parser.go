// Package logcatbinary parses the binary output of "adb logcat --binary" (logger_entry v1)
package logcatbinary

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/relex/logcat-agent/base"
)

// ErrTruncatedEntry is returned when the stream ends in the middle of an entry
var ErrTruncatedEntry = errors.New("truncated logcat entry")

// ErrInvalidEntry is returned for entries which cannot be decoded
var ErrInvalidEntry = errors.New("invalid logcat entry")

// HeaderV1Size is the size of the fixed header: len, hdr_size, pid, tid, sec, nsec
const HeaderV1Size = 20

const streamBufferSize = 64 * 1024

// Parser reads one entry at a time from a binary logcat stream
type Parser struct {
	reader  *bufio.Reader
	header  [HeaderV1Size]byte
	payload []byte
}

// NewParser creates a Parser; it's a base.LogParserFactory
func NewParser(stream io.Reader) base.LogParser {
	return &Parser{
		reader:  bufio.NewReaderSize(stream, streamBufferSize),
		payload: make([]byte, 0, 4096),
	}
}

// Next parses the next entry
func (parser *Parser) Next() (base.LogItem, error) {
	header := parser.header[:]
	if _, err := io.ReadFull(parser.reader, header[:1]); err != nil {
		return base.LogItem{}, err // io.EOF at the boundary of entries
	}
	if _, err := io.ReadFull(parser.reader, header[1:]); err != nil {
		return base.LogItem{}, truncated("header", err)
	}

	payloadLen := int(binary.LittleEndian.Uint16(header[0:2]))
	headerSize := int(binary.LittleEndian.Uint16(header[2:4]))
	pid := int32(binary.LittleEndian.Uint32(header[4:8]))
	tid := int32(binary.LittleEndian.Uint32(header[8:12]))
	sec := int32(binary.LittleEndian.Uint32(header[12:16]))
	nsec := int32(binary.LittleEndian.Uint32(header[16:20]))

	// newer headers carry extra fields such as lid and uid
	if extra := headerSize - HeaderV1Size; extra > 0 {
		if _, err := parser.reader.Discard(extra); err != nil {
			return base.LogItem{}, truncated("extended header", err)
		}
	}

	if payloadLen == 0 {
		return base.LogItem{}, fmt.Errorf("%w: empty payload pid=%d tid=%d", ErrInvalidEntry, pid, tid)
	}
	if cap(parser.payload) < payloadLen {
		parser.payload = make([]byte, payloadLen)
	}
	payload := parser.payload[:payloadLen]
	if _, err := io.ReadFull(parser.reader, payload); err != nil {
		return base.LogItem{}, truncated("payload", err)
	}

	tag, message, _ := bytes.Cut(payload[1:], []byte{0})
	message = bytes.TrimSuffix(message, []byte{0})

	return base.LogItem{
		Timestamp: time.Unix(int64(sec), int64(nsec)).UTC(),
		PID:       pid,
		TID:       tid,
		Level:     base.LogLevelFromPriority(payload[0]),
		Tag:       string(tag),
		Message:   strings.TrimSpace(string(message)),
	}, nil
}

func truncated(part string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s", ErrTruncatedEntry, part)
	}
	return err
}
