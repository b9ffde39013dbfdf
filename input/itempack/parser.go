// Package itempack parses msgpack item streams written by the itempack sink, to replay captured sessions
package itempack

import (
	"bufio"
	"io"

	"github.com/relex/logcat-agent/base"
	"github.com/relex/logcat-agent/base/bconfig"
	"github.com/relex/logcat-agent/base/bpack"
	"github.com/vmihailenco/msgpack/v4"
)

// Config defines the parser of item pack streams, which has no option
type Config struct {
	bconfig.Header `yaml:",inline"`
}

type parser struct {
	decoder *msgpack.Decoder
}

// NewParser creates a parser of item pack stream; it's a base.LogParserFactory
func NewParser(stream io.Reader) base.LogParser {
	return &parser{
		decoder: msgpack.NewDecoder(bufio.NewReader(stream)),
	}
}

func (p *parser) Next() (base.LogItem, error) {
	return bpack.DecodeItem(p.decoder)
}

// NewParserFactory returns NewParser
func (cfg *Config) NewParserFactory() base.LogParserFactory {
	return NewParser
}
