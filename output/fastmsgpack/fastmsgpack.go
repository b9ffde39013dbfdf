// Package fastmsgpack appends a subset of msgpack values to byte slices, with no IO abstraction and no allocation
// once the slice has grown enough.
//
// It's for hot paths such as encoding of individual log items. Tests should verify results by the msgpack decoder.
package fastmsgpack
