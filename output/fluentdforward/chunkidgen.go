package fluentdforward

import (
	"encoding/base64"

	"github.com/google/uuid"
)

// newChunkID returns a random chunk ID for ACK, in the same form as fluent-bit: base64 of 16 random bytes
func newChunkID() string {
	id := uuid.New()
	return base64.StdEncoding.EncodeToString(id[:])
}
