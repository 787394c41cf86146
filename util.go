package spankit

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// IDGenerator produces the random identifiers spans are stamped with: 32-hex
// trace IDs and 16-hex span IDs. Identifiers must be effectively unique, not
// globally strictly unique. Implementations must be safe for concurrent use.
type IDGenerator interface {
	NewTraceID() string
	NewSpanID() string
}

var defaultIDGenerator IDGenerator = uuidGenerator{}

// uuidGenerator derives identifiers from random UUIDs: all 16 bytes for a
// trace ID, the leading 8 for a span ID.
type uuidGenerator struct{}

func (uuidGenerator) NewTraceID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

func (uuidGenerator) NewSpanID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:8])
}
