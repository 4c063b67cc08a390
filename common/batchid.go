package common

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// BatchIDLength is the length of a batch identifier in bytes. It matches the
// bytes16 representation used by the on-chain registry.
const BatchIDLength = 16

var ErrInvalidBatchID = errors.New("invalid batch id")

// BatchID is the globally unique, immutable identifier of a batch. On chain it
// travels as bytes16; off chain it is rendered as a 0x-prefixed hex string.
type BatchID [BatchIDLength]byte

// NewBatchID generates a fresh random BatchID (UUIDv4 backed).
func NewBatchID() BatchID {
	return BatchID(uuid.New())
}

// BatchIDFromString parses a BatchID from its 0x-prefixed hex form or from a
// canonical UUID string.
func BatchIDFromString(s string) (BatchID, error) {
	var id BatchID
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		raw, err := hex.DecodeString(s[2:])
		if err != nil {
			return id, fmt.Errorf("%w: %s", ErrInvalidBatchID, s)
		}
		if len(raw) != BatchIDLength {
			return id, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidBatchID, BatchIDLength, len(raw))
		}
		copy(id[:], raw)

		return id, nil
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return id, fmt.Errorf("%w: %s", ErrInvalidBatchID, s)
	}

	return BatchID(u), nil
}

// BatchIDFromBytes builds a BatchID from a raw 16 byte slice.
func BatchIDFromBytes(b []byte) (BatchID, error) {
	var id BatchID
	if len(b) != BatchIDLength {
		return id, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidBatchID, BatchIDLength, len(b))
	}
	copy(id[:], b)

	return id, nil
}

func (id BatchID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

func (id BatchID) Bytes() []byte {
	return id[:]
}

// IsZero reports whether the id is the zero sentinel (no batch).
func (id BatchID) IsZero() bool {
	return id == BatchID{}
}

// UUID renders the id in its UUID form, handy for off-chain references.
func (id BatchID) UUID() uuid.UUID {
	return uuid.UUID(id)
}
