package etherman

import (
	custodiaCommon "github.com/custodia-chain/custodia/common"
	"github.com/ethereum/go-ethereum/common"
)

// Batch is the ledger snapshot of a batch. The zero value is the sentinel the
// contract returns for ids it has never seen; callers must check IsZero
// instead of expecting a not-found error.
type Batch struct {
	ID      custodiaCommon.BatchID
	Creator common.Address
	// CurrentHolder keeps the last known holder while the batch is in
	// transit. Status is authoritative for interpretation.
	CurrentHolder     common.Address
	IntendedRecipient common.Address
	Status            custodiaCommon.BatchStatus
	EwayBillNo        string
	CurrentLocation   string
	CreatedAt         uint64
	UpdatedAt         uint64
}

// IsZero reports whether the snapshot is the contract's absent-batch sentinel.
func (b Batch) IsZero() bool {
	return b.ID.IsZero() && b.Creator == (common.Address{})
}

// HistoryEventType identifies the kind of custody event on the ledger log.
type HistoryEventType uint8

const (
	HistoryCreated = HistoryEventType(iota)
	HistoryTransferred
	HistoryReceived
)

func (t HistoryEventType) String() string {
	switch t {
	case HistoryCreated:
		return "Created"
	case HistoryTransferred:
		return "Transferred"
	case HistoryReceived:
		return "Received"
	default:
		return "Unknown"
	}
}

// HistoryEvent is one entry of the contract-native custody log, ordered by
// emission.
type HistoryEvent struct {
	EventType HistoryEventType
	Actor     common.Address
	Location  string
	Timestamp uint64
}

// BatchCreatedEvent is the decoded BatchCreated contract event, used to
// recover the assigned batch id from tx logs.
type BatchCreatedEvent struct {
	BatchID custodiaCommon.BatchID
	Creator common.Address
}
