package custody

import (
	"errors"
	"fmt"

	custodiaCommon "github.com/custodia-chain/custodia/common"
	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrNotAuthorized means the resolved identity may not perform the
	// operation at all (wrong role for the verb).
	ErrNotAuthorized = errors.New("not authorized for this operation")
	// ErrBatchNotFound means the ledger has no batch under that id.
	ErrBatchNotFound = errors.New("batch not found on the ledger")
	// ErrRecipientWithoutRole means the transfer target wallet holds no role on
	// the ledger, so no compatibility rule can admit it.
	ErrRecipientWithoutRole = errors.New("recipient wallet holds no role on the ledger")
	// ErrInvalidParams rejects malformed operation input before any write.
	ErrInvalidParams = errors.New("invalid parameters")
)

// ConsistencyGapError reports that the ledger committed a custody transition
// but the projection write failed. The ledger is right and the projection is
// behind; the gap is queued for reconciliation and the caller must not retry
// the ledger write.
type ConsistencyGapError struct {
	BatchID      custodiaCommon.BatchID
	Operation    string
	TxHash       common.Hash
	LedgerStatus custodiaCommon.BatchStatus
	Err          error
}

func (e *ConsistencyGapError) Error() string {
	return fmt.Sprintf(
		"consistency gap on %s of batch %s (tx %s, ledger status %s): projection write failed: %v",
		e.Operation, e.BatchID, e.TxHash, e.LedgerStatus, e.Err,
	)
}

func (e *ConsistencyGapError) Unwrap() error {
	return e.Err
}
