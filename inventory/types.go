package inventory

import (
	custodiaCommon "github.com/custodia-chain/custodia/common"
	"github.com/ethereum/go-ethereum/common"
)

// BatchRow is the projection of a batch, optimized for list/filter views.
// The ledger is authoritative; rows here are mirrors written after
// confirmation.
type BatchRow struct {
	BatchID             custodiaCommon.BatchID `meddler:"batch_id,batchid"`
	ProductName         string                 `meddler:"product_name"`
	ManufacturerWallet  common.Address         `meddler:"manufacturer_wallet,address"`
	CurrentHolderWallet common.Address         `meddler:"current_holder_wallet,address"`
	// IntendedRecipientWallet is the zero address unless the batch is in
	// transit.
	IntendedRecipientWallet common.Address             `meddler:"intended_recipient_wallet,address"`
	Status                  custodiaCommon.BatchStatus `meddler:"status,status"`
	EwayBillNo              string                     `meddler:"eway_bill_no"`
	CurrentLocation         string                     `meddler:"current_location"`
	InternalBatchNo         string                     `meddler:"internal_batch_no"`
	Quantity                uint64                     `meddler:"quantity"`
	Cost                    uint64                     `meddler:"cost"`
	Description             string                     `meddler:"description"`
	CreatedAt               int64                      `meddler:"created_at"`
	UpdatedAt               int64                      `meddler:"updated_at"`
}

// Profile links an authenticated principal to its declared role and wallet.
// Advisory metadata: the ledger's role grants are authoritative for what a
// wallet may execute.
type Profile struct {
	ID            string              `meddler:"id"`
	Role          custodiaCommon.Role `meddler:"role"`
	WalletAddress common.Address      `meddler:"wallet_address,address"`
}

// HistoryRow is one append-only audit trail entry. Not load-bearing for
// custody: a failed history write never rolls back custody state.
type HistoryRow struct {
	ID           int64                  `meddler:"id,pk"`
	BatchID      custodiaCommon.BatchID `meddler:"batch_id,batchid"`
	EventType    string                 `meddler:"event_type"`
	ActorAddress common.Address         `meddler:"actor_address,address"`
	Details      string                 `meddler:"details"`
	CreatedAt    int64                  `meddler:"created_at"`
}

// GapRow records a detected consistency gap: the ledger committed but the
// projection write failed. The reconciler drains these.
type GapRow struct {
	BatchID      custodiaCommon.BatchID `meddler:"batch_id,batchid"`
	Operation    string                 `meddler:"operation"`
	TxHash       common.Hash            `meddler:"tx_hash,hash"`
	LedgerStatus string                 `meddler:"ledger_status"`
	DetectedAt   int64                  `meddler:"detected_at"`
	Resolved     bool                   `meddler:"resolved"`
}
