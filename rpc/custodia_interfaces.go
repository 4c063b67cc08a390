package rpc

import (
	"context"

	custodiaCommon "github.com/custodia-chain/custodia/common"
	"github.com/custodia-chain/custodia/custody"
	"github.com/custodia-chain/custodia/inventory"
	"github.com/ethereum/go-ethereum/common"
)

type CustodyManager interface {
	CreateBatch(ctx context.Context, principalID string, params custody.CreateBatchParams) (inventory.BatchRow, error)
	TransferBatch(ctx context.Context, principalID string, batchID custodiaCommon.BatchID, to common.Address, location string) error
	ReceiveBatch(ctx context.Context, principalID string, batchID custodiaCommon.BatchID, location string) error
	GetBatch(ctx context.Context, batchID custodiaCommon.BatchID) (inventory.BatchRow, error)
	ListBatches(ctx context.Context, principalID string) ([]*inventory.BatchRow, error)
	History(ctx context.Context, batchID custodiaCommon.BatchID) ([]*inventory.HistoryRow, error)
}

type RoleGranter interface {
	Grant(ctx context.Context, principalID string, wallet common.Address, role custodiaCommon.Role) error
	Revoke(ctx context.Context, principalID string, wallet common.Address, role custodiaCommon.Role) error
}

type TokenIssuer interface {
	TokenFor(id custodiaCommon.BatchID) string
	TrackingURL(id custodiaCommon.BatchID) string
}
