package rpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/0xPolygon/cdk-rpc/rpc"
	custodiaCommon "github.com/custodia-chain/custodia/common"
	"github.com/custodia-chain/custodia/custody"
	"github.com/custodia-chain/custodia/db"
	"github.com/custodia-chain/custodia/etherman"
	"github.com/custodia-chain/custodia/identity"
	"github.com/custodia-chain/custodia/inventory"
	"github.com/custodia-chain/custodia/log"
	"github.com/custodia-chain/custodia/rolegrant"
	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	// CUSTODIA is the namespace of the custodia service
	CUSTODIA  = "custodia"
	meterName = "github.com/custodia-chain/custodia/rpc"

	zeroHex = "0x0"

	// ConsistencyGapErrorCode marks responses where the ledger committed but
	// the projection write failed. The operation took effect; clients should
	// surface a persistent warning, not retry
	ConsistencyGapErrorCode = -32010
	// TxIndeterminateErrorCode marks a tx that was submitted but not
	// confirmed in time. Distinct from failure: poll, never resubmit
	TxIndeterminateErrorCode = -32011
)

// CustodiaEndpoints contains implementations for the "custodia" RPC endpoints
type CustodiaEndpoints struct {
	logger       *log.Logger
	meter        metric.Meter
	readTimeout  time.Duration
	writeTimeout time.Duration
	custody      CustodyManager
	roles        RoleGranter
	tokens       TokenIssuer
}

// NewCustodiaEndpoints returns CustodiaEndpoints
func NewCustodiaEndpoints(
	logger *log.Logger,
	writeTimeout time.Duration,
	readTimeout time.Duration,
	custodyManager CustodyManager,
	roles RoleGranter,
	tokens TokenIssuer,
) *CustodiaEndpoints {
	meter := otel.Meter(meterName)

	return &CustodiaEndpoints{
		logger:       logger,
		meter:        meter,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		custody:      custodyManager,
		roles:        roles,
		tokens:       tokens,
	}
}

// CreateBatch registers a new batch on the ledger on behalf of the
// manufacturer principal and returns its projection.
func (c *CustodiaEndpoints) CreateBatch(principalID string, req CreateBatchRequest) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.writeTimeout)
	defer cancel()
	c.countCall(ctx, "create_batch")

	row, err := c.custody.CreateBatch(ctx, principalID, custody.CreateBatchParams{
		ProductName:     req.ProductName,
		EwayBillNo:      req.EwayBillNo,
		Location:        req.Location,
		InternalBatchNo: req.InternalBatchNo,
		Quantity:        req.Quantity,
		Cost:            req.Cost,
		Description:     req.Description,
	})
	if err != nil {
		return zeroHex, c.rpcError("failed to create batch", err)
	}

	return c.batchInfo(row), nil
}

// TransferBatch puts a batch in transit towards the recipient wallet.
func (c *CustodiaEndpoints) TransferBatch(
	principalID string, batchID string, to string, location string,
) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.writeTimeout)
	defer cancel()
	c.countCall(ctx, "transfer_batch")

	id, err := custodiaCommon.BatchIDFromString(batchID)
	if err != nil {
		return zeroHex, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("invalid batch id: %s", err))
	}
	if !common.IsHexAddress(to) {
		return zeroHex, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("invalid recipient address %q", to))
	}
	if err := c.custody.TransferBatch(ctx, principalID, id, common.HexToAddress(to), location); err != nil {
		return zeroHex, c.rpcError(fmt.Sprintf("failed to transfer batch %s", batchID), err)
	}

	return id.String(), nil
}

// ReceiveBatch completes an in-transit transfer as the intended recipient.
func (c *CustodiaEndpoints) ReceiveBatch(
	principalID string, batchID string, location string,
) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.writeTimeout)
	defer cancel()
	c.countCall(ctx, "receive_batch")

	id, err := custodiaCommon.BatchIDFromString(batchID)
	if err != nil {
		return zeroHex, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("invalid batch id: %s", err))
	}
	if err := c.custody.ReceiveBatch(ctx, principalID, id, location); err != nil {
		return zeroHex, c.rpcError(fmt.Sprintf("failed to receive batch %s", batchID), err)
	}

	return id.String(), nil
}

// GetBatch returns the projection of a single batch.
func (c *CustodiaEndpoints) GetBatch(batchID string) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.readTimeout)
	defer cancel()
	c.countCall(ctx, "get_batch")

	id, err := custodiaCommon.BatchIDFromString(batchID)
	if err != nil {
		return zeroHex, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("invalid batch id: %s", err))
	}
	row, err := c.custody.GetBatch(ctx, id)
	if err != nil {
		return zeroHex, c.rpcError(fmt.Sprintf("failed to get batch %s", batchID), err)
	}

	return c.batchInfo(row), nil
}

// ListBatches returns the batches visible to the principal.
func (c *CustodiaEndpoints) ListBatches(principalID string) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.readTimeout)
	defer cancel()
	c.countCall(ctx, "list_batches")

	rows, err := c.custody.ListBatches(ctx, principalID)
	if err != nil {
		return zeroHex, c.rpcError("failed to list batches", err)
	}
	batches := make([]BatchInfo, 0, len(rows))
	for _, row := range rows {
		batches = append(batches, c.batchInfo(*row))
	}

	return batches, nil
}

// BatchHistory returns the audit trail of a batch, oldest first.
func (c *CustodiaEndpoints) BatchHistory(batchID string) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.readTimeout)
	defer cancel()
	c.countCall(ctx, "batch_history")

	id, err := custodiaCommon.BatchIDFromString(batchID)
	if err != nil {
		return zeroHex, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("invalid batch id: %s", err))
	}
	rows, err := c.custody.History(ctx, id)
	if err != nil {
		return zeroHex, c.rpcError(fmt.Sprintf("failed to get history of batch %s", batchID), err)
	}
	events := make([]HistoryEntry, 0, len(rows))
	for _, row := range rows {
		events = append(events, HistoryEntry{
			EventType: row.EventType,
			Actor:     row.ActorAddress.Hex(),
			Details:   row.Details,
			Timestamp: row.CreatedAt,
		})
	}

	return events, nil
}

// GrantRole grants the distributor or retailer role to a wallet.
func (c *CustodiaEndpoints) GrantRole(principalID string, wallet string, role string) (interface{}, rpc.Error) {
	return c.administerRole(principalID, wallet, role, "grant_role", c.roles.Grant)
}

// RevokeRole revokes the distributor or retailer role from a wallet.
func (c *CustodiaEndpoints) RevokeRole(principalID string, wallet string, role string) (interface{}, rpc.Error) {
	return c.administerRole(principalID, wallet, role, "revoke_role", c.roles.Revoke)
}

func (c *CustodiaEndpoints) administerRole(
	principalID, wallet, role, counterName string,
	op func(context.Context, string, common.Address, custodiaCommon.Role) error,
) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.writeTimeout)
	defer cancel()
	c.countCall(ctx, counterName)

	if !common.IsHexAddress(wallet) {
		return zeroHex, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("invalid wallet address %q", wallet))
	}
	parsedRole, err := custodiaCommon.ParseRole(role)
	if err != nil {
		return zeroHex, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("invalid role %q: %s", role, err))
	}
	if err := op(ctx, principalID, common.HexToAddress(wallet), parsedRole); err != nil {
		return zeroHex, c.rpcError(fmt.Sprintf("failed to %s for %s", counterName, wallet), err)
	}

	return wallet, nil
}

// TrackingToken returns the opaque token and public tracking URL of a batch.
func (c *CustodiaEndpoints) TrackingToken(batchID string) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.readTimeout)
	defer cancel()
	c.countCall(ctx, "tracking_token")

	id, err := custodiaCommon.BatchIDFromString(batchID)
	if err != nil {
		return zeroHex, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("invalid batch id: %s", err))
	}

	return TrackingInfo{
		BatchID:     id.String(),
		Token:       c.tokens.TokenFor(id),
		TrackingURL: c.tokens.TrackingURL(id),
	}, nil
}

func (c *CustodiaEndpoints) countCall(ctx context.Context, name string) {
	counter, err := c.meter.Int64Counter(name)
	if err != nil {
		c.logger.Warnf("failed to create %s counter: %s", name, err)

		return
	}
	counter.Add(ctx, 1)
}

// rpcError keeps the typed failure kind readable on the wire: consistency
// gaps and indeterminate txs carry their own error codes so clients can tell
// "it happened but the mirror lags" and "it may still happen" apart from
// plain failure.
func (c *CustodiaEndpoints) rpcError(msg string, err error) rpc.Error {
	var gapErr *custody.ConsistencyGapError
	switch {
	case errors.As(err, &gapErr):
		c.logger.Errorf("%s: %v", msg, err)

		return rpc.NewRPCError(ConsistencyGapErrorCode, fmt.Sprintf("%s, error: %s", msg, err))
	case errors.Is(err, etherman.ErrTxIndeterminate):
		c.logger.Warnf("%s: %v", msg, err)

		return rpc.NewRPCError(TxIndeterminateErrorCode, fmt.Sprintf("%s, error: %s", msg, err))
	case errors.Is(err, db.ErrNotFound) || errors.Is(err, custody.ErrBatchNotFound):
	case errors.Is(err, custody.ErrNotAuthorized) ||
		errors.Is(err, rolegrant.ErrNotAuthorized) ||
		errors.Is(err, identity.ErrIdentityIncomplete) ||
		errors.Is(err, etherman.ErrUnauthorized):
	default:
		c.logger.Debugf("%s: %v", msg, err)
	}

	return rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("%s, error: %s", msg, err))
}

func (c *CustodiaEndpoints) batchInfo(row inventory.BatchRow) BatchInfo {
	info := BatchInfo{
		BatchID:         row.BatchID.String(),
		ProductName:     row.ProductName,
		Manufacturer:    row.ManufacturerWallet.Hex(),
		CurrentHolder:   row.CurrentHolderWallet.Hex(),
		Status:          row.Status.String(),
		EwayBillNo:      row.EwayBillNo,
		CurrentLocation: row.CurrentLocation,
		InternalBatchNo: row.InternalBatchNo,
		Quantity:        row.Quantity,
		Cost:            row.Cost,
		Description:     row.Description,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
		TrackingURL:     c.tokens.TrackingURL(row.BatchID),
	}
	if row.IntendedRecipientWallet != (common.Address{}) {
		info.IntendedRecipient = row.IntendedRecipientWallet.Hex()
	}

	return info
}
