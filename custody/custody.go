package custody

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	custodiaCommon "github.com/custodia-chain/custodia/common"
	"github.com/custodia-chain/custodia/etherman"
	"github.com/custodia-chain/custodia/identity"
	"github.com/custodia-chain/custodia/inventory"
	"github.com/custodia-chain/custodia/log"
	"github.com/ethereum/go-ethereum/common"
)

const (
	opCreate   = "create"
	opTransfer = "transfer"
	opReceive  = "receive"
)

// Ledger is the authoritative-chain slice the manager depends on. Guards run
// against the ledger, never against the projection.
type Ledger interface {
	CreateBatch(ctx context.Context, id custodiaCommon.BatchID, ewayBillNo, location string) (common.Hash, error)
	TransferBatch(ctx context.Context, id custodiaCommon.BatchID, to common.Address, location string) (common.Hash, error)
	ReceiveBatch(ctx context.Context, id custodiaCommon.BatchID, location string) (common.Hash, error)
	GetBatch(ctx context.Context, id custodiaCommon.BatchID) (etherman.Batch, error)
	RoleOf(ctx context.Context, wallet common.Address) (custodiaCommon.Role, bool, error)
}

// Storage is the projection slice the manager writes through.
type Storage interface {
	UpsertBatch(ctx context.Context, batch inventory.BatchRow) error
	UpdateHolderAndStatus(
		ctx context.Context,
		batchID custodiaCommon.BatchID,
		holder, intendedRecipient common.Address,
		status custodiaCommon.BatchStatus,
		location string,
	) error
	DeleteBatch(ctx context.Context, batchID custodiaCommon.BatchID) error
	GetBatch(ctx context.Context, batchID custodiaCommon.BatchID) (inventory.BatchRow, error)
	GetBatchesForRole(ctx context.Context, role custodiaCommon.Role, wallet common.Address) ([]*inventory.BatchRow, error)
	AddHistoryEvent(ctx context.Context, event inventory.HistoryRow) error
	GetHistory(ctx context.Context, batchID custodiaCommon.BatchID) ([]*inventory.HistoryRow, error)
	RecordGap(ctx context.Context, gap inventory.GapRow) error
}

// IdentityResolver maps a principal to its acting role and wallet.
type IdentityResolver interface {
	Resolve(ctx context.Context, principalID string) (identity.Identity, error)
}

// CreateBatchParams is the manufacturer-supplied input of a batch creation.
// ProductName, EwayBillNo and Location are required; the rest is off-chain
// detail mirrored only into the projection.
type CreateBatchParams struct {
	ProductName     string
	EwayBillNo      string
	Location        string
	InternalBatchNo string
	Quantity        uint64
	Cost            uint64
	Description     string
}

func (p CreateBatchParams) validate() error {
	if p.ProductName == "" {
		return fmt.Errorf("%w: product name is required", ErrInvalidParams)
	}
	if p.EwayBillNo == "" {
		return fmt.Errorf("%w: eway bill number is required", ErrInvalidParams)
	}
	if p.Location == "" {
		return fmt.Errorf("%w: location is required", ErrInvalidParams)
	}

	return nil
}

// Manager drives the batch custody state machine: every transition is
// committed on the ledger first and mirrored into the projection after
// confirmation. A projection write that fails after the ledger committed is a
// consistency gap: recorded for the reconciler and surfaced to the caller.
type Manager struct {
	logger   *log.Logger
	ledger   Ledger
	storage  Storage
	resolver IdentityResolver
}

func NewManager(logger *log.Logger, ledger Ledger, storage Storage, resolver IdentityResolver) *Manager {
	return &Manager{
		logger:   logger,
		ledger:   ledger,
		storage:  storage,
		resolver: resolver,
	}
}

// CreateBatch registers a new batch under a fresh id, held by its creator in
// Received state. Manufacturer only. The projection row is inserted before the
// ledger write and compensated away if the ledger rejects it, so a ledger
// failure never leaves an orphan row behind.
func (m *Manager) CreateBatch(
	ctx context.Context, principalID string, params CreateBatchParams,
) (inventory.BatchRow, error) {
	if err := params.validate(); err != nil {
		return inventory.BatchRow{}, err
	}
	actor, err := m.resolver.Resolve(ctx, principalID)
	if err != nil {
		return inventory.BatchRow{}, err
	}
	if actor.Role != custodiaCommon.RoleManufacturer {
		return inventory.BatchRow{}, fmt.Errorf(
			"%w: only manufacturers create batches, %s acts as %s",
			ErrNotAuthorized, principalID, actor.Role,
		)
	}

	id := custodiaCommon.NewBatchID()
	row := inventory.BatchRow{
		BatchID:             id,
		ProductName:         params.ProductName,
		ManufacturerWallet:  actor.Wallet,
		CurrentHolderWallet: actor.Wallet,
		Status:              custodiaCommon.StatusReceived,
		EwayBillNo:          params.EwayBillNo,
		CurrentLocation:     params.Location,
		InternalBatchNo:     params.InternalBatchNo,
		Quantity:            params.Quantity,
		Cost:                params.Cost,
		Description:         params.Description,
	}
	if err := m.storage.UpsertBatch(ctx, row); err != nil {
		return inventory.BatchRow{}, fmt.Errorf("error inserting provisional batch row: %w", err)
	}

	txHash, err := m.ledger.CreateBatch(ctx, id, params.EwayBillNo, params.Location)
	if err != nil {
		if errors.Is(err, etherman.ErrTxIndeterminate) {
			// the tx may still land; leave the row for the reconciler to settle
			m.logger.Warnf("indeterminate createBatch tx for batch %s: %v", id, err)
			m.recordGap(ctx, id, opCreate, txHash, custodiaCommon.StatusReceived)

			return inventory.BatchRow{}, err
		}
		// compensating delete of the provisional row
		if errDel := m.storage.DeleteBatch(ctx, id); errDel != nil {
			m.logger.Errorf("error compensating provisional row of batch %s: %v", id, errDel)
		}

		return inventory.BatchRow{}, err
	}

	m.appendHistory(ctx, id, etherman.HistoryCreated.String(), actor.Wallet, map[string]string{
		"location": params.Location,
		"txHash":   txHash.Hex(),
	})

	stored, err := m.storage.GetBatch(ctx, id)
	if err != nil {
		m.logger.Errorf("error re-reading created batch %s: %v", id, err)

		return row, nil
	}

	return stored, nil
}

// TransferBatch puts a batch in transit towards the recipient wallet. Guards
// run against the current ledger snapshot: the caller must hold the batch in
// Received state and the role pair must be compatible. The holder row keeps
// the sender as current holder while in transit.
func (m *Manager) TransferBatch(
	ctx context.Context,
	principalID string,
	batchID custodiaCommon.BatchID,
	to common.Address,
	location string,
) error {
	if to == (common.Address{}) {
		return fmt.Errorf("%w: recipient wallet is required", ErrInvalidParams)
	}
	actor, err := m.resolver.Resolve(ctx, principalID)
	if err != nil {
		return err
	}
	if to == actor.Wallet {
		return fmt.Errorf("%w: cannot transfer a batch to its current holder", ErrInvalidParams)
	}

	batch, err := m.ledger.GetBatch(ctx, batchID)
	if err != nil {
		return err
	}
	if batch.IsZero() {
		return fmt.Errorf("%w: %s", ErrBatchNotFound, batchID)
	}
	if batch.Status != custodiaCommon.StatusReceived {
		return fmt.Errorf("%w: batch %s is %s", etherman.ErrBatchNotReceivedState, batchID, batch.Status)
	}
	if batch.CurrentHolder != actor.Wallet {
		return fmt.Errorf(
			"%w: batch %s is held by %s",
			etherman.ErrNotCurrentHolder, batchID, batch.CurrentHolder.Hex(),
		)
	}

	senderRole, ok, err := m.ledger.RoleOf(ctx, actor.Wallet)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: sender %s", ErrNotAuthorized, actor.Wallet.Hex())
	}
	recipientRole, ok, err := m.ledger.RoleOf(ctx, to)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrRecipientWithoutRole, to.Hex())
	}
	if !custodiaCommon.RoleCanTransferTo(senderRole, recipientRole) {
		return fmt.Errorf(
			"%w: %s cannot transfer to %s",
			etherman.ErrIncompatibleRoleTransfer, senderRole, recipientRole,
		)
	}

	txHash, err := m.ledger.TransferBatch(ctx, batchID, to, location)
	if err != nil {
		if errors.Is(err, etherman.ErrTxIndeterminate) {
			// the tx may still mine InTransit; queue a gap so the
			// reconciler settles whichever way it lands
			m.logger.Warnf("indeterminate transferBatch tx for batch %s: %v", batchID, err)
			m.recordGap(ctx, batchID, opTransfer, txHash, custodiaCommon.StatusInTransit)
		}

		return err
	}

	err = m.storage.UpdateHolderAndStatus(
		ctx, batchID, batch.CurrentHolder, to, custodiaCommon.StatusInTransit, location,
	)
	if err != nil {
		return m.consistencyGap(ctx, batchID, opTransfer, txHash, custodiaCommon.StatusInTransit, err)
	}

	m.appendHistory(ctx, batchID, etherman.HistoryTransferred.String(), actor.Wallet, map[string]string{
		"to":       to.Hex(),
		"location": location,
		"txHash":   txHash.Hex(),
	})

	return nil
}

// ReceiveBatch completes an in-transit transfer. Only the intended recipient
// of an InTransit batch may receive it; custody then settles on the recipient
// in Received state.
func (m *Manager) ReceiveBatch(
	ctx context.Context,
	principalID string,
	batchID custodiaCommon.BatchID,
	location string,
) error {
	actor, err := m.resolver.Resolve(ctx, principalID)
	if err != nil {
		return err
	}

	batch, err := m.ledger.GetBatch(ctx, batchID)
	if err != nil {
		return err
	}
	if batch.IsZero() {
		return fmt.Errorf("%w: %s", ErrBatchNotFound, batchID)
	}
	if batch.Status != custodiaCommon.StatusInTransit {
		return fmt.Errorf("%w: batch %s is %s", etherman.ErrBatchNotInTransit, batchID, batch.Status)
	}
	if batch.IntendedRecipient != actor.Wallet {
		return fmt.Errorf(
			"%w: batch %s is addressed to %s",
			etherman.ErrNotIntendedRecipient, batchID, batch.IntendedRecipient.Hex(),
		)
	}

	txHash, err := m.ledger.ReceiveBatch(ctx, batchID, location)
	if err != nil {
		if errors.Is(err, etherman.ErrTxIndeterminate) {
			m.logger.Warnf("indeterminate receiveBatch tx for batch %s: %v", batchID, err)
			m.recordGap(ctx, batchID, opReceive, txHash, custodiaCommon.StatusReceived)
		}

		return err
	}

	err = m.storage.UpdateHolderAndStatus(
		ctx, batchID, actor.Wallet, common.Address{}, custodiaCommon.StatusReceived, location,
	)
	if err != nil {
		return m.consistencyGap(ctx, batchID, opReceive, txHash, custodiaCommon.StatusReceived, err)
	}

	m.appendHistory(ctx, batchID, etherman.HistoryReceived.String(), actor.Wallet, map[string]string{
		"location": location,
		"txHash":   txHash.Hex(),
	})

	return nil
}

// GetBatch returns the projection row of a batch.
func (m *Manager) GetBatch(
	ctx context.Context, batchID custodiaCommon.BatchID,
) (inventory.BatchRow, error) {
	return m.storage.GetBatch(ctx, batchID)
}

// ListBatches returns the batches visible to the principal: manufacturers see
// every batch, other roles see batches they created, hold or are due to
// receive.
func (m *Manager) ListBatches(
	ctx context.Context, principalID string,
) ([]*inventory.BatchRow, error) {
	actor, err := m.resolver.Resolve(ctx, principalID)
	if err != nil {
		return nil, err
	}

	return m.storage.GetBatchesForRole(ctx, actor.Role, actor.Wallet)
}

// History returns the off-chain audit trail of a batch, oldest first.
func (m *Manager) History(
	ctx context.Context, batchID custodiaCommon.BatchID,
) ([]*inventory.HistoryRow, error) {
	return m.storage.GetHistory(ctx, batchID)
}

// consistencyGap queues the gap and builds the loud error the caller gets. The
// ledger already committed at this point, so the gap is the only honest answer.
func (m *Manager) consistencyGap(
	ctx context.Context,
	batchID custodiaCommon.BatchID,
	operation string,
	txHash common.Hash,
	ledgerStatus custodiaCommon.BatchStatus,
	cause error,
) error {
	m.recordGap(ctx, batchID, operation, txHash, ledgerStatus)

	return &ConsistencyGapError{
		BatchID:      batchID,
		Operation:    operation,
		TxHash:       txHash,
		LedgerStatus: ledgerStatus,
		Err:          cause,
	}
}

func (m *Manager) recordGap(
	ctx context.Context,
	batchID custodiaCommon.BatchID,
	operation string,
	txHash common.Hash,
	ledgerStatus custodiaCommon.BatchStatus,
) {
	err := m.storage.RecordGap(ctx, inventory.GapRow{
		BatchID:      batchID,
		Operation:    operation,
		TxHash:       txHash,
		LedgerStatus: ledgerStatus.String(),
	})
	if err != nil {
		m.logger.Errorf("error recording consistency gap for batch %s: %v", batchID, err)
	}
}

// appendHistory is a best-effort secondary effect: a failed audit write never
// rolls back custody state.
func (m *Manager) appendHistory(
	ctx context.Context,
	batchID custodiaCommon.BatchID,
	eventType string,
	actor common.Address,
	details map[string]string,
) {
	encoded, err := json.Marshal(details)
	if err != nil {
		m.logger.Errorf("error encoding history details for batch %s: %v", batchID, err)
		encoded = []byte("{}")
	}
	err = m.storage.AddHistoryEvent(ctx, inventory.HistoryRow{
		BatchID:      batchID,
		EventType:    eventType,
		ActorAddress: actor,
		Details:      string(encoded),
	})
	if err != nil {
		m.logger.Errorf("error appending %s history of batch %s: %v", eventType, batchID, err)
	}
}
