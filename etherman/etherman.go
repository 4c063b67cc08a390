package etherman

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	ethtxtypes "github.com/0xPolygon/zkevm-ethtx-manager/types"
	custodiaCommon "github.com/custodia-chain/custodia/common"
	"github.com/custodia-chain/custodia/log"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// EthClienter is the interface the underlying node client must satisfy.
type EthClienter interface {
	ethereum.LogFilterer
	ethereum.BlockNumberReader
	ethereum.ChainReader
	ethereum.ContractCaller
	bind.ContractBackend
}

// EthTxManager submits txs to the pending pool and monitors them until they
// conclude.
type EthTxManager interface {
	Remove(ctx context.Context, id common.Hash) error
	ResultsByStatus(ctx context.Context,
		statuses []ethtxtypes.MonitoredTxStatus,
	) ([]ethtxtypes.MonitoredTxResult, error)
	Result(ctx context.Context, id common.Hash) (ethtxtypes.MonitoredTxResult, error)
	Add(ctx context.Context,
		to *common.Address,
		value *big.Int,
		data []byte,
		gasOffset uint64,
		sidecar *types.BlobTxSidecar,
	) (common.Hash, error)
}

// Client is the typed interface to the SupplyChain contract, the authoritative
// ledger of batch custody. State-changing calls submit through the tx manager
// and block until the tx is mined or the context gives up (indeterminate).
type Client struct {
	logger              *log.Logger
	client              EthClienter
	ethTxMan            EthTxManager
	abi                 abi.ABI
	contract            *bind.BoundContract
	addr                common.Address
	sender              common.Address
	gasOffset           uint64
	waitPeriodMonitorTx time.Duration
	confirmationTimeout time.Duration
}

// NewClient builds a ledger client against the registry at cfg.BatchRegistryAddr.
func NewClient(
	logger *log.Logger,
	cfg Config,
	ethClient EthClienter,
	ethTxMan EthTxManager,
) (*Client, error) {
	parsedABI, err := abi.JSON(strings.NewReader(supplyChainABI))
	if err != nil {
		return nil, fmt.Errorf("error parsing SupplyChain ABI: %w", err)
	}
	contract := bind.NewBoundContract(cfg.BatchRegistryAddr, parsedABI, ethClient, ethClient, ethClient)

	return &Client{
		logger:              logger,
		client:              ethClient,
		ethTxMan:            ethTxMan,
		abi:                 parsedABI,
		contract:            contract,
		addr:                cfg.BatchRegistryAddr,
		sender:              cfg.SenderAddr,
		gasOffset:           cfg.GasOffset,
		waitPeriodMonitorTx: cfg.WaitPeriodMonitorTx.Duration,
		confirmationTimeout: cfg.ConfirmationTimeout.Duration,
	}, nil
}

// CreateBatch registers a new batch held by the creator. The caller's wallet
// must hold the manufacturer role on chain.
func (c *Client) CreateBatch(
	ctx context.Context, id custodiaCommon.BatchID, ewayBillNo, location string,
) (common.Hash, error) {
	return c.sendAndWait(ctx, "createBatch", [16]byte(id), ewayBillNo, location)
}

// TransferBatch puts the batch in transit towards to. The contract enforces
// that the sender is the current holder and that the role pair is compatible.
func (c *Client) TransferBatch(
	ctx context.Context, id custodiaCommon.BatchID, to common.Address, location string,
) (common.Hash, error) {
	return c.sendAndWait(ctx, "transferBatch", [16]byte(id), to, location)
}

// ReceiveBatch completes an in-transit custody transfer. The contract enforces
// that the sender is the intended recipient.
func (c *Client) ReceiveBatch(
	ctx context.Context, id custodiaCommon.BatchID, location string,
) (common.Hash, error) {
	return c.sendAndWait(ctx, "receiveBatch", [16]byte(id), location)
}

// GrantRole grants the distributor or retailer role to wallet. Granting an
// already-granted role is a no-op success on the contract side.
func (c *Client) GrantRole(
	ctx context.Context, wallet common.Address, role custodiaCommon.Role,
) (common.Hash, error) {
	method, err := roleMethod(role, "grant")
	if err != nil {
		return common.Hash{}, err
	}
	return c.sendAndWait(ctx, method, wallet)
}

// RevokeRole revokes the distributor or retailer role from wallet.
func (c *Client) RevokeRole(
	ctx context.Context, wallet common.Address, role custodiaCommon.Role,
) (common.Hash, error) {
	method, err := roleMethod(role, "revoke")
	if err != nil {
		return common.Hash{}, err
	}
	return c.sendAndWait(ctx, method, wallet)
}

func roleMethod(role custodiaCommon.Role, op string) (string, error) {
	switch role {
	case custodiaCommon.RoleDistributor:
		return op + "DistributorRole", nil
	case custodiaCommon.RoleRetailer:
		return op + "RetailerRole", nil
	case custodiaCommon.RoleManufacturer:
		return "", ErrManufacturerRoleImmutable
	default:
		return "", fmt.Errorf("%w: %s", custodiaCommon.ErrUnknownRole, role)
	}
}

// sendAndWait dry-runs the call to surface revert reasons synchronously,
// submits it through the tx manager and waits until it concludes. A context
// cancellation during the wait yields ErrTxIndeterminate: the tx cannot be
// retracted once broadcast.
func (c *Client) sendAndWait(ctx context.Context, method string, args ...interface{}) (common.Hash, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("error packing %s: %w", method, err)
	}

	_, err = c.client.CallContract(ctx, ethereum.CallMsg{
		From: c.sender,
		To:   &c.addr,
		Data: data,
	}, nil)
	if err != nil {
		if parsedErr, ok := TryParseError(err); ok {
			return common.Hash{}, parsedErr
		}
		return common.Hash{}, fmt.Errorf("error on eth_call for %s: %w", method, err)
	}

	id, err := c.ethTxMan.Add(ctx, &c.addr, big.NewInt(0), data, c.gasOffset, nil)
	if err != nil {
		return common.Hash{}, fmt.Errorf("error adding %s tx to ethTxManager: %w", method, err)
	}

	waitCtx := ctx
	if c.confirmationTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, c.confirmationTimeout)
		defer cancel()
	}
	if err := c.waitTxToBeMined(waitCtx, id); err != nil {
		return id, err
	}

	return id, nil
}

func (c *Client) waitTxToBeMined(ctx context.Context, id common.Hash) error {
	t := time.NewTicker(c.waitPeriodMonitorTx)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: tx %s", ErrTxIndeterminate, id.Hex())
		case <-t.C:
			c.logger.Debugf("waiting for tx %s to be mined", id.Hex())
			res, err := c.ethTxMan.Result(ctx, id)
			if err != nil {
				c.logger.Error("error calling ethTxMan.Result: ", err)
				continue
			}
			switch res.Status {
			case ethtxtypes.MonitoredTxStatusCreated,
				ethtxtypes.MonitoredTxStatusSent:
				continue
			case ethtxtypes.MonitoredTxStatusFailed:
				return fmt.Errorf("%w: tx %s", ErrTxFailed, id.Hex())
			case ethtxtypes.MonitoredTxStatusMined,
				ethtxtypes.MonitoredTxStatusSafe,
				ethtxtypes.MonitoredTxStatusFinalized:
				return nil
			default:
				c.logger.Error("unexpected tx status: ", res.Status)
			}
		}
	}
}

// GetBatch returns the current ledger snapshot of the batch. Absent batches
// come back as the zero-value sentinel, not as an error.
func (c *Client) GetBatch(ctx context.Context, id custodiaCommon.BatchID) (Batch, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getBatch", [16]byte(id))
	if err != nil {
		return Batch{}, fmt.Errorf("error calling getBatch: %w", err)
	}
	raw := *abi.ConvertType(out[0], new(contractBatch)).(*contractBatch)

	return Batch{
		ID:                custodiaCommon.BatchID(raw.Id),
		Creator:           raw.Creator,
		CurrentHolder:     raw.CurrentHolder,
		IntendedRecipient: raw.IntendedRecipient,
		Status:            custodiaCommon.BatchStatus(raw.Status),
		EwayBillNo:        raw.EwayBillNo,
		CurrentLocation:   raw.CurrentLocation,
		CreatedAt:         raw.CreatedAt,
		UpdatedAt:         raw.UpdatedAt,
	}, nil
}

// GetBatchHistory returns the contract-native custody log of the batch in
// emission order. Re-reading is idempotent.
func (c *Client) GetBatchHistory(
	ctx context.Context, id custodiaCommon.BatchID,
) ([]HistoryEvent, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getBatchHistory", [16]byte(id))
	if err != nil {
		return nil, fmt.Errorf("error calling getBatchHistory: %w", err)
	}
	raw := *abi.ConvertType(out[0], new([]contractHistoryEvent)).(*[]contractHistoryEvent)

	events := make([]HistoryEvent, 0, len(raw))
	for _, e := range raw {
		events = append(events, HistoryEvent{
			EventType: HistoryEventType(e.EventType),
			Actor:     e.Actor,
			Location:  e.Location,
			Timestamp: e.Timestamp,
		})
	}

	return events, nil
}

// IsManufacturer reports whether wallet holds the manufacturer role on chain.
func (c *Client) IsManufacturer(ctx context.Context, wallet common.Address) (bool, error) {
	return c.hasRole(ctx, "isManufacturer", wallet)
}

// IsDistributor reports whether wallet holds the distributor role on chain.
func (c *Client) IsDistributor(ctx context.Context, wallet common.Address) (bool, error) {
	return c.hasRole(ctx, "isDistributor", wallet)
}

// IsRetailer reports whether wallet holds the retailer role on chain.
func (c *Client) IsRetailer(ctx context.Context, wallet common.Address) (bool, error) {
	return c.hasRole(ctx, "isRetailer", wallet)
}

func (c *Client) hasRole(ctx context.Context, method string, wallet common.Address) (bool, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, wallet)
	if err != nil {
		return false, fmt.Errorf("error calling %s: %w", method, err)
	}

	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// RoleOf resolves the on-chain role of wallet. The second return is false when
// the wallet holds none of the three roles.
func (c *Client) RoleOf(ctx context.Context, wallet common.Address) (custodiaCommon.Role, bool, error) {
	checks := []struct {
		method string
		role   custodiaCommon.Role
	}{
		{"isManufacturer", custodiaCommon.RoleManufacturer},
		{"isDistributor", custodiaCommon.RoleDistributor},
		{"isRetailer", custodiaCommon.RoleRetailer},
	}
	for _, check := range checks {
		ok, err := c.hasRole(ctx, check.method, wallet)
		if err != nil {
			return "", false, err
		}
		if ok {
			return check.role, true, nil
		}
	}

	return "", false, nil
}

// ParseBatchCreated scans receipt logs for the BatchCreated event and decodes
// the assigned batch id.
func (c *Client) ParseBatchCreated(receipt *types.Receipt) (*BatchCreatedEvent, error) {
	eventID := c.abi.Events["BatchCreated"].ID
	for _, vLog := range receipt.Logs {
		if vLog.Address != c.addr || len(vLog.Topics) < 3 || vLog.Topics[0] != eventID {
			continue
		}
		id, err := custodiaCommon.BatchIDFromBytes(vLog.Topics[1][:custodiaCommon.BatchIDLength])
		if err != nil {
			return nil, err
		}

		return &BatchCreatedEvent{
			BatchID: id,
			Creator: common.BytesToAddress(vLog.Topics[2].Bytes()),
		}, nil
	}

	return nil, fmt.Errorf("no BatchCreated event found in receipt %s", receipt.TxHash.Hex())
}
