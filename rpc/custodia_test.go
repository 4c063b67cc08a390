package rpc

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/0xPolygon/cdk-rpc/rpc"
	custodiaCommon "github.com/custodia-chain/custodia/common"
	"github.com/custodia-chain/custodia/custody"
	"github.com/custodia-chain/custodia/etherman"
	"github.com/custodia-chain/custodia/inventory"
	"github.com/custodia-chain/custodia/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

type fakeCustody struct {
	rows        map[custodiaCommon.BatchID]inventory.BatchRow
	transferErr error
	lastTo      common.Address
}

func (f *fakeCustody) CreateBatch(
	_ context.Context, _ string, params custody.CreateBatchParams,
) (inventory.BatchRow, error) {
	row := inventory.BatchRow{
		BatchID:             custodiaCommon.NewBatchID(),
		ProductName:         params.ProductName,
		ManufacturerWallet:  common.HexToAddress("0x1111"),
		CurrentHolderWallet: common.HexToAddress("0x1111"),
		Status:              custodiaCommon.StatusReceived,
		EwayBillNo:          params.EwayBillNo,
		CurrentLocation:     params.Location,
	}
	f.rows[row.BatchID] = row

	return row, nil
}

func (f *fakeCustody) TransferBatch(
	_ context.Context, _ string, _ custodiaCommon.BatchID, to common.Address, _ string,
) error {
	f.lastTo = to

	return f.transferErr
}

func (f *fakeCustody) ReceiveBatch(
	_ context.Context, _ string, _ custodiaCommon.BatchID, _ string,
) error {
	return nil
}

func (f *fakeCustody) GetBatch(
	_ context.Context, batchID custodiaCommon.BatchID,
) (inventory.BatchRow, error) {
	row, ok := f.rows[batchID]
	if !ok {
		return inventory.BatchRow{}, custody.ErrBatchNotFound
	}

	return row, nil
}

func (f *fakeCustody) ListBatches(
	_ context.Context, _ string,
) ([]*inventory.BatchRow, error) {
	var rows []*inventory.BatchRow
	for id := range f.rows {
		row := f.rows[id]
		rows = append(rows, &row)
	}

	return rows, nil
}

func (f *fakeCustody) History(
	_ context.Context, batchID custodiaCommon.BatchID,
) ([]*inventory.HistoryRow, error) {
	return []*inventory.HistoryRow{
		{BatchID: batchID, EventType: "Created", ActorAddress: common.HexToAddress("0x1111")},
	}, nil
}

type fakeRoles struct {
	granted map[string]custodiaCommon.Role
}

func (f *fakeRoles) Grant(
	_ context.Context, _ string, wallet common.Address, role custodiaCommon.Role,
) error {
	f.granted[wallet.Hex()] = role

	return nil
}

func (f *fakeRoles) Revoke(
	_ context.Context, _ string, wallet common.Address, _ custodiaCommon.Role,
) error {
	delete(f.granted, wallet.Hex())

	return nil
}

type fakeTokens struct{}

func (fakeTokens) TokenFor(id custodiaCommon.BatchID) string {
	return "token-" + id.String()
}

func (fakeTokens) TrackingURL(id custodiaCommon.BatchID) string {
	return "https://track.example.com/track/" + id.String()
}

func newTestEndpoints(t *testing.T) (*CustodiaEndpoints, *fakeCustody, *fakeRoles) {
	t.Helper()
	custodyManager := &fakeCustody{rows: map[custodiaCommon.BatchID]inventory.BatchRow{}}
	roles := &fakeRoles{granted: map[string]custodiaCommon.Role{}}
	endpoints := NewCustodiaEndpoints(
		log.WithFields("test", t.Name()),
		time.Second, time.Second,
		custodyManager, roles, fakeTokens{},
	)

	return endpoints, custodyManager, roles
}

func TestCreateAndGetBatchEndpoint(t *testing.T) {
	endpoints, _, _ := newTestEndpoints(t)

	res, rpcErr := endpoints.CreateBatch("mfg", CreateBatchRequest{
		ProductName: "paracetamol 500mg",
		EwayBillNo:  "EW-12345",
		Location:    "Mumbai Plant",
	})
	require.Nil(t, rpcErr)
	info, ok := res.(BatchInfo)
	require.True(t, ok)
	require.Equal(t, "Received", info.Status)
	require.NotEmpty(t, info.TrackingURL)
	require.Empty(t, info.IntendedRecipient)

	res, rpcErr = endpoints.GetBatch(info.BatchID)
	require.Nil(t, rpcErr)
	got, ok := res.(BatchInfo)
	require.True(t, ok)
	require.Equal(t, info.BatchID, got.BatchID)
}

func TestTransferBatchEndpointValidation(t *testing.T) {
	endpoints, custodyManager, _ := newTestEndpoints(t)
	id := custodiaCommon.NewBatchID()

	_, rpcErr := endpoints.TransferBatch("mfg", "not-an-id", "0x2222", "loc")
	require.NotNil(t, rpcErr)
	require.Contains(t, rpcErr.Error(), "invalid batch id")

	_, rpcErr = endpoints.TransferBatch("mfg", id.String(), "not-an-address", "loc")
	require.NotNil(t, rpcErr)
	require.Contains(t, rpcErr.Error(), "invalid recipient address")

	_, rpcErr = endpoints.TransferBatch(
		"mfg", id.String(), "0x0000000000000000000000000000000000002222", "loc",
	)
	require.Nil(t, rpcErr)
	require.Equal(t, common.HexToAddress("0x2222"), custodyManager.lastTo)

	custodyManager.transferErr = custody.ErrBatchNotFound
	_, rpcErr = endpoints.TransferBatch(
		"mfg", id.String(), "0x0000000000000000000000000000000000002222", "loc",
	)
	require.NotNil(t, rpcErr)
	require.Contains(t, rpcErr.Error(), "batch not found")
}

func TestTransferBatchEndpointErrorCodes(t *testing.T) {
	endpoints, custodyManager, _ := newTestEndpoints(t)
	id := custodiaCommon.NewBatchID()
	recipient := "0x0000000000000000000000000000000000002222"

	custodyManager.transferErr = &custody.ConsistencyGapError{
		BatchID:      id,
		Operation:    "transfer",
		TxHash:       common.HexToHash("0xaa"),
		LedgerStatus: custodiaCommon.StatusInTransit,
		Err:          errors.New("disk full"),
	}
	_, rpcErr := endpoints.TransferBatch("mfg", id.String(), recipient, "loc")
	require.NotNil(t, rpcErr)
	require.Equal(t, ConsistencyGapErrorCode, rpcErr.ErrorCode())

	custodyManager.transferErr = fmt.Errorf("%w: tx 0xabc", etherman.ErrTxIndeterminate)
	_, rpcErr = endpoints.TransferBatch("mfg", id.String(), recipient, "loc")
	require.NotNil(t, rpcErr)
	require.Equal(t, TxIndeterminateErrorCode, rpcErr.ErrorCode())

	// everything else stays on the default code
	custodyManager.transferErr = custody.ErrBatchNotFound
	_, rpcErr = endpoints.TransferBatch("mfg", id.String(), recipient, "loc")
	require.NotNil(t, rpcErr)
	require.Equal(t, rpc.DefaultErrorCode, rpcErr.ErrorCode())
}

func TestGetBatchEndpointNotFound(t *testing.T) {
	endpoints, _, _ := newTestEndpoints(t)

	_, rpcErr := endpoints.GetBatch(custodiaCommon.NewBatchID().String())
	require.NotNil(t, rpcErr)
	require.Contains(t, rpcErr.Error(), "batch not found")
}

func TestRoleEndpoints(t *testing.T) {
	endpoints, _, roles := newTestEndpoints(t)
	wallet := "0x0000000000000000000000000000000000002222"

	_, rpcErr := endpoints.GrantRole("mfg", "nope", "distributor")
	require.NotNil(t, rpcErr)
	require.Contains(t, rpcErr.Error(), "invalid wallet address")

	_, rpcErr = endpoints.GrantRole("mfg", wallet, "auditor")
	require.NotNil(t, rpcErr)
	require.Contains(t, rpcErr.Error(), "invalid role")

	_, rpcErr = endpoints.GrantRole("mfg", wallet, "distributor")
	require.Nil(t, rpcErr)
	require.Equal(t, custodiaCommon.RoleDistributor, roles.granted[common.HexToAddress(wallet).Hex()])

	_, rpcErr = endpoints.RevokeRole("mfg", wallet, "distributor")
	require.Nil(t, rpcErr)
	require.Empty(t, roles.granted)
}

func TestTrackingTokenEndpoint(t *testing.T) {
	endpoints, _, _ := newTestEndpoints(t)
	id := custodiaCommon.NewBatchID()

	res, rpcErr := endpoints.TrackingToken(id.String())
	require.Nil(t, rpcErr)
	info, ok := res.(TrackingInfo)
	require.True(t, ok)
	require.Equal(t, id.String(), info.BatchID)
	require.Equal(t, "token-"+id.String(), info.Token)

	_, rpcErr = endpoints.TrackingToken("xyz")
	require.NotNil(t, rpcErr)
}

func TestBatchHistoryEndpoint(t *testing.T) {
	endpoints, _, _ := newTestEndpoints(t)
	id := custodiaCommon.NewBatchID()

	res, rpcErr := endpoints.BatchHistory(id.String())
	require.Nil(t, rpcErr)
	events, ok := res.([]HistoryEntry)
	require.True(t, ok)
	require.Len(t, events, 1)
	require.Equal(t, "Created", events[0].EventType)
}
