package inventory

import (
	"context"
	"path"
	"testing"

	custodiaCommon "github.com/custodia-chain/custodia/common"
	"github.com/custodia-chain/custodia/db"
	"github.com/custodia-chain/custodia/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *SQLStorage {
	t.Helper()
	dbPath := path.Join(t.TempDir(), "inventoryTest.sqlite")
	storage, err := NewSQLStorage(log.WithFields("test", t.Name()), dbPath)
	require.NoError(t, err)

	return storage
}

func testBatch(id custodiaCommon.BatchID) BatchRow {
	return BatchRow{
		BatchID:             id,
		ProductName:         "paracetamol 500mg",
		ManufacturerWallet:  common.HexToAddress("0x1111"),
		CurrentHolderWallet: common.HexToAddress("0x1111"),
		Status:              custodiaCommon.StatusReceived,
		EwayBillNo:          "EW-12345",
		CurrentLocation:     "Mumbai Warehouse",
		InternalBatchNo:     "MFG-001",
		Quantity:            100,
		Cost:                5000,
	}
}

func TestUpsertAndGetBatch(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	id := custodiaCommon.NewBatchID()

	_, err := storage.GetBatch(ctx, id)
	require.ErrorIs(t, err, db.ErrNotFound)

	batch := testBatch(id)
	require.NoError(t, storage.UpsertBatch(ctx, batch))

	got, err := storage.GetBatch(ctx, id)
	require.NoError(t, err)
	require.Equal(t, batch.BatchID, got.BatchID)
	require.Equal(t, batch.ProductName, got.ProductName)
	require.Equal(t, custodiaCommon.StatusReceived, got.Status)
	require.NotZero(t, got.CreatedAt)

	// upsert on the same id replaces, does not duplicate
	batch.CurrentLocation = "Pune Warehouse"
	require.NoError(t, storage.UpsertBatch(ctx, batch))
	got, err = storage.GetBatch(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Pune Warehouse", got.CurrentLocation)

	all, err := storage.GetBatchesForRole(ctx, custodiaCommon.RoleManufacturer, common.Address{})
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestUpdateHolderAndStatus(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	id := custodiaCommon.NewBatchID()
	recipient := common.HexToAddress("0x2222")

	err := storage.UpdateHolderAndStatus(
		ctx, id, common.HexToAddress("0x1111"), recipient,
		custodiaCommon.StatusInTransit, "in transit",
	)
	require.ErrorIs(t, err, db.ErrNotFound)

	require.NoError(t, storage.UpsertBatch(ctx, testBatch(id)))
	require.NoError(t, storage.UpdateHolderAndStatus(
		ctx, id, common.HexToAddress("0x1111"), recipient,
		custodiaCommon.StatusInTransit, "in transit",
	))

	got, err := storage.GetBatch(ctx, id)
	require.NoError(t, err)
	require.Equal(t, custodiaCommon.StatusInTransit, got.Status)
	require.Equal(t, recipient, got.IntendedRecipientWallet)
}

func TestGetBatchesForWalletUnion(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	manufacturer := common.HexToAddress("0x1111")
	distributor := common.HexToAddress("0x2222")

	created := testBatch(custodiaCommon.NewBatchID())
	require.NoError(t, storage.UpsertBatch(ctx, created))

	inTransit := testBatch(custodiaCommon.NewBatchID())
	inTransit.Status = custodiaCommon.StatusInTransit
	inTransit.IntendedRecipientWallet = distributor
	require.NoError(t, storage.UpsertBatch(ctx, inTransit))

	held := testBatch(custodiaCommon.NewBatchID())
	held.CurrentHolderWallet = distributor
	held.Status = custodiaCommon.StatusReceived
	require.NoError(t, storage.UpsertBatch(ctx, held))

	// distributor sees batches held and batches inbound, not the rest
	batches, err := storage.GetBatchesForWallet(ctx, distributor)
	require.NoError(t, err)
	require.Len(t, batches, 2)

	// the manufacturer created all three
	batches, err = storage.GetBatchesForWallet(ctx, manufacturer)
	require.NoError(t, err)
	require.Len(t, batches, 3)

	batches, err = storage.GetBatchesForRole(ctx, custodiaCommon.RoleDistributor, distributor)
	require.NoError(t, err)
	require.Len(t, batches, 2)
}

func TestDeleteBatchCompensation(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	id := custodiaCommon.NewBatchID()

	require.NoError(t, storage.UpsertBatch(ctx, testBatch(id)))
	require.NoError(t, storage.DeleteBatch(ctx, id))

	_, err := storage.GetBatch(ctx, id)
	require.ErrorIs(t, err, db.ErrNotFound)

	// deleting a missing row is a no-op
	require.NoError(t, storage.DeleteBatch(ctx, id))
}

func TestProfiles(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	_, err := storage.GetProfile(ctx, "user_1")
	require.ErrorIs(t, err, db.ErrNotFound)

	profile := Profile{
		ID:            "user_1",
		Role:          custodiaCommon.RoleDistributor,
		WalletAddress: common.HexToAddress("0x2222"),
	}
	require.NoError(t, storage.UpsertProfile(ctx, profile))

	got, err := storage.GetProfile(ctx, "user_1")
	require.NoError(t, err)
	require.Equal(t, profile.Role, got.Role)
	require.Equal(t, profile.WalletAddress, got.WalletAddress)

	// upsert replaces
	profile.Role = custodiaCommon.RoleRetailer
	require.NoError(t, storage.UpsertProfile(ctx, profile))
	got, err = storage.GetProfile(ctx, "user_1")
	require.NoError(t, err)
	require.Equal(t, custodiaCommon.RoleRetailer, got.Role)
}

func TestRoleGrantFlag(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	wallet := common.HexToAddress("0x2222")

	granted, err := storage.IsRoleGranted(ctx, wallet, custodiaCommon.RoleDistributor)
	require.NoError(t, err)
	require.False(t, granted)

	require.NoError(t, storage.SetRoleGranted(ctx, wallet, custodiaCommon.RoleDistributor, true))
	granted, err = storage.IsRoleGranted(ctx, wallet, custodiaCommon.RoleDistributor)
	require.NoError(t, err)
	require.True(t, granted)

	// setting the same flag twice keeps it true with no duplicate rows
	require.NoError(t, storage.SetRoleGranted(ctx, wallet, custodiaCommon.RoleDistributor, true))
	granted, err = storage.IsRoleGranted(ctx, wallet, custodiaCommon.RoleDistributor)
	require.NoError(t, err)
	require.True(t, granted)

	require.NoError(t, storage.SetRoleGranted(ctx, wallet, custodiaCommon.RoleDistributor, false))
	granted, err = storage.IsRoleGranted(ctx, wallet, custodiaCommon.RoleDistributor)
	require.NoError(t, err)
	require.False(t, granted)
}

func TestHistoryAppendOnly(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	id := custodiaCommon.NewBatchID()

	require.NoError(t, storage.AddHistoryEvent(ctx, HistoryRow{
		BatchID:      id,
		EventType:    "Created",
		ActorAddress: common.HexToAddress("0x1111"),
		Details:      `{"location":"Mumbai Warehouse"}`,
	}))
	require.NoError(t, storage.AddHistoryEvent(ctx, HistoryRow{
		BatchID:      id,
		EventType:    "Transferred",
		ActorAddress: common.HexToAddress("0x1111"),
	}))

	events, err := storage.GetHistory(ctx, id)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "Created", events[0].EventType)
	require.Equal(t, "Transferred", events[1].EventType)
}

func TestGapQueue(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	id := custodiaCommon.NewBatchID()
	txHash := common.HexToHash("0xabcd")

	_, err := storage.NextGap(ctx)
	require.ErrorIs(t, err, db.ErrNotFound)

	gap := GapRow{
		BatchID:      id,
		Operation:    "transfer",
		TxHash:       txHash,
		LedgerStatus: custodiaCommon.StatusInTransit.String(),
	}
	require.NoError(t, storage.RecordGap(ctx, gap))
	// recording the same gap again is an idempotent no-op
	require.NoError(t, storage.RecordGap(ctx, gap))

	got, err := storage.NextGap(ctx)
	require.NoError(t, err)
	require.Equal(t, id, got.BatchID)
	require.Equal(t, "transfer", got.Operation)

	require.NoError(t, storage.ResolveGap(ctx, id, txHash))
	_, err = storage.NextGap(ctx)
	require.ErrorIs(t, err, db.ErrNotFound)

	require.ErrorIs(t, storage.ResolveGap(ctx, id, txHash), db.ErrNotFound)
}
