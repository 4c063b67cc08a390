package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	custodiaCommon "github.com/custodia-chain/custodia/common"
	"github.com/custodia-chain/custodia/db"
	"github.com/custodia-chain/custodia/inventory/migrations"
	"github.com/custodia-chain/custodia/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/russross/meddler"
)

const errWhileRollbackFormat = "error while rolling back tx: %v"

// Storage is the interface of the off-chain projection store. Writes are
// idempotent upserts keyed on batch_id; per-batch writes are serialized by the
// custody manager (every write follows a ledger confirmation).
type Storage interface {
	// UpsertBatch inserts or fully replaces the projection row of a batch
	UpsertBatch(ctx context.Context, batch BatchRow) error
	// UpdateHolderAndStatus mirrors a custody transition onto the projection.
	// Returns db.ErrNotFound when the row is absent (a consistency gap to be
	// healed by reconciliation, not by this store).
	UpdateHolderAndStatus(
		ctx context.Context,
		batchID custodiaCommon.BatchID,
		holder, intendedRecipient common.Address,
		status custodiaCommon.BatchStatus,
		location string,
	) error
	// DeleteBatch removes a projection row. Used only as the compensating
	// action when the on-chain leg of a creation fails after the provisional
	// insert.
	DeleteBatch(ctx context.Context, batchID custodiaCommon.BatchID) error
	// GetBatch returns the projection row of a batch
	GetBatch(ctx context.Context, batchID custodiaCommon.BatchID) (BatchRow, error)
	// GetBatchesForWallet returns batches where the wallet is creator, current
	// holder or intended recipient (set union)
	GetBatchesForWallet(ctx context.Context, wallet common.Address) ([]*BatchRow, error)
	// GetBatchesForRole returns the role-scoped list view: manufacturers see
	// every batch, other roles see GetBatchesForWallet
	GetBatchesForRole(ctx context.Context, role custodiaCommon.Role, wallet common.Address) ([]*BatchRow, error)

	// UpsertProfile stores the advisory principal -> (role, wallet) link
	UpsertProfile(ctx context.Context, profile Profile) error
	// GetProfile returns the profile of a principal
	GetProfile(ctx context.Context, principalID string) (Profile, error)

	// SetRoleGranted flips the cached on-chain grant flag of (wallet, role)
	SetRoleGranted(ctx context.Context, wallet common.Address, role custodiaCommon.Role, granted bool) error
	// IsRoleGranted returns the cached grant flag, false when never granted
	IsRoleGranted(ctx context.Context, wallet common.Address, role custodiaCommon.Role) (bool, error)

	// AddHistoryEvent appends an audit trail entry
	AddHistoryEvent(ctx context.Context, event HistoryRow) error
	// GetHistory returns the audit trail of a batch, oldest first
	GetHistory(ctx context.Context, batchID custodiaCommon.BatchID) ([]*HistoryRow, error)

	// RecordGap persists a detected consistency gap for the reconciler
	RecordGap(ctx context.Context, gap GapRow) error
	// NextGap returns the oldest unresolved gap, db.ErrNotFound when none
	NextGap(ctx context.Context) (GapRow, error)
	// ResolveGap marks a gap as healed
	ResolveGap(ctx context.Context, batchID custodiaCommon.BatchID, txHash common.Hash) error
}

var _ Storage = (*SQLStorage)(nil)

// SQLStorage implements Storage on SQLite.
type SQLStorage struct {
	logger *log.Logger
	db     *sql.DB
	now    func() time.Time
}

// NewSQLStorage runs the migrations and opens the projection DB.
func NewSQLStorage(logger *log.Logger, dbPath string) (*SQLStorage, error) {
	if err := migrations.RunMigrations(dbPath); err != nil {
		return nil, err
	}

	database, err := db.NewSQLiteDB(dbPath)
	if err != nil {
		return nil, err
	}

	return &SQLStorage{
		logger: logger,
		db:     database,
		now:    time.Now,
	}, nil
}

func (s *SQLStorage) UpsertBatch(ctx context.Context, batch BatchRow) error {
	tx, err := db.NewTx(ctx, s.db)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if errRllbck := tx.Rollback(); errRllbck != nil {
				s.logger.Errorf(errWhileRollbackFormat, errRllbck)
			}
		}
	}()

	existing, err := getBatch(tx, batch.BatchID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return err
	}
	if err == nil {
		// idempotent upsert: replace the existing row, keep its creation time
		if batch.CreatedAt == 0 {
			batch.CreatedAt = existing.CreatedAt
		}
		if _, err = tx.Exec(`DELETE FROM batch WHERE batch_id = $1;`, batch.BatchID.String()); err != nil {
			return err
		}
	}
	if batch.UpdatedAt == 0 {
		batch.UpdatedAt = s.now().Unix()
	}
	if batch.CreatedAt == 0 {
		batch.CreatedAt = batch.UpdatedAt
	}

	if err = meddler.Insert(tx, "batch", &batch); err != nil {
		return fmt.Errorf("error inserting batch %s: %w", batch.BatchID, err)
	}

	return tx.Commit()
}

func (s *SQLStorage) UpdateHolderAndStatus(
	ctx context.Context,
	batchID custodiaCommon.BatchID,
	holder, intendedRecipient common.Address,
	status custodiaCommon.BatchStatus,
	location string,
) error {
	res, err := s.db.Exec(`
		UPDATE batch
		SET current_holder_wallet = $1,
			intended_recipient_wallet = $2,
			status = $3,
			current_location = $4,
			updated_at = $5
		WHERE batch_id = $6;
	`, holder.Hex(), intendedRecipient.Hex(), status.String(), location, s.now().Unix(), batchID.String())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return db.ErrNotFound
	}

	return nil
}

func (s *SQLStorage) DeleteBatch(ctx context.Context, batchID custodiaCommon.BatchID) error {
	_, err := s.db.Exec(`DELETE FROM batch WHERE batch_id = $1;`, batchID.String())

	return err
}

func (s *SQLStorage) GetBatch(ctx context.Context, batchID custodiaCommon.BatchID) (BatchRow, error) {
	return getBatch(s.db, batchID)
}

func getBatch(q meddler.DB, batchID custodiaCommon.BatchID) (BatchRow, error) {
	var batch BatchRow
	if err := meddler.QueryRow(q, &batch,
		`SELECT * FROM batch WHERE batch_id = $1;`, batchID.String()); err != nil {
		return BatchRow{}, db.ReturnErrNotFound(err)
	}

	return batch, nil
}

func (s *SQLStorage) GetBatchesForWallet(
	ctx context.Context, wallet common.Address,
) ([]*BatchRow, error) {
	var batches []*BatchRow
	if err := meddler.QueryAll(s.db, &batches, `
		SELECT * FROM batch
		WHERE manufacturer_wallet = $1
			OR current_holder_wallet = $1
			OR intended_recipient_wallet = $1
		ORDER BY created_at DESC;
	`, wallet.Hex()); err != nil {
		return nil, err
	}

	return batches, nil
}

func (s *SQLStorage) GetBatchesForRole(
	ctx context.Context, role custodiaCommon.Role, wallet common.Address,
) ([]*BatchRow, error) {
	if role == custodiaCommon.RoleManufacturer {
		var batches []*BatchRow
		if err := meddler.QueryAll(s.db, &batches,
			`SELECT * FROM batch ORDER BY created_at DESC;`); err != nil {
			return nil, err
		}

		return batches, nil
	}

	return s.GetBatchesForWallet(ctx, wallet)
}

func (s *SQLStorage) UpsertProfile(ctx context.Context, profile Profile) error {
	tx, err := db.NewTx(ctx, s.db)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if errRllbck := tx.Rollback(); errRllbck != nil {
				s.logger.Errorf(errWhileRollbackFormat, errRllbck)
			}
		}
	}()

	if _, err = tx.Exec(`DELETE FROM profile WHERE id = $1;`, profile.ID); err != nil {
		return err
	}
	if err = meddler.Insert(tx, "profile", &profile); err != nil {
		return fmt.Errorf("error inserting profile %s: %w", profile.ID, err)
	}

	return tx.Commit()
}

func (s *SQLStorage) GetProfile(ctx context.Context, principalID string) (Profile, error) {
	var profile Profile
	if err := meddler.QueryRow(s.db, &profile,
		`SELECT * FROM profile WHERE id = $1;`, principalID); err != nil {
		return Profile{}, db.ReturnErrNotFound(err)
	}

	return profile, nil
}

func (s *SQLStorage) SetRoleGranted(
	ctx context.Context, wallet common.Address, role custodiaCommon.Role, granted bool,
) error {
	_, err := s.db.Exec(`
		INSERT INTO role_grant (wallet_address, role, is_granted, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (wallet_address, role)
		DO UPDATE SET is_granted = $3, updated_at = $4;
	`, wallet.Hex(), role.String(), granted, s.now().Unix())

	return err
}

func (s *SQLStorage) IsRoleGranted(
	ctx context.Context, wallet common.Address, role custodiaCommon.Role,
) (bool, error) {
	var granted bool
	row := s.db.QueryRow(`
		SELECT is_granted FROM role_grant
		WHERE wallet_address = $1 AND role = $2;
	`, wallet.Hex(), role.String())
	err := row.Scan(&granted)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}

	return granted, err
}

func (s *SQLStorage) AddHistoryEvent(ctx context.Context, event HistoryRow) error {
	if event.CreatedAt == 0 {
		event.CreatedAt = s.now().Unix()
	}

	return meddler.Insert(s.db, "batch_history", &event)
}

func (s *SQLStorage) GetHistory(
	ctx context.Context, batchID custodiaCommon.BatchID,
) ([]*HistoryRow, error) {
	var events []*HistoryRow
	if err := meddler.QueryAll(s.db, &events, `
		SELECT * FROM batch_history
		WHERE batch_id = $1
		ORDER BY id ASC;
	`, batchID.String()); err != nil {
		return nil, err
	}

	return events, nil
}

func (s *SQLStorage) RecordGap(ctx context.Context, gap GapRow) error {
	if gap.DetectedAt == 0 {
		gap.DetectedAt = s.now().Unix()
	}
	err := meddler.Insert(s.db, "consistency_gap", &gap)
	if err != nil {
		if sqliteErr, ok := db.SQLiteErr(err); ok && sqliteErr.ExtendedCode == db.UniqueConstrain {
			// already recorded, idempotent retry
			return nil
		}
		return err
	}

	return nil
}

func (s *SQLStorage) NextGap(ctx context.Context) (GapRow, error) {
	var gap GapRow
	if err := meddler.QueryRow(s.db, &gap, `
		SELECT * FROM consistency_gap
		WHERE resolved = FALSE
		ORDER BY detected_at ASC
		LIMIT 1;
	`); err != nil {
		return GapRow{}, db.ReturnErrNotFound(err)
	}

	return gap, nil
}

func (s *SQLStorage) ResolveGap(
	ctx context.Context, batchID custodiaCommon.BatchID, txHash common.Hash,
) error {
	res, err := s.db.Exec(`
		UPDATE consistency_gap SET resolved = TRUE
		WHERE batch_id = $1 AND tx_hash = $2 AND resolved = FALSE;
	`, batchID.String(), txHash.Hex())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return db.ErrNotFound
	}

	return nil
}
