package reconciler

import (
	"context"
	"errors"
	"time"

	custodiaCommon "github.com/custodia-chain/custodia/common"
	"github.com/custodia-chain/custodia/db"
	"github.com/custodia-chain/custodia/etherman"
	"github.com/custodia-chain/custodia/inventory"
	"github.com/custodia-chain/custodia/log"
	"github.com/custodia-chain/custodia/sync"
	"github.com/ethereum/go-ethereum/common"
)

// Ledger is the authoritative source the reconciler heals from.
type Ledger interface {
	GetBatch(ctx context.Context, id custodiaCommon.BatchID) (etherman.Batch, error)
}

// Storage is the projection slice holding the gap queue and the rows to heal.
type Storage interface {
	NextGap(ctx context.Context) (inventory.GapRow, error)
	ResolveGap(ctx context.Context, batchID custodiaCommon.BatchID, txHash common.Hash) error
	GetBatch(ctx context.Context, batchID custodiaCommon.BatchID) (inventory.BatchRow, error)
	UpsertBatch(ctx context.Context, batch inventory.BatchRow) error
	DeleteBatch(ctx context.Context, batchID custodiaCommon.BatchID) error
}

// errTxMaybePending means the ledger snapshot is still absent but the gap is
// too fresh to reap: the tx behind it may be sitting in the pool.
var errTxMaybePending = errors.New("batch absent from the ledger, tx may still be pending")

// Reconciler drains the consistency-gap queue: for every recorded gap it
// re-reads the ledger snapshot of the batch and forces the projection to
// match. The ledger is always right; healing is therefore idempotent and safe
// to repeat.
type Reconciler struct {
	logger           *log.Logger
	ledger           Ledger
	storage          Storage
	rh               *sync.RetryHandler
	waitOnEmptyQueue time.Duration
	reapAbsentAfter  time.Duration
	now              func() time.Time
}

func New(logger *log.Logger, cfg Config, ledger Ledger, storage Storage) *Reconciler {
	return &Reconciler{
		logger:  logger,
		ledger:  ledger,
		storage: storage,
		rh: &sync.RetryHandler{
			RetryAfterErrorPeriod:      cfg.RetryAfterErrorPeriod.Duration,
			MaxRetryAttemptsAfterError: cfg.MaxRetryAttemptsAfterError,
		},
		waitOnEmptyQueue: cfg.WaitOnEmptyQueue.Duration,
		reapAbsentAfter:  cfg.ReapAbsentAfter.Duration,
		now:              time.Now,
	}
}

// Start runs the healing loop until the context is cancelled.
func (r *Reconciler) Start(ctx context.Context) {
	var (
		attempts int
		err      error
	)
	for {
		if err != nil {
			attempts++
			r.rh.Handle("reconciler main loop", attempts)
		}
		select {
		case <-ctx.Done():
			return
		default:
		}

		gap, err2 := r.storage.NextGap(ctx)
		if err2 != nil {
			if errors.Is(err2, db.ErrNotFound) {
				err = nil
				attempts = 0
				r.logger.Debugf("gap queue is empty")
				select {
				case <-ctx.Done():
					return
				case <-time.After(r.waitOnEmptyQueue):
				}

				continue
			}
			err = err2
			r.logger.Errorf("error reading next gap: %v", err)

			continue
		}

		if err2 := r.Heal(ctx, gap); err2 != nil {
			if errors.Is(err2, errTxMaybePending) {
				err = nil
				attempts = 0
				r.logger.Debugf("batch %s still absent from the ledger, waiting before reaping", gap.BatchID)
				select {
				case <-ctx.Done():
					return
				case <-time.After(r.waitOnEmptyQueue):
				}

				continue
			}
			err = err2
			r.logger.Errorf("error healing gap on batch %s: %v", gap.BatchID, err)

			continue
		}
		r.logger.Infof("healed %s gap on batch %s (tx %s)", gap.Operation, gap.BatchID, gap.TxHash.Hex())
		err = nil
		attempts = 0
	}
}

// Heal converges the projection row of a gap onto the ledger snapshot and
// marks the gap resolved. A batch absent from the ledger means the write never
// committed, so the stale projection row is removed — but only once the batch
// stayed absent well past the confirmation wait: an indeterminate tx is
// submitted-not-failed and may still mine.
func (r *Reconciler) Heal(ctx context.Context, gap inventory.GapRow) error {
	onChain, err := r.ledger.GetBatch(ctx, gap.BatchID)
	if err != nil {
		return err
	}

	if onChain.IsZero() {
		if r.now().Unix()-gap.DetectedAt < int64(r.reapAbsentAfter.Seconds()) {
			return errTxMaybePending
		}
		if err := r.storage.DeleteBatch(ctx, gap.BatchID); err != nil {
			return err
		}

		return r.storage.ResolveGap(ctx, gap.BatchID, gap.TxHash)
	}

	// keep the off-chain detail of the existing row, overwrite the custody
	// fields the ledger owns
	row, err := r.storage.GetBatch(ctx, gap.BatchID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return err
	}
	row.BatchID = onChain.ID
	row.ManufacturerWallet = onChain.Creator
	row.CurrentHolderWallet = onChain.CurrentHolder
	row.IntendedRecipientWallet = onChain.IntendedRecipient
	row.Status = onChain.Status
	row.EwayBillNo = onChain.EwayBillNo
	row.CurrentLocation = onChain.CurrentLocation
	if onChain.CreatedAt > 0 {
		row.CreatedAt = int64(onChain.CreatedAt)
	}
	if onChain.UpdatedAt > 0 {
		row.UpdatedAt = int64(onChain.UpdatedAt)
	}

	if err := r.storage.UpsertBatch(ctx, row); err != nil {
		return err
	}

	return r.storage.ResolveGap(ctx, gap.BatchID, gap.TxHash)
}
