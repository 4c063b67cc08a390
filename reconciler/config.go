package reconciler

import (
	"github.com/custodia-chain/custodia/config/types"
)

// Config of the consistency-gap reconciler.
type Config struct {
	// RetryAfterErrorPeriod is the time that will be waited when an unexpected error happens before retry
	RetryAfterErrorPeriod types.Duration `mapstructure:"RetryAfterErrorPeriod"`
	// MaxRetryAttemptsAfterError is the maximum number of consecutive attempts that will happen before panicking,
	// any number smaller than zero will be considered as unlimited retries
	MaxRetryAttemptsAfterError int `mapstructure:"MaxRetryAttemptsAfterError"`
	// WaitOnEmptyQueue is the time waited before re-polling an empty gap queue
	WaitOnEmptyQueue types.Duration `mapstructure:"WaitOnEmptyQueue"`
	// ReapAbsentAfter is how long a batch must stay absent from the ledger after
	// its gap was detected before the provisional projection row is removed.
	// Must comfortably exceed the etherman confirmation timeout: an
	// indeterminate tx may still mine in the meantime
	ReapAbsentAfter types.Duration `mapstructure:"ReapAbsentAfter"`
}
