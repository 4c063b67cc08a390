package sync

import (
	"time"

	"github.com/custodia-chain/custodia/log"
)

// RetryHandler paces retry loops after errors. Attempts beyond the configured
// maximum are fatal: at that point the loop is stuck on something a restart
// will not fix silently, and dying loudly beats spinning.
type RetryHandler struct {
	RetryAfterErrorPeriod      time.Duration
	MaxRetryAttemptsAfterError int
}

func (h *RetryHandler) Handle(funcName string, attempts int) {
	if h.MaxRetryAttemptsAfterError > 0 && attempts >= h.MaxRetryAttemptsAfterError {
		log.Fatalf(
			"%s failed too many times (%d)",
			funcName, h.MaxRetryAttemptsAfterError,
		)
	}
	time.Sleep(h.RetryAfterErrorPeriod)
}
