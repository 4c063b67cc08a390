package etherman

import (
	"errors"
	"strings"
)

var (
	// ErrUnauthorized the caller's wallet does not hold the role the
	// operation requires
	ErrUnauthorized = errors.New("SupplyChain: caller does not hold the required role")
	// ErrDuplicateBatch the batch id already exists on the registry
	ErrDuplicateBatch = errors.New("SupplyChain: batch already exists")
	// ErrNotCurrentHolder the caller is not the current holder of the batch
	ErrNotCurrentHolder = errors.New("SupplyChain: caller is not the current holder")
	// ErrIncompatibleRoleTransfer the (holder role -> recipient role) pair is
	// not allowed
	ErrIncompatibleRoleTransfer = errors.New("SupplyChain: incompatible role transfer")
	// ErrBatchNotReceivedState the batch is already in transit and cannot be
	// transferred again before being received
	ErrBatchNotReceivedState = errors.New("SupplyChain: batch is not in received state")
	// ErrNotIntendedRecipient the caller is not the recorded intended
	// recipient of the batch
	ErrNotIntendedRecipient = errors.New("SupplyChain: caller is not the intended recipient")
	// ErrBatchNotInTransit the batch is not in transit, there is nothing to
	// receive
	ErrBatchNotInTransit = errors.New("SupplyChain: batch is not in transit")
	// ErrManufacturerRoleImmutable the manufacturer role belongs to the
	// deployer and cannot be granted or revoked
	ErrManufacturerRoleImmutable = errors.New("SupplyChain: manufacturer role cannot be granted or revoked")

	// ErrTxIndeterminate the tx was submitted but its confirmation was not
	// observed before the wait was cancelled. The state is indeterminate:
	// callers must poll the ledger to resolve, never treat this as failure.
	ErrTxIndeterminate = errors.New("tx submitted but not confirmed, state is indeterminate")
	// ErrTxFailed the tx was mined but reverted
	ErrTxFailed = errors.New("tx failed")

	errorsCache = map[string]error{
		ErrUnauthorized.Error():              ErrUnauthorized,
		ErrDuplicateBatch.Error():            ErrDuplicateBatch,
		ErrNotCurrentHolder.Error():          ErrNotCurrentHolder,
		ErrIncompatibleRoleTransfer.Error():  ErrIncompatibleRoleTransfer,
		ErrBatchNotReceivedState.Error():     ErrBatchNotReceivedState,
		ErrNotIntendedRecipient.Error():      ErrNotIntendedRecipient,
		ErrBatchNotInTransit.Error():         ErrBatchNotInTransit,
		ErrManufacturerRoleImmutable.Error(): ErrManufacturerRoleImmutable,
	}
)

// TryParseError tries to map a node/contract error (usually a revert reason
// buried inside an rpc error string) onto one of the typed errors above.
func TryParseError(err error) (error, bool) {
	parsedError, exists := errorsCache[err.Error()]
	if !exists {
		for errStr, actualErr := range errorsCache {
			if strings.Contains(err.Error(), errStr) {
				return actualErr, true
			}
		}
	}

	return parsedError, exists
}
