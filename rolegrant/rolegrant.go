package rolegrant

import (
	"context"
	"errors"
	"fmt"

	custodiaCommon "github.com/custodia-chain/custodia/common"
	"github.com/custodia-chain/custodia/identity"
	"github.com/custodia-chain/custodia/log"
	"github.com/ethereum/go-ethereum/common"
)

// ErrNotAuthorized means the caller's wallet does not hold the manufacturer
// role on the ledger, the only role allowed to administer grants.
var ErrNotAuthorized = errors.New("only the manufacturer administers role grants")

// ErrManufacturerRoleImmutable rejects grant or revoke of the manufacturer
// role: it is implicit in the contract deployer and never administered here.
var ErrManufacturerRoleImmutable = errors.New("manufacturer role is deployer-implicit and cannot be administered")

// Ledger is the authoritative role registry the manager administers.
type Ledger interface {
	GrantRole(ctx context.Context, wallet common.Address, role custodiaCommon.Role) (common.Hash, error)
	RevokeRole(ctx context.Context, wallet common.Address, role custodiaCommon.Role) (common.Hash, error)
	IsManufacturer(ctx context.Context, wallet common.Address) (bool, error)
	IsDistributor(ctx context.Context, wallet common.Address) (bool, error)
	IsRetailer(ctx context.Context, wallet common.Address) (bool, error)
}

// Storage caches grant flags on the projection for cheap list views.
type Storage interface {
	SetRoleGranted(ctx context.Context, wallet common.Address, role custodiaCommon.Role, granted bool) error
	IsRoleGranted(ctx context.Context, wallet common.Address, role custodiaCommon.Role) (bool, error)
}

// IdentityResolver maps a principal to its acting wallet.
type IdentityResolver interface {
	Resolve(ctx context.Context, principalID string) (identity.Identity, error)
}

// Manager administers distributor and retailer grants on the ledger and keeps
// the projection flag in sync. The caller's manufacturer role is re-checked
// against the ledger on every call: session claims can be stale.
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

// Grant grants role to wallet. Granting an already-granted role is a no-op
// success; the projection flag is resynced either way.
func (m *Manager) Grant(
	ctx context.Context, principalID string, wallet common.Address, role custodiaCommon.Role,
) error {
	if err := m.authorize(ctx, principalID, wallet, role); err != nil {
		return err
	}

	granted, err := m.hasRole(ctx, wallet, role)
	if err != nil {
		return err
	}
	if granted {
		m.logger.Debugf("wallet %s already holds role %s", wallet.Hex(), role)
		m.syncFlag(ctx, wallet, role, true)

		return nil
	}

	txHash, err := m.ledger.GrantRole(ctx, wallet, role)
	if err != nil {
		return err
	}
	m.logger.Infof("granted role %s to %s in tx %s", role, wallet.Hex(), txHash.Hex())
	m.syncFlag(ctx, wallet, role, true)

	return nil
}

// Revoke revokes role from wallet. Revoking a never-granted role is a no-op
// success.
func (m *Manager) Revoke(
	ctx context.Context, principalID string, wallet common.Address, role custodiaCommon.Role,
) error {
	if err := m.authorize(ctx, principalID, wallet, role); err != nil {
		return err
	}

	granted, err := m.hasRole(ctx, wallet, role)
	if err != nil {
		return err
	}
	if !granted {
		m.logger.Debugf("wallet %s does not hold role %s", wallet.Hex(), role)
		m.syncFlag(ctx, wallet, role, false)

		return nil
	}

	txHash, err := m.ledger.RevokeRole(ctx, wallet, role)
	if err != nil {
		return err
	}
	m.logger.Infof("revoked role %s from %s in tx %s", role, wallet.Hex(), txHash.Hex())
	m.syncFlag(ctx, wallet, role, false)

	return nil
}

func (m *Manager) authorize(
	ctx context.Context, principalID string, wallet common.Address, role custodiaCommon.Role,
) error {
	if wallet == (common.Address{}) {
		return errors.New("target wallet is required")
	}
	switch role {
	case custodiaCommon.RoleDistributor, custodiaCommon.RoleRetailer:
	case custodiaCommon.RoleManufacturer:
		return ErrManufacturerRoleImmutable
	default:
		return fmt.Errorf("%w: %s", custodiaCommon.ErrUnknownRole, role)
	}

	actor, err := m.resolver.Resolve(ctx, principalID)
	if err != nil {
		return err
	}
	isManufacturer, err := m.ledger.IsManufacturer(ctx, actor.Wallet)
	if err != nil {
		return err
	}
	if !isManufacturer {
		return fmt.Errorf("%w: wallet %s", ErrNotAuthorized, actor.Wallet.Hex())
	}

	return nil
}

func (m *Manager) hasRole(
	ctx context.Context, wallet common.Address, role custodiaCommon.Role,
) (bool, error) {
	switch role {
	case custodiaCommon.RoleDistributor:
		return m.ledger.IsDistributor(ctx, wallet)
	case custodiaCommon.RoleRetailer:
		return m.ledger.IsRetailer(ctx, wallet)
	default:
		return false, fmt.Errorf("%w: %s", custodiaCommon.ErrUnknownRole, role)
	}
}

// syncFlag mirrors the grant state onto the projection. The flag is a cache of
// ledger truth, so a failed write is logged, not surfaced.
func (m *Manager) syncFlag(
	ctx context.Context, wallet common.Address, role custodiaCommon.Role, granted bool,
) {
	if err := m.storage.SetRoleGranted(ctx, wallet, role, granted); err != nil {
		m.logger.Errorf("error caching grant flag (%s, %s)=%t: %v", wallet.Hex(), role, granted, err)
	}
}
