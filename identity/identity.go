package identity

import (
	"context"
	"errors"
	"fmt"

	custodiaCommon "github.com/custodia-chain/custodia/common"
	"github.com/custodia-chain/custodia/db"
	"github.com/custodia-chain/custodia/inventory"
	"github.com/custodia-chain/custodia/log"
	"github.com/ethereum/go-ethereum/common"
)

// ErrIdentityIncomplete means the principal has no resolvable role or wallet.
// Onboarding did not finish. Treated as not-authorized, never retried.
var ErrIdentityIncomplete = errors.New("identity incomplete: principal has no role or wallet on record")

// Identity is the resolved actor behind an operation: who signs (wallet) and
// as what (role). The ledger remains authoritative for what the wallet may
// actually execute.
type Identity struct {
	PrincipalID string
	Role        custodiaCommon.Role
	Wallet      common.Address
}

// Claims are the role and wallet carried by the auth session, both optional.
type Claims struct {
	Role   string
	Wallet string
}

// ClaimsProvider surfaces session claims for a principal. Implementations
// return zero-value Claims (not an error) when the session carries none.
type ClaimsProvider interface {
	Claims(ctx context.Context, principalID string) (Claims, error)
}

// ProfileStore is the projection-store slice the resolver falls back to.
type ProfileStore interface {
	GetProfile(ctx context.Context, principalID string) (inventory.Profile, error)
}

// Resolver maps an authenticated principal to an Identity. Session claims win;
// the profile store fills whatever the claims omit. Pure read, no side
// effects.
type Resolver struct {
	logger   *log.Logger
	claims   ClaimsProvider
	profiles ProfileStore
}

func NewResolver(logger *log.Logger, claims ClaimsProvider, profiles ProfileStore) *Resolver {
	return &Resolver{
		logger:   logger,
		claims:   claims,
		profiles: profiles,
	}
}

func (r *Resolver) Resolve(ctx context.Context, principalID string) (Identity, error) {
	if principalID == "" {
		return Identity{}, fmt.Errorf("%w: empty principal id", ErrIdentityIncomplete)
	}

	identity := Identity{PrincipalID: principalID}

	if r.claims != nil {
		claims, err := r.claims.Claims(ctx, principalID)
		if err != nil {
			return Identity{}, fmt.Errorf("error reading session claims for %s: %w", principalID, err)
		}
		if claims.Role != "" {
			role, err := custodiaCommon.ParseRole(claims.Role)
			if err != nil {
				return Identity{}, fmt.Errorf("principal %s carries claim %q: %w", principalID, claims.Role, err)
			}
			identity.Role = role
		}
		if claims.Wallet != "" {
			if !common.IsHexAddress(claims.Wallet) {
				return Identity{}, fmt.Errorf("principal %s carries malformed wallet claim %q", principalID, claims.Wallet)
			}
			identity.Wallet = common.HexToAddress(claims.Wallet)
		}
	}

	if identity.Role != "" && identity.Wallet != (common.Address{}) {
		return identity, nil
	}

	profile, err := r.profiles.GetProfile(ctx, principalID)
	if errors.Is(err, db.ErrNotFound) {
		if identity.Role == "" || identity.Wallet == (common.Address{}) {
			return Identity{}, fmt.Errorf("principal %s: %w", principalID, ErrIdentityIncomplete)
		}

		return identity, nil
	}
	if err != nil {
		return Identity{}, fmt.Errorf("error reading profile of %s: %w", principalID, err)
	}

	if identity.Role == "" {
		identity.Role = profile.Role
	}
	if identity.Wallet == (common.Address{}) {
		identity.Wallet = profile.WalletAddress
	}
	if identity.Role == "" || identity.Wallet == (common.Address{}) {
		return Identity{}, fmt.Errorf("principal %s: %w", principalID, ErrIdentityIncomplete)
	}

	return identity, nil
}
