package identity

import (
	"context"
	"testing"

	custodiaCommon "github.com/custodia-chain/custodia/common"
	"github.com/custodia-chain/custodia/db"
	"github.com/custodia-chain/custodia/inventory"
	"github.com/custodia-chain/custodia/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

type fakeClaims struct {
	claims map[string]Claims
}

func (f *fakeClaims) Claims(_ context.Context, principalID string) (Claims, error) {
	return f.claims[principalID], nil
}

type fakeProfiles struct {
	profiles map[string]inventory.Profile
}

func (f *fakeProfiles) GetProfile(_ context.Context, principalID string) (inventory.Profile, error) {
	profile, ok := f.profiles[principalID]
	if !ok {
		return inventory.Profile{}, db.ErrNotFound
	}

	return profile, nil
}

func TestResolveFromClaims(t *testing.T) {
	resolver := NewResolver(
		log.WithFields("test", t.Name()),
		&fakeClaims{claims: map[string]Claims{
			"user_1": {Role: "Distributor", Wallet: "0x0000000000000000000000000000000000002222"},
		}},
		&fakeProfiles{},
	)

	identity, err := resolver.Resolve(context.Background(), "user_1")
	require.NoError(t, err)
	require.Equal(t, custodiaCommon.RoleDistributor, identity.Role)
	require.Equal(t, common.HexToAddress("0x2222"), identity.Wallet)
}

func TestResolveProfileFallback(t *testing.T) {
	profiles := &fakeProfiles{profiles: map[string]inventory.Profile{
		"user_1": {
			ID:            "user_1",
			Role:          custodiaCommon.RoleRetailer,
			WalletAddress: common.HexToAddress("0x3333"),
		},
	}}

	// no claims at all: profile supplies both fields
	resolver := NewResolver(log.WithFields("test", t.Name()), &fakeClaims{}, profiles)
	identity, err := resolver.Resolve(context.Background(), "user_1")
	require.NoError(t, err)
	require.Equal(t, custodiaCommon.RoleRetailer, identity.Role)
	require.Equal(t, common.HexToAddress("0x3333"), identity.Wallet)

	// partial claims: profile fills only the missing field
	resolver = NewResolver(
		log.WithFields("test", t.Name()),
		&fakeClaims{claims: map[string]Claims{"user_1": {Role: "distributor"}}},
		profiles,
	)
	identity, err = resolver.Resolve(context.Background(), "user_1")
	require.NoError(t, err)
	require.Equal(t, custodiaCommon.RoleDistributor, identity.Role)
	require.Equal(t, common.HexToAddress("0x3333"), identity.Wallet)
}

func TestResolveIncomplete(t *testing.T) {
	resolver := NewResolver(log.WithFields("test", t.Name()), &fakeClaims{}, &fakeProfiles{})

	_, err := resolver.Resolve(context.Background(), "user_unknown")
	require.ErrorIs(t, err, ErrIdentityIncomplete)

	_, err = resolver.Resolve(context.Background(), "")
	require.ErrorIs(t, err, ErrIdentityIncomplete)

	// wallet on record but onboarding never picked a role
	resolver = NewResolver(
		log.WithFields("test", t.Name()),
		&fakeClaims{claims: map[string]Claims{
			"user_1": {Wallet: "0x0000000000000000000000000000000000002222"},
		}},
		&fakeProfiles{},
	)
	_, err = resolver.Resolve(context.Background(), "user_1")
	require.ErrorIs(t, err, ErrIdentityIncomplete)
}

func TestResolveRejectsMalformedClaims(t *testing.T) {
	resolver := NewResolver(
		log.WithFields("test", t.Name()),
		&fakeClaims{claims: map[string]Claims{
			"user_1": {Role: "auditor", Wallet: "0x0000000000000000000000000000000000002222"},
			"user_2": {Role: "retailer", Wallet: "not-an-address"},
		}},
		&fakeProfiles{},
	)

	_, err := resolver.Resolve(context.Background(), "user_1")
	require.ErrorIs(t, err, custodiaCommon.ErrUnknownRole)

	_, err = resolver.Resolve(context.Background(), "user_2")
	require.ErrorContains(t, err, "malformed wallet claim")
}
