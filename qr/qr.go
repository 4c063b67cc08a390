package qr

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	custodiaCommon "github.com/custodia-chain/custodia/common"
	"github.com/iden3/go-iden3-crypto/keccak256"
)

// ErrEmptySecret rejects an issuer without a signing secret: tokens would be
// forgeable from the public batch id alone.
var ErrEmptySecret = errors.New("qr token secret must not be empty")

// Issuer mints the opaque tracking tokens embedded in QR tracking URLs. A
// token binds a batch id to the node's secret; it carries no custody
// semantics, it only gates the public tracking view.
type Issuer struct {
	secret  []byte
	baseURL string
}

func NewIssuer(secret, baseURL string) (*Issuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	return &Issuer{
		secret:  []byte(secret),
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// TokenFor derives the tracking token of a batch. Deterministic: re-issuing
// yields the same token.
func (i *Issuer) TokenFor(id custodiaCommon.BatchID) string {
	return hex.EncodeToString(keccak256.Hash(id[:], i.secret))
}

// Verify reports whether token is the valid tracking token of the batch.
func (i *Issuer) Verify(id custodiaCommon.BatchID, token string) bool {
	expected := i.TokenFor(id)

	return subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 1
}

// TrackingURL builds the public tracking link encoded into the batch QR code.
func (i *Issuer) TrackingURL(id custodiaCommon.BatchID) string {
	return fmt.Sprintf("%s/track/%s?token=%s", i.baseURL, id.String(), i.TokenFor(id))
}
