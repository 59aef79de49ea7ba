package keystore

import (
	"context"

	"github.com/omarluq/cc-gate/internal/authz"
)

// Disabled is the store used when no key table is configured. Every lookup
// misses, so API-key credentials deny.
type Disabled struct{}

var _ authz.KeyStore = Disabled{}

// QueryByHash always returns authz.ErrKeyNotFound.
func (Disabled) QueryByHash(context.Context, string) (authz.KeyRecord, error) {
	return authz.KeyRecord{}, authz.ErrKeyNotFound
}
