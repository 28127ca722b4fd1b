package database

import "github.com/quarkid/vcsl-core/types"

// Store is the consumed persistence surface. Upserts are idempotent and
// keyed by the business id, so repeated calls converge to the latest value.
type Store interface {
	UpsertIssuerUrl(issuerID string, url string, txid string) error
	GetIssuerUrl(issuerID string) (types.IssuerRecord, error)
	UpsertVcsl(id string, pointer string, txid string) error
	GetVcsl(id string) (types.VcslRecord, error)
}
