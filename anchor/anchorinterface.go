package anchor

import (
	"context"

	"github.com/quarkid/vcsl-core/types"
)

// AnchorEngine derives a key for the given context path, funds it with a
// dust output and broadcasts the result. One call is one anchoring attempt.
type AnchorEngine interface {
	AnchorData(ctx context.Context, keyID string) (*types.AnchorTx, error)

	FundingAddress() string
}

// ChainIndexer is the consumed chain-indexer surface: unspent outputs for an
// address and raw transaction submission.
type ChainIndexer interface {
	ListUnspent(address string) ([]types.UnspentOutput, error)

	SubmitRaw(rawTxHex string) (string, error)
}
