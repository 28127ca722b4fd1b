package bsv

import (
	"context"
	"fmt"
	"math"

	"github.com/libsv/go-bk/bec"
	"github.com/libsv/go-bt/v2"
	"github.com/libsv/go-bt/v2/bscript"
	"github.com/libsv/go-bt/v2/unlocker"
	"github.com/quarkid/vcsl-core/anchor"
	"github.com/quarkid/vcsl-core/cache"
	"github.com/quarkid/vcsl-core/errs"
	"github.com/quarkid/vcsl-core/lock"
	"github.com/quarkid/vcsl-core/threadsafe_ulid"
	"github.com/quarkid/vcsl-core/types"
	"github.com/quarkid/vcsl-core/util"
	"github.com/quarkid/vcsl-core/wallet"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	// DustSats is the minimum output value the network will relay
	DustSats = 546
	// MinFeeSats is the fee floor regardless of rate and size
	MinFeeSats = 1
)

// AnchorBSV anchors derivation contexts on Bitcoin SV: it funds the derived
// key's address with a dust output from the master wallet and broadcasts the
// result through the chain indexer.
type AnchorBSV struct {
	wallet  *wallet.Wallet
	indexer anchor.ChainIndexer
	locker  lock.Locker
	Cache   *cache.Cache
	feeRate float64
	ulids   *threadsafe_ulid.ThreadSafeUlid
	logger  log.Logger
}

func NewBSVAnchorEngine(w *wallet.Wallet, indexer anchor.ChainIndexer, locker lock.Locker,
	utxoCache *cache.Cache, feeRate float64, logger log.Logger) *AnchorBSV {
	return &AnchorBSV{
		wallet:  w,
		indexer: indexer,
		locker:  locker,
		Cache:   utxoCache,
		feeRate: feeRate,
		ulids:   threadsafe_ulid.NewThreadSafeUlid(),
		logger:  logger,
	}
}

func (a *AnchorBSV) FundingAddress() string {
	return a.wallet.Address()
}

// FetchSpendableOutputs : unspent outputs for an address, with the standard
// P2PKH locking script reconstructed from the address since the indexer does
// not return it. An unreachable indexer yields an empty slice, so a funding
// shortfall is what surfaces downstream rather than a transport error.
func (a *AnchorBSV) FetchSpendableOutputs(address string) []types.Utxo {
	if a.Cache != nil {
		if utxos, hit := a.Cache.GetUnspent(address); hit {
			return utxos
		}
	}
	rows, err := a.indexer.ListUnspent(address)
	if err != nil {
		a.logger.Error(fmt.Sprintf("unspent query for %s failed: %s", address, err.Error()))
		return []types.Utxo{}
	}
	lockingScript, err := bscript.NewP2PKHFromAddress(address)
	if a.LogError(err) != nil {
		return []types.Utxo{}
	}
	utxos := []types.Utxo{}
	for _, row := range rows {
		if row.Satoshis <= 0 || !util.IsValidTxID(row.TxID) {
			a.logger.Info(fmt.Sprintf("skipping invalid unspent row %s:%d (%d sats)", row.TxID, row.Vout, row.Satoshis))
			continue
		}
		utxos = append(utxos, types.Utxo{
			TxID:          row.TxID,
			Vout:          row.Vout,
			Satoshis:      uint64(row.Satoshis),
			LockingScript: lockingScript.String(),
		})
	}
	if a.Cache != nil && len(utxos) > 0 {
		a.Cache.SetUnspent(address, utxos)
	}
	return utxos
}

// BuildAnchorTx assembles and signs a single-input transaction paying the
// dust amount to derivedAddress, with change back to fundingAddress when the
// leftover is itself spendable. Selection is deliberately first-candidate.
func (a *AnchorBSV) BuildAnchorTx(ctx context.Context, fundingKey *bec.PrivateKey, fundingAddress string,
	utxos []types.Utxo, derivedAddress string) (*types.AnchorTx, error) {
	if len(utxos) == 0 {
		return nil, errs.New(errs.InsufficientFunds, fmt.Sprintf("no spendable outputs found for address %s", fundingAddress))
	}
	selected := utxos[0]

	tx := bt.NewTx()
	if err := tx.From(selected.TxID, selected.Vout, selected.LockingScript, selected.Satoshis); err != nil {
		return nil, errs.Wrap(errs.Configuration, fmt.Sprintf("could not spend output %s:%d", selected.TxID, selected.Vout), err)
	}
	if err := tx.PayToAddress(derivedAddress, DustSats); err != nil {
		return nil, errs.Wrap(errs.Derivation, fmt.Sprintf("invalid derived address %s", derivedAddress), err)
	}

	// The fee depends on the byte size, the size depends on whether a change
	// output exists, and change depends on the fee. A placeholder change
	// output sizes the larger two-output shape before the fee is committed.
	if err := tx.PayToAddress(fundingAddress, 1); err != nil {
		return nil, errs.Wrap(errs.Configuration, fmt.Sprintf("invalid funding address %s", fundingAddress), err)
	}
	estimatedSize, err := tx.EstimateSize()
	if err != nil {
		return nil, errs.Wrap(errs.Configuration, "could not estimate transaction size", err)
	}
	tx.Outputs = tx.Outputs[:len(tx.Outputs)-1]

	fee := uint64(math.Ceil(float64(estimatedSize) * a.feeRate))
	if fee < MinFeeSats {
		fee = MinFeeSats
	}

	change := int64(selected.Satoshis) - DustSats - int64(fee)
	if change < 0 {
		return nil, errs.New(errs.InsufficientFunds,
			fmt.Sprintf("output %s:%d holds %d sats, dust plus fee needs %d", selected.TxID, selected.Vout, selected.Satoshis, DustSats+fee))
	}
	hasChange := change >= DustSats
	if hasChange {
		if err := tx.PayToAddress(fundingAddress, uint64(change)); err != nil {
			return nil, errs.Wrap(errs.Configuration, fmt.Sprintf("invalid funding address %s", fundingAddress), err)
		}
	}
	// sub-dust change is left to the miners rather than creating an
	// unspendable output

	if err := tx.FillAllInputs(ctx, &unlocker.Getter{PrivateKey: fundingKey}); err != nil {
		return nil, errs.Wrap(errs.Configuration, "could not sign funding input", err)
	}

	return &types.AnchorTx{
		TxID:      tx.TxID(),
		RawTx:     tx.String(),
		Fee:       fee,
		Change:    uint64(change),
		HasChange: hasChange,
	}, nil
}

// BroadcastTx submits the signed transaction. The indexer's reported txid is
// checked against the locally computed one; on a mismatch the local id is
// trusted and returned, since the transaction was nonetheless accepted.
func (a *AnchorBSV) BroadcastTx(anchorTx *types.AnchorTx) (string, error) {
	reported, err := a.indexer.SubmitRaw(anchorTx.RawTx)
	if err != nil {
		return "", errs.Wrap(errs.Broadcast, fmt.Sprintf("broadcast of %s failed", anchorTx.TxID), err)
	}
	if reported != anchorTx.TxID {
		a.logger.Error(fmt.Sprintf("broadcast reported txid %s but local txid is %s, trusting local", reported, anchorTx.TxID))
	}
	return anchorTx.TxID, nil
}

// AnchorData : derive, build, sign and broadcast one anchor transaction for
// the given context path. The funding address is exclusively held from the
// unspent fetch until the broadcast returns, so concurrent calls cannot race
// over the same output.
func (a *AnchorBSV) AnchorData(ctx context.Context, keyID string) (*types.AnchorTx, error) {
	attemptID := a.ulids.NewAttemptID()

	derived, err := a.wallet.DeriveChildKey(keyID)
	if err != nil {
		return nil, err
	}
	a.logger.Info(fmt.Sprintf("derived anchor key for %s: %s", keyID, derived.Address), "attempt", attemptID)

	fundingAddress := a.wallet.Address()
	release, err := a.locker.Acquire(fundingAddress)
	if err != nil {
		return nil, errs.Wrap(errs.Broadcast, fmt.Sprintf("funding address %s is busy", fundingAddress), err)
	}
	defer release()

	utxos := a.FetchSpendableOutputs(fundingAddress)
	anchorTx, err := a.BuildAnchorTx(ctx, a.wallet.MasterKey(), fundingAddress, utxos, derived.Address)
	if err != nil {
		return nil, err
	}
	anchorTx.AttemptID = attemptID

	txid, err := a.BroadcastTx(anchorTx)
	if err != nil {
		return nil, err
	}
	if a.Cache != nil {
		a.Cache.InvalidateUnspent(fundingAddress)
	}
	a.logger.Info(fmt.Sprintf("anchor tx %s broadcast, fee %d sats", txid, anchorTx.Fee), "attempt", attemptID)
	return anchorTx, nil
}

func (a *AnchorBSV) LogError(err error) error {
	if err != nil {
		a.logger.Error(fmt.Sprintf("Error in %s: %s", util.GetCurrentFuncName(2), err.Error()))
	}
	return err
}
