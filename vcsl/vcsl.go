package vcsl

import (
	"context"
	"fmt"

	"github.com/quarkid/vcsl-core/anchor"
	"github.com/quarkid/vcsl-core/database"
	"github.com/quarkid/vcsl-core/errs"
	"github.com/quarkid/vcsl-core/types"
	"github.com/tendermint/tendermint/libs/log"
)

// Service sequences on-chain anchoring with off-chain persistence. The two
// write operations deliberately order these steps differently:
// SetIssuerUrl persists first and anchors best-effort, AddVcsl anchors first
// and treats the anchor as mandatory. Do not unify the two flows.
type Service struct {
	store  database.Store
	engine anchor.AnchorEngine
	logger log.Logger
}

func NewService(store database.Store, engine anchor.AnchorEngine, logger log.Logger) *Service {
	return &Service{
		store:  store,
		engine: engine,
		logger: logger,
	}
}

// SetIssuerUrl updates the issuer's URL off-chain and anchors the change.
// The store write is the operation; a failure there aborts the call. The
// anchor is best-effort: if it fails the call still succeeds with an empty
// txid. If the anchor succeeds but recording its txid fails, the anchor
// exists on chain unrecorded, which is logged for reconciliation, not
// returned as a failure.
func (s *Service) SetIssuerUrl(ctx context.Context, issuerID string, newURL string) (string, error) {
	if err := s.store.UpsertIssuerUrl(issuerID, newURL, ""); err != nil {
		return "", errs.Wrap(errs.Persistence, fmt.Sprintf("issuer url update for %s failed", issuerID), err)
	}
	s.logger.Info(fmt.Sprintf("issuer url updated for %s", issuerID))

	anchorTx, err := s.engine.AnchorData(ctx, "issuer/"+issuerID)
	if err != nil {
		s.logger.Error(fmt.Sprintf("issuer url for %s updated without anchor: %s", issuerID, err.Error()))
		return "", nil
	}

	if err := s.store.UpsertIssuerUrl(issuerID, newURL, anchorTx.TxID); err != nil {
		// the anchor is on chain either way; surface for reconciliation
		s.logger.Error(fmt.Sprintf("anchor %s for issuer %s broadcast but not recorded: %s", anchorTx.TxID, issuerID, err.Error()),
			"attempt", anchorTx.AttemptID)
	}
	return anchorTx.TxID, nil
}

// AddVcsl anchors the VCSL entry and then persists it. The anchor is
// mandatory: if it fails, nothing is persisted and the call fails. If
// persistence fails after a successful broadcast, the chain holds an anchor
// with no matching record, and the call fails with ReconciliationRequired
// carrying the orphaned txid.
func (s *Service) AddVcsl(ctx context.Context, id string, pointer string) (string, error) {
	anchorTx, err := s.engine.AnchorData(ctx, "vcsl/"+id)
	if err != nil {
		return "", err
	}
	s.logger.Info(fmt.Sprintf("anchored vcsl %s with tx %s", id, anchorTx.TxID), "attempt", anchorTx.AttemptID)

	if err := s.store.UpsertVcsl(id, pointer, anchorTx.TxID); err != nil {
		return "", errs.NewReconciliation(anchorTx.TxID,
			fmt.Sprintf("vcsl %s anchored with tx %s but the record write failed", id, anchorTx.TxID), err)
	}
	return anchorTx.TxID, nil
}

// GetIssuerUrl : read path, NotFound when no row exists
func (s *Service) GetIssuerUrl(issuerID string) (types.IssuerRecord, error) {
	return s.store.GetIssuerUrl(issuerID)
}

// GetVcsl : read path, NotFound when no row exists
func (s *Service) GetVcsl(id string) (types.VcslRecord, error) {
	return s.store.GetVcsl(id)
}
