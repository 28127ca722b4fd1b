package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/quarkid/vcsl-core/errs"
	"github.com/quarkid/vcsl-core/types"
	"github.com/quarkid/vcsl-core/vcsl"
	"github.com/stretchr/testify/assert"
	"github.com/tendermint/tendermint/libs/log"
)

type stubStore struct {
	issuerErr error
	vcslErr   error
	getErr    error
	issuer    types.IssuerRecord
	record    types.VcslRecord
}

func (s *stubStore) UpsertIssuerUrl(issuerID string, url string, txid string) error { return s.issuerErr }
func (s *stubStore) GetIssuerUrl(issuerID string) (types.IssuerRecord, error)       { return s.issuer, s.getErr }
func (s *stubStore) UpsertVcsl(id string, pointer string, txid string) error        { return s.vcslErr }
func (s *stubStore) GetVcsl(id string) (types.VcslRecord, error)                    { return s.record, s.getErr }

type stubEngine struct {
	txid string
	err  error
}

func (s *stubEngine) AnchorData(ctx context.Context, keyID string) (*types.AnchorTx, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &types.AnchorTx{TxID: s.txid}, nil
}

func (s *stubEngine) FundingAddress() string { return "mfStubFundingAddr" }

func testApp(store *stubStore, engine *stubEngine) *AnchorApplication {
	logger := log.NewNopLogger()
	return &AnchorApplication{
		Config:  types.AnchorConfig{BitcoinNetwork: "testnet", FeeRate: 0.5},
		Anchor:  engine,
		Service: vcsl.NewService(store, engine, logger),
		logger:  logger,
	}
}

func TestAddVcslHandlerReconciliationSurfacesTxid(t *testing.T) {
	txid := strings.Repeat("ab", 32)
	app := testApp(&stubStore{vcslErr: errs.New(errs.Persistence, "db down")}, &stubEngine{txid: txid})

	req := httptest.NewRequest("POST", "/vcsl", strings.NewReader(`{"id": "list-1", "ipns": "ipns://k51abc"}`))
	w := httptest.NewRecorder()
	app.AddVcslHandler(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code, "reconciliation should report a server error")
	var body map[string]interface{}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &body), "response should be json")
	assert.Equal(t, txid, body["txid"], "the orphaned txid should be in the response")
}

func TestAddVcslHandlerHappyPath(t *testing.T) {
	txid := strings.Repeat("cd", 32)
	app := testApp(&stubStore{}, &stubEngine{txid: txid})

	req := httptest.NewRequest("POST", "/vcsl", strings.NewReader(`{"id": "list-1", "ipns": "ipns://k51abc"}`))
	w := httptest.NewRecorder()
	app.AddVcslHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "a successful anchor should report ok")
	var body map[string]interface{}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &body), "response should be json")
	assert.Equal(t, txid, body["txid"], "the anchor txid should be in the response")
}

func TestAddVcslHandlerRejectsMissingFields(t *testing.T) {
	app := testApp(&stubStore{}, &stubEngine{})
	req := httptest.NewRequest("POST", "/vcsl", strings.NewReader(`{"id": "list-1"}`))
	w := httptest.NewRecorder()
	app.AddVcslHandler(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code, "a body without ipns should be rejected")
}

func TestGetIssuerUrlHandlerNotFound(t *testing.T) {
	app := testApp(&stubStore{getErr: errs.New(errs.NotFound, "no such issuer")}, &stubEngine{})
	req := httptest.NewRequest("GET", "/vcsl/issuer/did:quarkid:missing", nil)
	req = mux.SetURLVars(req, map[string]string{"issuer_id": "did:quarkid:missing"})
	w := httptest.NewRecorder()
	app.GetIssuerUrlHandler(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code, "an unknown issuer should report not found")
}

func TestSetIssuerUrlHandlerAnchorDeferred(t *testing.T) {
	app := testApp(&stubStore{}, &stubEngine{err: errs.New(errs.InsufficientFunds, "wallet empty")})
	req := httptest.NewRequest("POST", "/vcsl/issuer/did:quarkid:issuer1", strings.NewReader(`{"url": "https://issuer.example/vcsl"}`))
	req = mux.SetURLVars(req, map[string]string{"issuer_id": "did:quarkid:issuer1"})
	w := httptest.NewRecorder()
	app.SetIssuerUrlHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "the url update should succeed without an anchor")
	var body map[string]interface{}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &body), "response should be json")
	_, hasTxid := body["txid"]
	assert.False(t, hasTxid, "no txid should be reported when anchoring was deferred")
	assert.NotEqual(t, "", body["warning"], "the deferred anchor should be called out")
}

func TestStatusHandler(t *testing.T) {
	app := testApp(&stubStore{}, &stubEngine{})
	req := httptest.NewRequest("GET", "/status", nil)
	w := httptest.NewRecorder()
	app.StatusHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "status should always report ok")
	var status APIStatus
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &status), "response should be json")
	assert.Equal(t, "testnet", status.Network, "the configured network should be reported")
	assert.Equal(t, "mfStubFundingAddr", status.FundingAddress, "the funding address should be reported")
}
