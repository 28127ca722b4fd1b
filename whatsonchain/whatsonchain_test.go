package whatsonchain

import (
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/tendermint/tendermint/libs/log"
)

func testClient() *Client {
	c := NewClient("https://indexer.test/v1/bsv", "testnet", log.NewNopLogger())
	httpmock.ActivateNonDefault(c.HTTPClient)
	return c
}

func TestListUnspent(t *testing.T) {
	c := testClient()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, "https://indexer.test/v1/bsv/testnet/address/mfTestAddr/unspent",
		httpmock.NewStringResponder(200, `[
			{"height": 1600000, "tx_pos": 0, "tx_hash": "`+strings.Repeat("ab", 32)+`", "value": 2000},
			{"height": 1600001, "tx_pos": 1, "tx_hash": "`+strings.Repeat("cd", 32)+`", "value": 546}
		]`))

	outputs, err := c.ListUnspent("mfTestAddr")
	assert.Nil(t, err, "a well-formed response should parse")
	assert.Equal(t, 2, len(outputs), "both rows should be returned")
	assert.Equal(t, strings.Repeat("ab", 32), outputs[0].TxID, "tx_hash should map to TxID")
	assert.Equal(t, uint32(1), outputs[1].Vout, "tx_pos should map to Vout")
	assert.Equal(t, int64(546), outputs[1].Satoshis, "value should map to Satoshis")
}

func TestListUnspentEmpty(t *testing.T) {
	c := testClient()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, "https://indexer.test/v1/bsv/testnet/address/mfEmptyAddr/unspent",
		httpmock.NewStringResponder(200, `[]`))

	outputs, err := c.ListUnspent("mfEmptyAddr")
	assert.Nil(t, err, "an empty list is a valid response")
	assert.Equal(t, 0, len(outputs), "no outputs should be returned")
}

func TestListUnspentServerError(t *testing.T) {
	c := testClient()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, "https://indexer.test/v1/bsv/testnet/address/mfTestAddr/unspent",
		httpmock.NewStringResponder(500, `Internal Server Error`))

	_, err := c.ListUnspent("mfTestAddr")
	assert.NotNil(t, err, "a 500 should surface as an error")
	assert.Contains(t, err.Error(), "500", "the status code should be reported")
}

func TestSubmitRawTrimsQuotedTxid(t *testing.T) {
	c := testClient()
	defer httpmock.DeactivateAndReset()

	txid := strings.Repeat("ef", 32)
	httpmock.RegisterResponder(http.MethodPost, "https://indexer.test/v1/bsv/testnet/tx/raw",
		httpmock.NewStringResponder(200, "\""+txid+"\"\n"))

	reported, err := c.SubmitRaw("0100000001deadbeef")
	assert.Nil(t, err, "a 200 should not error")
	assert.Equal(t, txid, reported, "quotes and whitespace should be stripped from the reported txid")
}

func TestSubmitRawRejection(t *testing.T) {
	c := testClient()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, "https://indexer.test/v1/bsv/testnet/tx/raw",
		httpmock.NewStringResponder(400, `"unexpected response code 500: 258: txn-mempool-conflict"`))

	_, err := c.SubmitRaw("0100000001deadbeef")
	assert.NotNil(t, err, "a rejection should surface as an error")
	assert.Contains(t, err.Error(), "txn-mempool-conflict", "the indexer's reason should be preserved")
}
