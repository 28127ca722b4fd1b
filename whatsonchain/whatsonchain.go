package whatsonchain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/quarkid/vcsl-core/types"
	"github.com/tendermint/tendermint/libs/log"
)

// DefaultBaseURL : public WhatsOnChain API root
const DefaultBaseURL = "https://api.whatsonchain.com/v1/bsv"

// Client queries a WhatsOnChain-compatible chain indexer for unspent outputs
// and submits raw transactions.
type Client struct {
	BaseURL    string
	Network    string
	HTTPClient *http.Client
	Logger     log.Logger
}

func NewClient(baseURL string, network string, logger log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Network:    network,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Logger:     logger,
	}
}

// ListUnspent : fetch the raw unspent output rows for an address
func (c *Client) ListUnspent(address string) ([]types.UnspentOutput, error) {
	url := fmt.Sprintf("%s/%s/address/%s/unspent", c.BaseURL, c.Network, address)
	resp, err := c.HTTPClient.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.New(fmt.Sprintf("unspent query for %s returned %d: %s", address, resp.StatusCode, strings.TrimSpace(string(body))))
	}
	outputs := []types.UnspentOutput{}
	if err := json.NewDecoder(resp.Body).Decode(&outputs); err != nil {
		return nil, err
	}
	return outputs, nil
}

// SubmitRaw : broadcast a raw transaction and return the txid reported by the
// indexer. The response body is the txid, sometimes quoted.
func (c *Client) SubmitRaw(rawTxHex string) (string, error) {
	url := fmt.Sprintf("%s/%s/tx/raw", c.BaseURL, c.Network)
	payload, err := json.Marshal(map[string]string{"txhex": rawTxHex})
	if err != nil {
		return "", err
	}
	resp, err := c.HTTPClient.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", errors.New(fmt.Sprintf("broadcast returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}
	return strings.Trim(strings.TrimSpace(string(body)), "\""), nil
}
