package types

import (
	"github.com/tendermint/tendermint/libs/log"
)

// AnchorConfig represents values to configure all connections within the anchoring service
type AnchorConfig struct {
	BitcoinNetwork  string
	WalletWIF       string
	WocBaseURL      string
	FeeRate         float64
	PostgresURI     string
	RedisHost       string
	RedisPort       string
	APIPort         string
	LockTTLSeconds  int
	LockWaitSeconds int
	UtxoCacheTTL    int
	LogLevel        string
	Logger          *log.Logger
}

// UnspentOutput is a single row returned by the chain indexer for an address.
// The indexer does not return the locking script; see Utxo.
type UnspentOutput struct {
	TxID     string `json:"tx_hash"`
	Vout     uint32 `json:"tx_pos"`
	Satoshis int64  `json:"value"`
}

// Utxo is a spendable candidate funding input. LockingScript is the standard
// P2PKH script reconstructed from the address, since the indexer omits it.
// A non-P2PKH output would be misrepresented here and rejected at signing
// or broadcast.
type Utxo struct {
	TxID          string `json:"txid"`
	Vout          uint32 `json:"vout"`
	Satoshis      uint64 `json:"satoshis"`
	LockingScript string `json:"locking_script"`
}

// AnchorTx is the outcome of a build+sign pass: the signed raw transaction,
// its content-derived id and the value split that produced it.
type AnchorTx struct {
	TxID      string `json:"txid"`
	RawTx     string `json:"raw_tx"`
	Fee       uint64 `json:"fee"`
	Change    uint64 `json:"change"`
	HasChange bool   `json:"has_change"`
	AttemptID string `json:"attempt_id"`
}

// IssuerRecord is the off-chain issuer row. AnchorTxID is empty until the
// first successful anchor for this issuer is recorded.
type IssuerRecord struct {
	IssuerID   string `json:"issuer_id"`
	Url        string `json:"url"`
	AnchorTxID string `json:"txid,omitempty"`
}

// VcslRecord is the off-chain VCSL row. A row always carries the txid of the
// anchor that preceded its persistence.
type VcslRecord struct {
	VcslID     string `json:"id"`
	Pointer    string `json:"ipns"`
	AnchorTxID string `json:"txid"`
}
