package wallet

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/libsv/go-bk/bec"
	"github.com/libsv/go-bk/wif"
	"github.com/libsv/go-bt/v2/bscript"
	"github.com/quarkid/vcsl-core/errs"
)

// ProtocolID prefixes every derivation context so keys derived for VCSL
// anchoring can never collide with another protocol's keys under the same
// master key.
const ProtocolID = "quarkid-vcsl"

// Wallet holds the service's master signing key. Constructed once at process
// start and threaded through explicitly; never read from ambient state.
type Wallet struct {
	masterKey *bec.PrivateKey
	mainnet   bool
	address   string
}

// DerivedKey is a child key produced from (master key, context). It is used
// for a single anchoring attempt and discarded; the address is recoverable
// later by re-deriving with the same context.
type DerivedKey struct {
	PrivKey *bec.PrivateKey
	Address string
}

// NewWallet decodes a WIF-encoded master key. An empty or malformed key is a
// fatal configuration error, not a per-call one.
func NewWallet(wifKey string, network string) (*Wallet, error) {
	if wifKey == "" {
		return nil, errs.New(errs.Configuration, "wallet WIF key is not set")
	}
	decoded, err := wif.DecodeWIF(wifKey)
	if err != nil {
		return nil, errs.Wrap(errs.Configuration, "wallet WIF key could not be decoded", err)
	}
	return NewWalletFromKey(decoded.PrivKey, network)
}

// NewWalletFromKey wraps an already-decoded private key.
func NewWalletFromKey(privKey *bec.PrivateKey, network string) (*Wallet, error) {
	mainnet := network == "mainnet"
	addr, err := bscript.NewAddressFromPublicKey(privKey.PubKey(), mainnet)
	if err != nil {
		return nil, errs.Wrap(errs.Configuration, "could not derive wallet address", err)
	}
	return &Wallet{
		masterKey: privKey,
		mainnet:   mainnet,
		address:   addr.AddressString,
	}, nil
}

// Address is the funding address of the master key.
func (w *Wallet) Address() string {
	return w.address
}

// MasterKey returns the funding private key for input signing.
func (w *Wallet) MasterKey() *bec.PrivateKey {
	return w.masterKey
}

func (w *Wallet) Mainnet() bool {
	return w.mainnet
}

// DeriveChildKey derives a deterministic child key for the given key id.
// The child scalar is (master + int(HMAC-SHA256(masterBytes, context))) mod N,
// with context "<protocol>/<keyID>". Pure: same inputs always produce the
// same scalar and address, and different contexts yield unrelated keys on
// the strength of HMAC-SHA256.
func (w *Wallet) DeriveChildKey(keyID string) (*DerivedKey, error) {
	context := fmt.Sprintf("%s/%s", ProtocolID, keyID)

	mac := hmac.New(sha256.New, w.masterKey.Serialise())
	mac.Write([]byte(context))
	digest := mac.Sum(nil)

	scalar := new(big.Int).SetBytes(digest)
	child := new(big.Int).Add(w.masterKey.D, scalar)
	child.Mod(child, bec.S256().N)

	var scalarBytes [32]byte
	child.FillBytes(scalarBytes[:])
	privKey, _ := bec.PrivKeyFromBytes(bec.S256(), scalarBytes[:])

	addr, err := bscript.NewAddressFromPublicKey(privKey.PubKey(), w.mainnet)
	if err != nil {
		return nil, errs.Wrap(errs.Derivation, fmt.Sprintf("could not derive address for context %s", context), err)
	}
	return &DerivedKey{
		PrivKey: privKey,
		Address: addr.AddressString,
	}, nil
}
