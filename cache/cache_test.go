package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/quarkid/vcsl-core/types"
	"github.com/stretchr/testify/assert"
	"github.com/tendermint/tendermint/libs/log"
)

func testUtxos() []types.Utxo {
	return []types.Utxo{
		{TxID: strings.Repeat("ab", 32), Vout: 0, Satoshis: 2000, LockingScript: "76a914deadbeef88ac"},
		{TxID: strings.Repeat("cd", 32), Vout: 1, Satoshis: 546, LockingScript: "76a914deadbeef88ac"},
	}
}

func TestMemoryTierRoundTrip(t *testing.T) {
	c := NewCache(nil, time.Minute, log.NewNopLogger())
	_, hit := c.GetUnspent("mfTestAddr")
	assert.False(t, hit, "a cold cache should miss")

	c.SetUnspent("mfTestAddr", testUtxos())
	utxos, hit := c.GetUnspent("mfTestAddr")
	assert.True(t, hit, "a fresh write should hit")
	assert.Equal(t, testUtxos(), utxos, "cached outputs should round-trip unchanged")
}

func TestMemoryTierKeysPerAddress(t *testing.T) {
	c := NewCache(nil, time.Minute, log.NewNopLogger())
	c.SetUnspent("mfAddrA", testUtxos())
	_, hit := c.GetUnspent("mfAddrB")
	assert.False(t, hit, "another address should miss")
}

func TestInvalidateUnspent(t *testing.T) {
	c := NewCache(nil, time.Minute, log.NewNopLogger())
	c.SetUnspent("mfTestAddr", testUtxos())
	c.InvalidateUnspent("mfTestAddr")
	_, hit := c.GetUnspent("mfTestAddr")
	assert.False(t, hit, "an invalidated address should miss")
}

func TestMemoryTierExpiry(t *testing.T) {
	c := NewCache(nil, 30*time.Millisecond, log.NewNopLogger())
	c.SetUnspent("mfTestAddr", testUtxos())
	time.Sleep(80 * time.Millisecond)
	_, hit := c.GetUnspent("mfTestAddr")
	assert.False(t, hit, "entries should expire after the ttl")
}
