package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known hardhat development keys.
const (
	hardhatKey0 = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	hardhatKey1 = "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
)

var (
	hardhatAddr0 = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	hardhatAddr1 = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
)

func newTestProvider(t *testing.T, opts ...Option) *Keyed {
	t.Helper()
	keys, err := ParseKeys([]string{hardhatKey0, hardhatKey1})
	require.NoError(t, err)
	opts = append([]Option{WithChainID(big.NewInt(31337))}, opts...)
	k, err := NewKeyed(nil, keys, opts...)
	require.NoError(t, err)
	t.Cleanup(k.Close)
	return k
}

func TestParseKeys(t *testing.T) {
	keys, err := ParseKeys([]string{hardhatKey0, hardhatKey1})
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, hardhatAddr0, crypto.PubkeyToAddress(keys[0].PublicKey))
	assert.Equal(t, hardhatAddr1, crypto.PubkeyToAddress(keys[1].PublicKey))

	_, err = ParseKeys([]string{"zz"})
	assert.Error(t, err)
}

func TestNewKeyedRequiresKeys(t *testing.T) {
	_, err := NewKeyed(nil, nil)
	assert.ErrorIs(t, err, ErrNoAccounts)
}

func TestRequestAccountsKeepsOrder(t *testing.T) {
	k := newTestProvider(t)
	accounts, err := k.RequestAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []common.Address{hardhatAddr0, hardhatAddr1}, accounts)
}

func TestSelectAccountEmitsAccountsChanged(t *testing.T) {
	k := newTestProvider(t)
	require.NoError(t, k.SelectAccount(hardhatAddr1))

	ev := <-k.Events()
	assert.Equal(t, AccountsChanged, ev.Kind)
	assert.Equal(t, []common.Address{hardhatAddr1, hardhatAddr0}, ev.Accounts)

	accounts, err := k.RequestAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, hardhatAddr1, accounts[0])

	assert.ErrorIs(t, k.SelectAccount(common.HexToAddress("0x01")), ErrUnknownAccount)
}

func TestDisconnectEmitsEmptyAccounts(t *testing.T) {
	k := newTestProvider(t)
	k.Disconnect()
	ev := <-k.Events()
	assert.Equal(t, AccountsChanged, ev.Kind)
	assert.Empty(t, ev.Accounts)
}

func TestChainIDWithoutBackend(t *testing.T) {
	k := newTestProvider(t)
	_, err := k.ChainID(context.Background())
	assert.ErrorIs(t, err, ErrNoBackend)

	// the seed still signs offline
	opts, err := k.Transactor(context.Background(), hardhatAddr0)
	require.NoError(t, err)
	assert.NotNil(t, opts.Signer)

	keys, err := ParseKeys([]string{hardhatKey0})
	require.NoError(t, err)
	bare, err := NewKeyed(nil, keys)
	require.NoError(t, err)
	_, err = bare.ChainID(context.Background())
	assert.ErrorIs(t, err, ErrNoBackend)

	_, err = bare.Backend()
	assert.ErrorIs(t, err, ErrNoBackend)
}

func legacyTx() *types.Transaction {
	to := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	return types.NewTransaction(0, to, big.NewInt(0), 60000, big.NewInt(1), []byte{0xa9, 0x05, 0x9c, 0xbb})
}

func TestTransactorSignsWhenApproved(t *testing.T) {
	var seen ApprovalRequest
	k := newTestProvider(t, WithApprover(func(_ context.Context, req ApprovalRequest) bool {
		seen = req
		return true
	}))

	opts, err := k.Transactor(context.Background(), hardhatAddr0)
	require.NoError(t, err)
	assert.Equal(t, hardhatAddr0, opts.From)

	signed, err := opts.Signer(hardhatAddr0, legacyTx())
	require.NoError(t, err)

	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(31337)), signed)
	require.NoError(t, err)
	assert.Equal(t, hardhatAddr0, sender)
	assert.Equal(t, uint64(60000), seen.Gas)
	assert.Equal(t, hardhatAddr0, seen.From)
}

func TestTransactorDeclined(t *testing.T) {
	k := newTestProvider(t, WithApprover(func(context.Context, ApprovalRequest) bool { return false }))

	opts, err := k.Transactor(context.Background(), hardhatAddr0)
	require.NoError(t, err)

	_, err = opts.Signer(hardhatAddr0, legacyTx())
	require.Error(t, err)
	assert.True(t, IsUserRejected(err))
	assert.True(t, IsUserRejected(fmt.Errorf("submit transfer: %w", err)))
}

func TestTransactorUnknownAccount(t *testing.T) {
	k := newTestProvider(t)
	_, err := k.Transactor(context.Background(), common.HexToAddress("0x01"))
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

func TestIsUserRejected(t *testing.T) {
	assert.False(t, IsUserRejected(nil))
	assert.False(t, IsUserRejected(errors.New("boom")))
	assert.False(t, IsUserRejected(&ProviderError{Code: -32603, Message: "internal"}))
	assert.True(t, IsUserRejected(&ProviderError{Code: CodeUserRejected, Message: "nope"}))
}

func TestLoadKeystore(t *testing.T) {
	dir := t.TempDir()
	ks := keystore.NewKeyStore(dir, keystore.LightScryptN, keystore.LightScryptP)
	keys, err := ParseKeys([]string{hardhatKey0})
	require.NoError(t, err)
	_, err = ks.ImportECDSA(keys[0], "secret")
	require.NoError(t, err)

	loaded, err := LoadKeystore(dir, "secret")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, hardhatAddr0, crypto.PubkeyToAddress(loaded[0].PublicKey))

	_, err = LoadKeystore(dir, "wrong")
	assert.Error(t, err)

	_, err = LoadKeystore(filepath.Join(dir, "missing"), "secret")
	assert.Error(t, err)
}

func TestLoadKeystoreSkipsHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".DS_Store"), []byte("x"), 0o600))
	loaded, err := LoadKeystore(dir, "secret")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
