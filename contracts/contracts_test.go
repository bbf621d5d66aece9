package contracts

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"rebase-dapp-tui/dapp"
	"rebase-dapp-tui/wallet"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hardhatKey0 = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var payee = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")

// chainBackend answers token view calls from memory and records sent
// transactions. Filterer methods are left to the nil embedded interface.
type chainBackend struct {
	bind.ContractBackend

	mu       sync.Mutex
	token    abi.ABI
	code     map[common.Address][]byte
	balances map[common.Address]*big.Int
	sent     []*types.Transaction
}

func newChainBackend(t *testing.T, book AddressBook) *chainBackend {
	t.Helper()
	parsed, err := LoadABI("", NameToken)
	require.NoError(t, err)
	return &chainBackend{
		token: parsed,
		code: map[common.Address][]byte{
			book.Token:          {0x60, 0x80},
			book.Orchestrator:   {0x60, 0x80},
			book.FarmController: {0x60, 0x80},
		},
		balances: map[common.Address]*big.Int{},
	}
}

func (b *chainBackend) CodeAt(_ context.Context, addr common.Address, _ *big.Int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.code[addr], nil
}

func (b *chainBackend) PendingCodeAt(ctx context.Context, addr common.Address) ([]byte, error) {
	return b.CodeAt(ctx, addr, nil)
}

func (b *chainBackend) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	method, err := b.token.MethodById(call.Data[:4])
	if err != nil {
		return nil, err
	}
	switch method.Name {
	case "name":
		return method.Outputs.Pack("Test")
	case "symbol":
		return method.Outputs.Pack("TST")
	case "decimals":
		return method.Outputs.Pack(uint8(9))
	case "totalSupply":
		return method.Outputs.Pack(big.NewInt(50_000_000_000_000_000))
	case "balanceOf":
		args, err := method.Inputs.Unpack(call.Data[4:])
		if err != nil {
			return nil, err
		}
		bal := b.balances[args[0].(common.Address)]
		if bal == nil {
			bal = big.NewInt(0)
		}
		return method.Outputs.Pack(bal)
	}
	return nil, errors.New("execution reverted")
}

func (b *chainBackend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(1)}, nil
}

func (b *chainBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return uint64(len(b.sent)), nil
}

func (b *chainBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (b *chainBackend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (b *chainBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 60000, nil
}

func (b *chainBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, tx)
	return nil
}

func (b *chainBackend) sentCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sent)
}

// keyedSource pairs the in-memory backend with a real key-backed signer.
type keyedSource struct {
	backend bind.ContractBackend
	keyed   *wallet.Keyed
}

func (s keyedSource) Backend() (bind.ContractBackend, error) {
	if s.backend == nil {
		return nil, wallet.ErrNoBackend
	}
	return s.backend, nil
}

func (s keyedSource) Transactor(ctx context.Context, from common.Address) (*bind.TransactOpts, error) {
	return s.keyed.Transactor(ctx, from)
}

func newKeyed(t *testing.T, approve bool) (*wallet.Keyed, common.Address) {
	t.Helper()
	key, err := crypto.HexToECDSA(hardhatKey0)
	require.NoError(t, err)
	k, err := wallet.NewKeyed(nil, []*ecdsa.PrivateKey{key},
		wallet.WithChainID(big.NewInt(31337)),
		wallet.WithApprover(func(context.Context, wallet.ApprovalRequest) bool { return approve }),
	)
	require.NoError(t, err)
	return k, crypto.PubkeyToAddress(key.PublicKey)
}

func TestEmbeddedArtifactsParse(t *testing.T) {
	for _, name := range Names {
		parsed, err := LoadABI("", name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, parsed.Methods, name)
	}

	token, err := LoadABI("", NameToken)
	require.NoError(t, err)
	for _, m := range []string{"name", "symbol", "decimals", "balanceOf", "transfer"} {
		assert.Contains(t, token.Methods, m)
	}
	assert.Contains(t, token.Events, "Transfer")
}

func TestLoadABIFromHardhatTree(t *testing.T) {
	dir := t.TempDir()
	raw, err := embedded.ReadFile("artifacts/Orchestrator.json")
	require.NoError(t, err)

	nested := filepath.Join(dir, "contracts", "Orchestrator.sol")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "Orchestrator.json"), raw, 0o644))

	parsed, err := LoadABI(dir, NameOrchestrator)
	require.NoError(t, err)
	assert.Contains(t, parsed.Methods, "rebase")

	_, err = LoadABI(dir, NameToken)
	assert.ErrorContains(t, err, "not found")
}

func TestLoadABIWithoutAbi(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Token.json"), []byte(`{"contractName":"Token"}`), 0o644))
	_, err := LoadABI(dir, NameToken)
	assert.ErrorContains(t, err, "has no abi")
}

func TestLoadAddressBook(t *testing.T) {
	book, err := LoadAddressBook(filepath.Join("testdata", "addresses.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultAddressBook(), book)

	_, err = LoadAddressBook(filepath.Join("testdata", "bad_addresses.json"))
	assert.Error(t, err)

	def, err := LoadAddressBook("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAddressBook(), def)
}

func TestLookupMissingAddress(t *testing.T) {
	book := AddressBook{Token: DefaultAddressBook().Token}
	_, err := book.Lookup(NameOrchestrator)
	assert.ErrorIs(t, err, dapp.ErrContractUnavailable)

	addr, err := book.Lookup(NameToken)
	require.NoError(t, err)
	assert.Equal(t, book.Token, addr)
}

func TestRegistryBindsAndReadsToken(t *testing.T) {
	book := DefaultAddressBook()
	backend := newChainBackend(t, book)
	keyed, from := newKeyed(t, true)
	backend.balances[from] = big.NewInt(1_500_000_000)

	reg, err := NewRegistry(keyedSource{backend: backend, keyed: keyed}, book, "", nil)
	require.NoError(t, err)

	c, err := reg.Contracts(context.Background(), dapp.Session{Address: from, ChainID: big.NewInt(31337)})
	require.NoError(t, err)
	assert.Equal(t, book.Orchestrator, c.Orchestrator.Address())
	assert.Equal(t, NameFarmController, c.FarmController.Name())

	svc := dapp.NewService(dapp.Options{Factory: reg})
	data, err := svc.LoadToken(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, dapp.TokenData{Name: "Test", Symbol: "TST", Decimals: 9}, data)

	bal, err := svc.Balance(context.Background(), c, from)
	require.NoError(t, err)
	assert.Equal(t, "1500000000", bal.String())

	supply, err := svc.TotalSupply(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "50000000000000000", supply.String())
}

func TestRegistryWithoutCode(t *testing.T) {
	book := DefaultAddressBook()
	backend := newChainBackend(t, book)
	delete(backend.code, book.FarmController)
	keyed, from := newKeyed(t, true)

	reg, err := NewRegistry(keyedSource{backend: backend, keyed: keyed}, book, "", nil)
	require.NoError(t, err)

	_, err = reg.Contracts(context.Background(), dapp.Session{Address: from})
	assert.ErrorIs(t, err, dapp.ErrContractUnavailable)
	assert.ErrorContains(t, err, "FarmController")
}

func TestRegistryWithoutBackend(t *testing.T) {
	keyed, from := newKeyed(t, true)
	reg, err := NewRegistry(keyedSource{keyed: keyed}, DefaultAddressBook(), "", nil)
	require.NoError(t, err)

	_, err = reg.Contracts(context.Background(), dapp.Session{Address: from})
	assert.ErrorIs(t, err, dapp.ErrContractUnavailable)

	_, err = (&Registry{}).Contracts(context.Background(), dapp.Session{})
	assert.ErrorIs(t, err, dapp.ErrContractUnavailable)
}

func TestTransferSignsAndSends(t *testing.T) {
	book := DefaultAddressBook()
	backend := newChainBackend(t, book)
	keyed, from := newKeyed(t, true)

	reg, err := NewRegistry(keyedSource{backend: backend, keyed: keyed}, book, "", nil)
	require.NoError(t, err)
	c, err := reg.Contracts(context.Background(), dapp.Session{Address: from})
	require.NoError(t, err)

	tx, err := c.Token.Transfer(context.Background(), payee, big.NewInt(42))
	require.NoError(t, err)
	assert.Equal(t, 1, backend.sentCount())
	assert.Equal(t, book.Token, *tx.To())

	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(31337)), tx)
	require.NoError(t, err)
	assert.Equal(t, from, sender)

	args, err := backend.token.Methods["transfer"].Inputs.Unpack(tx.Data()[4:])
	require.NoError(t, err)
	assert.Equal(t, payee, args[0])
	assert.Equal(t, int64(42), args[1].(*big.Int).Int64())
}

func TestTransferDeclinedIsUserRejected(t *testing.T) {
	book := DefaultAddressBook()
	backend := newChainBackend(t, book)
	keyed, from := newKeyed(t, false)

	reg, err := NewRegistry(keyedSource{backend: backend, keyed: keyed}, book, "", nil)
	require.NoError(t, err)
	c, err := reg.Contracts(context.Background(), dapp.Session{Address: from})
	require.NoError(t, err)

	_, err = c.Token.Transfer(context.Background(), payee, big.NewInt(42))
	require.Error(t, err)
	assert.True(t, wallet.IsUserRejected(err))
	assert.Zero(t, backend.sentCount())
}

func TestReadOnlyToken(t *testing.T) {
	parsed, err := LoadABI("", NameToken)
	require.NoError(t, err)
	tok := NewToken(DefaultAddressBook().Token, parsed, nil, common.Address{}, nil)
	_, err = tok.Transfer(context.Background(), payee, big.NewInt(1))
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestDecodeTransfer(t *testing.T) {
	parsed, err := LoadABI("", NameToken)
	require.NoError(t, err)

	data, err := parsed.Pack("transfer", payee, big.NewInt(1234))
	require.NoError(t, err)
	to, amount, err := DecodeTransfer(data)
	require.NoError(t, err)
	assert.Equal(t, payee, to)
	assert.Equal(t, int64(1234), amount.Int64())

	approve, err := parsed.Pack("approve", payee, big.NewInt(1))
	require.NoError(t, err)
	_, _, err = DecodeTransfer(approve)
	assert.ErrorContains(t, err, "not a transfer")

	_, _, err = DecodeTransfer([]byte{0x01})
	assert.Error(t, err)
}
