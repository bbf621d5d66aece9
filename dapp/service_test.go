package dapp_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"rebase-dapp-tui/dapp"
	"rebase-dapp-tui/dapp/dapptest"
	"rebase-dapp-tui/wallet"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	payee = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
)

func newService(p dapp.Provider, f dapp.ContractFactory, w dapp.ReceiptWaiter) *dapp.Service {
	return dapp.NewService(dapp.Options{
		Provider:        p,
		Factory:         f,
		Waiter:          w,
		ExpectedChainID: big.NewInt(31337),
		NetworkName:     "Localhost:8545",
	})
}

func TestConnectAbsentWallet(t *testing.T) {
	svc := dapp.NewService(dapp.Options{})
	assert.False(t, svc.WalletPresent())

	_, err := svc.Connect(context.Background())
	assert.ErrorIs(t, err, dapp.ErrWalletAbsent)
}

func TestConnectUsesFirstAccount(t *testing.T) {
	p := dapptest.NewProvider(31337, owner, payee)
	svc := newService(p, nil, nil)

	session, err := svc.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, owner, session.Address)
	assert.Equal(t, int64(31337), session.ChainID.Int64())
	assert.Equal(t, 1, p.Requests())
}

func TestConnectWrongNetwork(t *testing.T) {
	svc := newService(dapptest.NewProvider(1, owner), nil, nil)

	_, err := svc.Connect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, dapp.ErrNetworkMismatch)
	assert.Equal(t, "Please connect Metamask to Localhost:8545", err.Error())

	var mismatch *dapp.NetworkMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, int64(1), mismatch.Got.Int64())
	assert.Equal(t, int64(31337), mismatch.Want.Int64())
}

func TestReconnectAfterNetworkSwitch(t *testing.T) {
	p := dapptest.NewProvider(31337, owner)
	svc := newService(p, nil, nil)
	_, err := svc.Connect(context.Background())
	require.NoError(t, err)

	p.SetChainID(1)
	_, err = svc.Connect(context.Background())
	assert.ErrorIs(t, err, dapp.ErrNetworkMismatch)
}

func TestConnectNoAccounts(t *testing.T) {
	svc := newService(dapptest.NewProvider(31337), nil, nil)
	_, err := svc.Connect(context.Background())
	assert.ErrorIs(t, err, wallet.ErrNoAccounts)
}

func TestConnectRejected(t *testing.T) {
	p := dapptest.NewProvider(31337, owner)
	p.SetError(wallet.ErrUserRejected)

	_, err := newService(p, nil, nil).Connect(context.Background())
	assert.True(t, wallet.IsUserRejected(err))
}

func TestConnectWithoutNodeFails(t *testing.T) {
	keys, err := wallet.ParseKeys([]string{"ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"})
	require.NoError(t, err)
	k, err := wallet.NewKeyed(nil, keys, wallet.WithChainID(big.NewInt(31337)))
	require.NoError(t, err)
	t.Cleanup(k.Close)

	session, err := newService(k, nil, nil).Connect(context.Background())
	assert.ErrorIs(t, err, wallet.ErrNoBackend)
	assert.Equal(t, common.Address{}, session.Address)
}

func TestInitializeWrapsFactoryErrors(t *testing.T) {
	f := dapptest.NewFactory(nil)
	f.SetError(errors.New("no code at address"))

	_, err := newService(nil, f, nil).Initialize(context.Background(), dapp.Session{Address: owner})
	assert.ErrorIs(t, err, dapp.ErrContractUnavailable)
	assert.Contains(t, err.Error(), "no code at address")
}

func TestInitializeWithoutToken(t *testing.T) {
	_, err := newService(nil, dapptest.NewFactory(nil), nil).Initialize(context.Background(), dapp.Session{Address: owner})
	assert.ErrorIs(t, err, dapp.ErrContractUnavailable)
}

func TestLoadTokenAndBalance(t *testing.T) {
	token := dapptest.NewToken("Test", "TST", 18, owner, big.NewInt(1000))
	svc := newService(nil, dapptest.NewFactory(token), nil)

	c, err := svc.Initialize(context.Background(), dapp.Session{Address: owner})
	require.NoError(t, err)
	assert.Equal(t, "Orchestrator", c.Orchestrator.Name())
	assert.Equal(t, "FarmController", c.FarmController.Name())

	data, err := svc.LoadToken(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, dapp.TokenData{Name: "Test", Symbol: "TST", Decimals: 18}, data)

	bal, err := svc.Balance(context.Background(), c, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), bal.Int64())

	token.Rebase(big.NewInt(5000))
	supply, err := svc.TotalSupply(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), supply.Int64())

	token.FailReads(errors.New("call reverted"))
	_, err = svc.TotalSupply(context.Background(), c)
	assert.ErrorContains(t, err, "read total supply")
}

func TestLoadTokenReadError(t *testing.T) {
	token := dapptest.NewToken("Test", "TST", 18, owner, big.NewInt(1))
	token.FailReads(errors.New("call reverted"))

	_, err := newService(nil, nil, nil).LoadToken(context.Background(), &dapp.Contracts{Token: token})
	assert.ErrorContains(t, err, "read token name")
}

func TestUnboundContracts(t *testing.T) {
	svc := newService(nil, nil, nil)
	_, err := svc.LoadToken(context.Background(), nil)
	assert.ErrorIs(t, err, dapp.ErrContractUnavailable)
	_, err = svc.Balance(context.Background(), &dapp.Contracts{}, owner)
	assert.ErrorIs(t, err, dapp.ErrContractUnavailable)
	_, err = svc.SubmitTransfer(context.Background(), nil, payee, big.NewInt(1))
	assert.ErrorIs(t, err, dapp.ErrContractUnavailable)
}

func TestTransferThenBalanceReflectsDebit(t *testing.T) {
	token := dapptest.NewToken("Test", "TST", 18, owner, big.NewInt(1000))
	svc := newService(nil, dapptest.NewFactory(token), dapptest.Waiter{Status: types.ReceiptStatusSuccessful})
	c, err := svc.Initialize(context.Background(), dapp.Session{Address: owner})
	require.NoError(t, err)

	tx, err := svc.SubmitTransfer(context.Background(), c, payee, big.NewInt(250))
	require.NoError(t, err)

	receipt, err := svc.AwaitTransfer(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, tx.Hash(), receipt.TxHash)

	bal, err := svc.Balance(context.Background(), c, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(750), bal.Int64())

	bal, err = svc.Balance(context.Background(), c, payee)
	require.NoError(t, err)
	assert.Equal(t, int64(250), bal.Int64())
}

func TestTransferRejectsNonPositiveAmount(t *testing.T) {
	token := dapptest.NewToken("Test", "TST", 18, owner, big.NewInt(1000))
	c := &dapp.Contracts{Token: token}
	svc := newService(nil, nil, nil)

	_, err := svc.SubmitTransfer(context.Background(), c, payee, big.NewInt(0))
	assert.Error(t, err)
	_, err = svc.SubmitTransfer(context.Background(), c, payee, nil)
	assert.Error(t, err)
}

func TestTransferDeclinedKeepsRejection(t *testing.T) {
	token := dapptest.NewToken("Test", "TST", 18, owner, big.NewInt(1000))
	token.FailTransfers(wallet.ErrUserRejected)

	_, err := newService(nil, nil, nil).SubmitTransfer(context.Background(), &dapp.Contracts{Token: token}, payee, big.NewInt(1))
	require.Error(t, err)
	assert.True(t, wallet.IsUserRejected(err))

	s, _ := dapp.NewState(true).ConnectRequested()
	s = s.Connected(dapp.Session{Address: owner, ChainID: big.NewInt(31337)})
	s = s.TokenLoaded(s.Generation, dapp.TokenData{Symbol: "TST", Decimals: 18})
	s, err2 := s.BeginTransfer()
	require.NoError(t, err2)
	s = s.TransferFinished(s.Generation, err)
	assert.NoError(t, s.TransactionError)
}

func TestAwaitTransferFailedStatus(t *testing.T) {
	token := dapptest.NewToken("Test", "TST", 18, owner, big.NewInt(1000))
	c := &dapp.Contracts{Token: token}
	svc := newService(nil, nil, dapptest.Waiter{Status: types.ReceiptStatusFailed})

	tx, err := svc.SubmitTransfer(context.Background(), c, payee, big.NewInt(1))
	require.NoError(t, err)

	_, err = svc.AwaitTransfer(context.Background(), tx)
	assert.ErrorIs(t, err, dapp.ErrTransactionFailed)
	assert.Contains(t, err.Error(), tx.Hash().Hex())
}

func TestAwaitTransferWaitError(t *testing.T) {
	token := dapptest.NewToken("Test", "TST", 18, owner, big.NewInt(1000))
	c := &dapp.Contracts{Token: token}
	svc := newService(nil, nil, dapptest.Waiter{Err: context.DeadlineExceeded})

	tx, err := svc.SubmitTransfer(context.Background(), c, payee, big.NewInt(1))
	require.NoError(t, err)
	_, err = svc.AwaitTransfer(context.Background(), tx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAwaitTransferWithoutWaiter(t *testing.T) {
	tx := types.NewTransaction(0, payee, big.NewInt(0), 21000, big.NewInt(1), nil)
	_, err := newService(nil, nil, nil).AwaitTransfer(context.Background(), tx)
	assert.ErrorIs(t, err, wallet.ErrNoBackend)
}
