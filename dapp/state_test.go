package dapp

import (
	"errors"
	"fmt"
	"math/big"
	"math/rand"
	"strings"
	"testing"

	"rebase-dapp-tui/wallet"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	bob   = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
)

func activeState(t *testing.T) State {
	t.Helper()
	s, err := NewState(true).ConnectRequested()
	require.NoError(t, err)
	s = s.Connected(Session{Address: alice, ChainID: big.NewInt(31337)})
	s = s.TokenLoaded(s.Generation, TokenData{Name: "Test", Symbol: "TST", Decimals: 18})
	return s.BalanceLoaded(s.Generation, big.NewInt(1000))
}

func TestNoWalletIsTerminal(t *testing.T) {
	s := NewState(false)
	assert.Equal(t, PhaseNoWallet, s.Phase)

	_, err := s.ConnectRequested()
	assert.ErrorIs(t, err, ErrWalletAbsent)

	assert.Equal(t, PhaseNoWallet, s.Connected(Session{Address: alice}).Phase)
	assert.Equal(t, PhaseNoWallet, s.Reset().Phase)
}

func TestConnectLifecycle(t *testing.T) {
	s := NewState(true)
	assert.Equal(t, PhaseAwaitingConnection, s.Phase)

	s, err := s.ConnectRequested()
	require.NoError(t, err)
	assert.Equal(t, PhaseConnecting, s.Phase)

	_, err = s.ConnectRequested()
	assert.Error(t, err, "a second connect while connecting is refused")

	gen := s.Generation
	s = s.Connected(Session{Address: alice, ChainID: big.NewInt(31337)})
	assert.Equal(t, PhaseActive, s.Phase)
	assert.Equal(t, gen+1, s.Generation)
	assert.Equal(t, alice, s.Session.Address)
	assert.False(t, s.Ready(), "no token data yet")
}

func TestConnectFailedStaysAwaiting(t *testing.T) {
	s, err := NewState(true).ConnectRequested()
	require.NoError(t, err)

	mismatch := &NetworkMismatchError{Got: big.NewInt(1), Want: big.NewInt(31337), Network: "Localhost:8545"}
	s = s.ConnectFailed(mismatch)
	assert.Equal(t, PhaseAwaitingConnection, s.Phase)
	assert.Nil(t, s.Session)
	assert.EqualError(t, s.NetworkError, "Please connect Metamask to Localhost:8545")

	// a later successful connect clears it
	s, err = s.ConnectRequested()
	require.NoError(t, err)
	s = s.Connected(Session{Address: alice, ChainID: big.NewInt(31337)})
	assert.NoError(t, s.NetworkError)
}

func TestResetClearsSession(t *testing.T) {
	s := activeState(t)
	s.TransactionError = errors.New("boom")
	gen := s.Generation

	s = s.Reset()
	assert.Equal(t, State{Phase: PhaseAwaitingConnection, Generation: gen + 1}, s)
}

func TestStaleResultsAreDropped(t *testing.T) {
	s := activeState(t)
	old := s.Generation

	s = s.AccountChanged(bob)
	assert.Equal(t, bob, s.Session.Address)
	assert.Nil(t, s.Balance)
	assert.Nil(t, s.Token)

	s = s.BalanceLoaded(old, big.NewInt(5))
	assert.Nil(t, s.Balance, "balance read for the previous account must not land")

	s = s.BalanceLoaded(s.Generation, big.NewInt(7))
	assert.Equal(t, int64(7), s.Balance.Int64())

	reset := s.Reset()
	assert.Nil(t, reset.BalanceLoaded(s.Generation, big.NewInt(9)).Balance)
}

func TestAccountChangedIgnoredWhenNotActive(t *testing.T) {
	s := NewState(true)
	assert.Equal(t, s, s.AccountChanged(bob))
}

func TestTransferSuccessClearsPending(t *testing.T) {
	s := activeState(t)
	s.TransactionError = errors.New("previous")

	s, err := s.BeginTransfer()
	require.NoError(t, err)
	assert.NoError(t, s.TransactionError, "starting a transfer clears the previous error")
	assert.True(t, s.Transferring)

	hash := common.HexToHash("0xabc")
	s = s.TransferSubmitted(s.Generation, hash)
	assert.True(t, s.Pending())
	assert.Equal(t, hash, s.TxBeingSent)

	s = s.TransferFinished(s.Generation, nil)
	assert.False(t, s.Pending())
	assert.False(t, s.Transferring)
	assert.NoError(t, s.TransactionError)
}

func TestTransferFailedStatusSetsError(t *testing.T) {
	s := activeState(t)
	s, err := s.BeginTransfer()
	require.NoError(t, err)
	s = s.TransferSubmitted(s.Generation, common.HexToHash("0x01"))

	failure := fmt.Errorf("%w: tx=0x01", ErrTransactionFailed)
	s = s.TransferFinished(s.Generation, failure)
	assert.ErrorIs(t, s.TransactionError, ErrTransactionFailed)
	assert.False(t, s.Pending())
	assert.False(t, s.Transferring)
}

func TestTransferRejectedByUserIsSilent(t *testing.T) {
	s := activeState(t)
	s, err := s.BeginTransfer()
	require.NoError(t, err)

	s = s.TransferFinished(s.Generation, fmt.Errorf("submit transfer: %w", wallet.ErrUserRejected))
	assert.NoError(t, s.TransactionError)
	assert.False(t, s.Transferring)
	assert.False(t, s.Pending())
}

func TestOverlappingTransferRejected(t *testing.T) {
	s := activeState(t)
	s, err := s.BeginTransfer()
	require.NoError(t, err)

	again, err := s.BeginTransfer()
	assert.ErrorIs(t, err, ErrTransferInFlight)
	assert.Equal(t, s, again)

	busy := s.TransferRejected(err)
	assert.ErrorIs(t, busy.TransactionError, ErrTransferInFlight)
	assert.True(t, busy.Transferring)
}

func TestBeginTransferNeedsSession(t *testing.T) {
	_, err := NewState(true).BeginTransfer()
	assert.ErrorIs(t, err, ErrNotConnected)

	s, _ := NewState(true).ConnectRequested()
	s = s.Connected(Session{Address: alice, ChainID: big.NewInt(31337)})
	_, err = s.BeginTransfer()
	assert.ErrorIs(t, err, ErrContractUnavailable)
}

func TestDismissTransactionErrorLeavesEverythingElse(t *testing.T) {
	s := activeState(t)
	s.TransactionError = errors.New("tx")
	s.NetworkError = errors.New("net")
	s.TxBeingSent = common.HexToHash("0x02")

	want := s
	want.TransactionError = nil
	assert.Equal(t, want, s.DismissTransactionError())

	want = s
	want.NetworkError = nil
	assert.Equal(t, want, s.DismissNetworkError())
}

// ratString is an independent rendering of raw / 10^decimals.
func ratString(raw *big.Int, decimals uint8) string {
	den := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	str := new(big.Rat).SetFrac(raw, den).FloatString(int(decimals))
	if strings.Contains(str, ".") {
		str = strings.TrimRight(strings.TrimRight(str, "0"), ".")
	}
	return str
}

func TestDisplayBalanceIsRawOverDecimals(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		decimals := uint8(rng.Intn(25))
		raw := new(big.Int).Rand(rng, new(big.Int).Lsh(big.NewInt(1), uint(rng.Intn(200)+1)))

		s, _ := NewState(true).ConnectRequested()
		s = s.Connected(Session{Address: alice, ChainID: big.NewInt(31337)})
		s = s.TokenLoaded(s.Generation, TokenData{Name: "Test", Symbol: "TST", Decimals: decimals})
		s = s.BalanceLoaded(s.Generation, raw)

		require.Equal(t, ratString(raw, decimals)+" TST", s.DisplayBalance(), "raw=%s decimals=%d", raw, decimals)
	}
}

func TestDisplayBalanceEmptyUntilReady(t *testing.T) {
	assert.Equal(t, "", NewState(true).DisplayBalance())
}
