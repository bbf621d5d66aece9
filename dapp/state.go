package dapp

import (
	"fmt"
	"math/big"

	"rebase-dapp-tui/helpers"
	"rebase-dapp-tui/wallet"

	"github.com/ethereum/go-ethereum/common"
)

// Phase is the session lifecycle position
type Phase int

const (
	PhaseNoWallet Phase = iota
	PhaseAwaitingConnection
	PhaseConnecting
	PhaseActive
)

func (p Phase) String() string {
	switch p {
	case PhaseNoWallet:
		return "no-wallet"
	case PhaseAwaitingConnection:
		return "awaiting-connection"
	case PhaseConnecting:
		return "connecting"
	case PhaseActive:
		return "active"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Session is the connected wallet account on the validated chain
type Session struct {
	Address common.Address
	ChainID *big.Int
}

// TokenData is read once per session from the token contract
type TokenData struct {
	Name     string
	Symbol   string
	Decimals uint8
}

// State is the whole dApp state as a value. Transitions return a new State
// and never touch fields they do not own, so clearing one error cannot
// disturb the session or the other error.
//
// Generation changes whenever a session starts or ends. Async results carry
// the generation they were issued under and are dropped when it no longer
// matches.
type State struct {
	Phase      Phase
	Generation uint64

	Session *Session
	Token   *TokenData
	Balance *big.Int

	// TxBeingSent is the hash of the pending transfer, zero when none.
	TxBeingSent common.Hash
	// Transferring covers the whole attempt, including signature approval
	// before a hash exists.
	Transferring bool

	TransactionError error
	NetworkError     error
}

// NewState returns the initial state. Without a wallet the state is
// NoWallet for the program's lifetime.
func NewState(walletPresent bool) State {
	if !walletPresent {
		return State{Phase: PhaseNoWallet}
	}
	return State{Phase: PhaseAwaitingConnection}
}

// ConnectRequested moves AwaitingConnection to Connecting.
func (s State) ConnectRequested() (State, error) {
	switch s.Phase {
	case PhaseNoWallet:
		return s, ErrWalletAbsent
	case PhaseAwaitingConnection:
		s.Phase = PhaseConnecting
		return s, nil
	default:
		return s, fmt.Errorf("connect requested while %s", s.Phase)
	}
}

// Connected activates a validated session.
func (s State) Connected(session Session) State {
	if s.Phase == PhaseNoWallet {
		return s
	}
	s.Phase = PhaseActive
	s.Generation++
	s.Session = &session
	s.Token = nil
	s.Balance = nil
	s.TxBeingSent = common.Hash{}
	s.Transferring = false
	s.NetworkError = nil
	return s
}

// ConnectFailed records err as the network error and goes back to waiting
// for a connect request.
func (s State) ConnectFailed(err error) State {
	if s.Phase != PhaseConnecting {
		return s
	}
	s.Phase = PhaseAwaitingConnection
	s.NetworkError = err
	return s
}

// AccountChanged re-initializes the active session for a new account.
func (s State) AccountChanged(addr common.Address) State {
	if s.Phase != PhaseActive || s.Session == nil {
		return s
	}
	next := Session{Address: addr, ChainID: s.Session.ChainID}
	s.Generation++
	s.Session = &next
	s.Token = nil
	s.Balance = nil
	s.TxBeingSent = common.Hash{}
	s.Transferring = false
	return s
}

// Reset clears every session field and returns to AwaitingConnection.
func (s State) Reset() State {
	if s.Phase == PhaseNoWallet {
		return s
	}
	return State{Phase: PhaseAwaitingConnection, Generation: s.Generation + 1}
}

func (s State) current(gen uint64) bool {
	return s.Phase == PhaseActive && gen == s.Generation
}

// TokenLoaded stores token metadata read under generation gen.
func (s State) TokenLoaded(gen uint64, t TokenData) State {
	if !s.current(gen) {
		return s
	}
	s.Token = &t
	return s
}

// BalanceLoaded stores a balance read under generation gen.
func (s State) BalanceLoaded(gen uint64, balance *big.Int) State {
	if !s.current(gen) || balance == nil {
		return s
	}
	s.Balance = new(big.Int).Set(balance)
	return s
}

// BeginTransfer starts a transfer attempt. It clears the previous
// transaction error and rejects overlapping attempts.
func (s State) BeginTransfer() (State, error) {
	if s.Phase != PhaseActive || s.Session == nil {
		return s, ErrNotConnected
	}
	if s.Token == nil {
		return s, ErrContractUnavailable
	}
	if s.Transferring {
		return s, ErrTransferInFlight
	}
	s.TransactionError = nil
	s.Transferring = true
	return s, nil
}

// TransferRejected records why a transfer could not start without touching
// an attempt that is already in flight.
func (s State) TransferRejected(err error) State {
	if err != nil && !wallet.IsUserRejected(err) {
		s.TransactionError = err
	}
	return s
}

// TransferSubmitted records the pending transaction hash.
func (s State) TransferSubmitted(gen uint64, hash common.Hash) State {
	if !s.current(gen) || !s.Transferring {
		return s
	}
	s.TxBeingSent = hash
	return s
}

// TransferFinished ends the attempt. The pending hash is always cleared. A
// user-declined signature is not an error; anything else is kept as the
// transaction error.
func (s State) TransferFinished(gen uint64, err error) State {
	if !s.current(gen) {
		return s
	}
	s.TxBeingSent = common.Hash{}
	s.Transferring = false
	if err != nil && !wallet.IsUserRejected(err) {
		s.TransactionError = err
	}
	return s
}

// DismissTransactionError clears only the transaction error.
func (s State) DismissTransactionError() State {
	s.TransactionError = nil
	return s
}

// DismissNetworkError clears only the network error.
func (s State) DismissNetworkError() State {
	s.NetworkError = nil
	return s
}

// Ready reports whether balance can be displayed.
func (s State) Ready() bool {
	return s.Phase == PhaseActive && s.Session != nil && s.Token != nil && s.Balance != nil
}

// Pending reports whether a submitted transaction is waiting to be mined.
func (s State) Pending() bool {
	return s.TxBeingSent != (common.Hash{})
}

// DisplayBalance renders balance / 10^decimals followed by the symbol, or
// an empty string until Ready.
func (s State) DisplayBalance() string {
	if !s.Ready() {
		return ""
	}
	return helpers.FormatToken(s.Balance, s.Token.Decimals, s.Token.Symbol)
}
