package main

import (
	"math/big"

	"rebase-dapp-tui/dapp"
	"rebase-dapp-tui/rpc"
	"rebase-dapp-tui/wallet"

	"github.com/ethereum/go-ethereum/core/types"
)

// -------------------- TEA MESSAGES --------------------
// Results that carry gen were issued under that session generation and are
// dropped when the session has moved on.

// logInitMsg signals that log viewport should be initialized
type logInitMsg struct{}

// clipboardCopiedMsg indicates clipboard copy completed
type clipboardCopiedMsg struct {
	what string
}

// connectedMsg is the result of a connect request
type connectedMsg struct {
	session dapp.Session
	err     error
}

// contractsMsg carries the contracts bound for a session
type contractsMsg struct {
	gen       uint64
	contracts *dapp.Contracts
	err       error
}

// tokenMsg carries token metadata
type tokenMsg struct {
	gen  uint64
	data dapp.TokenData
	err  error
}

// balanceMsg carries a token balance read, either from the poller or from
// the refresh after a transfer
type balanceMsg struct {
	gen      uint64
	balance  *big.Int
	err      error
	fromPoll bool
}

// supplyMsg carries the token's total supply
type supplyMsg struct {
	gen    uint64
	supply *big.Int
	err    error
}

// gasMsg carries the native balance of the session account
type gasMsg struct {
	gen uint64
	gas rpc.GasBalance
	err error
}

// providerEventMsg is a wallet provider notification. ok is false once the
// event stream is closed.
type providerEventMsg struct {
	ev wallet.Event
	ok bool
}

// approvalRequest is a pending signature. The answer goes to reply.
type approvalRequest struct {
	req   wallet.ApprovalRequest
	reply chan bool
}

// approvalMsg asks the user to sign
type approvalMsg approvalRequest

// txSubmittedMsg is the result of signing and broadcasting a transfer
type txSubmittedMsg struct {
	gen uint64
	tx  *types.Transaction
	err error
}

// transferDoneMsg reports that the pending transfer was mined or failed
type transferDoneMsg struct {
	gen uint64
	err error
}

// endpointSwitchedMsg is the result of activating another RPC endpoint
type endpointSwitchedMsg struct {
	name string
	err  error
}
