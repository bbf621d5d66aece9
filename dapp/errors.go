package dapp

import (
	"errors"
	"math/big"
)

var (
	// ErrWalletAbsent means no wallet provider is configured. Only a restart
	// with keys in place recovers from it.
	ErrWalletAbsent = errors.New("no wallet provider detected")
	// ErrNetworkMismatch is matched by *NetworkMismatchError.
	ErrNetworkMismatch = errors.New("wrong network")
	// ErrTransactionFailed is returned when a mined transaction reports status 0.
	ErrTransactionFailed = errors.New("transaction failed")
	// ErrContractUnavailable is returned when a contract handle was never bound.
	ErrContractUnavailable = errors.New("contract unavailable")
	// ErrTransferInFlight rejects a transfer while another one is pending.
	ErrTransferInFlight = errors.New("a transfer is already in progress")
	// ErrNotConnected is returned for actions that need an active session.
	ErrNotConnected = errors.New("wallet not connected")
)

// NetworkMismatchError reports that the wallet is on another chain than the
// one the dApp is deployed to.
type NetworkMismatchError struct {
	Got     *big.Int
	Want    *big.Int
	Network string
}

func (e *NetworkMismatchError) Error() string {
	return "Please connect Metamask to " + e.Network
}

func (e *NetworkMismatchError) Is(target error) bool {
	return target == ErrNetworkMismatch
}
