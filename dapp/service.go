// Package dapp holds the session state machine and the operations the
// terminal front end performs against the wallet provider and the token,
// orchestrator and farm controller contracts.
package dapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"

	"rebase-dapp-tui/wallet"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Provider is the part of the wallet provider the connection flow needs
type Provider interface {
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

// Token is the elastic-supply token contract
type Token interface {
	Address() common.Address
	Name(ctx context.Context) (string, error)
	Symbol(ctx context.Context) (string, error)
	Decimals(ctx context.Context) (uint8, error)
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
	TotalSupply(ctx context.Context) (*big.Int, error)
	Transfer(ctx context.Context, to common.Address, amount *big.Int) (*types.Transaction, error)
}

// Handle is a bound contract the front end carries but does not call
type Handle interface {
	Name() string
	Address() common.Address
}

// Contracts are the three handles bound for a session
type Contracts struct {
	Token          Token
	Orchestrator   Handle
	FarmController Handle
}

// ContractFactory binds the deployed contracts for a session
type ContractFactory interface {
	Contracts(ctx context.Context, session Session) (*Contracts, error)
}

// ReceiptWaiter waits for a transaction to be included
type ReceiptWaiter interface {
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// Options configures a Service
type Options struct {
	Provider        Provider
	Factory         ContractFactory
	Waiter          ReceiptWaiter
	ExpectedChainID *big.Int
	NetworkName     string
	Logger          *log.Logger
}

// Service performs the dApp's blocking operations. It holds no session
// state; the caller threads State and Contracts through.
type Service struct {
	provider    Provider
	factory     ContractFactory
	waiter      ReceiptWaiter
	expected    *big.Int
	networkName string
	logger      *log.Logger
}

// NewService builds a Service. A nil Provider means the wallet is absent.
func NewService(o Options) *Service {
	s := &Service{
		provider:    o.Provider,
		factory:     o.Factory,
		waiter:      o.Waiter,
		expected:    o.ExpectedChainID,
		networkName: o.NetworkName,
		logger:      o.Logger,
	}
	if s.expected == nil {
		s.expected = big.NewInt(31337)
	}
	if s.networkName == "" {
		s.networkName = "Localhost:8545"
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	return s
}

// WalletPresent reports whether a provider was detected
func (s *Service) WalletPresent() bool {
	return s.provider != nil
}

// ExpectedChainID returns the only chain id the dApp accepts
func (s *Service) ExpectedChainID() *big.Int {
	return new(big.Int).Set(s.expected)
}

// NetworkName is the human name of the expected network
func (s *Service) NetworkName() string {
	return s.networkName
}

// Connect asks the provider for its accounts and validates the chain. The
// first account becomes the session address.
func (s *Service) Connect(ctx context.Context) (Session, error) {
	if s.provider == nil {
		return Session{}, ErrWalletAbsent
	}

	accounts, err := s.provider.RequestAccounts(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("request accounts: %w", err)
	}
	if len(accounts) == 0 {
		return Session{}, wallet.ErrNoAccounts
	}

	chainID, err := s.provider.ChainID(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("read chain id: %w", err)
	}
	if chainID.Cmp(s.expected) != 0 {
		s.logger.Warn("wrong network", "got", chainID.String(), "want", s.expected.String())
		return Session{}, &NetworkMismatchError{Got: chainID, Want: s.ExpectedChainID(), Network: s.networkName}
	}

	s.logger.Info("wallet connected", "address", accounts[0].Hex(), "chain", chainID.String())
	return Session{Address: accounts[0], ChainID: chainID}, nil
}

// Initialize binds token, orchestrator and farm controller for session.
func (s *Service) Initialize(ctx context.Context, session Session) (*Contracts, error) {
	if s.factory == nil {
		return nil, ErrContractUnavailable
	}
	c, err := s.factory.Contracts(ctx, session)
	if err != nil {
		if errors.Is(err, ErrContractUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrContractUnavailable, err)
	}
	if c == nil || c.Token == nil {
		return nil, ErrContractUnavailable
	}
	s.logger.Info("contracts bound", "token", c.Token.Address().Hex())
	return c, nil
}

// LoadToken reads name, symbol and decimals
func (s *Service) LoadToken(ctx context.Context, c *Contracts) (TokenData, error) {
	if c == nil || c.Token == nil {
		return TokenData{}, ErrContractUnavailable
	}

	name, err := c.Token.Name(ctx)
	if err != nil {
		return TokenData{}, fmt.Errorf("read token name: %w", err)
	}
	symbol, err := c.Token.Symbol(ctx)
	if err != nil {
		return TokenData{}, fmt.Errorf("read token symbol: %w", err)
	}
	decimals, err := c.Token.Decimals(ctx)
	if err != nil {
		return TokenData{}, fmt.Errorf("read token decimals: %w", err)
	}
	return TokenData{Name: name, Symbol: symbol, Decimals: decimals}, nil
}

// Balance reads owner's token balance
func (s *Service) Balance(ctx context.Context, c *Contracts, owner common.Address) (*big.Int, error) {
	if c == nil || c.Token == nil {
		return nil, ErrContractUnavailable
	}
	b, err := c.Token.BalanceOf(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("read balance: %w", err)
	}
	return b, nil
}

// TotalSupply reads the token's supply, which changes on every rebase
func (s *Service) TotalSupply(ctx context.Context, c *Contracts) (*big.Int, error) {
	if c == nil || c.Token == nil {
		return nil, ErrContractUnavailable
	}
	supply, err := c.Token.TotalSupply(ctx)
	if err != nil {
		return nil, fmt.Errorf("read total supply: %w", err)
	}
	return supply, nil
}

// SubmitTransfer sends transfer(to, amount) and returns once the wallet has
// signed and broadcast it.
func (s *Service) SubmitTransfer(ctx context.Context, c *Contracts, to common.Address, amount *big.Int) (*types.Transaction, error) {
	if c == nil || c.Token == nil {
		return nil, ErrContractUnavailable
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("invalid amount %v", amount)
	}

	tx, err := c.Token.Transfer(ctx, to, amount)
	if err != nil {
		if wallet.IsUserRejected(err) {
			s.logger.Info("transfer declined by user")
		} else {
			s.logger.Error("transfer submission failed", "err", err)
		}
		return nil, fmt.Errorf("submit transfer: %w", err)
	}
	s.logger.Info("transfer submitted", "hash", tx.Hash().Hex(), "to", to.Hex(), "amount", amount.String())
	return tx, nil
}

// AwaitTransfer waits for tx to be mined. A receipt with status 0 yields
// ErrTransactionFailed.
func (s *Service) AwaitTransfer(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	if s.waiter == nil {
		return nil, wallet.ErrNoBackend
	}
	receipt, err := s.waiter.WaitMined(ctx, tx)
	if err != nil {
		s.logger.Error("waiting for transfer failed", "hash", tx.Hash().Hex(), "err", err)
		return nil, fmt.Errorf("wait mined: %w", err)
	}
	if receipt.Status == types.ReceiptStatusFailed {
		s.logger.Error("transfer reverted", "hash", tx.Hash().Hex())
		return receipt, fmt.Errorf("%w: tx=%s", ErrTransactionFailed, tx.Hash().Hex())
	}
	s.logger.Info("transfer mined", "hash", tx.Hash().Hex(), "block", receipt.BlockNumber)
	return receipt, nil
}
