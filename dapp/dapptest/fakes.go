// Package dapptest provides in-memory stand-ins for the wallet provider and
// contracts used by dapp and the front end in tests.
package dapptest

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"rebase-dapp-tui/dapp"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Provider is a scripted wallet provider
type Provider struct {
	mu       sync.Mutex
	accounts []common.Address
	chainID  *big.Int
	err      error
	requests int
}

// NewProvider returns a provider reporting accounts on chainID
func NewProvider(chainID int64, accounts ...common.Address) *Provider {
	return &Provider{accounts: accounts, chainID: big.NewInt(chainID)}
}

// SetError makes every call fail with err
func (p *Provider) SetError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// SetChainID changes the reported chain
func (p *Provider) SetChainID(id int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.chainID = big.NewInt(id)
}

func (p *Provider) RequestAccounts(context.Context) ([]common.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests++
	if p.err != nil {
		return nil, p.err
	}
	out := make([]common.Address, len(p.accounts))
	copy(out, p.accounts)
	return out, nil
}

func (p *Provider) ChainID(context.Context) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return new(big.Int).Set(p.chainID), nil
}

// Requests counts RequestAccounts calls
func (p *Provider) Requests() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests
}

// Token is an in-memory ERC-20 whose transfers move balances immediately
type Token struct {
	mu           sync.Mutex
	addr         common.Address
	name         string
	symbol       string
	decimals     uint8
	signer       common.Address
	balances     map[common.Address]*big.Int
	supply       *big.Int
	transferErr  error
	readErr      error
	nonce        uint64
	balanceCalls int
}

// NewToken returns a token where signer holds balance
func NewToken(name, symbol string, decimals uint8, signer common.Address, balance *big.Int) *Token {
	return &Token{
		addr:     common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
		name:     name,
		symbol:   symbol,
		decimals: decimals,
		signer:   signer,
		balances: map[common.Address]*big.Int{signer: new(big.Int).Set(balance)},
		supply:   new(big.Int).Set(balance),
	}
}

// Rebase sets the total supply
func (t *Token) Rebase(supply *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.supply = new(big.Int).Set(supply)
}

// FailTransfers makes Transfer return err
func (t *Token) FailTransfers(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.transferErr = err
}

// FailReads makes every view call return err
func (t *Token) FailReads(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.readErr = err
}

// BalanceCalls counts BalanceOf calls
func (t *Token) BalanceCalls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balanceCalls
}

func (t *Token) Address() common.Address { return t.addr }

func (t *Token) Name(context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.name, t.readErr
}

func (t *Token) Symbol(context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.symbol, t.readErr
}

func (t *Token) Decimals(context.Context) (uint8, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.decimals, t.readErr
}

func (t *Token) BalanceOf(_ context.Context, owner common.Address) (*big.Int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.balanceCalls++
	if t.readErr != nil {
		return nil, t.readErr
	}
	if b, ok := t.balances[owner]; ok {
		return new(big.Int).Set(b), nil
	}
	return big.NewInt(0), nil
}

func (t *Token) TotalSupply(context.Context) (*big.Int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.readErr != nil {
		return nil, t.readErr
	}
	return new(big.Int).Set(t.supply), nil
}

func (t *Token) Transfer(_ context.Context, to common.Address, amount *big.Int) (*types.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.transferErr != nil {
		return nil, t.transferErr
	}
	from := t.balances[t.signer]
	if from == nil || from.Cmp(amount) < 0 {
		return nil, errors.New("execution reverted: transfer amount exceeds balance")
	}
	t.balances[t.signer] = new(big.Int).Sub(from, amount)
	prev := t.balances[to]
	if prev == nil {
		prev = big.NewInt(0)
	}
	t.balances[to] = new(big.Int).Add(prev, amount)

	tx := types.NewTransaction(t.nonce, t.addr, big.NewInt(0), 60000, big.NewInt(1), append(to.Bytes(), amount.Bytes()...))
	t.nonce++
	return tx, nil
}

// Handle is a named contract address
type Handle struct {
	ContractName string
	Addr         common.Address
}

func (h Handle) Name() string            { return h.ContractName }
func (h Handle) Address() common.Address { return h.Addr }

// Factory hands out fixed contracts and counts bind calls
type Factory struct {
	mu        sync.Mutex
	contracts *dapp.Contracts
	err       error
	calls     int
}

// NewFactory returns a factory binding token plus placeholder orchestrator
// and farm controller handles
func NewFactory(token dapp.Token) *Factory {
	return &Factory{contracts: &dapp.Contracts{
		Token:          token,
		Orchestrator:   Handle{ContractName: "Orchestrator", Addr: common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")},
		FarmController: Handle{ContractName: "FarmController", Addr: common.HexToAddress("0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0")},
	}}
}

// SetError makes Contracts fail with err
func (f *Factory) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Calls counts Contracts calls
func (f *Factory) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *Factory) Contracts(context.Context, dapp.Session) (*dapp.Contracts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.contracts, nil
}

// Waiter mines every transaction with a fixed status
type Waiter struct {
	Status uint64
	Err    error
}

func (w Waiter) WaitMined(_ context.Context, tx *types.Transaction) (*types.Receipt, error) {
	if w.Err != nil {
		return nil, w.Err
	}
	return &types.Receipt{Status: w.Status, TxHash: tx.Hash(), BlockNumber: big.NewInt(1)}, nil
}
