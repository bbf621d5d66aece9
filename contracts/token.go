package contracts

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrReadOnly is returned by Transfer on a token bound without a signer
var ErrReadOnly = errors.New("contracts: token bound without a signer")

// TransactorFunc returns signing options for from
type TransactorFunc func(ctx context.Context, from common.Address) (*bind.TransactOpts, error)

// Token is the elastic-supply ERC-20 bound for one session account
type Token struct {
	address  common.Address
	from     common.Address
	contract *bind.BoundContract
	transact TransactorFunc
}

// NewToken binds the token at address. Calls are made as from and
// transactions are signed through transact.
func NewToken(address common.Address, parsed abi.ABI, backend bind.ContractBackend, from common.Address, transact TransactorFunc) *Token {
	return &Token{
		address:  address,
		from:     from,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
		transact: transact,
	}
}

func (t *Token) Address() common.Address { return t.address }

func (t *Token) callOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx, From: t.from}
}

func (t *Token) Name(ctx context.Context) (string, error) {
	var out []interface{}
	if err := t.contract.Call(t.callOpts(ctx), &out, "name"); err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

func (t *Token) Symbol(ctx context.Context) (string, error) {
	var out []interface{}
	if err := t.contract.Call(t.callOpts(ctx), &out, "symbol"); err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

func (t *Token) Decimals(ctx context.Context) (uint8, error) {
	var out []interface{}
	if err := t.contract.Call(t.callOpts(ctx), &out, "decimals"); err != nil {
		return 0, err
	}
	return *abi.ConvertType(out[0], new(uint8)).(*uint8), nil
}

func (t *Token) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	var out []interface{}
	if err := t.contract.Call(t.callOpts(ctx), &out, "balanceOf", owner); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// TotalSupply reads the current, rebased supply
func (t *Token) TotalSupply(ctx context.Context) (*big.Int, error) {
	var out []interface{}
	if err := t.contract.Call(t.callOpts(ctx), &out, "totalSupply"); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// Transfer sends transfer(to, amount) signed by the session account
func (t *Token) Transfer(ctx context.Context, to common.Address, amount *big.Int) (*types.Transaction, error) {
	if t.transact == nil {
		return nil, ErrReadOnly
	}
	opts, err := t.transact(ctx, t.from)
	if err != nil {
		return nil, err
	}
	return t.contract.Transact(opts, "transfer", to, amount)
}

// Handle is a bound contract the front end displays but does not call
type Handle struct {
	name     string
	address  common.Address
	contract *bind.BoundContract
}

// NewHandle binds the contract name at address
func NewHandle(name string, address common.Address, parsed abi.ABI, backend bind.ContractBackend) *Handle {
	return &Handle{
		name:     name,
		address:  address,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}
}

func (h *Handle) Name() string            { return h.name }
func (h *Handle) Address() common.Address { return h.address }
