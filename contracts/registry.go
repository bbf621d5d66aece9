package contracts

import (
	"context"
	"fmt"
	"io"

	"rebase-dapp-tui/dapp"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// Source is the wallet side a registry binds against
type Source interface {
	Backend() (bind.ContractBackend, error)
	Transactor(ctx context.Context, from common.Address) (*bind.TransactOpts, error)
}

// Registry creates the session's contract handles. It satisfies
// dapp.ContractFactory.
type Registry struct {
	source Source
	book   AddressBook
	abis   map[string]abi.ABI
	logger *log.Logger
}

// NewRegistry parses every artifact up front so a broken artifacts
// directory fails at start rather than on connect.
func NewRegistry(source Source, book AddressBook, artifactsDir string, logger *log.Logger) (*Registry, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	abis := make(map[string]abi.ABI, len(Names))
	for _, name := range Names {
		parsed, err := LoadABI(artifactsDir, name)
		if err != nil {
			return nil, err
		}
		abis[name] = parsed
	}
	return &Registry{source: source, book: book, abis: abis, logger: logger}, nil
}

// Contracts binds token, orchestrator and farm controller for session.
// Every address must hold code on the current chain.
func (r *Registry) Contracts(ctx context.Context, session dapp.Session) (*dapp.Contracts, error) {
	if r.source == nil {
		return nil, fmt.Errorf("%w: no wallet provider", dapp.ErrContractUnavailable)
	}
	backend, err := r.source.Backend()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dapp.ErrContractUnavailable, err)
	}

	addrs := make(map[string]common.Address, len(Names))
	for _, name := range Names {
		addr, err := r.book.Lookup(name)
		if err != nil {
			return nil, err
		}
		code, err := backend.CodeAt(ctx, addr, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s code: %v", dapp.ErrContractUnavailable, name, err)
		}
		if len(code) == 0 {
			return nil, fmt.Errorf("%w: no %s code at %s", dapp.ErrContractUnavailable, name, addr.Hex())
		}
		addrs[name] = addr
	}

	c := &dapp.Contracts{
		Token:          NewToken(addrs[NameToken], r.abis[NameToken], backend, session.Address, r.source.Transactor),
		Orchestrator:   NewHandle(NameOrchestrator, addrs[NameOrchestrator], r.abis[NameOrchestrator], backend),
		FarmController: NewHandle(NameFarmController, addrs[NameFarmController], r.abis[NameFarmController], backend),
	}
	r.logger.Debug("contracts bound", "account", session.Address.Hex(),
		"token", addrs[NameToken].Hex(),
		"orchestrator", addrs[NameOrchestrator].Hex(),
		"farmController", addrs[NameFarmController].Hex())
	return c, nil
}
