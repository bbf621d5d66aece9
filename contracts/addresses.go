package contracts

import (
	"encoding/json"
	"fmt"
	"os"

	"rebase-dapp-tui/dapp"

	"github.com/ethereum/go-ethereum/common"
)

// AddressBook is the deployment output: one address per contract name
type AddressBook struct {
	Token          common.Address `json:"Token"`
	Orchestrator   common.Address `json:"Orchestrator"`
	FarmController common.Address `json:"FarmController"`
}

// DefaultAddressBook holds the addresses a fresh Hardhat node assigns to the
// first three deployments from the default account.
func DefaultAddressBook() AddressBook {
	return AddressBook{
		Token:          common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
		Orchestrator:   common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"),
		FarmController: common.HexToAddress("0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0"),
	}
}

// LoadAddressBook reads path, or returns DefaultAddressBook when path is empty
func LoadAddressBook(path string) (AddressBook, error) {
	if path == "" {
		return DefaultAddressBook(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return AddressBook{}, fmt.Errorf("read address book: %w", err)
	}

	var book AddressBook
	if err := json.Unmarshal(data, &book); err != nil {
		return AddressBook{}, fmt.Errorf("decode address book %s: %w", path, err)
	}
	return book, nil
}

// Lookup returns the address of contract name. A missing entry means the
// contract is unavailable.
func (b AddressBook) Lookup(name string) (common.Address, error) {
	var addr common.Address
	switch name {
	case NameToken:
		addr = b.Token
	case NameOrchestrator:
		addr = b.Orchestrator
	case NameFarmController:
		addr = b.FarmController
	default:
		return common.Address{}, fmt.Errorf("%w: unknown contract %q", dapp.ErrContractUnavailable, name)
	}
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: no %s address", dapp.ErrContractUnavailable, name)
	}
	return addr, nil
}
