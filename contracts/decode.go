package contracts

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var (
	tokenABIOnce sync.Once
	tokenABI     abi.ABI
	tokenABIErr  error
)

func embeddedTokenABI() (abi.ABI, error) {
	tokenABIOnce.Do(func() {
		tokenABI, tokenABIErr = LoadABI("", NameToken)
	})
	return tokenABI, tokenABIErr
}

// DecodeTransfer unpacks token transfer calldata into its recipient and
// amount. Calldata for any other method is an error.
func DecodeTransfer(data []byte) (common.Address, *big.Int, error) {
	if len(data) < 4 {
		return common.Address{}, nil, errors.New("calldata too short")
	}
	parsed, err := embeddedTokenABI()
	if err != nil {
		return common.Address{}, nil, err
	}
	method, err := parsed.MethodById(data[:4])
	if err != nil {
		return common.Address{}, nil, err
	}
	if method.Name != "transfer" {
		return common.Address{}, nil, fmt.Errorf("not a transfer: %s", method.Name)
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("unpack transfer: %w", err)
	}
	to, ok := args[0].(common.Address)
	if !ok {
		return common.Address{}, nil, errors.New("transfer recipient is not an address")
	}
	amount, ok := args[1].(*big.Int)
	if !ok {
		return common.Address{}, nil, errors.New("transfer amount is not a uint256")
	}
	return to, amount, nil
}
