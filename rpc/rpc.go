package rpc

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ErrNoClient is returned when a read is attempted without a dialed endpoint.
var ErrNoClient = errors.New("no RPC client (set ETH_RPC_URL)")

// Client wraps an Ethereum RPC client
type Client struct {
	*ethclient.Client
	URL string
}

// ConnectResult holds the result of an RPC connection attempt
type ConnectResult struct {
	Client *Client
	Error  error
}

// Connect attempts to connect to an Ethereum RPC endpoint
func Connect(url string) ConnectResult {
	return ConnectWithTimeout(url, 8*time.Second)
}

// ConnectWithTimeout attempts to connect with a custom timeout
func ConnectWithTimeout(url string, timeout time.Duration) ConnectResult {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return ConnectResult{Client: nil, Error: err}
	}

	return ConnectResult{
		Client: &Client{
			Client: client,
			URL:    url,
		},
		Error: nil,
	}
}

// GasBalance is the native coin balance of the session account, used to
// tell the user whether a transfer can pay for gas.
type GasBalance struct {
	Address  string
	Wei      *big.Int
	LoadedAt time.Time
}

// LoadGasBalance fetches the native balance for an address
func LoadGasBalance(ctx context.Context, client *Client, addr common.Address) (GasBalance, error) {
	b := GasBalance{Address: addr.Hex(), Wei: big.NewInt(0), LoadedAt: time.Now()}
	if client == nil || client.Client == nil {
		return b, ErrNoClient
	}

	wei, err := client.BalanceAt(ctx, addr, nil)
	if err != nil {
		return b, err
	}
	b.Wei = wei
	return b, nil
}
