package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"io"
	"math/big"
	"sync"
	"time"

	"rebase-dapp-tui/rpc"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// EventKind distinguishes provider notifications
type EventKind int

const (
	AccountsChanged EventKind = iota + 1
	NetworkChanged
)

func (k EventKind) String() string {
	switch k {
	case AccountsChanged:
		return "accountsChanged"
	case NetworkChanged:
		return "networkChanged"
	default:
		return "unknown"
	}
}

// Event is a provider-level notification. Accounts is set for
// AccountsChanged (empty means the wallet was locked or disconnected),
// ChainID for NetworkChanged when known.
type Event struct {
	Kind     EventKind
	Accounts []common.Address
	ChainID  *big.Int
}

// ApprovalRequest describes a transaction waiting for the user's signature.
type ApprovalRequest struct {
	From  common.Address
	To    *common.Address
	Value *big.Int
	Gas   uint64
	Nonce uint64
	Data  []byte
}

// ApproveFunc asks the user to sign. Returning false declines.
type ApproveFunc func(ctx context.Context, req ApprovalRequest) bool

// Option configures a Keyed provider
type Option func(*Keyed)

// WithLogger sets the provider logger
func WithLogger(l *log.Logger) Option {
	return func(k *Keyed) { k.logger = l }
}

// WithApprover installs the signature approval gate
func WithApprover(fn ApproveFunc) Option {
	return func(k *Keyed) { k.approve = fn }
}

// WithChainID seeds the chain id used for signing when no backend is
// attached. ChainID still reports ErrNoBackend in that case.
func WithChainID(id *big.Int) Option {
	return func(k *Keyed) { k.chainID = new(big.Int).Set(id) }
}

// Keyed is a wallet provider backed by local private keys and a JSON-RPC
// endpoint. The first account in its order is the selected one.
type Keyed struct {
	mu      sync.RWMutex
	client  *rpc.Client
	keys    map[common.Address]*ecdsa.PrivateKey
	order   []common.Address
	chainID *big.Int
	approve ApproveFunc
	logger  *log.Logger

	events chan Event

	watchCancel context.CancelFunc
	wg          sync.WaitGroup
}

// NewKeyed builds a provider over the given keys. client may be nil; reads
// that need the chain then fail with ErrNoBackend.
func NewKeyed(client *rpc.Client, keys []*ecdsa.PrivateKey, opts ...Option) (*Keyed, error) {
	if len(keys) == 0 {
		return nil, ErrNoAccounts
	}
	k := &Keyed{
		client: client,
		keys:   make(map[common.Address]*ecdsa.PrivateKey, len(keys)),
		events: make(chan Event, 16),
	}
	for _, key := range keys {
		addr := crypto.PubkeyToAddress(key.PublicKey)
		if _, dup := k.keys[addr]; dup {
			continue
		}
		k.keys[addr] = key
		k.order = append(k.order, addr)
	}
	for _, opt := range opts {
		opt(k)
	}
	if k.logger == nil {
		k.logger = log.New(io.Discard)
	}
	return k, nil
}

// RequestAccounts reveals the wallet's accounts, selected account first.
func (k *Keyed) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	accounts := k.Accounts()
	if len(accounts) == 0 {
		return nil, ErrNoAccounts
	}
	return accounts, nil
}

// Accounts returns a copy of the account order
func (k *Keyed) Accounts() []common.Address {
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := make([]common.Address, len(k.order))
	copy(out, k.order)
	return out
}

// SelectAccount moves addr to the front and emits AccountsChanged.
func (k *Keyed) SelectAccount(addr common.Address) error {
	k.mu.Lock()
	if _, ok := k.keys[addr]; !ok {
		k.mu.Unlock()
		return ErrUnknownAccount
	}
	order := []common.Address{addr}
	for _, a := range k.order {
		if a != addr {
			order = append(order, a)
		}
	}
	k.order = order
	snapshot := make([]common.Address, len(order))
	copy(snapshot, order)
	k.mu.Unlock()

	k.logger.Info("account selected", "address", addr.Hex())
	k.emit(Event{Kind: AccountsChanged, Accounts: snapshot})
	return nil
}

// Disconnect emits AccountsChanged with no accounts, as a wallet does when
// it is locked.
func (k *Keyed) Disconnect() {
	k.logger.Info("wallet disconnected")
	k.emit(Event{Kind: AccountsChanged})
}

// Events delivers provider notifications
func (k *Keyed) Events() <-chan Event {
	return k.events
}

func (k *Keyed) emit(ev Event) {
	select {
	case k.events <- ev:
	default:
		k.logger.Warn("event dropped, listener is behind", "event", ev.Kind.String())
	}
}

// ChainID returns the chain id of the attached endpoint
func (k *Keyed) ChainID(ctx context.Context) (*big.Int, error) {
	k.mu.RLock()
	client := k.client
	k.mu.RUnlock()

	if client == nil || client.Client == nil {
		return nil, ErrNoBackend
	}

	id, err := client.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	k.mu.Lock()
	k.chainID = new(big.Int).Set(id)
	k.mu.Unlock()
	return id, nil
}

// Client returns the current RPC client, nil when none is attached
func (k *Keyed) Client() *rpc.Client {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.client
}

// Backend returns the contract backend of the current endpoint
func (k *Keyed) Backend() (bind.ContractBackend, error) {
	client := k.Client()
	if client == nil || client.Client == nil {
		return nil, ErrNoBackend
	}
	return client.Client, nil
}

// SwitchEndpoint dials url, replaces the current client and emits
// NetworkChanged.
func (k *Keyed) SwitchEndpoint(url string) error {
	res := rpc.Connect(url)
	if res.Error != nil {
		return res.Error
	}

	k.mu.Lock()
	old := k.client
	k.client = res.Client
	k.chainID = nil
	k.mu.Unlock()

	if old != nil && old.Client != nil {
		old.Close()
	}
	k.logger.Info("endpoint switched", "url", url)
	k.emit(Event{Kind: NetworkChanged})
	return nil
}

// signingChainID prefers the live chain and falls back to the seeded one
func (k *Keyed) signingChainID(ctx context.Context) (*big.Int, error) {
	id, err := k.ChainID(ctx)
	if !errors.Is(err, ErrNoBackend) {
		return id, err
	}
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.chainID == nil {
		return nil, ErrNoBackend
	}
	return new(big.Int).Set(k.chainID), nil
}

// Transactor returns signing options for from. The signer consults the
// approval gate before signing; a declined request fails with
// ErrUserRejected.
func (k *Keyed) Transactor(ctx context.Context, from common.Address) (*bind.TransactOpts, error) {
	k.mu.RLock()
	key, ok := k.keys[from]
	approve := k.approve
	k.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownAccount
	}

	chainID, err := k.signingChainID(ctx)
	if err != nil {
		return nil, err
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, err
	}
	sign := opts.Signer
	opts.Signer = func(addr common.Address, tx *types.Transaction) (*types.Transaction, error) {
		if approve != nil && !approve(ctx, approvalRequest(addr, tx)) {
			k.logger.Info("signature declined", "from", addr.Hex())
			return nil, ErrUserRejected
		}
		return sign(addr, tx)
	}
	opts.Context = ctx
	return opts, nil
}

func approvalRequest(from common.Address, tx *types.Transaction) ApprovalRequest {
	return ApprovalRequest{
		From:  from,
		To:    tx.To(),
		Value: tx.Value(),
		Gas:   tx.Gas(),
		Nonce: tx.Nonce(),
		Data:  tx.Data(),
	}
}

// WaitMined blocks until tx is included and returns its receipt
func (k *Keyed) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	client := k.Client()
	if client == nil || client.Client == nil {
		return nil, ErrNoBackend
	}
	return bind.WaitMined(ctx, client.Client, tx)
}

// WatchNetwork polls the chain id every interval and emits NetworkChanged
// when it moves. Calling it twice is a no-op.
func (k *Keyed) WatchNetwork(interval time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	k.mu.Lock()
	if k.watchCancel != nil {
		k.mu.Unlock()
		cancel()
		return
	}
	k.watchCancel = cancel
	k.mu.Unlock()

	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				k.checkNetwork(ctx)
			}
		}
	}()
}

func (k *Keyed) checkNetwork(ctx context.Context) {
	k.mu.RLock()
	client := k.client
	prev := k.chainID
	k.mu.RUnlock()
	if client == nil || client.Client == nil {
		return
	}

	cctx, cancel := context.WithTimeout(ctx, 4*time.Second)
	defer cancel()
	id, err := client.ChainID(cctx)
	if err != nil {
		k.logger.Debug("chain id poll failed", "err", err)
		return
	}

	k.mu.Lock()
	k.chainID = new(big.Int).Set(id)
	k.mu.Unlock()

	if prev != nil && prev.Cmp(id) != 0 {
		k.logger.Warn("network changed", "from", prev.String(), "to", id.String())
		k.emit(Event{Kind: NetworkChanged, ChainID: id})
	}
}

// Close stops the network watcher and closes the RPC client
func (k *Keyed) Close() {
	k.mu.Lock()
	cancel := k.watchCancel
	k.watchCancel = nil
	client := k.client
	k.client = nil
	k.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	k.wg.Wait()
	if client != nil && client.Client != nil {
		client.Close()
	}
}
