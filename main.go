package main

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"os"

	"rebase-dapp-tui/config"
	"rebase-dapp-tui/contracts"
	"rebase-dapp-tui/dapp"
	"rebase-dapp-tui/rpc"
	"rebase-dapp-tui/styles"
	"rebase-dapp-tui/wallet"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

// -------------------- MAIN --------------------

// loadKeys prefers keys from the environment over the keystore
func loadKeys(cfg config.Config) ([]*ecdsa.PrivateKey, error) {
	if hexKeys := config.PrivateKeys(); len(hexKeys) > 0 {
		return wallet.ParseKeys(hexKeys)
	}
	if cfg.Keystore.Dir == "" {
		return nil, nil
	}
	return wallet.LoadKeystore(cfg.Keystore.Dir, os.Getenv(config.EnvPassphrase))
}

func loadAddressBook(cfg config.Config, logger *log.Logger) contracts.AddressBook {
	book, err := contracts.LoadAddressBook(cfg.Contracts.AddressFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("address book unreadable, using defaults", "path", cfg.Contracts.AddressFile, "err", err)
		}
		return contracts.DefaultAddressBook()
	}
	return book
}

// wire builds the wallet, contract registry and service for cfg. Without
// keys or an RPC URL the service reports no wallet and only the install view
// is shown.
func wire(cfg config.Config, path string, sink *logSink, logger *log.Logger) modelOptions {
	o := modelOptions{cfg: cfg, configPath: path, logger: logger, sink: sink}
	opts := dapp.Options{
		ExpectedChainID: big.NewInt(cfg.Network.ChainID),
		NetworkName:     cfg.Network.Name,
		Logger:          logger.WithPrefix("dapp"),
	}

	keys, err := loadKeys(cfg)
	if err != nil {
		logger.Error("could not load keys", "err", err)
	}
	url := cfg.ActiveRPC()
	if len(keys) == 0 || url == "" {
		o.service = dapp.NewService(opts)
		return o
	}

	// a dead endpoint still yields a wallet; connecting then reports it
	var client *rpc.Client
	if res := rpc.Connect(url); res.Error != nil {
		logger.Error("RPC connection failed", "url", url, "err", res.Error)
	} else {
		client = res.Client
		logger.Info("RPC connected", "url", url)
	}

	o.approvals = make(chan approvalRequest)
	keyed, err := wallet.NewKeyed(client, keys,
		wallet.WithApprover(newApprover(o.approvals)),
		wallet.WithLogger(logger.WithPrefix("wallet")),
	)
	if err != nil {
		logger.Error("could not open wallet", "err", err)
		o.approvals = nil
		o.service = dapp.NewService(opts)
		return o
	}
	keyed.WatchNetwork(cfg.PollInterval())
	o.wallet = keyed
	opts.Provider = keyed
	opts.Waiter = keyed

	book := loadAddressBook(cfg, logger)
	registry, err := contracts.NewRegistry(keyed, book, cfg.Contracts.ArtifactsDir, logger.WithPrefix("contracts"))
	if err != nil {
		logger.Error("could not load contract artifacts", "dir", cfg.Contracts.ArtifactsDir, "err", err)
	} else {
		opts.Factory = registry
	}

	o.service = dapp.NewService(opts)
	return o
}

func main() {
	path := config.Path()
	cfg := config.LoadOrCreate(path)
	styles.SetTheme(cfg.Theme)

	sink := &logSink{}
	logger := newLogger(sink)
	logger.Info("config loaded", "path", path, "network", cfg.Network.Name, "chain", cfg.Network.ChainID)

	m := newModel(wire(cfg, path, sink, logger))
	p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	m.Close()
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}
