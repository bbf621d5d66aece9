package main

import (
	"context"
	"math/big"
	"time"

	"rebase-dapp-tui/dapp"
	"rebase-dapp-tui/rpc"
	"rebase-dapp-tui/wallet"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// -------------------- COMMAND FUNCTIONS --------------------
// Functions that return tea.Cmd for async operations

const (
	connectTimeout = 10 * time.Second
	readTimeout    = 8 * time.Second
	// signing waits for the user, mining for the node
	transferTimeout = 5 * time.Minute
)

// connectWallet requests the provider's accounts and validates the chain
func connectWallet(ctx context.Context, svc *dapp.Service) tea.Cmd {
	return func() tea.Msg {
		cctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		session, err := svc.Connect(cctx)
		return connectedMsg{session: session, err: err}
	}
}

// initContracts binds the session's contracts
func initContracts(ctx context.Context, svc *dapp.Service, gen uint64, session dapp.Session) tea.Cmd {
	return func() tea.Msg {
		cctx, cancel := context.WithTimeout(ctx, readTimeout)
		defer cancel()
		c, err := svc.Initialize(cctx, session)
		return contractsMsg{gen: gen, contracts: c, err: err}
	}
}

// loadToken reads the token's name, symbol and decimals
func loadToken(ctx context.Context, svc *dapp.Service, gen uint64, c *dapp.Contracts) tea.Cmd {
	return func() tea.Msg {
		cctx, cancel := context.WithTimeout(ctx, readTimeout)
		defer cancel()
		data, err := svc.LoadToken(cctx, c)
		return tokenMsg{gen: gen, data: data, err: err}
	}
}

// refreshBalance reads the balance once, outside the polling cycle
func refreshBalance(ctx context.Context, svc *dapp.Service, gen uint64, c *dapp.Contracts, owner common.Address) tea.Cmd {
	return func() tea.Msg {
		cctx, cancel := context.WithTimeout(ctx, readTimeout)
		defer cancel()
		b, err := svc.Balance(cctx, c, owner)
		return balanceMsg{gen: gen, balance: b, err: err}
	}
}

// loadSupply reads the token's total supply
func loadSupply(ctx context.Context, svc *dapp.Service, gen uint64, c *dapp.Contracts) tea.Cmd {
	return func() tea.Msg {
		cctx, cancel := context.WithTimeout(ctx, readTimeout)
		defer cancel()
		supply, err := svc.TotalSupply(cctx, c)
		return supplyMsg{gen: gen, supply: supply, err: err}
	}
}

// loadGas reads the native balance of owner
func loadGas(ctx context.Context, client *rpc.Client, gen uint64, owner common.Address) tea.Cmd {
	return func() tea.Msg {
		cctx, cancel := context.WithTimeout(ctx, readTimeout)
		defer cancel()
		gas, err := rpc.LoadGasBalance(cctx, client, owner)
		return gasMsg{gen: gen, gas: gas, err: err}
	}
}

// pollBalance returns the poller body: read the balance and hand it to the
// listener, giving up when the poller stops
func pollBalance(svc *dapp.Service, gen uint64, c *dapp.Contracts, owner common.Address, out chan<- balanceMsg) func(context.Context) {
	return func(ctx context.Context) {
		cctx, cancel := context.WithTimeout(ctx, readTimeout)
		b, err := svc.Balance(cctx, c, owner)
		cancel()
		if ctx.Err() != nil {
			return
		}
		select {
		case out <- balanceMsg{gen: gen, balance: b, err: err, fromPoll: true}:
		case <-ctx.Done():
		}
	}
}

// waitForPoll delivers the next poll result, or nothing once done closes
func waitForPoll(ch <-chan balanceMsg, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-ch:
			return msg
		case <-done:
			return nil
		}
	}
}

// waitForEvent delivers the next provider notification
func waitForEvent(events <-chan wallet.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		return providerEventMsg{ev: ev, ok: ok}
	}
}

// waitForApproval delivers the next signature request
func waitForApproval(ch <-chan approvalRequest) tea.Cmd {
	return func() tea.Msg {
		return approvalMsg(<-ch)
	}
}

// newApprover returns the provider's approval gate. Each request is handed
// to the UI over ch and blocks until the user answers or ctx ends.
func newApprover(ch chan<- approvalRequest) wallet.ApproveFunc {
	return func(ctx context.Context, req wallet.ApprovalRequest) bool {
		reply := make(chan bool, 1)
		select {
		case ch <- approvalRequest{req: req, reply: reply}:
		case <-ctx.Done():
			return false
		}
		select {
		case ok := <-reply:
			return ok
		case <-ctx.Done():
			return false
		}
	}
}

// submitTransfer signs and broadcasts transfer(to, amount)
func submitTransfer(ctx context.Context, svc *dapp.Service, gen uint64, c *dapp.Contracts, to common.Address, amount *big.Int) tea.Cmd {
	return func() tea.Msg {
		cctx, cancel := context.WithTimeout(ctx, transferTimeout)
		defer cancel()
		tx, err := svc.SubmitTransfer(cctx, c, to, amount)
		return txSubmittedMsg{gen: gen, tx: tx, err: err}
	}
}

// awaitTransfer waits for tx to be mined
func awaitTransfer(ctx context.Context, svc *dapp.Service, gen uint64, tx *types.Transaction) tea.Cmd {
	return func() tea.Msg {
		cctx, cancel := context.WithTimeout(ctx, transferTimeout)
		defer cancel()
		_, err := svc.AwaitTransfer(cctx, tx)
		return transferDoneMsg{gen: gen, err: err}
	}
}

// switchEndpoint points the wallet at another RPC endpoint
func switchEndpoint(w walletControl, name, url string) tea.Cmd {
	return func() tea.Msg {
		return endpointSwitchedMsg{name: name, err: w.SwitchEndpoint(url)}
	}
}

// initLogViewport initializes the log viewport
func initLogViewport() tea.Cmd {
	return func() tea.Msg {
		return logInitMsg{}
	}
}

// copyToClipboard copies text to clipboard
func copyToClipboard(text, what string) tea.Cmd {
	return func() tea.Msg {
		err := clipboard.WriteAll(text)
		if err == nil {
			return clipboardCopiedMsg{what: what}
		}
		return nil
	}
}

// clearClipboardMsg waits 2 seconds then sends a message to clear clipboard feedback
func clearClipboardMsg() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return struct{ clearClipboard bool }{true}
	})
}

// addLog writes to the log panel
func (m *model) addLog(logType, message string, keyvals ...interface{}) {
	if m.logger == nil {
		return
	}

	switch logType {
	case "info":
		m.logger.Info(message, keyvals...)
	case "success":
		m.logger.Info("✓ "+message, keyvals...)
	case "error":
		m.logger.Error(message, keyvals...)
	case "warning":
		m.logger.Warn(message, keyvals...)
	case "debug":
		m.logger.Debug(message, keyvals...)
	default:
		m.logger.Print(message, keyvals...)
	}

	m.updateLogViewport()
}

// updateLogViewport shows the latest log lines when the panel is open
func (m *model) updateLogViewport() {
	if !m.logReady || m.logSink == nil {
		return
	}
	n := m.logSink.Len()
	if n == m.logLen {
		return
	}
	m.logLen = n
	m.logViewport.SetContent(m.logSink.String())
	m.logViewport.GotoBottom()
}
