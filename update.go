package main

import (
	"errors"
	"strings"
	"time"

	"rebase-dapp-tui/config"
	"rebase-dapp-tui/dapp"
	"rebase-dapp-tui/helpers"
	"rebase-dapp-tui/styles"
	"rebase-dapp-tui/views/accounts"
	logview "rebase-dapp-tui/views/log"
	"rebase-dapp-tui/views/receive"
	"rebase-dapp-tui/views/transfer"
	"rebase-dapp-tui/wallet"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"
)

// -------------------- UPDATE --------------------

// Temporary form storage
var (
	tempRPCFormName string
	tempRPCFormURL  string
)

func validateRPCURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("url is required")
	}
	if !strings.Contains(s, "://") {
		return errors.New("url needs a scheme (http://, https://, ws://)")
	}
	return nil
}

func (m *model) createAddRPCForm() {
	tempRPCFormName = ""
	tempRPCFormURL = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("RPC Name").
				Description("A friendly name for this RPC endpoint").
				Value(&tempRPCFormName).
				Placeholder("Hardhat"),

			huh.NewInput().
				Title("RPC URL").
				Description("The complete RPC URL").
				Value(&tempRPCFormURL).
				Placeholder("http://127.0.0.1:8545").
				Validate(validateRPCURL),
		),
	).WithTheme(huh.ThemeCatppuccin())

	m.form.Init()
}

func (m *model) createEditRPCForm(idx int) {
	if idx < 0 || idx >= len(m.cfg.RPCURLs) {
		return
	}

	r := m.cfg.RPCURLs[idx]
	tempRPCFormName = r.Name
	tempRPCFormURL = r.URL

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("RPC Name").
				Value(&tempRPCFormName).
				Placeholder("My Node"),

			huh.NewInput().
				Title("RPC URL").
				Value(&tempRPCFormURL).
				Placeholder("http://...").
				Validate(validateRPCURL),
		),
	).WithTheme(huh.ThemeCatppuccin())

	m.form.Init()
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer m.updateLogViewport()

	// The signing dialog is modal
	if m.signReq != nil {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			return m, m.updateSignDialog(keyMsg)
		}
	}

	var cmds []tea.Cmd

	// Forms see every message but only keys stop here, so async results
	// keep flowing while the user types
	if m.activePage == config.PageToken && m.transferForm != nil {
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
			m.transferForm = nil
			return m, nil
		}

		form, cmd := m.transferForm.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.transferForm = f

			if m.transferForm.State == huh.StateCompleted {
				return m, m.finishTransferForm()
			}
			if m.transferForm.State == huh.StateAborted {
				m.transferForm = nil
				return m, nil
			}
		}
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, cmd
		}
		cmds = append(cmds, cmd)
	}

	if m.activePage == config.PageSettings && (m.settingsMode == "add" || m.settingsMode == "edit") && m.form != nil {
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
			m.settingsMode = "list"
			m.form = nil
			return m, nil
		}

		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f

			if m.form.State == huh.StateCompleted {
				m.finishRPCForm()
				return m, nil
			}
			if m.form.State == huh.StateAborted {
				m.settingsMode = "list"
				m.form = nil
				return m, nil
			}
		}
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, cmd
		}
		cmds = append(cmds, cmd)
	}

	switch msg := msg.(type) {

	case logInitMsg:
		if !m.logEnabled {
			return m, tea.Batch(cmds...)
		}
		m.logReady = true
		m.logLen = -1
		m.addLog("info", "Logger enabled")
		return m, tea.Batch(cmds...)

	case tea.WindowSizeMsg:
		m.w, m.h = msg.Width, msg.Height
		m.logViewport.Width = helpers.Max(0, msg.Width-6)
		m.logViewport.Height = logview.PanelHeight(msg.Height)
		m.help.Width = msg.Width
		if m.logReady {
			m.logLen = -1
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
		if m.logEnabled && !m.logReady {
			m.logSpinner, cmd = m.logSpinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case connectedMsg:
		if m.state.Phase != dapp.PhaseConnecting {
			return m, tea.Batch(cmds...)
		}
		if msg.err != nil {
			if wallet.IsUserRejected(msg.err) {
				// a declined request keeps whatever error was showing
				m.state = m.state.ConnectFailed(m.state.NetworkError)
				m.addLog("info", "Connection request declined")
			} else {
				m.state = m.state.ConnectFailed(msg.err)
				m.addLog("error", "Wallet connection failed", "err", msg.err)
			}
			return m, tea.Batch(cmds...)
		}
		m.state = m.state.Connected(msg.session)
		m.addLog("success", "Wallet connected", "address", helpers.ShortenAddr(msg.session.Address.Hex()))
		cmds = append(cmds, m.beginSession())
		return m, tea.Batch(cmds...)

	case contractsMsg:
		if !m.current(msg.gen) {
			return m, tea.Batch(cmds...)
		}
		addr := m.state.Session.Address
		cmds = append(cmds, loadGas(m.ctx, m.client(), msg.gen, addr))
		if msg.err != nil {
			m.contractsErr = msg.err
			m.addLog("error", "Contracts unavailable", "err", msg.err)
			return m, tea.Batch(cmds...)
		}
		m.contracts = msg.contracts
		cmds = append(cmds, m.startPolling(), loadToken(m.ctx, m.svc, msg.gen, msg.contracts))
		return m, tea.Batch(cmds...)

	case tokenMsg:
		if !m.current(msg.gen) {
			return m, tea.Batch(cmds...)
		}
		if msg.err != nil {
			m.contractsErr = msg.err
			m.addLog("error", "Reading token failed", "err", msg.err)
			return m, tea.Batch(cmds...)
		}
		m.contractsErr = nil
		m.state = m.state.TokenLoaded(msg.gen, msg.data)
		m.addLog("info", "Token loaded", "name", msg.data.Name, "symbol", msg.data.Symbol, "decimals", msg.data.Decimals)
		cmds = append(cmds, loadSupply(m.ctx, m.svc, msg.gen, m.contracts))
		return m, tea.Batch(cmds...)

	case supplyMsg:
		if !m.current(msg.gen) {
			return m, tea.Batch(cmds...)
		}
		if msg.err != nil {
			m.addLog("debug", "Total supply unavailable", "err", msg.err)
			return m, tea.Batch(cmds...)
		}
		m.supply = msg.supply
		return m, tea.Batch(cmds...)

	case balanceMsg:
		current := m.current(msg.gen)
		if msg.err != nil {
			// polls repeat every interval, log each distinct failure once
			if current && msg.err.Error() != m.lastPollErr {
				m.lastPollErr = msg.err.Error()
				m.addLog("warning", "Balance read failed", "err", msg.err)
			}
		} else {
			m.lastPollErr = ""
			m.state = m.state.BalanceLoaded(msg.gen, msg.balance)
		}
		if msg.fromPoll && current && m.poller != nil {
			cmds = append(cmds, waitForPoll(m.polls, m.poller.Done()))
		}
		return m, tea.Batch(cmds...)

	case gasMsg:
		if !m.current(msg.gen) {
			return m, tea.Batch(cmds...)
		}
		if msg.err != nil {
			m.addLog("debug", "Gas balance unavailable", "err", msg.err)
			return m, tea.Batch(cmds...)
		}
		m.gas = msg.gas
		return m, tea.Batch(cmds...)

	case providerEventMsg:
		if !msg.ok {
			m.addLog("warning", "Wallet event stream closed")
			return m, tea.Batch(cmds...)
		}
		cmds = append(cmds, m.handleProviderEvent(msg.ev))
		if m.wallet != nil {
			cmds = append(cmds, waitForEvent(m.wallet.Events()))
		}
		return m, tea.Batch(cmds...)

	case approvalMsg:
		req := approvalRequest(msg)
		if m.approvals != nil {
			cmds = append(cmds, waitForApproval(m.approvals))
		}
		if m.signReq != nil || m.state.Phase != dapp.PhaseActive {
			req.reply <- false
			m.addLog("warning", "Signature request declined, another one is open or the session ended")
			return m, tea.Batch(cmds...)
		}
		m.signReq = &req
		m.signYesSelected = true
		m.addLog("info", "Signature requested", "from", helpers.ShortenAddr(req.req.From.Hex()))
		return m, tea.Batch(cmds...)

	case txSubmittedMsg:
		if !m.current(msg.gen) {
			return m, tea.Batch(cmds...)
		}
		if msg.err != nil {
			if wallet.IsUserRejected(msg.err) {
				m.addLog("info", "Transfer cancelled")
			} else {
				m.addLog("error", "Transfer failed", "err", msg.err)
			}
			m.state = m.state.TransferFinished(msg.gen, msg.err)
			return m, tea.Batch(cmds...)
		}
		m.state = m.state.TransferSubmitted(msg.gen, msg.tx.Hash())
		m.addLog("info", "Waiting for transaction", "hash", helpers.ShortenAddr(msg.tx.Hash().Hex()))
		cmds = append(cmds, awaitTransfer(m.ctx, m.svc, msg.gen, msg.tx))
		return m, tea.Batch(cmds...)

	case transferDoneMsg:
		if !m.current(msg.gen) {
			return m, tea.Batch(cmds...)
		}
		m.state = m.state.TransferFinished(msg.gen, msg.err)
		if msg.err != nil {
			m.addLog("error", "Transaction failed", "err", msg.err)
			return m, tea.Batch(cmds...)
		}
		m.addLog("success", "Transfer mined")
		if m.contracts != nil {
			addr := m.state.Session.Address
			cmds = append(cmds,
				refreshBalance(m.ctx, m.svc, msg.gen, m.contracts, addr),
				loadSupply(m.ctx, m.svc, msg.gen, m.contracts),
				loadGas(m.ctx, m.client(), msg.gen, addr),
			)
		}
		return m, tea.Batch(cmds...)

	case endpointSwitchedMsg:
		if msg.err != nil {
			m.settingsNotice = "Could not switch to " + msg.name + ": " + msg.err.Error()
			m.addLog("error", "Switching RPC endpoint failed", "name", msg.name, "err", msg.err)
			return m, tea.Batch(cmds...)
		}
		m.settingsNotice = ""
		m.addLog("success", "RPC endpoint active", "name", msg.name)
		return m, tea.Batch(cmds...)

	case clipboardCopiedMsg:
		m.copiedMsg = "✓ Copied " + msg.what
		m.copiedMsgTime = time.Now()
		cmds = append(cmds, clearClipboardMsg())
		return m, tea.Batch(cmds...)

	case tea.MouseMsg:
		if m.showAccounts && msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			if addr := accounts.HitTest(m.clickableAreas, msg.X, msg.Y); addr != "" {
				m.showAccounts = false
				m.selectAccount(common.HexToAddress(addr))
			}
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	default:
		if msg, ok := msg.(struct{ clearClipboard bool }); ok && msg.clearClipboard {
			if time.Since(m.copiedMsgTime) >= 2*time.Second {
				m.copiedMsg = ""
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// current reports whether a result issued under gen still applies
func (m *model) current(gen uint64) bool {
	return m.state.Phase == dapp.PhaseActive && m.state.Session != nil && gen == m.state.Generation
}

func (m *model) handleProviderEvent(ev wallet.Event) tea.Cmd {
	switch ev.Kind {
	case wallet.AccountsChanged:
		if len(ev.Accounts) == 0 {
			m.resetSession("wallet disconnected")
			return nil
		}
		if m.state.Phase != dapp.PhaseActive {
			m.addLog("info", "Wallet account changed", "address", helpers.ShortenAddr(ev.Accounts[0].Hex()))
			return nil
		}
		if m.state.Session != nil && m.state.Session.Address == ev.Accounts[0] {
			return nil
		}
		m.stopPolling()
		m.declinePendingSign()
		m.transferForm = nil
		m.state = m.state.AccountChanged(ev.Accounts[0])
		m.addLog("info", "Switched account", "address", helpers.ShortenAddr(ev.Accounts[0].Hex()))
		return m.beginSession()

	case wallet.NetworkChanged:
		if ev.ChainID != nil {
			m.addLog("warning", "Network changed", "chain", ev.ChainID.String())
		}
		// an in-flight connect validates the chain itself
		if m.state.Phase != dapp.PhaseActive {
			m.state = m.state.DismissNetworkError()
			return nil
		}
		m.resetSession("network changed")
	}
	return nil
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.showAccounts {
		return m.updateAccountsPopup(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit

	case key.Matches(msg, m.keys.Logger):
		m.logEnabled = !m.logEnabled
		m.cfg.Logger = m.logEnabled
		m.saveConfig()
		if m.logEnabled {
			if m.w > 0 {
				m.logViewport.Width = m.w - 6
			}
			m.logReady = false
			return tea.Batch(initLogViewport(), m.logSpinner.Tick)
		}
		m.logReady = false
		return nil

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return nil

	case msg.String() == "pgup" || msg.String() == "pgdown":
		if m.logEnabled && m.logReady {
			var cmd tea.Cmd
			m.logViewport, cmd = m.logViewport.Update(msg)
			return cmd
		}
		return nil
	}

	if m.state.Phase == dapp.PhaseNoWallet {
		return nil
	}

	switch m.activePage {
	case config.PageSettings:
		return m.updateSettings(msg)
	case config.PageFarms:
		return m.updateFarms(msg)
	case config.PageReceive:
		return m.updateReceive(msg)
	}
	return m.updateToken(msg)
}

func (m *model) updateToken(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Dismiss):
		if m.state.TransactionError != nil {
			m.state = m.state.DismissTransactionError()
		} else {
			m.state = m.state.DismissNetworkError()
		}
		return nil
	case key.Matches(msg, m.keys.Settings):
		m.activePage = config.PageSettings
		m.settingsMode = "list"
		return nil
	case key.Matches(msg, m.keys.Farms):
		m.activePage = config.PageFarms
		return nil
	}

	if m.state.Phase != dapp.PhaseActive {
		if key.Matches(msg, m.keys.Connect) {
			return m.connect()
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Transfer):
		if m.state.Transferring {
			m.state = m.state.TransferRejected(dapp.ErrTransferInFlight)
			m.addLog("warning", "Transfer rejected", "err", dapp.ErrTransferInFlight)
			return nil
		}
		if !m.state.Ready() {
			m.addLog("warning", "Token is still loading")
			return nil
		}
		m.transferForm = transfer.CreateForm(m.state.Token.Symbol, m.state.Token.Decimals, m.state.Balance)
		return nil

	case key.Matches(msg, m.keys.Copy):
		return copyToClipboard(m.state.Session.Address.Hex(), "address to clipboard")

	case key.Matches(msg, m.keys.Accounts):
		if m.wallet == nil {
			return nil
		}
		m.showAccounts = true
		m.accountIdx = 0
		for i, a := range m.wallet.Accounts() {
			if a == m.state.Session.Address {
				m.accountIdx = i
				break
			}
		}
		return nil

	case key.Matches(msg, m.keys.Receive):
		if m.contracts == nil || m.contracts.Token == nil {
			m.addLog("warning", "Token contract is not bound")
			return nil
		}
		m.activePage = config.PageReceive
		return nil

	case key.Matches(msg, m.keys.Disconnect):
		m.resetSession("disconnected")
		if m.wallet != nil {
			m.wallet.Disconnect()
		}
		return nil
	}
	return nil
}

func (m *model) connect() tea.Cmd {
	next, err := m.state.ConnectRequested()
	if err != nil {
		m.addLog("debug", "Connect ignored", "err", err)
		return nil
	}
	m.state = next
	m.addLog("info", "Connecting wallet", "network", m.svc.NetworkName())
	return connectWallet(m.ctx, m.svc)
}

func (m *model) finishTransferForm() tea.Cmd {
	m.transferForm = nil
	if m.state.Token == nil || m.contracts == nil {
		m.state = m.state.TransferRejected(dapp.ErrContractUnavailable)
		return nil
	}

	to := common.HexToAddress(strings.TrimSpace(transfer.TempTo))
	amount, err := helpers.ParseUnits(transfer.TempAmount, m.state.Token.Decimals)
	if err != nil {
		m.state = m.state.TransferRejected(err)
		return nil
	}

	next, err := m.state.BeginTransfer()
	if err != nil {
		m.state = m.state.TransferRejected(err)
		m.addLog("warning", "Transfer rejected", "err", err)
		return nil
	}
	m.state = next
	m.addLog("info", "Submitting transfer",
		"to", helpers.ShortenAddr(to.Hex()),
		"amount", helpers.FormatToken(amount, m.state.Token.Decimals, m.state.Token.Symbol))
	return submitTransfer(m.ctx, m.svc, m.state.Generation, m.contracts, to, amount)
}

func (m *model) updateSignDialog(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "left", "right", "h", "tab", "shift+tab":
		m.signYesSelected = !m.signYesSelected
	case "y", "Y":
		m.answerSign(true)
	case "n", "N", "esc":
		m.answerSign(false)
	case "enter":
		m.answerSign(m.signYesSelected)
	case "ctrl+c":
		m.answerSign(false)
		return tea.Quit
	}
	return nil
}

func (m *model) answerSign(ok bool) {
	if m.signReq == nil {
		return
	}
	select {
	case m.signReq.reply <- ok:
	default:
	}
	m.signReq = nil
	if ok {
		m.addLog("info", "Transaction signed")
	} else {
		m.addLog("info", "Signature declined")
	}
}

func (m *model) updateAccountsPopup(msg tea.KeyMsg) tea.Cmd {
	if m.wallet == nil {
		m.showAccounts = false
		return nil
	}
	accts := m.wallet.Accounts()
	switch msg.String() {
	case "esc", "a":
		m.showAccounts = false
	case "up", "k":
		if m.accountIdx > 0 {
			m.accountIdx--
		}
	case "down", "j":
		if m.accountIdx < len(accts)-1 {
			m.accountIdx++
		}
	case "enter":
		m.showAccounts = false
		if m.accountIdx >= 0 && m.accountIdx < len(accts) {
			m.selectAccount(accts[m.accountIdx])
		}
	case "ctrl+c":
		return tea.Quit
	}
	return nil
}

// selectAccount asks the wallet to switch; the session follows through the
// accountsChanged event
func (m *model) selectAccount(addr common.Address) {
	if m.wallet == nil || (m.state.Session != nil && m.state.Session.Address == addr) {
		return
	}
	if err := m.wallet.SelectAccount(addr); err != nil {
		m.addLog("error", "Selecting account failed", "err", err)
	}
}

func (m *model) updateSettings(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.activePage = config.PageToken
		m.settingsNotice = ""
	case "up", "k":
		if m.selectedRPCIdx > 0 {
			m.selectedRPCIdx--
		}
	case "down", "j":
		if m.selectedRPCIdx < len(m.cfg.RPCURLs)-1 {
			m.selectedRPCIdx++
		}
	case "enter":
		return m.activateRPC(m.selectedRPCIdx)
	case "a":
		m.settingsMode = "add"
		m.createAddRPCForm()
	case "e":
		if len(m.cfg.RPCURLs) > 0 {
			m.settingsMode = "edit"
			m.createEditRPCForm(m.selectedRPCIdx)
		}
	case "t":
		m.toggleTheme()
	}
	return nil
}

func (m *model) finishRPCForm() {
	name := strings.TrimSpace(tempRPCFormName)
	url := strings.TrimSpace(tempRPCFormURL)
	if name == "" {
		name = url
	}
	switch m.settingsMode {
	case "add":
		if url != "" {
			m.cfg.RPCURLs = append(m.cfg.RPCURLs, config.RPCUrl{Name: name, URL: url})
			m.saveConfig()
			m.addLog("success", "Added RPC endpoint", "name", name, "url", url)
		}
	case "edit":
		if m.selectedRPCIdx >= 0 && m.selectedRPCIdx < len(m.cfg.RPCURLs) {
			m.cfg.RPCURLs[m.selectedRPCIdx].Name = name
			m.cfg.RPCURLs[m.selectedRPCIdx].URL = url
			m.saveConfig()
			m.addLog("success", "Updated RPC endpoint", "name", name)
		}
	}
	m.settingsMode = "list"
	m.form = nil
}

// activateRPC marks endpoint idx active and points the wallet at it
func (m *model) activateRPC(idx int) tea.Cmd {
	if idx < 0 || idx >= len(m.cfg.RPCURLs) {
		return nil
	}
	for i := range m.cfg.RPCURLs {
		m.cfg.RPCURLs[i].Active = i == idx
	}
	m.saveConfig()

	r := m.cfg.RPCURLs[idx]
	if m.wallet == nil {
		return nil
	}
	m.settingsNotice = ""
	m.addLog("info", "Switching RPC endpoint", "name", r.Name, "url", r.URL)
	return switchEndpoint(m.wallet, r.Name, r.URL)
}

func (m *model) toggleTheme() {
	if m.cfg.Theme == config.ThemeLight {
		m.cfg.Theme = config.ThemeDark
	} else {
		m.cfg.Theme = config.ThemeLight
	}
	styles.SetTheme(m.cfg.Theme)
	m.spin.Style = lipgloss.NewStyle().Foreground(styles.CAccent2)
	m.logSpinner.Style = lipgloss.NewStyle().Foreground(styles.CAccent2)
	m.logViewport.Style = lipgloss.NewStyle().Foreground(styles.CText).Background(styles.CPanel)
	m.logger.SetStyles(logStyles())
	m.saveConfig()
	m.addLog("info", "Theme changed", "theme", m.cfg.Theme)
}

func (m *model) updateFarms(msg tea.KeyMsg) tea.Cmd {
	n := len(m.cfg.Farms)
	switch msg.String() {
	case "esc":
		m.activePage = config.PageToken
	case "tab", "right":
		if n > 0 {
			m.selectedFarmIdx = (m.selectedFarmIdx + 1) % n
		}
	case "shift+tab", "left":
		if n > 0 {
			m.selectedFarmIdx = (m.selectedFarmIdx - 1 + n) % n
		}
	}
	return nil
}

func (m *model) updateReceive(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.activePage = config.PageToken
	case key.Matches(msg, m.keys.Copy):
		if m.contracts == nil || m.state.Session == nil {
			return nil
		}
		req := receive.PaymentRequest(m.contracts.Token.Address(), m.state.Session.Address, m.state.Session.ChainID)
		return copyToClipboard(req, "payment request")
	}
	return nil
}
