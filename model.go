package main

import (
	"context"
	"io"
	"math/big"
	"time"

	"rebase-dapp-tui/config"
	"rebase-dapp-tui/dapp"
	"rebase-dapp-tui/poller"
	"rebase-dapp-tui/rpc"
	"rebase-dapp-tui/styles"
	"rebase-dapp-tui/wallet"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"
)

// -------------------- MODEL --------------------

// walletControl is what the front end drives on the wallet provider beyond
// the connect flow
type walletControl interface {
	Accounts() []common.Address
	SelectAccount(addr common.Address) error
	Disconnect()
	Events() <-chan wallet.Event
	SwitchEndpoint(url string) error
	Client() *rpc.Client
	Close()
}

// keyMap holds the global key bindings
type keyMap struct {
	Connect    key.Binding
	Transfer   key.Binding
	Copy       key.Binding
	Accounts   key.Binding
	Farms      key.Binding
	Receive    key.Binding
	Settings   key.Binding
	Dismiss    key.Binding
	Disconnect key.Binding
	Logger     key.Binding
	Help       key.Binding
	Back       key.Binding
	Quit       key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Connect, k.Transfer, k.Copy, k.Dismiss},
		{k.Accounts, k.Farms, k.Receive, k.Settings},
		{k.Disconnect, k.Logger, k.Back, k.Quit},
	}
}

var keys = keyMap{
	Connect: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "connect wallet"),
	),
	Transfer: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "transfer"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "copy"),
	),
	Accounts: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "accounts"),
	),
	Farms: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "farms"),
	),
	Receive: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "receive"),
	),
	Settings: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "settings"),
	),
	Dismiss: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "dismiss error"),
	),
	Disconnect: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "disconnect"),
	),
	Logger: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "toggle logger"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// model is the dApp front end. It owns the session state; blocking work
// runs in commands whose results come back as messages.
type model struct {
	w, h int

	activePage config.Page
	cfg        config.Config
	configPath string

	// session
	svc          *dapp.Service
	wallet       walletControl
	state        dapp.State
	contracts    *dapp.Contracts
	contractsErr error
	supply       *big.Int
	gas          rpc.GasBalance

	// lifetime of background work
	ctx    context.Context
	cancel context.CancelFunc

	// balance polling, one poller per session
	interval time.Duration
	poller   *poller.Poller
	polls    chan balanceMsg

	// last poll failure, so a dead node is logged once
	lastPollErr string

	// signature requests from the provider
	approvals       chan approvalRequest
	signReq         *approvalRequest
	signYesSelected bool

	spin spinner.Model

	// transfer form
	transferForm *huh.Form

	// account picker popup
	showAccounts   bool
	accountIdx     int
	clickableAreas []config.ClickableArea

	// settings state
	settingsMode   string // "list", "add", "edit"
	selectedRPCIdx int
	form           *huh.Form
	settingsNotice string

	selectedFarmIdx int

	// clipboard feedback
	copiedMsg     string
	copiedMsgTime time.Time

	keys     keyMap
	help     help.Model
	showHelp bool

	// logger panel
	logEnabled  bool
	logger      *log.Logger
	logSink     *logSink
	logLen      int
	logViewport viewport.Model
	logReady    bool
	logSpinner  spinner.Model
}

// modelOptions wires a model to its collaborators
type modelOptions struct {
	cfg        config.Config
	configPath string
	service    *dapp.Service
	// wallet is nil when no provider was detected
	wallet    walletControl
	approvals chan approvalRequest
	logger    *log.Logger
	sink      *logSink
}

// -------------------- INIT --------------------

// newModel builds the model. Nothing runs until Init.
func newModel(o modelOptions) model {
	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(styles.CAccent2)

	vp := viewport.New(0, 20)
	vp.Style = lipgloss.NewStyle().
		Foreground(styles.CText).
		Background(styles.CPanel)

	logSpin := spinner.New()
	logSpin.Spinner = spinner.Dot
	logSpin.Style = lipgloss.NewStyle().Foreground(styles.CAccent2)

	logger := o.logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	svc := o.service
	if svc == nil {
		svc = dapp.NewService(dapp.Options{})
	}

	ctx, cancel := context.WithCancel(context.Background())

	return model{
		activePage:   config.PageToken,
		cfg:          o.cfg,
		configPath:   o.configPath,
		svc:          svc,
		wallet:       o.wallet,
		state:        dapp.NewState(svc.WalletPresent()),
		ctx:          ctx,
		cancel:       cancel,
		interval:     o.cfg.PollInterval(),
		approvals:    o.approvals,
		spin:         sp,
		settingsMode: "list",
		keys:         keys,
		help:         help.New(),
		logEnabled:   o.cfg.Logger,
		logger:       logger,
		logSink:      o.sink,
		logViewport:  vp,
		logSpinner:   logSpin,
	}
}

// Init implements tea.Model interface and returns initial commands
func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick}
	if m.logEnabled {
		cmds = append(cmds, initLogViewport(), m.logSpinner.Tick)
	}
	if m.wallet != nil {
		cmds = append(cmds, waitForEvent(m.wallet.Events()))
	}
	if m.approvals != nil {
		cmds = append(cmds, waitForApproval(m.approvals))
	}
	return tea.Batch(cmds...)
}

// Close stops every background task the model started and releases the
// wallet. No poll runs after it returns.
func (m *model) Close() {
	m.stopPolling()
	m.declinePendingSign()
	if m.cancel != nil {
		m.cancel()
	}
	if m.wallet != nil {
		m.wallet.Close()
	}
}

func (m *model) stopPolling() {
	m.poller.Stop()
	m.poller = nil
	m.polls = nil
}

// startPolling reads the balance now and then every interval for the
// current session
func (m *model) startPolling() tea.Cmd {
	m.stopPolling()
	if m.state.Session == nil || m.contracts == nil {
		return nil
	}
	ch := make(chan balanceMsg)
	m.polls = ch
	m.poller = poller.Start(m.ctx, m.interval, pollBalance(m.svc, m.state.Generation, m.contracts, m.state.Session.Address, ch))
	return waitForPoll(ch, m.poller.Done())
}

// declinePendingSign answers an open signature request with no
func (m *model) declinePendingSign() {
	if m.signReq == nil {
		return
	}
	select {
	case m.signReq.reply <- false:
	default:
	}
	m.signReq = nil
}

func (m *model) client() *rpc.Client {
	if m.wallet == nil {
		return nil
	}
	return m.wallet.Client()
}

// resetSession tears the session down and waits for a new connect request
func (m *model) resetSession(reason string) {
	wasActive := m.state.Phase == dapp.PhaseActive
	m.stopPolling()
	m.declinePendingSign()
	m.state = m.state.Reset()
	m.contracts = nil
	m.contractsErr = nil
	m.supply = nil
	m.gas = rpc.GasBalance{}
	m.transferForm = nil
	m.showAccounts = false
	if m.activePage == config.PageReceive {
		m.activePage = config.PageToken
	}
	if wasActive {
		m.addLog("warning", "Session reset", "reason", reason)
	}
}

// beginSession binds contracts for the current session
func (m *model) beginSession() tea.Cmd {
	m.contracts = nil
	m.contractsErr = nil
	m.supply = nil
	m.gas = rpc.GasBalance{}
	return initContracts(m.ctx, m.svc, m.state.Generation, *m.state.Session)
}

// saveConfig persists the config, logging failures
func (m *model) saveConfig() {
	if m.configPath == "" {
		return
	}
	if err := config.Save(m.configPath, m.cfg); err != nil {
		m.addLog("error", "Saving config failed", "err", err)
	}
}
