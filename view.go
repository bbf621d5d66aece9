package main

import (
	"strings"

	"rebase-dapp-tui/config"
	"rebase-dapp-tui/contracts"
	"rebase-dapp-tui/dapp"
	"rebase-dapp-tui/helpers"
	"rebase-dapp-tui/styles"
	"rebase-dapp-tui/views/accounts"
	"rebase-dapp-tui/views/connect"
	"rebase-dapp-tui/views/farms"
	logview "rebase-dapp-tui/views/log"
	"rebase-dapp-tui/views/receive"
	"rebase-dapp-tui/views/settings"
	"rebase-dapp-tui/views/sign"
	"rebase-dapp-tui/views/token"
	"rebase-dapp-tui/views/transfer"

	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"
)

// -------------------- VIEW --------------------

func (m *model) signRequest() sign.Request {
	req := m.signReq.req
	r := sign.Request{From: req.From, Gas: req.Gas, Nonce: req.Nonce}
	if req.To != nil {
		r.Contract = *req.To
	}
	if to, amount, err := contracts.DecodeTransfer(req.Data); err == nil {
		r.Recipient = &to
		r.Amount = amount
	}
	if m.state.Token != nil {
		r.Decimals = m.state.Token.Decimals
		r.Symbol = m.state.Token.Symbol
	}
	return r
}

func (m *model) renderAccountsPopup() string {
	var active common.Address
	if m.state.Session != nil {
		active = m.state.Session.Address
	}
	var accts []common.Address
	if m.wallet != nil {
		accts = m.wallet.Accounts()
	}

	body, areas := accounts.Render(accts, active, m.accountIdx, 0)
	help := lipgloss.NewStyle().
		Foreground(styles.CMuted).
		MarginTop(1).
		Render("↑/↓: Navigate • Enter: Select • Esc: Cancel")

	dialogBoxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#874BFD")).
		Padding(1, 2).
		Background(styles.CPanel)
	dialog := dialogBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, body, help))

	// border and padding push the body in by (3, 2)
	x0 := (m.w-lipgloss.Width(dialog))/2 + 3
	y0 := (m.h-lipgloss.Height(dialog))/2 + 2
	m.clickableAreas = nil
	for _, a := range areas {
		a.X += x0
		a.Y += y0
		m.clickableAreas = append(m.clickableAreas, a)
	}

	return lipgloss.Place(
		m.w, m.h,
		lipgloss.Center, lipgloss.Center,
		dialog,
	)
}

func (m *model) rpcStatus() (string, lipgloss.Color) {
	red := lipgloss.Color("#c01c28")
	switch {
	case m.state.Phase == dapp.PhaseNoWallet:
		return "○ No wallet", red
	case m.client() == nil:
		return "○ No RPC", red
	case m.state.Phase == dapp.PhaseConnecting:
		return "○ Connecting...", styles.CWarn
	case m.state.Phase == dapp.PhaseActive:
		name := m.svc.NetworkName()
		for _, r := range m.cfg.RPCURLs {
			if r.Active && r.URL == m.client().URL {
				name = r.Name
				break
			}
		}
		return "● " + name, styles.CAccent
	default:
		return "○ Disconnected", styles.CMuted
	}
}

func (m *model) globalHeader() string {
	availableWidth := helpers.Max(0, m.w-8)

	var addrDisplay string
	if m.state.Session != nil {
		addrDisplay = lipgloss.NewStyle().
			Foreground(styles.CAccent2).
			Bold(true).
			Render("Account: " + helpers.FadeString(helpers.ShortenAddr(m.state.Session.Address.Hex()), "#F25D94", "#EDFF82"))
	} else {
		addrDisplay = lipgloss.NewStyle().
			Foreground(styles.CMuted).
			Render("Account: not connected")
	}

	statusText, statusColor := m.rpcStatus()
	rpcDisplay := lipgloss.NewStyle().
		Foreground(statusColor).
		Bold(true).
		Render(statusText)

	titleText := lipgloss.NewStyle().
		Foreground(styles.CAccent).
		Bold(true).
		Render(helpers.FadeString("rebase dapp", "#7EE787", "#82CFFD"))

	addrWidth := lipgloss.Width(addrDisplay)
	rpcWidth := lipgloss.Width(rpcDisplay)
	titleWidth := lipgloss.Width(titleText)
	totalOtherWidth := addrWidth + rpcWidth + titleWidth

	var headerLine string
	if totalOtherWidth+4 > availableWidth {
		headerLine = addrDisplay + "\n" + titleText + "\n" + rpcDisplay
	} else {
		remainingSpace := availableWidth - totalOtherWidth
		leftPadding := remainingSpace / 2
		rightPadding := remainingSpace - leftPadding

		headerLine = addrDisplay +
			strings.Repeat(" ", helpers.Max(1, leftPadding)) +
			titleText +
			strings.Repeat(" ", helpers.Max(1, rightPadding)) +
			rpcDisplay
	}

	separator := lipgloss.NewStyle().
		Foreground(styles.CBorder).
		Render(strings.Repeat("─", availableWidth))

	return headerLine + "\n" + separator
}

func (m *model) tokenProps() token.Props {
	return token.Props{
		State:        m.state,
		Contracts:    m.contracts,
		ContractsErr: m.contractsErr,
		Supply:       m.supply,
		Gas:          m.gas,
		CopiedMsg:    m.copiedMsg,
		SpinnerView:  m.spin.View(),
	}
}

func (m *model) View() string {
	if m.signReq != nil {
		return styles.AppStyle.Render(sign.Render(m.signRequest(), m.signYesSelected, m.w, m.h))
	}

	panel := func(s string) string {
		return styles.PanelStyle.Width(helpers.Max(0, m.w-2)).Render(s)
	}
	headerPanel := panel(m.globalHeader())

	var pageContent, nav string
	switch {
	case m.state.Phase == dapp.PhaseNoWallet:
		pageContent = panel(connect.RenderNoWallet())
		nav = connect.Nav(m.w-2, false)

	case m.activePage == config.PageSettings:
		var content string
		if (m.settingsMode == "add" || m.settingsMode == "edit") && m.form != nil {
			title := "Add RPC Endpoint"
			if m.settingsMode == "edit" {
				title = "Edit RPC Endpoint"
			}
			content = styles.TitleStyle.Render(title) + "\n\n" + m.form.View()
		} else {
			content = settings.Render(m.cfg, m.selectedRPCIdx, m.settingsNotice)
		}
		pageContent = panel(content)
		nav = settings.Nav(m.w-2, m.settingsMode)

	case m.activePage == config.PageFarms:
		controller := ""
		if m.contracts != nil && m.contracts.FarmController != nil {
			controller = m.contracts.FarmController.Address().Hex()
		}
		pageContent = panel(farms.Render(m.cfg.Farms, m.selectedFarmIdx, controller))
		nav = farms.Nav(m.w - 2)

	case m.state.Phase != dapp.PhaseActive:
		pageContent = panel(connect.Render(m.svc.NetworkName(), m.state.Phase == dapp.PhaseConnecting, m.state.NetworkError, m.spin.View()))
		nav = connect.Nav(m.w-2, true)

	case m.activePage == config.PageReceive && m.contracts != nil && m.contracts.Token != nil:
		symbol := "TOKEN"
		if m.state.Token != nil {
			symbol = m.state.Token.Symbol
		}
		pageContent = panel(receive.Render(symbol, m.contracts.Token.Address(), m.state.Session.Address, m.state.Session.ChainID, m.copiedMsg))
		nav = receive.Nav(m.w - 2)

	case m.transferForm != nil:
		leftWidth := helpers.Max(0, m.w/2-2)
		rightWidth := helpers.Max(0, m.w-m.w/2-2)
		leftPanel := styles.PanelStyle.Width(leftWidth).Render(token.Render(m.tokenProps()))
		rightPanel := styles.PanelStyle.
			Width(rightWidth).
			Height(helpers.Max(0, lipgloss.Height(leftPanel)-2)).
			Render(transfer.Render(m.transferForm))
		pageContent = lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)
		nav = token.Nav(m.w-2, true)

	default:
		pageContent = panel(token.Render(m.tokenProps()))
		nav = token.Nav(m.w-2, false)
	}

	sections := []string{headerPanel, pageContent, nav}
	if m.showHelp {
		h := m.help
		h.ShowAll = true
		sections = append(sections, styles.PanelStyle.Width(helpers.Max(0, m.w-2)).Render(h.View(m.keys)))
	}
	if m.logEnabled {
		sections = append(sections, logview.Render(m.w, m.h, m.logReady, m.logSpinner.View(), m.logViewport))
	}
	baseView := styles.AppStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))

	if m.showAccounts {
		return m.renderAccountsPopup()
	}
	return baseView
}
