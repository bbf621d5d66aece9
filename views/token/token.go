package token

import (
	"fmt"
	"math/big"
	"strings"

	"rebase-dapp-tui/dapp"
	"rebase-dapp-tui/helpers"
	"rebase-dapp-tui/rpc"
	"rebase-dapp-tui/styles"
	"rebase-dapp-tui/views/messages"

	"github.com/charmbracelet/lipgloss"
)

// Props is everything the token dashboard renders
type Props struct {
	State        dapp.State
	Contracts    *dapp.Contracts
	ContractsErr error
	Supply       *big.Int
	Gas          rpc.GasBalance
	CopiedMsg    string
	SpinnerView  string
}

// Nav returns the navigation bar for the token view
func Nav(width int, formOpen bool) string {
	var left string
	if formOpen {
		left = strings.Join([]string{
			styles.Key("Tab") + " next field",
			styles.Key("Enter") + " submit",
			styles.Key("Esc") + " cancel",
		}, "   ")
	} else {
		left = strings.Join([]string{
			styles.Key("t") + " transfer",
			styles.Key("c") + " copy address",
			styles.Key("a") + " accounts",
			styles.Key("f") + " farms",
			styles.Key("r") + " receive",
			styles.Key("s") + " settings",
			styles.Key("x") + " dismiss",
			styles.Key("d") + " disconnect",
			styles.Key("l") + " logger",
			styles.Key("q") + " quit",
		}, "   ")
	}
	return styles.NavStyle.Width(width).Render(left)
}

// Header is the dashboard title, "<SYMBOL> TOKEN"
func Header(t *dapp.TokenData) string {
	if t == nil {
		return "TOKEN"
	}
	return strings.ToUpper(t.Symbol) + " TOKEN"
}

// Subtitle is the token name between arrowheads
func Subtitle(t *dapp.TokenData) string {
	if t == nil {
		return ""
	}
	return "⯬ " + t.Name + " ⯮"
}

// Render renders the dashboard for an active session
func Render(p Props) string {
	s := p.State
	if s.Session == nil {
		return messages.Loading(p.SpinnerView)
	}

	addr := s.Session.Address.Hex()
	addrLine := lipgloss.NewStyle().Foreground(styles.CMuted).Underline(true).Render(addr)
	if p.CopiedMsg != "" {
		addrLine += "  " + lipgloss.NewStyle().Foreground(styles.CAccent).Render(p.CopiedMsg)
	}

	if p.ContractsErr != nil && !s.Ready() {
		return strings.Join([]string{
			styles.TitleStyle.Render(Header(nil)),
			addrLine,
			"",
			messages.Unavailable(p.ContractsErr),
		}, "\n")
	}

	if !s.Ready() {
		return strings.Join([]string{
			styles.TitleStyle.Render(Header(s.Token)),
			addrLine,
			"",
			messages.Loading(p.SpinnerView),
		}, "\n")
	}

	title := lipgloss.NewStyle().Bold(true).Render(helpers.FadeString(Header(s.Token), "#7EE787", "#82CFFD"))
	sub := lipgloss.NewStyle().Foreground(styles.CAccent2).Italic(true).Render(Subtitle(s.Token))

	balance := lipgloss.NewStyle().Foreground(styles.CText).Bold(true).Render(s.DisplayBalance())
	welcome := styles.MutedStyle.Render("Welcome ") +
		lipgloss.NewStyle().Foreground(styles.CAccent2).Render(helpers.ShortenAddr(addr)) +
		styles.MutedStyle.Render(", you have ") + balance + styles.MutedStyle.Render(".")

	lines := []string{title, sub, "", addrLine, welcome, gasLine(p.Gas), supplyLine(p.Supply, s.Token), ""}
	lines = append(lines, contractLines(p.Contracts)...)
	lines = append(lines, "")

	switch {
	case s.Pending():
		lines = append(lines, messages.WaitingForTransaction(s.TxBeingSent.Hex(), p.SpinnerView))
	case s.Transferring:
		lines = append(lines, messages.AwaitingSignature(p.SpinnerView))
	}
	if s.TransactionError != nil {
		lines = append(lines, messages.TransactionError(s.TransactionError))
	}
	if s.Balance.Sign() == 0 {
		lines = append(lines, messages.NoTokens(addr))
	}

	return strings.Join(lines, "\n")
}

func gasLine(g rpc.GasBalance) string {
	if g.Wei == nil || g.LoadedAt.IsZero() {
		return styles.MutedStyle.Render("Gas: …")
	}
	return styles.MutedStyle.Render(fmt.Sprintf("Gas: %s (at %s)", helpers.FormatETH(g.Wei), helpers.LoadedAt(g.LoadedAt, false)))
}

func supplyLine(supply *big.Int, t *dapp.TokenData) string {
	if supply == nil || t == nil {
		return styles.MutedStyle.Render("Supply: …")
	}
	return styles.MutedStyle.Render("Supply: " + helpers.FormatToken(supply, t.Decimals, t.Symbol))
}

func contractLines(c *dapp.Contracts) []string {
	if c == nil {
		return nil
	}
	label := lipgloss.NewStyle().Foreground(styles.CMuted).Width(16)
	row := func(name, addr string) string {
		return label.Render(name) + helpers.FadeString(helpers.ShortenAddr(addr), "#7D5AFC", "#FF87D7")
	}
	var lines []string
	if c.Token != nil {
		lines = append(lines, row("Token", c.Token.Address().Hex()))
	}
	if c.Orchestrator != nil {
		lines = append(lines, row(c.Orchestrator.Name(), c.Orchestrator.Address().Hex()))
	}
	if c.FarmController != nil {
		lines = append(lines, row(c.FarmController.Name(), c.FarmController.Address().Hex()))
	}
	return lines
}
