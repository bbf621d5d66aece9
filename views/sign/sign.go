package sign

import (
	"fmt"
	"math/big"
	"strings"

	"rebase-dapp-tui/helpers"
	"rebase-dapp-tui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"
)

// Request is what the signing dialog shows about a transaction
type Request struct {
	From     common.Address
	Contract common.Address
	// Recipient and Amount are set when the calldata is a token transfer.
	Recipient *common.Address
	Amount    *big.Int
	Decimals  uint8
	Symbol    string
	Gas       uint64
	Nonce     uint64
}

var (
	dialogBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(1, 2)

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF7DB")).
			Background(lipgloss.Color("#888B7E")).
			Padding(0, 3).
			MarginTop(1)

	activeButtonStyle = buttonStyle.
				Foreground(lipgloss.Color("#FFF7DB")).
				Background(lipgloss.Color("#F25D94")).
				MarginRight(2).
				Underline(true)
)

// Lines returns the transaction summary rows
func Lines(r Request) []string {
	label := lipgloss.NewStyle().Foreground(styles.CMuted).Width(10)
	value := lipgloss.NewStyle().Foreground(styles.CText)

	lines := []string{
		label.Render("From") + value.Render(helpers.ShortenAddr(r.From.Hex())),
		label.Render("Contract") + value.Render(helpers.ShortenAddr(r.Contract.Hex())),
	}
	if r.Recipient != nil {
		lines = append(lines, label.Render("To")+value.Render(helpers.ShortenAddr(r.Recipient.Hex())))
	}
	if r.Amount != nil {
		lines = append(lines, label.Render("Amount")+value.Render(helpers.FormatToken(r.Amount, r.Decimals, r.Symbol)))
	}
	lines = append(lines,
		label.Render("Gas")+value.Render(fmt.Sprintf("%d", r.Gas)),
		label.Render("Nonce")+value.Render(fmt.Sprintf("%d", r.Nonce)),
	)
	return lines
}

// Render renders the signing dialog centered in a w by h area
func Render(r Request, yesSelected bool, w, h int) string {
	msg := helpers.FadeString("Sign this transaction?", "#F25D94", "#EDFF82")
	question := lipgloss.NewStyle().Width(50).Align(lipgloss.Center).Render(msg)
	details := lipgloss.NewStyle().Width(50).Render(strings.Join(Lines(r), "\n"))

	var okButton, cancelButton string
	if yesSelected {
		okButton = activeButtonStyle.Render("Sign")
		cancelButton = buttonStyle.Render("Reject")
	} else {
		okButton = buttonStyle.MarginRight(2).Render("Sign")
		cancelButton = activeButtonStyle.MarginRight(0).Render("Reject")
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Top, okButton, cancelButton)
	ui := lipgloss.JoinVertical(lipgloss.Center, question, "", details, buttons)

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, dialogBoxStyle.Render(ui))
}
