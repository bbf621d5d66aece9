package receive

import (
	"bytes"
	"fmt"
	"math/big"
	"strings"

	"rebase-dapp-tui/helpers"
	"rebase-dapp-tui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mdp/qrterminal/v3"
)

// Nav returns the navigation bar for the receive view
func Nav(width int) string {
	left := strings.Join([]string{
		styles.Key("c") + " copy request",
		styles.Key("l") + " logger",
		styles.Key("Esc") + " back",
	}, "   ")

	return styles.NavStyle.Width(width).Render(left)
}

// PaymentRequest builds an EIP-681 token transfer request paying to
// recipient on the given chain
func PaymentRequest(token, recipient common.Address, chainID *big.Int) string {
	uri := "ethereum:" + token.Hex()
	if chainID != nil && chainID.Sign() > 0 {
		uri += "@" + chainID.String()
	}
	return uri + "/transfer?address=" + recipient.Hex()
}

// QRCode renders text as a half-block QR code
func QRCode(text string) string {
	var buf bytes.Buffer
	qrterminal.GenerateHalfBlock(text, qrterminal.L, &buf)
	return strings.TrimRight(buf.String(), "\n")
}

// Render renders the receive code for the session account
func Render(symbol string, token, recipient common.Address, chainID *big.Int, copiedMsg string) string {
	h := styles.TitleStyle.Render(fmt.Sprintf("Receive %s", symbol))
	request := PaymentRequest(token, recipient, chainID)

	lines := []string{
		h,
		styles.MutedStyle.Render("Scan with a wallet app to send tokens to ") +
			helpers.FadeString(helpers.ShortenAddr(recipient.Hex()), "#F25D94", "#EDFF82"),
		"",
		QRCode(request),
		"",
		lipgloss.NewStyle().Foreground(styles.CAccent).Render("EIP-681 request:"),
		lipgloss.NewStyle().Foreground(styles.CText).Render(request),
	}
	if copiedMsg != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(styles.CAccent).Bold(true).Render(copiedMsg))
	}
	return strings.Join(lines, "\n")
}
