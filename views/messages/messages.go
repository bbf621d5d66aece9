// Package messages renders the short status fragments shown inside the
// token and connect views.
package messages

import (
	"errors"
	"strings"

	"rebase-dapp-tui/helpers"
	"rebase-dapp-tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// NoTokens is shown when the session account holds no tokens
func NoTokens(address string) string {
	lines := []string{
		styles.TitleStyle.Render("You don't have tokens to transfer"),
		styles.MutedStyle.Render("To get some tokens, open a terminal in the root of the repository and run:"),
		"",
		lipgloss.NewStyle().Foreground(styles.CAccent).Render("npx hardhat --network localhost faucet " + address),
		"",
		styles.MutedStyle.Render("Or press ") + styles.Key("r") + styles.MutedStyle.Render(" to show this account's receive code."),
	}
	return strings.Join(lines, "\n")
}

// WaitingForTransaction is shown while a transfer is pending
func WaitingForTransaction(hash, spinnerView string) string {
	return spinnerView + " " + lipgloss.NewStyle().Foreground(styles.CAccent2).Render("Waiting for transaction ") +
		helpers.FadeString(helpers.ShortenAddr(hash), "#F25D94", "#EDFF82") +
		lipgloss.NewStyle().Foreground(styles.CAccent2).Render(" to be mined")
}

// AwaitingSignature is shown while the sign dialog is open or the
// transaction is being prepared
func AwaitingSignature(spinnerView string) string {
	return spinnerView + " " + styles.MutedStyle.Render("Preparing transaction, confirm it in the signing dialog…")
}

// TransactionError renders a transaction failure with its dismiss hint
func TransactionError(err error) string {
	return errorBox("Error sending transaction: " + ErrorText(err))
}

// NetworkError renders a connection or network failure with its dismiss hint
func NetworkError(err error) string {
	return errorBox(ErrorText(err))
}

// Loading is the placeholder shown until token data and balance arrive
func Loading(spinnerView string) string {
	return spinnerView + " " + styles.MutedStyle.Render("Loading…")
}

// Unavailable is shown when the contracts could not be bound for the session
func Unavailable(err error) string {
	msg := "Contracts unavailable"
	if err != nil {
		msg = ErrorText(err)
	}
	return styles.WarnStyle.Render("⚠ "+msg) + "\n" +
		styles.MutedStyle.Render("Deploy the contracts, then reconnect with ") + styles.Key("d") + styles.MutedStyle.Render(" and ") + styles.Key("Enter")
}

// ErrorText returns the innermost message of err, which is what a node
// reports for reverted calls.
func ErrorText(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for inner := errors.Unwrap(err); inner != nil; inner = errors.Unwrap(inner) {
		if s := inner.Error(); s != "" && strings.HasSuffix(msg, s) {
			msg = s
		}
	}
	if msg == "" {
		return "unknown error"
	}
	return msg
}

func errorBox(msg string) string {
	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.CError).
		Padding(0, 1)
	return box.Render(styles.ErrorStyle.Render(msg) + "\n" +
		styles.MutedStyle.Render("press ") + styles.Key("x") + styles.MutedStyle.Render(" to dismiss"))
}
