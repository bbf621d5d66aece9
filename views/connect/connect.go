package connect

import (
	"strings"

	"rebase-dapp-tui/config"
	"rebase-dapp-tui/helpers"
	"rebase-dapp-tui/styles"
	"rebase-dapp-tui/views/messages"

	"github.com/charmbracelet/lipgloss"
)

// Nav returns the navigation bar for the connect view
func Nav(width int, walletPresent bool) string {
	var left string
	if walletPresent {
		left = strings.Join([]string{
			styles.Key("Enter") + " connect",
			styles.Key("x") + " dismiss",
			styles.Key("s") + " settings",
			styles.Key("l") + " logger",
			styles.Key("q") + " quit",
		}, "   ")
	} else {
		left = strings.Join([]string{
			styles.Key("l") + " logger",
			styles.Key("q") + " quit",
		}, "   ")
	}
	return styles.NavStyle.Width(width).Render(left)
}

// RenderNoWallet renders the install-a-wallet view. It is the only view
// available when no provider was configured.
func RenderNoWallet() string {
	h := styles.TitleStyle.Render("No Ethereum wallet was detected")

	env := lipgloss.NewStyle().Foreground(styles.CAccent)
	lines := []string{
		h,
		"",
		styles.MutedStyle.Render("This dApp signs with local keys. Provide them with one of:"),
		"",
		"  " + env.Render(config.EnvKeys) + styles.MutedStyle.Render("  comma separated hex private keys"),
		"  " + env.Render("keystore.dir") + styles.MutedStyle.Render("  in the config file, unlocked by ") + env.Render(config.EnvPassphrase),
		"",
		styles.MutedStyle.Render("and an RPC endpoint in ") + env.Render(config.EnvRPCURL) + styles.MutedStyle.Render(" or the config file, then restart."),
	}
	return strings.Join(lines, "\n")
}

// Render renders the connect prompt
func Render(networkName string, connecting bool, networkErr error, spinnerView string) string {
	h := styles.TitleStyle.Render("Connect Wallet")
	sub := styles.MutedStyle.Render("Please connect to your wallet on ") +
		helpers.FadeString(networkName, "#7EE787", "#82CFFD")

	var button string
	if connecting {
		button = spinnerView + " " + styles.MutedStyle.Render("Connecting…")
	} else {
		button = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF7DB")).
			Background(lipgloss.Color("#F25D94")).
			Padding(0, 3).
			Underline(true).
			Render("Connect Wallet")
	}

	lines := []string{h, sub, ""}
	if networkErr != nil {
		lines = append(lines, messages.NetworkError(networkErr), "")
	}
	lines = append(lines, button)
	return strings.Join(lines, "\n")
}
