package settings

import (
	"fmt"
	"strings"

	"rebase-dapp-tui/config"
	"rebase-dapp-tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// Nav returns the navigation bar for settings view
func Nav(width int, settingsMode string) string {
	var left string
	if settingsMode == "add" || settingsMode == "edit" {
		left = strings.Join([]string{
			styles.Key("l") + " logger",
			styles.Key("Esc") + " cancel",
		}, "   ")
	} else {
		left = strings.Join([]string{
			styles.Key("↑/↓") + " select",
			styles.Key("Enter") + " activate",
			styles.Key("a") + " add",
			styles.Key("e") + " edit",
			styles.Key("t") + " theme",
			styles.Key("l") + " logger",
			styles.Key("Esc") + " back",
		}, "   ")
	}

	return styles.NavStyle.Width(width).Render(left)
}

// Render renders the settings view: the accepted network, the theme and
// the RPC endpoints the wallet can be pointed at.
func Render(cfg config.Config, selectedIdx int, notice string) string {
	h := styles.TitleStyle.Render("Settings")
	muted := lipgloss.NewStyle().Foreground(styles.CMuted)
	value := lipgloss.NewStyle().Foreground(styles.CText)

	lines := []string{
		h,
		"",
		muted.Render("Network   ") + value.Render(fmt.Sprintf("%s (chain %d)", cfg.Network.Name, cfg.Network.ChainID)),
		muted.Render("Theme     ") + value.Render(cfg.Theme),
		muted.Render("Addresses ") + value.Render(cfg.Contracts.AddressFile),
		"",
	}

	if notice != "" {
		lines = append(lines, styles.WarnStyle.Render(notice), "")
	}

	if len(cfg.RPCURLs) == 0 {
		lines = append(lines, muted.Render("No RPC URLs configured."))
		lines = append(lines, "")
		lines = append(lines, muted.Render("Press ")+styles.Key("a")+muted.Render(" to add your first RPC URL."))
		return strings.Join(lines, "\n")
	}

	lines = append(lines, muted.Render("RPC Endpoints:"), "")
	for i, rpc := range cfg.RPCURLs {
		var marker string
		if rpc.Active {
			marker = lipgloss.NewStyle().Foreground(styles.CAccent).Render("● ")
		} else {
			marker = muted.Render("○ ")
		}

		nameStyle := lipgloss.NewStyle().Foreground(styles.CText)
		urlStyle := lipgloss.NewStyle().Foreground(styles.CMuted)

		if i == selectedIdx {
			nameStyle = nameStyle.Background(styles.CPanel).Foreground(styles.CAccent2).Bold(true)
			urlStyle = urlStyle.Background(styles.CPanel)
			marker = lipgloss.NewStyle().Foreground(styles.CAccent2).Render("▶ ")
		}

		lines = append(lines, marker+nameStyle.Render(rpc.Name))
		lines = append(lines, "  "+urlStyle.Render(rpc.URL))
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
