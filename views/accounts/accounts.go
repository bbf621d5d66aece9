package accounts

import (
	"fmt"
	"strings"

	"rebase-dapp-tui/config"
	"rebase-dapp-tui/helpers"
	"rebase-dapp-tui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"
)

// Nav returns the navigation bar for the account picker
func Nav(width int) string {
	left := strings.Join([]string{
		styles.Key("↑/↓") + " move",
		styles.Key("Enter") + " switch",
		styles.Key("Esc") + " close",
	}, "   ")

	return styles.NavStyle.Width(width).Render(left)
}

// RenderList renders the wallet's accounts. Areas are relative to the list's
// left edge, with the first row at startY.
func RenderList(accounts []common.Address, active common.Address, selectedIdx, startY int) (string, []config.ClickableArea) {
	var items []string
	var areas []config.ClickableArea
	y := startY

	if len(accounts) == 0 {
		return lipgloss.NewStyle().Foreground(styles.CMuted).Render("The wallet exposes no accounts."), nil
	}

	for i, acct := range accounts {
		addr := acct.Hex()
		var marker, short, full string
		var itemStyle lipgloss.Style

		if i == selectedIdx {
			marker = lipgloss.NewStyle().Foreground(styles.CAccent2).Bold(true).Render("▶ ")
			itemStyle = lipgloss.NewStyle().Foreground(styles.CAccent2).Bold(true)
			full = lipgloss.NewStyle().Foreground(styles.CText).Render(addr)
			short = helpers.ShortenAddr(addr)
		} else {
			marker = "  "
			itemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e1a2aa"))
			full = helpers.FadeString(addr, "#7D5AFC", "#FF87D7")
			short = helpers.FadeString(helpers.ShortenAddr(addr), "#F25D94", "#EDFF82")
		}

		short = fmt.Sprintf("Account %d - %s", i+1, short)
		if acct == active {
			short = "✓ " + short
		}
		items = append(items, marker+itemStyle.Render(short)+"\n  "+full)

		areas = append(areas, config.ClickableArea{
			X:       0,
			Y:       y,
			Width:   helpers.Max(lipgloss.Width(short), len(addr)) + 2,
			Height:  2,
			Address: addr,
		})
		y += 3
	}

	return strings.Join(items, "\n\n"), areas
}

// Render renders the account picker body. Areas are relative to its top
// left corner offset by startY.
func Render(accounts []common.Address, active common.Address, selectedIdx, startY int) (string, []config.ClickableArea) {
	header := styles.TitleStyle.Render("Accounts")
	subtitle := lipgloss.NewStyle().Foreground(styles.CMuted).Render("Switching account reloads the dashboard")

	list, areas := RenderList(accounts, active, selectedIdx, startY+3)

	status := lipgloss.NewStyle().Foreground(styles.CMuted).Render(fmt.Sprintf("%d accounts", len(accounts)))
	return header + "\n" + subtitle + "\n\n" + list + "\n\n" + status, areas
}

// HitTest returns the address under (x, y), or "" when nothing was hit
func HitTest(areas []config.ClickableArea, x, y int) string {
	for _, a := range areas {
		if x >= a.X && x < a.X+a.Width && y >= a.Y && y < a.Y+a.Height {
			return a.Address
		}
	}
	return ""
}
