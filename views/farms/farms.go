package farms

import (
	"fmt"
	"strings"

	"rebase-dapp-tui/config"
	"rebase-dapp-tui/helpers"
	"rebase-dapp-tui/styles"

	"github.com/charmbracelet/lipgloss"
)

const columnsPerRow = 3

// Nav returns the navigation bar for the farms view
func Nav(width int) string {
	left := strings.Join([]string{
		styles.Key("Tab") + " select next",
		styles.Key("←/→") + " move",
		styles.Key("l") + " logger",
		styles.Key("Esc") + " back",
	}, "   ")

	return styles.NavStyle.Width(width).Render(left)
}

func cardStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Width(28).
		Height(7).
		Align(lipgloss.Center, lipgloss.Center).
		Background(styles.CPanel).
		Padding(1, 2).
		BorderStyle(lipgloss.HiddenBorder())
}

func cardFocusedStyle() lipgloss.Style {
	return cardStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("69"))
}

// FormatAPY renders an annual yield with two decimals and a percent sign
func FormatAPY(apy float64) string {
	return fmt.Sprintf("%.2f%%", apy)
}

func renderCard(f config.Farm, focused bool) string {
	icon := f.Icon
	if icon == "" {
		icon = "🌾"
	}

	name := lipgloss.NewStyle().Foreground(styles.CText).Bold(true).Render(f.Name)
	pair := lipgloss.NewStyle().Foreground(styles.CAccent2).Render(f.Pair)
	apy := lipgloss.NewStyle().Foreground(styles.CAccent).Bold(true).Render("APY " + FormatAPY(f.APY))

	content := icon + "\n\n" + name + "\n" + pair + "\n" + apy
	if f.Address != "" {
		content += "\n" + helpers.FadeString(helpers.ShortenAddr(f.Address), "#F25D94", "#EDFF82")
	}

	if focused {
		return cardFocusedStyle().Render(content)
	}
	return cardStyle().Render(content)
}

// Render renders the farm cards in a grid. controller is the farm
// controller address, empty when it is not bound.
func Render(farms []config.Farm, selectedIdx int, controller string) string {
	h := styles.TitleStyle.Render("Farms")
	sub := styles.MutedStyle.Render("Yield farms paying out in the rebasing token")
	if controller != "" {
		sub += styles.MutedStyle.Render(" · controller ") + helpers.FadeString(helpers.ShortenAddr(controller), "#7D5AFC", "#FF87D7")
	}

	if len(farms) == 0 {
		return h + "\n" + sub + "\n\n" + styles.MutedStyle.Render("No farms configured. Add them to the farms list in the config file.")
	}

	var rows []string
	for i := 0; i < len(farms); i += columnsPerRow {
		var cards []string
		for j := 0; j < columnsPerRow && i+j < len(farms); j++ {
			idx := i + j
			cards = append(cards, renderCard(farms[idx], idx == selectedIdx))
			if j < columnsPerRow-1 && idx+1 < len(farms) {
				cards = append(cards, "  ")
			}
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}

	return h + "\n" + sub + "\n\n" + strings.Join(rows, "\n")
}
