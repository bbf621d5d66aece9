package styles

import "github.com/charmbracelet/lipgloss"

// Palette is one color theme
type Palette struct {
	Bg      lipgloss.Color
	Panel   lipgloss.Color
	Border  lipgloss.Color
	Muted   lipgloss.Color
	Text    lipgloss.Color
	Accent  lipgloss.Color
	Accent2 lipgloss.Color
	Warn    lipgloss.Color
	Error   lipgloss.Color
}

var (
	Dark = Palette{
		Bg:      lipgloss.Color("#0B0F14"), // near-black
		Panel:   lipgloss.Color("#0F1720"),
		Border:  lipgloss.Color("#874BFD"),
		Muted:   lipgloss.Color("#8AA0B6"),
		Text:    lipgloss.Color("#D6E2F0"),
		Accent:  lipgloss.Color("#7EE787"), // green-ish
		Accent2: lipgloss.Color("#79C0FF"), // blue-ish
		Warn:    lipgloss.Color("#FFA657"), // orange
		Error:   lipgloss.Color("#FF5C57"),
	}

	Light = Palette{
		Bg:      lipgloss.Color("#F6F8FA"),
		Panel:   lipgloss.Color("#FFFFFF"),
		Border:  lipgloss.Color("#8250DF"),
		Muted:   lipgloss.Color("#57606A"),
		Text:    lipgloss.Color("#1F2328"),
		Accent:  lipgloss.Color("#1A7F37"),
		Accent2: lipgloss.Color("#0969DA"),
		Warn:    lipgloss.Color("#BC4C00"),
		Error:   lipgloss.Color("#CF222E"),
	}
)

// Theme colors of the active palette
var (
	CBg      lipgloss.Color
	CPanel   lipgloss.Color
	CBorder  lipgloss.Color
	CMuted   lipgloss.Color
	CText    lipgloss.Color
	CAccent  lipgloss.Color
	CAccent2 lipgloss.Color
	CWarn    lipgloss.Color
	CError   lipgloss.Color
)

// Shared styles, rebuilt by SetTheme
var (
	AppStyle       lipgloss.Style
	TitleStyle     lipgloss.Style
	PanelStyle     lipgloss.Style
	NavStyle       lipgloss.Style
	HotkeyStyle    lipgloss.Style
	HotkeyKeyStyle lipgloss.Style
	MutedStyle     lipgloss.Style
	ErrorStyle     lipgloss.Style
	WarnStyle      lipgloss.Style
)

var current = "dark"

func init() {
	SetTheme("dark")
}

// SetTheme switches every shared color and style. Anything other than
// "light" selects the dark palette.
func SetTheme(name string) {
	p := Dark
	current = "dark"
	if name == "light" {
		p = Light
		current = "light"
	}

	CBg, CPanel, CBorder = p.Bg, p.Panel, p.Border
	CMuted, CText = p.Muted, p.Text
	CAccent, CAccent2 = p.Accent, p.Accent2
	CWarn, CError = p.Warn, p.Error

	AppStyle = lipgloss.NewStyle().
		Background(CBg).
		Foreground(CText)

	TitleStyle = lipgloss.NewStyle().
		Foreground(CAccent2).
		Bold(true)

	PanelStyle = lipgloss.NewStyle().
		Background(CPanel).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(CBorder).
		Padding(1, 2)

	NavStyle = lipgloss.NewStyle().
		Background(CPanel).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(CBorder).
		Padding(0, 1)

	HotkeyStyle = lipgloss.NewStyle().Foreground(CMuted)
	HotkeyKeyStyle = lipgloss.NewStyle().Foreground(CAccent).Bold(true)
	MutedStyle = lipgloss.NewStyle().Foreground(CMuted)
	ErrorStyle = lipgloss.NewStyle().Foreground(CError).Bold(true)
	WarnStyle = lipgloss.NewStyle().Foreground(CWarn)
}

// Current returns the active theme name
func Current() string {
	return current
}

// Key renders a key with accent styling
func Key(s string) string {
	return HotkeyKeyStyle.Render(s)
}
