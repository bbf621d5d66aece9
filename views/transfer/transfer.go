package transfer

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"rebase-dapp-tui/helpers"
	"rebase-dapp-tui/styles"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Form values, filled in by the transfer form
var (
	TempTo     string
	TempAmount string
)

// ValidateRecipient accepts a 0x-prefixed 20 byte hex address
func ValidateRecipient(s string) error {
	if !helpers.IsValidEthAddress(strings.TrimSpace(s)) {
		return errors.New("invalid ethereum address")
	}
	return nil
}

// ValidateAmount parses s in token units and checks it against balance
func ValidateAmount(s string, decimals uint8, balance *big.Int) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("amount is required")
	}
	amount, err := helpers.ParseUnits(s, decimals)
	if err != nil {
		return err
	}
	if balance != nil && amount.Cmp(balance) > 0 {
		return errors.New("amount exceeds balance")
	}
	return nil
}

// CreateForm builds the transfer form for a token
func CreateForm(symbol string, decimals uint8, balance *big.Int) *huh.Form {
	TempTo = ""
	TempAmount = ""

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Recipient address").
				Description("Enter a valid Ethereum address (Ctrl+v to paste)").
				Value(&TempTo).
				Placeholder("0x...").
				Validate(ValidateRecipient),

			huh.NewInput().
				Title(fmt.Sprintf("Amount of %s", symbol)).
				Description("Available: "+helpers.FormatToken(balance, decimals, symbol)).
				Value(&TempAmount).
				Placeholder("1").
				Validate(func(s string) error {
					return ValidateAmount(s, decimals, balance)
				}),
		),
	).WithTheme(huh.ThemeCatppuccin())

	form.Init()
	return form
}

// Render renders the transfer form panel
func Render(form *huh.Form) string {
	h := styles.TitleStyle.Render("Transfer")
	if form == nil {
		return h
	}
	hint := lipgloss.NewStyle().Foreground(styles.CMuted).Render("The transfer is signed in a confirmation dialog before it is sent.")
	return h + "\n" + hint + "\n\n" + form.View()
}
