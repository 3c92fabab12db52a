// Package setup provides the interactive terminal swap wizard.
package setup

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"swapdesk/internal/domain"
	"swapdesk/internal/ledger"
	"swapdesk/internal/services/calculator"
	"swapdesk/internal/services/swapper"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

// RunSwapWizard walks the user through one swap: pick the pair, enter the
// amount, confirm the projection, execute.
func RunSwapWizard(ctx context.Context, led *ledger.Ledger, exec *swapper.Executor) error {
	tokens := led.Balances()
	if len(tokens) == 0 {
		return errors.New("no token balances available")
	}

	options := make([]huh.Option[string], 0, len(tokens))
	for _, t := range tokens {
		label := fmt.Sprintf("%s (%s), balance %s", t.Symbol, t.Name, t.Balance.String())
		options = append(options, huh.NewOption(label, t.Symbol))
	}

	var (
		fromSymbol string
		toSymbol   string
		amountStr  string
		confirm    bool
	)
	if sel := led.Selection(); sel.From != nil {
		fromSymbol = sel.From.Symbol
	}

	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("SWAPDESK"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Swap tokens from your local balances.\n"))

	fmt.Println(stepStyle.Render("STEP 1: PAY WITH"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Token to swap from").
				Options(options...).
				Value(&fromSymbol),
		),
	).Run()
	if err != nil {
		return err
	}
	if err := exec.PickToken(domain.SideFrom, fromSymbol); err != nil {
		return err
	}

	fmt.Println(stepStyle.Render("STEP 2: RECEIVE"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Token to receive").
				Options(options...).
				Value(&toSymbol),
		),
	).Run()
	if err != nil {
		return err
	}
	if err := exec.PickToken(domain.SideTo, toSymbol); err != nil {
		return err
	}

	fmt.Println(stepStyle.Render("STEP 3: AMOUNT"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Amount of %s to swap", fromSymbol)).
				Validate(func(raw string) error {
					amount, err := calculator.ParseAmount(raw)
					if err != nil {
						return err
					}
					if token, ok := led.Token(fromSymbol); ok && token.Balance.LessThan(amount) {
						return domain.ErrInsufficientBalance
					}
					return nil
				}).
				Value(&amountStr),
		),
	).Run()
	if err != nil {
		return err
	}

	amount, err := calculator.ParseAmount(amountStr)
	if err != nil {
		return err
	}

	projection := exec.Quote(amount)
	fmt.Println(stepStyle.Render("STEP 4: CONFIRM"))
	fmt.Println(renderSummary(projection))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Execute this swap?").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Swap cancelled."))
		return nil
	}

	event, err := exec.ExecuteSwap(ctx, amount)
	if err != nil {
		fmt.Println(errStyle.Render("Swap failed: " + err.Error()))
		return err
	}

	fmt.Println(stepStyle.Render("SETTLED"))
	fmt.Printf("Swapped %s %s for %s %s\n",
		event.FromAmount.String(), event.FromSymbol,
		calculator.FormatAmount(event.ToAmount), event.ToSymbol)
	fmt.Printf("New balances: %s %s, %s %s\n",
		event.FromBalance.String(), event.FromSymbol,
		event.ToBalance.String(), event.ToSymbol)

	return nil
}

func renderSummary(projection domain.SwapProjection) string {
	if projection.Summary == nil {
		return errStyle.Render("No conversion available for this pair.")
	}

	line := func(label string, leg domain.SummaryLeg) string {
		return fmt.Sprintf("  %-7s %s: %s   %s: %s", label,
			leg.From.Symbol, trimBalance(leg.From.Balance),
			leg.To.Symbol, trimBalance(leg.To.Balance))
	}

	return fmt.Sprintf("You receive %s %s\n%s\n%s",
		calculator.FormatAmount(projection.ToAmount), projection.Summary.Before.To.Symbol,
		line("before", projection.Summary.Before),
		line("after", projection.Summary.After))
}

func trimBalance(v decimal.Decimal) string {
	return v.Round(calculator.Scale).String()
}
