// Package view renders dashboard state as terminal text. Every function is
// a pure function of its arguments.
package view

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"finance-dashboard/internal/form"
	"finance-dashboard/internal/models"
	"finance-dashboard/internal/money"
	"finance-dashboard/internal/prefs"
	"finance-dashboard/internal/state"
)

var titleCaser = cases.Title(language.English)

const (
	EmptyTransactions = "No transactions yet. Add your first one!"
	displayDate       = "Jan 2, 2006"
)

func FormatCurrency(d decimal.Decimal) string {
	return money.Format(d)
}

func Net(s models.Summary) decimal.Decimal {
	return s.Net()
}

func NetStatus(net decimal.Decimal) string {
	if net.IsNegative() {
		return "Over budget"
	}
	return "On track"
}

// ToggleLabel names the theme the toggle switches to.
func ToggleLabel(theme prefs.Theme) string {
	if theme == prefs.Dark {
		return "Light"
	}
	return "Dark"
}

// RefreshLabel names the polling period, e.g. "Auto-refresh 30s".
func RefreshLabel(every time.Duration) string {
	switch {
	case every >= time.Minute && every%time.Minute == 0:
		return "Auto-refresh " + strconv.Itoa(int(every/time.Minute)) + "m"
	case every >= time.Second && every%time.Second == 0:
		return "Auto-refresh " + strconv.Itoa(int(every/time.Second)) + "s"
	}
	return "Auto-refresh " + every.String()
}

func Header(styles Styles, every time.Duration, width int) string {
	left := lipgloss.JoinVertical(lipgloss.Left,
		styles.Title.Render("Finance Dashboard"),
		styles.Subtitle.Render("Overview"),
	)
	right := lipgloss.JoinHorizontal(lipgloss.Center,
		styles.Chip.Render(RefreshLabel(every)),
		" ",
		styles.Toggle.Render(ToggleLabel(styles.Theme)),
	)
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, left, strings.Repeat(" ", gap), right)
}

func SummaryCards(s models.Summary, styles Styles, width int) string {
	net := Net(s)
	cardWidth := max(24, width/3-2)
	card := styles.Card.Width(cardWidth)

	income := card.Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.CardTitle.Render("Total Income"),
		styles.Income.Render(FormatCurrency(s.TotalIncome)),
		styles.Footer.Render("Last 30 days"),
	))
	expenses := card.Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.CardTitle.Render("Total Expenses"),
		styles.Expense.Render(FormatCurrency(s.TotalExpenses)),
		styles.Footer.Render("Last 30 days"),
	))
	savings := card.Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.CardTitle.Render("Net Savings"),
		styles.Net.Render(FormatCurrency(net)),
		styles.Footer.Render(NetStatus(net)),
	))
	return lipgloss.JoinHorizontal(lipgloss.Top, income, " ", expenses, " ", savings)
}

// FormState is what the form card needs beyond the draft. Inputs holds
// pre-rendered editors keyed by field; fields without one show the raw
// draft value.
type FormState struct {
	Draft      state.Draft
	Categories []models.Category
	Focus      form.Field
	Busy       bool
	Inputs     map[form.Field]string
}

var formOrder = []struct {
	field form.Field
	label string
}{
	{form.FieldDate, "Date"},
	{form.FieldDescription, "Description"},
	{form.FieldAmount, "Amount"},
	{form.FieldType, "Type"},
	{form.FieldCategoryID, "Category"},
	{form.FieldNotes, "Notes"},
}

func Form(f FormState, styles Styles, width int) string {
	rows := []string{styles.CardTitle.Render("Add Transaction"), ""}
	for _, item := range formOrder {
		label := styles.Label
		if item.field == f.Focus {
			label = styles.FocusedLabel
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			label.Render(item.label),
			styles.Value.Render(formValue(f, item.field)),
		))
	}

	button := styles.Button.Render("Add Transaction")
	if f.Busy {
		button = styles.ButtonBusy.Render("Adding...")
	}
	rows = append(rows, "", button)
	return styles.Card.Width(max(30, width)).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formValue(f FormState, field form.Field) string {
	switch field {
	case form.FieldType:
		return "‹ " + TypeLabel(f.Draft.Type) + " ›"
	case form.FieldCategoryID:
		name := "none"
		for _, c := range f.Categories {
			if strconv.Itoa(c.ID) == f.Draft.CategoryID {
				name = c.Name
				break
			}
		}
		return "‹ " + name + " ›"
	}
	if in, ok := f.Inputs[field]; ok {
		return in
	}
	switch field {
	case form.FieldDate:
		return f.Draft.Date
	case form.FieldDescription:
		return f.Draft.Description
	case form.FieldAmount:
		return f.Draft.Amount
	case form.FieldNotes:
		return f.Draft.Notes
	}
	return ""
}

func TypeLabel(t models.TransactionType) string {
	return titleCaser.String(string(t))
}

// Amount renders a signed amount: +$x for income and -$x otherwise.
func Amount(t models.Transaction) string {
	if t.Type == models.Income {
		return "+" + money.FormatAbs(t.Amount)
	}
	return "-" + money.FormatAbs(t.Amount)
}

// DisplayDate formats YYYY-MM-DD or RFC 3339 dates as "Jan 2, 2006" and
// returns anything else unchanged.
func DisplayDate(raw string) string {
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(displayDate)
		}
	}
	return raw
}

func TransactionList(txs []models.Transaction, selected int, styles Styles, width int) string {
	if len(txs) == 0 {
		return styles.Empty.Render(EmptyTransactions)
	}

	rows := make([]string, 0, len(txs))
	for i, t := range txs {
		rows = append(rows, transactionRow(t, i == selected, styles, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func transactionRow(t models.Transaction, selected bool, styles Styles, width int) string {
	amountStyle := styles.Expense
	if t.Type == models.Income {
		amountStyle = styles.Income
	}
	amount := amountStyle.Render(Amount(t))

	color := t.CategoryColor
	if color == "" {
		color = models.DefaultColor
	}
	badge := lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color(color)).Padding(0, 1).
		Render(ansi.Truncate(t.CategoryName, 16, "…"))

	info := lipgloss.JoinVertical(lipgloss.Left,
		styles.Value.Bold(true).Render(ansi.Truncate(t.Description, max(10, width-24), "…")),
		badge+" "+styles.Meta.Render(DisplayDate(t.Date)),
	)

	gap := max(1, width-lipgloss.Width(info)-lipgloss.Width(amount)-3)
	row := lipgloss.JoinHorizontal(lipgloss.Center, info, strings.Repeat(" ", gap), amount)
	if selected {
		return styles.SelectedRow.Render(row)
	}
	return styles.Row.Render(row)
}

// Chart frames a rendered chart. An empty chart shows a placeholder.
func Chart(rendered string, loading bool, styles Styles, width int) string {
	body := rendered
	switch {
	case loading:
		body = styles.Meta.Render("Loading...")
	case body == "":
		body = styles.Meta.Render("No expenses in the last 30 days")
	}
	return styles.Card.Width(max(30, width)).Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.CardTitle.Render("Spending by Category"),
		"",
		body,
	))
}

// Modal renders a blocking message. Confirmations show both answers.
func Modal(msg string, confirm bool, styles Styles) string {
	hint := "[enter] OK"
	if confirm {
		hint = "[y] Yes  [n] No"
	}
	return styles.Modal.Render(lipgloss.JoinVertical(lipgloss.Center, msg, "", styles.Help.Render(hint)))
}
