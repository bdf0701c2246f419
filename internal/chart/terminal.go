package chart

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/shopspring/decimal"

	"finance-dashboard/internal/models"
	"finance-dashboard/internal/money"
)

const (
	ringGlyph   = "█"
	legendGlyph = "●"
	nameWidth   = 16
)

// Terminal returns a Factory drawing a segmented ring of the given width
// followed by a legend.
func Terminal(width int) Factory {
	if width < 10 {
		width = 10
	}
	return func(aggregates []models.CategoryAggregate) (Instance, error) {
		total := decimal.Zero
		for _, a := range aggregates {
			if a.Total.IsPositive() {
				total = total.Add(a.Total)
			}
		}
		if !total.IsPositive() {
			return nil, fmt.Errorf("chart: no positive totals among %d categories", len(aggregates))
		}
		return &terminalInstance{view: draw(aggregates, total, width)}, nil
	}
}

type terminalInstance struct {
	view string
}

func (t *terminalInstance) View() string { return t.view }

func (t *terminalInstance) Destroy() { t.view = "" }

func draw(aggregates []models.CategoryAggregate, total decimal.Decimal, width int) string {
	widths := segmentWidths(aggregates, total, width)

	var ring strings.Builder
	for i, a := range aggregates {
		if widths[i] == 0 {
			continue
		}
		ring.WriteString(colorOf(a).Render(strings.Repeat(ringGlyph, widths[i])))
	}

	lines := []string{ring.String(), ring.String(), ""}
	for _, a := range aggregates {
		pct := decimal.Zero
		if a.Total.IsPositive() {
			pct = a.Total.Div(total).Shift(2)
		}
		name := ansi.Truncate(a.Name, nameWidth, "…")
		lines = append(lines, fmt.Sprintf("%s %-*s %10s %5s%%",
			colorOf(a).Render(legendGlyph), nameWidth, name, money.Format(a.Total), pct.StringFixed(1)))
	}
	return strings.Join(lines, "\n")
}

// segmentWidths splits width across aggregates proportionally using the
// largest remainder method so the segments always fill the ring.
func segmentWidths(aggregates []models.CategoryAggregate, total decimal.Decimal, width int) []int {
	widths := make([]int, len(aggregates))
	remainders := make([]decimal.Decimal, len(aggregates))
	used := 0
	w := decimal.NewFromInt(int64(width))
	for i, a := range aggregates {
		if !a.Total.IsPositive() {
			continue
		}
		exact := a.Total.Mul(w).Div(total)
		widths[i] = int(exact.IntPart())
		remainders[i] = exact.Sub(exact.Floor())
		used += widths[i]
	}
	for used < width {
		best := -1
		for i, a := range aggregates {
			if !a.Total.IsPositive() {
				continue
			}
			if best == -1 || remainders[i].GreaterThan(remainders[best]) {
				best = i
			}
		}
		if best == -1 {
			break
		}
		widths[best]++
		remainders[best] = decimal.NewFromInt(-1)
		used++
	}
	return widths
}

func colorOf(a models.CategoryAggregate) lipgloss.Style {
	color := a.Color
	if color == "" {
		color = models.DefaultColor
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}
