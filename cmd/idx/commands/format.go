package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/goapi-io/goapi-idx/internal/idx"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

var (
	companyColumns = []string{"SYMBOL", "NAME", "LOGO"}
	companyWidths  = []int{8, 40, 20}

	priceColumns = []string{"SYMBOL", "DATE", "OPEN", "HIGH", "LOW", "CLOSE", "VOLUME", "CHG%"}
	priceWidths  = []int{8, 10, 10, 10, 10, 10, 14, 8}

	changeColumns = []string{"SYMBOL", "NAME", "CLOSE", "CHANGE", "CHG%"}
	changeWidths  = []int{10, 32, 12, 10, 8}
)

// PrintTableHeader prints a table header
func PrintTableHeader(w io.Writer, columns []string, widths []int) {
	PrintTableRow(w, columns, widths)

	// Separator line
	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(w io.Writer, values []string, widths []int) {
	for i, val := range values {
		if i < len(values)-1 {
			fmt.Fprintf(w, "%-*s  ", widths[i], val)
		} else {
			fmt.Fprint(w, val)
		}
	}
	fmt.Fprintln(w)
}

// PrintJSON prints v as indented JSON
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintRaw pretty-prints a raw payload, falling back to the bytes as received
func PrintRaw(w io.Writer, raw idx.Raw) error {
	var v interface{}
	if err := raw.Decode(&v); err != nil {
		_, err = fmt.Fprintln(w, string(raw))
		return err
	}
	return PrintJSON(w, v)
}

// PrintCompanies prints companies as a table
func PrintCompanies(w io.Writer, companies []idx.Company) {
	PrintTableHeader(w, companyColumns, companyWidths)
	for _, c := range companies {
		PrintTableRow(w, []string{c.Symbol, truncate(c.Name, companyWidths[1]), c.Logo}, companyWidths)
	}
	printCount(w, len(companies))
}

// PrintStockPrices prints quotes as a table
func PrintStockPrices(w io.Writer, prices []idx.StockPrice) {
	PrintTableHeader(w, priceColumns, priceWidths)
	for _, p := range prices {
		date := ""
		if !p.Date.IsZero() {
			date = p.Date.Format(idx.DateLayout)
		}
		PrintTableRow(w, []string{
			p.Symbol,
			date,
			p.Open.String(),
			p.High.String(),
			p.Low.String(),
			p.Close.String(),
			fmt.Sprintf("%d", p.Volume),
			formatPercent(p.ChangePercent),
		}, priceWidths)
	}
	printCount(w, len(prices))
}

// PrintPriceChanges prints movers or indices as a table
func PrintPriceChanges(w io.Writer, rows []idx.StockPriceChange) {
	PrintTableHeader(w, changeColumns, changeWidths)
	for _, r := range rows {
		name := ""
		if r.Company != nil {
			name = truncate(r.Company.Name, changeWidths[1])
		}
		PrintTableRow(w, []string{
			r.Symbol,
			name,
			r.Close.String(),
			formatSigned(r.Change),
			formatPercent(r.Percent),
		}, changeWidths)
	}
	printCount(w, len(rows))
}

func printCount(w io.Writer, n int) {
	fmt.Fprintf(w, "\n%d rows\n", n)
}

func formatSigned(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + d.String()
	}
	return d.String()
}

func formatPercent(d decimal.Decimal) string {
	return formatSigned(d.Round(2)) + "%"
}

// truncate shortens s to width runes, marking the cut with "…"
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width || width < 1 {
		return s
	}
	return string(runes[:width-1]) + "…"
}
