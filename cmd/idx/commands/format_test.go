package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goapi-io/goapi-idx/internal/idx"
)

func TestPrintTableHeader(t *testing.T) {
	var buf bytes.Buffer
	PrintTableHeader(&buf, []string{"A", "BB"}, []int{3, 4})

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "A    BB", lines[0])
	assert.Equal(t, strings.Repeat("─", 9), lines[1])
}

func TestPrintPriceChanges(t *testing.T) {
	var buf bytes.Buffer
	PrintPriceChanges(&buf, []idx.StockPriceChange{
		{
			Symbol:  "GOTO",
			Company: &idx.Company{Name: "GoTo Gojek Tokopedia"},
			Close:   decimal.NewFromInt(84),
			Change:  decimal.NewFromInt(7),
			Percent: decimal.RequireFromString("9.0909"),
		},
		{
			Symbol:  "COMPOSITE",
			Close:   decimal.RequireFromString("7234.18"),
			Change:  decimal.RequireFromString("-18.2"),
			Percent: decimal.RequireFromString("-0.25"),
		},
	})

	out := buf.String()
	assert.Contains(t, out, "GoTo Gojek Tokopedia")
	assert.Contains(t, out, "+7")
	assert.Contains(t, out, "+9.09%")
	assert.Contains(t, out, "-18.2")
	assert.Contains(t, out, "-0.25%")
	assert.Contains(t, out, "2 rows")
}

func TestPrintStockPrices_ZeroDate(t *testing.T) {
	var buf bytes.Buffer
	PrintStockPrices(&buf, []idx.StockPrice{{Symbol: "BBCA", Close: decimal.NewFromInt(9500), Volume: 1200}})

	out := buf.String()
	assert.Contains(t, out, "9500")
	assert.Contains(t, out, "1200")
	assert.NotContains(t, out, "0001-01-01")
}

func TestPrintRaw(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintRaw(&buf, idx.Raw(`{"a":[1,2]}`)))
	assert.JSONEq(t, `{"a":[1,2]}`, buf.String())
	assert.Contains(t, buf.String(), "\n  ", "indented")

	buf.Reset()
	require.NoError(t, PrintRaw(&buf, idx.Raw(`not json`)))
	assert.Equal(t, "not json\n", buf.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Bank…", truncate("Bank Central Asia", 5))
	assert.Equal(t, "x", truncate("x", 0))
}
