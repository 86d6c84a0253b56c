package idx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Mapping is one decoded JSON object from a results array
type Mapping map[string]json.RawMessage

// Company is an exchange-listed company
type Company struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Logo   string `json:"logo"`
}

// StockPrice is a point-in-time quote
type StockPrice struct {
	Symbol        string          `json:"symbol"`
	Company       *Company        `json:"company,omitempty"`
	Date          time.Time       `json:"date,omitzero"`
	Open          decimal.Decimal `json:"open"`
	High          decimal.Decimal `json:"high"`
	Low           decimal.Decimal `json:"low"`
	Close         decimal.Decimal `json:"close"`
	Volume        int64           `json:"volume"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"change_pct"`
}

// StockPriceChange is the shared shape of trending, gainer, loser and index rows
type StockPriceChange struct {
	Symbol  string          `json:"symbol"`
	Company *Company        `json:"company,omitempty"`
	Close   decimal.Decimal `json:"close"`
	Change  decimal.Decimal `json:"change"`
	Percent decimal.Decimal `json:"percent"`
}

// Raw is an undecoded JSON response body, returned by endpoints without a
// dedicated type
type Raw json.RawMessage

// MarshalJSON emits r verbatim
func (r Raw) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

// Decode unmarshals r into v
func (r Raw) Decode(v interface{}) error {
	return json.Unmarshal(r, v)
}

// CompanyFromMapping builds a Company; symbol, name and logo are required
func CompanyFromMapping(m Mapping) (Company, error) {
	var c Company
	var err error

	if c.Symbol, err = requireString(m, "symbol"); err != nil {
		return Company{}, err
	}
	if c.Name, err = requireString(m, "name"); err != nil {
		return Company{}, err
	}
	if c.Logo, err = requireString(m, "logo"); err != nil {
		return Company{}, err
	}
	return c, nil
}

// StockPriceFromMapping builds a StockPrice; symbol and OHLCV are required,
// date, change, change_pct and company are optional
func StockPriceFromMapping(m Mapping) (StockPrice, error) {
	var p StockPrice
	var err error

	if p.Symbol, err = requireString(m, "symbol"); err != nil {
		return StockPrice{}, err
	}
	if p.Open, err = requireDecimal(m, "open"); err != nil {
		return StockPrice{}, err
	}
	if p.High, err = requireDecimal(m, "high"); err != nil {
		return StockPrice{}, err
	}
	if p.Low, err = requireDecimal(m, "low"); err != nil {
		return StockPrice{}, err
	}
	if p.Close, err = requireDecimal(m, "close"); err != nil {
		return StockPrice{}, err
	}
	if p.Volume, err = requireInt64(m, "volume"); err != nil {
		return StockPrice{}, err
	}
	if p.Date, err = optionalDate(m, "date"); err != nil {
		return StockPrice{}, err
	}
	if p.Change, err = optionalDecimal(m, "change"); err != nil {
		return StockPrice{}, err
	}
	if p.ChangePercent, err = optionalDecimal(m, "change_pct"); err != nil {
		return StockPrice{}, err
	}
	if p.Company, err = optionalCompany(m, "company"); err != nil {
		return StockPrice{}, err
	}
	return p, nil
}

// StockPriceChangeFromMapping builds a StockPriceChange; symbol, close,
// change and percent are required, company is optional
func StockPriceChangeFromMapping(m Mapping) (StockPriceChange, error) {
	var c StockPriceChange
	var err error

	if c.Symbol, err = requireString(m, "symbol"); err != nil {
		return StockPriceChange{}, err
	}
	if c.Close, err = requireDecimal(m, "close"); err != nil {
		return StockPriceChange{}, err
	}
	if c.Change, err = requireDecimal(m, "change"); err != nil {
		return StockPriceChange{}, err
	}
	if c.Percent, err = requireDecimal(m, "percent"); err != nil {
		return StockPriceChange{}, err
	}
	if c.Company, err = optionalCompany(m, "company"); err != nil {
		return StockPriceChange{}, err
	}
	return c, nil
}

// lookup returns the raw value for key, treating JSON null as absent
func lookup(m Mapping, key string) (json.RawMessage, bool) {
	raw, ok := m[key]
	if !ok || len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	return raw, true
}

func requireString(m Mapping, key string) (string, error) {
	raw, ok := lookup(m, key)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingField, key)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: %q is not a string", ErrInvalidField, key)
	}
	return s, nil
}

func requireDecimal(m Mapping, key string) (decimal.Decimal, error) {
	raw, ok := lookup(m, key)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMissingField, key)
	}
	return parseDecimal(raw, key)
}

func optionalDecimal(m Mapping, key string) (decimal.Decimal, error) {
	raw, ok := lookup(m, key)
	if !ok {
		return decimal.Zero, nil
	}
	return parseDecimal(raw, key)
}

// parseDecimal accepts JSON numbers and numeric strings
func parseDecimal(raw json.RawMessage, key string) (decimal.Decimal, error) {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not numeric", ErrInvalidField, key)
	}
	return d, nil
}

var (
	minInt64 = decimal.NewFromInt(math.MinInt64)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)

func requireInt64(m Mapping, key string) (int64, error) {
	d, err := requireDecimal(m, key)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidField, key)
	}
	if d.LessThan(minInt64) || d.GreaterThan(maxInt64) {
		return 0, fmt.Errorf("%w: %q is out of int64 range", ErrInvalidField, key)
	}
	return d.IntPart(), nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func optionalDate(m Mapping, key string) (time.Time, error) {
	raw, ok := lookup(m, key)
	if !ok {
		return time.Time{}, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a string", ErrInvalidField, key)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q has unknown date format %q", ErrInvalidField, key, s)
}

func optionalCompany(m Mapping, key string) (*Company, error) {
	raw, ok := lookup(m, key)
	if !ok {
		return nil, nil
	}

	var nested Mapping
	if err := json.Unmarshal(raw, &nested); err != nil {
		return nil, fmt.Errorf("%w: %q is not an object", ErrInvalidField, key)
	}
	c, err := CompanyFromMapping(nested)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &c, nil
}
