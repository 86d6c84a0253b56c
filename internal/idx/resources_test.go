package idx

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapping(t *testing.T, s string) Mapping {
	t.Helper()
	var m Mapping
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func TestCompanyFromMapping(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Company
		wantErr error
	}{
		{
			name:  "complete",
			input: `{"symbol":"BBCA","name":"Bank Central Asia","logo":"https://example.com/bbca.png","extra":1}`,
			want:  Company{Symbol: "BBCA", Name: "Bank Central Asia", Logo: "https://example.com/bbca.png"},
		},
		{name: "missing logo", input: `{"symbol":"BBCA","name":"Bank Central Asia"}`, wantErr: ErrMissingField},
		{name: "null name", input: `{"symbol":"BBCA","name":null,"logo":"x"}`, wantErr: ErrMissingField},
		{name: "numeric symbol", input: `{"symbol":1,"name":"n","logo":"x"}`, wantErr: ErrInvalidField},
		{name: "empty object", input: `{}`, wantErr: ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CompanyFromMapping(mapping(t, tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, Company{}, got, "no partial construction")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompanyFromMapping_NilMapping(t *testing.T) {
	_, err := CompanyFromMapping(nil)
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestStockPriceFromMapping(t *testing.T) {
	full := `{"symbol":"ASII","date":"2024-04-02 16:00:00","open":"5100","high":5200,"low":5050,"close":5175,"volume":23000100,"change":"75","change_pct":1.47}`

	got, err := StockPriceFromMapping(mapping(t, full))
	require.NoError(t, err)

	assert.Equal(t, "ASII", got.Symbol)
	assert.True(t, decimal.NewFromInt(5100).Equal(got.Open))
	assert.True(t, decimal.NewFromInt(5175).Equal(got.Close))
	assert.True(t, decimal.RequireFromString("1.47").Equal(got.ChangePercent))
	assert.Equal(t, int64(23000100), got.Volume)
	assert.Equal(t, 16, got.Date.Hour())

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"missing close", `{"symbol":"ASII","open":1,"high":1,"low":1,"volume":1}`, ErrMissingField},
		{"missing volume", `{"symbol":"ASII","open":1,"high":1,"low":1,"close":1}`, ErrMissingField},
		{"non-numeric open", `{"symbol":"ASII","open":"n/a","high":1,"low":1,"close":1,"volume":1}`, ErrInvalidField},
		{"fractional volume", `{"symbol":"ASII","open":1,"high":1,"low":1,"close":1,"volume":1.5}`, ErrInvalidField},
		{"volume above int64", `{"symbol":"ASII","open":1,"high":1,"low":1,"close":1,"volume":9223372036854775808}`, ErrInvalidField},
		{"volume below int64", `{"symbol":"ASII","open":1,"high":1,"low":1,"close":1,"volume":"-9223372036854775809"}`, ErrInvalidField},
		{"bad date", `{"symbol":"ASII","open":1,"high":1,"low":1,"close":1,"volume":1,"date":"02/04/2024"}`, ErrInvalidField},
		{"company not object", `{"symbol":"ASII","open":1,"high":1,"low":1,"close":1,"volume":1,"company":"Astra"}`, ErrInvalidField},
		{"company missing name", `{"symbol":"ASII","open":1,"high":1,"low":1,"close":1,"volume":1,"company":{"symbol":"ASII","logo":"x"}}`, ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := StockPriceFromMapping(mapping(t, tt.input))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestStockPriceChangeFromMapping(t *testing.T) {
	got, err := StockPriceChangeFromMapping(mapping(t,
		`{"symbol":"COMPOSITE","close":"7234.18","change":-18.2,"percent":"-0.25","company":{"symbol":"COMPOSITE","name":"IDX Composite","logo":""}}`))
	require.NoError(t, err)

	assert.Equal(t, "COMPOSITE", got.Symbol)
	assert.True(t, decimal.RequireFromString("7234.18").Equal(got.Close))
	assert.True(t, decimal.RequireFromString("-18.2").Equal(got.Change))
	assert.True(t, decimal.RequireFromString("-0.25").Equal(got.Percent))
	require.NotNil(t, got.Company)
	assert.Equal(t, "IDX Composite", got.Company.Name)

	_, err = StockPriceChangeFromMapping(mapping(t, `{"symbol":"GOTO","close":84,"change":7}`))
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), `"percent"`)

	_, err = StockPriceChangeFromMapping(mapping(t, `{"symbol":"GOTO","close":true,"change":7,"percent":1}`))
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestRaw(t *testing.T) {
	raw := Raw(`{"data":{"count":2}}`)

	var decoded struct {
		Data struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, raw.Decode(&decoded))
	assert.Equal(t, 2, decoded.Data.Count)

	out, err := json.Marshal(map[string]Raw{"payload": raw, "empty": nil})
	require.NoError(t, err)
	assert.JSONEq(t, `{"payload":{"data":{"count":2}},"empty":null}`, string(out))
}

func TestStockPriceFromMapping_MaxVolume(t *testing.T) {
	got, err := StockPriceFromMapping(mapping(t, `{"symbol":"ASII","open":1,"high":1,"low":1,"close":1,"volume":9223372036854775807}`))
	require.NoError(t, err)
	assert.Equal(t, int64(9223372036854775807), got.Volume)
}
