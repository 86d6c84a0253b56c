package idx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goapi-io/goapi-idx/pkg/config"
	"github.com/goapi-io/goapi-idx/pkg/httputil"
	"github.com/goapi-io/goapi-idx/pkg/logger"
)

// BasePath prefixes every IDX endpoint
const BasePath = "/stock/idx"

// DateLayout is the wire format of date query parameters
const DateLayout = "2006-01-02"

// Transport issues GET requests against the API root.
// *httputil.Client satisfies it.
type Transport interface {
	Get(ctx context.Context, path string, params url.Values) (*http.Response, error)
}

// Client handles communication with the GoAPI.io IDX endpoints
// ⭐ SSOT: IDX API 호출은 이 클라이언트에서만
//
// A Client holds no mutable state and is safe for concurrent use.
type Client struct {
	transport Transport
	logger    *logger.Logger
	basePath  string
}

// New creates an IDX client on top of an already authenticated transport.
// A nil log discards client logging.
func New(transport Transport, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		transport: transport,
		logger:    log,
		basePath:  BasePath,
	}
}

// NewFromConfig builds the transport from cfg (API root, key, timeout) and
// returns a ready client
func NewFromConfig(cfg *config.Config, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	return New(httputil.New(cfg, log), log)
}

// HistoricalOptions bounds a historical query; zero values are not sent
type HistoricalOptions struct {
	From time.Time
	To   time.Time
}

// IndicatorOptions selects a page and date of indicators; zero values are not sent
type IndicatorOptions struct {
	Page int
	Date time.Time
}

// envelope is the common GoAPI.io response wrapper
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// response is a decoded body plus its envelope view, which stays empty when
// the body is not a JSON object
type response struct {
	body json.RawMessage
	env  envelope
}

// ListCompanies returns every listed company
func (c *Client) ListCompanies(ctx context.Context) ([]Company, error) {
	return fetchList(ctx, c, "/companies", nil, CompanyFromMapping)
}

// GetStockPrices returns quotes for symbols. The API decides which symbols
// match, so the result length may differ from len(symbols).
func (c *Client) GetStockPrices(ctx context.Context, symbols []string) ([]StockPrice, error) {
	if len(symbols) == 0 {
		return nil, ErrNoSymbols
	}
	for _, s := range symbols {
		if err := checkSymbol(s); err != nil {
			return nil, err
		}
	}

	params := url.Values{}
	params.Set("symbols", strings.Join(symbols, ","))
	return fetchList(ctx, c, "/prices", params, StockPriceFromMapping)
}

// GetTrendingStocks returns the trending list
func (c *Client) GetTrendingStocks(ctx context.Context) ([]StockPriceChange, error) {
	return fetchList(ctx, c, "/trending", nil, StockPriceChangeFromMapping)
}

// GetTopGainers returns the top gainers of the session
func (c *Client) GetTopGainers(ctx context.Context) ([]StockPriceChange, error) {
	return fetchList(ctx, c, "/top_gainer", nil, StockPriceChangeFromMapping)
}

// GetTopLosers returns the top losers of the session
func (c *Client) GetTopLosers(ctx context.Context) ([]StockPriceChange, error) {
	return fetchList(ctx, c, "/top_loser", nil, StockPriceChangeFromMapping)
}

// GetIndices returns index levels and their change
func (c *Client) GetIndices(ctx context.Context) ([]StockPriceChange, error) {
	return fetchList(ctx, c, "/indices", nil, StockPriceChangeFromMapping)
}

// GetHistoricalData returns the raw historical series for symbol
func (c *Client) GetHistoricalData(ctx context.Context, symbol string, opts HistoricalOptions) (Raw, error) {
	if err := checkSymbol(symbol); err != nil {
		return nil, err
	}

	params := url.Values{}
	setDate(params, "from", opts.From)
	setDate(params, "to", opts.To)
	return c.fetchRaw(ctx, symbolPath(symbol, "/historical"), params)
}

// GetEIPOList returns the raw e-IPO listing
func (c *Client) GetEIPOList(ctx context.Context) (Raw, error) {
	return c.fetchRaw(ctx, "/e-ipo", nil)
}

// GetBrokerSummary returns the raw broker summary of symbol on date
func (c *Client) GetBrokerSummary(ctx context.Context, symbol string, date time.Time) (Raw, error) {
	if err := checkSymbol(symbol); err != nil {
		return nil, err
	}
	if date.IsZero() {
		return nil, ErrDateRequired
	}

	params := url.Values{}
	setDate(params, "date", date)
	return c.fetchRaw(ctx, symbolPath(symbol, "/broker_summary"), params)
}

// GetStockIndicators returns a raw page of indicators
func (c *Client) GetStockIndicators(ctx context.Context, opts IndicatorOptions) (Raw, error) {
	if opts.Page < 0 {
		return nil, ErrInvalidPage
	}

	params := url.Values{}
	if opts.Page > 0 {
		params.Set("page", strconv.Itoa(opts.Page))
	}
	setDate(params, "date", opts.Date)
	return c.fetchRaw(ctx, "/indicators", params)
}

// fetchRaw returns the decoded body unmodified
func (c *Client) fetchRaw(ctx context.Context, endpoint string, params url.Values) (Raw, error) {
	resp, err := c.request(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	return Raw(resp.body), nil
}

// fetchList maps data.results element-wise through build, keeping order
func fetchList[T any](ctx context.Context, c *Client, endpoint string, params url.Values, build func(Mapping) (T, error)) ([]T, error) {
	resp, err := c.request(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	results, err := decodeResults(resp.env.Data)
	if err != nil {
		return nil, fmt.Errorf("idx %s: %w", endpoint, err)
	}

	out := make([]T, 0, len(results))
	for i, m := range results {
		v, err := build(m)
		if err != nil {
			return nil, fmt.Errorf("idx %s: result %d: %w", endpoint, i, err)
		}
		out = append(out, v)
	}

	c.logger.WithFields(map[string]interface{}{
		"endpoint": endpoint,
		"count":    len(out),
	}).Debug("Fetched results")
	return out, nil
}

// decodeResults extracts data.results as a list of objects
func decodeResults(data json.RawMessage) ([]Mapping, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, fmt.Errorf("%w: missing data", ErrMalformedResponse)
	}

	var payload struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: data is not an object", ErrMalformedResponse)
	}
	if len(payload.Results) == 0 || string(payload.Results) == "null" {
		return nil, fmt.Errorf("%w: missing data.results", ErrMalformedResponse)
	}

	var results []Mapping
	if err := json.Unmarshal(payload.Results, &results); err != nil {
		return nil, fmt.Errorf("%w: data.results is not a list of objects", ErrMalformedResponse)
	}
	return results, nil
}

// request issues GET basePath+endpoint and decodes the body. Every failure,
// from the transport up to an API error envelope, becomes a *RequestError.
func (c *Client) request(ctx context.Context, endpoint string, params url.Values) (*response, error) {
	resp, err := c.transport.Get(ctx, c.basePath+endpoint, params)
	if err != nil {
		return nil, c.fail(&RequestError{Endpoint: endpoint, Message: err.Error(), Err: err})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(&RequestError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    "read response body: " + err.Error(),
			Err:        err,
		})
	}

	// a non-object body leaves env zero-valued, which is fine for raw endpoints
	var env envelope
	_ = json.Unmarshal(body, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		if msg == "" {
			msg = "unexpected status"
		}
		return nil, c.fail(&RequestError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: msg})
	}

	if !json.Valid(body) {
		return nil, c.fail(&RequestError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    "decode response: invalid JSON",
		})
	}

	if env.Status == "error" {
		msg := env.Message
		if msg == "" {
			msg = "API returned error status"
		}
		return nil, c.fail(&RequestError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: msg})
	}

	return &response{body: body, env: env}, nil
}

func (c *Client) fail(err *RequestError) error {
	c.logger.WithError(err).WithFields(map[string]interface{}{
		"endpoint":    err.Endpoint,
		"status_code": err.StatusCode,
	}).Warn("IDX request failed")
	return err
}

func checkSymbol(symbol string) error {
	switch strings.TrimSpace(symbol) {
	case "":
		return ErrEmptySymbol
	case ".", "..":
		// dot segments survive PathEscape and would be resolved away
		return fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	return nil
}

// symbolPath escapes symbol as a single path segment
func symbolPath(symbol, suffix string) string {
	return "/" + url.PathEscape(symbol) + suffix
}

func setDate(params url.Values, key string, t time.Time) {
	if !t.IsZero() {
		params.Set(key, t.Format(DateLayout))
	}
}
