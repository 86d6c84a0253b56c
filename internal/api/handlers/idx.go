package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/goapi-io/goapi-idx/internal/idx"
	"github.com/goapi-io/goapi-idx/pkg/logger"
)

// StockData is the IDX surface the gateway re-exposes; *idx.Client satisfies it
type StockData interface {
	ListCompanies(ctx context.Context) ([]idx.Company, error)
	GetStockPrices(ctx context.Context, symbols []string) ([]idx.StockPrice, error)
	GetTrendingStocks(ctx context.Context) ([]idx.StockPriceChange, error)
	GetTopGainers(ctx context.Context) ([]idx.StockPriceChange, error)
	GetTopLosers(ctx context.Context) ([]idx.StockPriceChange, error)
	GetIndices(ctx context.Context) ([]idx.StockPriceChange, error)
	GetHistoricalData(ctx context.Context, symbol string, opts idx.HistoricalOptions) (idx.Raw, error)
	GetEIPOList(ctx context.Context) (idx.Raw, error)
	GetBrokerSummary(ctx context.Context, symbol string, date time.Time) (idx.Raw, error)
	GetStockIndicators(ctx context.Context, opts idx.IndicatorOptions) (idx.Raw, error)
}

// IDXHandler handles the IDX gateway endpoints
// ⭐ SSOT: IDX API 핸들러는 이 구조체에서만
type IDXHandler struct {
	client StockData
	logger *logger.Logger
}

// NewIDXHandler creates a new IDX handler
func NewIDXHandler(client StockData, log *logger.Logger) *IDXHandler {
	return &IDXHandler{
		client: client,
		logger: log,
	}
}

// errBadQuery marks malformed gateway query parameters
var errBadQuery = errors.New("bad query parameter")

// ListCompanies returns all listed companies
// GET /api/idx/companies
func (h *IDXHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.client.ListCompanies(r.Context())
	h.respond(w, r, companies, err)
}

// GetStockPrices returns quotes for a comma-separated symbol list
// GET /api/idx/prices?symbols=BBCA,TLKM
func (h *IDXHandler) GetStockPrices(w http.ResponseWriter, r *http.Request) {
	var symbols []string
	if raw := r.URL.Query().Get("symbols"); raw != "" {
		symbols = strings.Split(raw, ",")
	}

	prices, err := h.client.GetStockPrices(r.Context(), symbols)
	h.respond(w, r, prices, err)
}

// GetTrendingStocks returns the trending list
// GET /api/idx/trending
func (h *IDXHandler) GetTrendingStocks(w http.ResponseWriter, r *http.Request) {
	rows, err := h.client.GetTrendingStocks(r.Context())
	h.respond(w, r, rows, err)
}

// GetTopGainers returns the top gainers
// GET /api/idx/top-gainers
func (h *IDXHandler) GetTopGainers(w http.ResponseWriter, r *http.Request) {
	rows, err := h.client.GetTopGainers(r.Context())
	h.respond(w, r, rows, err)
}

// GetTopLosers returns the top losers
// GET /api/idx/top-losers
func (h *IDXHandler) GetTopLosers(w http.ResponseWriter, r *http.Request) {
	rows, err := h.client.GetTopLosers(r.Context())
	h.respond(w, r, rows, err)
}

// GetIndices returns index levels
// GET /api/idx/indices
func (h *IDXHandler) GetIndices(w http.ResponseWriter, r *http.Request) {
	rows, err := h.client.GetIndices(r.Context())
	h.respond(w, r, rows, err)
}

// GetHistoricalData returns the raw historical series
// GET /api/idx/{symbol}/historical?from=2024-01-01&to=2024-01-31
func (h *IDXHandler) GetHistoricalData(w http.ResponseWriter, r *http.Request) {
	from, err := parseDateParam(r, "from")
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}

	raw, err := h.client.GetHistoricalData(r.Context(), mux.Vars(r)["symbol"], idx.HistoricalOptions{From: from, To: to})
	h.respond(w, r, raw, err)
}

// GetEIPOList returns the raw e-IPO list
// GET /api/idx/e-ipo
func (h *IDXHandler) GetEIPOList(w http.ResponseWriter, r *http.Request) {
	raw, err := h.client.GetEIPOList(r.Context())
	h.respond(w, r, raw, err)
}

// GetBrokerSummary returns the raw broker summary
// GET /api/idx/{symbol}/broker-summary?date=2024-05-17
func (h *IDXHandler) GetBrokerSummary(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r, "date")
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}

	raw, err := h.client.GetBrokerSummary(r.Context(), mux.Vars(r)["symbol"], date)
	h.respond(w, r, raw, err)
}

// GetStockIndicators returns a raw page of indicators
// GET /api/idx/indicators?page=2&date=2024-02-09
func (h *IDXHandler) GetStockIndicators(w http.ResponseWriter, r *http.Request) {
	var opts idx.IndicatorOptions

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil {
			h.respond(w, r, nil, fmt.Errorf("%w: page %q", errBadQuery, pageStr))
			return
		}
		opts.Page = page
	}

	date, err := parseDateParam(r, "date")
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	opts.Date = date

	raw, err := h.client.GetStockIndicators(r.Context(), opts)
	h.respond(w, r, raw, err)
}

// respond writes data or maps err onto a status: bad input is 400,
// anything from upstream is 502
func (h *IDXHandler) respond(w http.ResponseWriter, r *http.Request, data interface{}, err error) {
	if err == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    data,
		})
		return
	}

	if errors.Is(err, errBadQuery) || idx.IsArgumentError(err) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var reqErr *idx.RequestError
	if errors.As(err, &reqErr) {
		h.logger.WithError(err).WithField("path", r.URL.Path).Warn("Upstream request failed")
	} else {
		h.logger.WithError(err).WithField("path", r.URL.Path).Error("Upstream response could not be mapped")
	}
	respondError(w, http.StatusBadGateway, err.Error())
}

func parseDateParam(r *http.Request, key string) (time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(idx.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD, got %q", errBadQuery, key, value)
	}
	return t, nil
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
