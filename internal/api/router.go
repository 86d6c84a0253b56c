package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/goapi-io/goapi-idx/internal/api/handlers"
	"github.com/goapi-io/goapi-idx/pkg/logger"
)

// NewRouter creates and configures the HTTP router. Browsers on
// allowedOrigins may call it directly; the gateway only serves GET.
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(idxHandler *handlers.IDXHandler, log *logger.Logger, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api/idx").Subrouter()

	api.HandleFunc("/companies", idxHandler.ListCompanies).Methods("GET")
	api.HandleFunc("/prices", idxHandler.GetStockPrices).Methods("GET")
	api.HandleFunc("/trending", idxHandler.GetTrendingStocks).Methods("GET")
	api.HandleFunc("/top-gainers", idxHandler.GetTopGainers).Methods("GET")
	api.HandleFunc("/top-losers", idxHandler.GetTopLosers).Methods("GET")
	api.HandleFunc("/indices", idxHandler.GetIndices).Methods("GET")
	api.HandleFunc("/e-ipo", idxHandler.GetEIPOList).Methods("GET")
	api.HandleFunc("/indicators", idxHandler.GetStockIndicators).Methods("GET")

	api.HandleFunc("/{symbol}/historical", idxHandler.GetHistoricalData).Methods("GET")
	api.HandleFunc("/{symbol}/broker-summary", idxHandler.GetBrokerSummary).Methods("GET")

	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})

	return c.Handler(r)
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "goapi-idx-gateway",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
