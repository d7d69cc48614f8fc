package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/rpsduel-go/internal/account"
	"github.com/mcoot/rpsduel-go/internal/api/handler"
	apimiddleware "github.com/mcoot/rpsduel-go/internal/api/middleware"
	"github.com/mcoot/rpsduel-go/internal/middleware"
	"github.com/mcoot/rpsduel-go/internal/scoreboard"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger     *slog.Logger
	Accounts   *account.Service
	Scoreboard *scoreboard.Service
	Socket     http.Handler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	accountsHandler := handler.NewAccountsHandler(cfg.Accounts)
	rankingsHandler := handler.NewRankingsHandler(cfg.Scoreboard)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := apimiddleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/accounts/register", accountsHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/accounts/login", accountsHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/rankings", rankingsHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// The websocket endpoint sits outside the middleware chain: the upgrade
	// needs the raw http.ResponseWriter's Hijacker, which the logging
	// wrapper does not pass through.
	r.Handle("/ws", cfg.Socket).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
