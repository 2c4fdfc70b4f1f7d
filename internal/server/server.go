// Package server exposes the account overview service over HTTP.
package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/senzo-zwelihle-masango/emporium-overview/internal/overview"
	"github.com/senzo-zwelihle-masango/emporium-overview/internal/store"
)

// Server wires the store and the overview engine behind a chi router.
type Server struct {
	store    *store.Store
	overview *overview.Service
	logger   *slog.Logger
}

// NewServer builds a server backed by the provided store and engine.
func NewServer(st *store.Store, ov *overview.Service, logger *slog.Logger) *Server {
	return &Server{store: st, overview: ov, logger: logger}
}

// Router wires all routes under a single chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	})

	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", s.handleListAccounts)
		r.Post("/", s.handleCreateAccount)
		r.Route("/{accountID}", func(r chi.Router) {
			r.Post("/seed", s.handleSeedAccount)
			r.Get("/overview", s.handleOverview)
		})
	})

	return r
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var params store.CreateAccountParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: %v", err)
		return
	}
	account, err := s.store.CreateAccount(r.Context(), params)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%s", err.Error())
		return
	}
	s.logger.Info("account created", "account_id", account.ID, "email", account.Email)
	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.store.ListAccounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list accounts: %v", err)
		return
	}
	if accounts == nil {
		accounts = []store.Account{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

func (s *Server) handleSeedAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	summary, err := s.store.SeedAccountActivity(r.Context(), accountID)
	if err != nil {
		handleNotFound(w, err)
		return
	}
	s.logger.Info("account seeded", "account_id", accountID,
		"orders", summary.Orders, "reviews", summary.Reviews,
		"favorites", summary.Favorites, "interactions", summary.Interactions)
	writeJSON(w, http.StatusCreated, summary)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	result := s.overview.Compose(r.Context(), accountID)
	if result == nil {
		writeError(w, http.StatusNotFound, "no overview available")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": strings.TrimSpace(fmt.Sprintf(format, args...)),
			"status":  status,
		},
	})
}

func handleNotFound(w http.ResponseWriter, err error) {
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "resource not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "%s", err.Error())
}
