package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/helionpay/custody-wallet/core"
	"github.com/pandodao/generic"
)

func New(walletz core.WalletService, logger *slog.Logger) *Server {
	return &Server{
		walletz: walletz,
		logger:  logger.With("server", "api"),
	}
}

type Server struct {
	walletz core.WalletService
	logger  *slog.Logger
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Route("/wallets", func(r chi.Router) {
		r.Get("/", s.listWallets)
		r.Get("/summary", s.walletSummary)
		r.Post("/ensure", s.ensureWallet)
		r.Post("/connect", s.connectWallet)
		r.Route("/{wallet_id}", func(r chi.Router) {
			r.Put("/", s.updateWallet)
			r.Delete("/", s.deactivateWallet)
			r.Post("/primary", s.setPrimary)
			r.Post("/refresh", s.refreshBalance)
		})
	})

	r.Get("/balance", s.totalBalance)
	r.Post("/transactions/send", s.send)
	r.Get("/transactions/{signature}", s.transactionStatus)
	r.Get("/activities", s.listActivities)

	return r
}

// userID extracts the owner identity set by the upstream auth layer.
func userID(r *http.Request) string {
	return r.Header.Get("X-User-Id")
}

func (s *Server) ensureWallet(w http.ResponseWriter, r *http.Request) {
	wallet, err := s.walletz.EnsurePrimaryWallet(r.Context(), userID(r))
	s.respond(w, r, wallet, err)
}

func (s *Server) connectWallet(w http.ResponseWriter, r *http.Request) {
	var req core.ConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respond(w, r, nil, core.WrapError(core.CodeInvalidRequest, "invalid request body", err))
		return
	}

	wallet, err := s.walletz.ConnectExternalWallet(r.Context(), userID(r), req)
	s.respond(w, r, wallet, err)
}

func (s *Server) listWallets(w http.ResponseWriter, r *http.Request) {
	wallets, err := s.walletz.ListWallets(r.Context(), userID(r))
	s.respond(w, r, map[string]any{"wallets": wallets}, err)
}

func (s *Server) walletSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.walletz.WalletSummary(r.Context(), userID(r))
	s.respond(w, r, summary, err)
}

func (s *Server) updateWallet(w http.ResponseWriter, r *http.Request) {
	var req core.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respond(w, r, nil, core.WrapError(core.CodeInvalidRequest, "invalid request body", err))
		return
	}

	wallet, err := s.walletz.UpdateWallet(r.Context(), userID(r), chi.URLParam(r, "wallet_id"), req)
	s.respond(w, r, wallet, err)
}

func (s *Server) deactivateWallet(w http.ResponseWriter, r *http.Request) {
	err := s.walletz.DeactivateWallet(r.Context(), userID(r), chi.URLParam(r, "wallet_id"))
	s.respond(w, r, map[string]any{"ok": err == nil}, err)
}

func (s *Server) setPrimary(w http.ResponseWriter, r *http.Request) {
	err := s.walletz.SetPrimary(r.Context(), userID(r), chi.URLParam(r, "wallet_id"))
	s.respond(w, r, map[string]any{"ok": err == nil}, err)
}

func (s *Server) refreshBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.walletz.RefreshBalance(r.Context(), userID(r), chi.URLParam(r, "wallet_id"))
	s.respond(w, r, balance, err)
}

func (s *Server) totalBalance(w http.ResponseWriter, r *http.Request) {
	total, err := s.walletz.TotalBalance(r.Context(), userID(r))
	s.respond(w, r, total, err)
}

func (s *Server) send(w http.ResponseWriter, r *http.Request) {
	var req core.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respond(w, r, nil, core.WrapError(core.CodeInvalidRequest, "invalid request body", err))
		return
	}

	receipt, err := s.walletz.Send(r.Context(), userID(r), req)
	s.respond(w, r, receipt, err)
}

func (s *Server) transactionStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.walletz.TransactionStatus(r.Context(), chi.URLParam(r, "signature"))
	s.respond(w, r, status, err)
}

func (s *Server) listActivities(w http.ResponseWriter, r *http.Request) {
	limit := generic.Try(strconv.Atoi(r.URL.Query().Get("limit")))
	activities, err := s.walletz.ListActivities(r.Context(), userID(r), limit)
	s.respond(w, r, map[string]any{"activities": activities}, err)
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, body any, err error) {
	w.Header().Set("Content-Type", "application/json")

	if err != nil {
		code := core.CodeOf(err)
		status := httpStatus(code)
		if status >= http.StatusInternalServerError {
			s.logger.Error("request failed", "path", r.URL.Path, "code", code, "err", err)
		}

		payload := map[string]any{
			"code":    string(code),
			"message": errorMessage(err),
		}

		var coreErr *core.Error
		if errors.As(err, &coreErr) && len(coreErr.Meta) > 0 {
			payload["meta"] = coreErr.Meta
		}

		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": payload})
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(body)
}
