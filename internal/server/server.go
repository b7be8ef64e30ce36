// Package server exposes the play submission contract over HTTP. It is a
// thin boundary: authentication, routing policy, and rate limiting live
// outside the core; the account identity arrives in a header.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"casino-core/internal/game"
	"casino-core/internal/ledger"
	"casino-core/internal/model"
	"casino-core/internal/pkg/lock"
	"casino-core/internal/pricing"
	"casino-core/internal/settlement"
)

const accountHeader = "X-Account-ID"

// Submitter settles plays. Implemented by settlement.Coordinator.
type Submitter interface {
	Submit(ctx context.Context, accountID string, req model.GameRequest) (*model.RoundResult, error)
}

// History serves the read-only views over recorded rounds.
type History interface {
	ListRounds(ctx context.Context, accountID, variant string, limit int) ([]*model.Round, error)
	GetStats(ctx context.Context, accountID string) (*model.AccountStats, error)
}

// Server is the fasthttp boundary around the casino core.
type Server struct {
	submitter Submitter
	history   History
	oracle    *pricing.Service
	srv       *fasthttp.Server
	log       zerolog.Logger
}

// New creates a Server.
func New(submitter Submitter, history History, oracle *pricing.Service, log zerolog.Logger) *Server {
	s := &Server{
		submitter: submitter,
		history:   history,
		oracle:    oracle,
		log:       log,
	}
	s.srv = &fasthttp.Server{
		Handler: s.route,
		Name:    "casino-core",
	}
	return s
}

// ListenAndServe blocks serving requests on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.log.Info().Str("addr", addr).Msg("HTTP server listening")
	return s.srv.ListenAndServe(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.srv.Shutdown()
}

func (s *Server) route(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	method := string(ctx.Method())

	switch {
	case path == "/casino/games" && method == fasthttp.MethodGet:
		s.handleGames(ctx)
	case path == "/casino/play" && method == fasthttp.MethodPost:
		s.handlePlay(ctx)
	case path == "/casino/history" && method == fasthttp.MethodGet:
		s.handleHistory(ctx)
	case path == "/casino/stats" && method == fasthttp.MethodGet:
		s.handleStats(ctx)
	default:
		writeError(ctx, fasthttp.StatusNotFound, "not found")
	}
}

// gameCatalog describes the available games for clients.
var gameCatalog = map[game.Variant]map[string]any{
	game.VariantDice: {
		"name":        "Dice",
		"description": "Predict if roll (0-100) will be over or under target",
		"options":     []string{"prediction (over/under)", "target (0-100)"},
	},
	game.VariantCoinFlip: {
		"name":        "Coin Flip",
		"description": "Simple heads or tails",
		"options":     []string{"choice (heads/tails)"},
	},
	game.VariantSlots: {
		"name":        "Slots",
		"description": "3-reel slot machine, three of a kind pays",
		"options":     []string{},
	},
	game.VariantRoulette: {
		"name":        "Roulette",
		"description": "European roulette (0-36)",
		"options":     []string{"bet_type (red/black/odd/even/number)", "value (for number bets)"},
	},
	game.VariantCrash: {
		"name":        "Crash",
		"description": "Cash out before the crash",
		"options":     []string{"cashout_at (multiplier >= 1.01)"},
	},
	game.VariantBlackjack: {
		"name":        "Blackjack",
		"description": "Beat the dealer (closed-loop, both draw to 17)",
		"options":     []string{},
	},
}

func (s *Server) handleGames(ctx *fasthttp.RequestCtx) {
	games := make(map[string]any, len(gameCatalog))
	for _, v := range game.Variants() {
		games[string(v)] = gameCatalog[v]
	}
	writeJSON(ctx, fasthttp.StatusOK, map[string]any{
		"games":      games,
		"total":      len(games),
		"currencies": s.oracle.SupportedCurrencies(),
	})
}

func (s *Server) handlePlay(ctx *fasthttp.RequestCtx) {
	accountID := string(ctx.Request.Header.Peek(accountHeader))
	if accountID == "" {
		writeError(ctx, fasthttp.StatusUnauthorized, "missing "+accountHeader+" header")
		return
	}

	var req model.GameRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.submitter.Submit(ctx, accountID, req)
	if err != nil {
		s.writePlayError(ctx, accountID, err)
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, map[string]any{
		"success":       true,
		"round_id":      result.RoundID,
		"game":          result.Variant,
		"result":        result.Result,
		"payout":        result.Payout,
		"multiplier":    result.Multiplier,
		"game_data":     result.Trace,
		"balance_after": result.BalanceAfter,
	})
}

func (s *Server) handleHistory(ctx *fasthttp.RequestCtx) {
	accountID := string(ctx.Request.Header.Peek(accountHeader))
	if accountID == "" {
		writeError(ctx, fasthttp.StatusUnauthorized, "missing "+accountHeader+" header")
		return
	}

	variant := string(ctx.QueryArgs().Peek("game"))
	limit := 50
	if raw := string(ctx.QueryArgs().Peek("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	rounds, err := s.history.ListRounds(ctx, accountID, variant, limit)
	if err != nil {
		s.log.Error().Err(err).Str("account_id", accountID).Msg("Failed to list rounds")
		writeError(ctx, fasthttp.StatusInternalServerError, "failed to load history")
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, map[string]any{
		"rounds": rounds,
		"count":  len(rounds),
	})
}

func (s *Server) handleStats(ctx *fasthttp.RequestCtx) {
	accountID := string(ctx.Request.Header.Peek(accountHeader))
	if accountID == "" {
		writeError(ctx, fasthttp.StatusUnauthorized, "missing "+accountHeader+" header")
		return
	}

	stats, err := s.history.GetStats(ctx, accountID)
	if err != nil {
		s.log.Error().Err(err).Str("account_id", accountID).Msg("Failed to aggregate stats")
		writeError(ctx, fasthttp.StatusInternalServerError, "failed to load stats")
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, stats)
}

// writePlayError maps the settlement error taxonomy onto HTTP statuses.
// Validation-class errors are the caller's to fix; the rest are ours.
func (s *Server) writePlayError(ctx *fasthttp.RequestCtx, accountID string, err error) {
	switch {
	case errors.Is(err, game.ErrUnsupportedGame),
		errors.Is(err, game.ErrInvalidOptions),
		errors.Is(err, game.ErrInvalidStake),
		errors.Is(err, settlement.ErrInvalidStake),
		errors.Is(err, pricing.ErrUnsupportedCurrency):
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrInsufficientBalance):
		writeError(ctx, fasthttp.StatusPaymentRequired, err.Error())
	case errors.Is(err, pricing.ErrPriceUnavailable), errors.Is(err, lock.ErrLockTimeout):
		writeError(ctx, fasthttp.StatusServiceUnavailable, err.Error())
	default:
		s.log.Error().Err(err).Str("account_id", accountID).Msg("Play failed")
		writeError(ctx, fasthttp.StatusInternalServerError, "internal error")
	}
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(data)
}

func writeError(ctx *fasthttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]any{
		"success": false,
		"error":   msg,
	})
}
