// Package pricing provides the price oracle: USD prices for the non-fiat
// currencies the platform accepts, with a TTL cache over the upstream API
// and a static fallback table for when the upstream is unavailable.
package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
)

// Oracle is the contract the settlement layer depends on. Any returned
// price is authoritative; callers do not re-validate it.
type Oracle interface {
	// GetPrice returns the current USD price for a currency symbol.
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	// IsSupported reports whether the currency can be staked.
	IsSupported(symbol string) bool
}

// Pricing errors.
var (
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrPriceUnavailable    = errors.New("price unavailable")
)

// supportedCoins maps currency symbols to upstream coin IDs.
var supportedCoins = map[string]string{
	"BTC": "bitcoin",
	"ETH": "ethereum",
	"SOL": "solana",
	"BNB": "binancecoin",
}

// fallbackPrices is the static table used when the upstream source fails.
var fallbackPrices = map[string]decimal.Decimal{
	"BTC": decimal.NewFromInt(45000),
	"ETH": decimal.NewFromInt(2500),
	"SOL": decimal.NewFromInt(100),
	"BNB": decimal.NewFromInt(350),
}

// cacheEntry is one cached price with its fetch time.
type cacheEntry struct {
	price     decimal.Decimal
	fetchedAt time.Time
}

// Config holds oracle construction parameters.
type Config struct {
	APIURL         string
	APIKey         string
	CacheTTL       time.Duration
	RequestTimeout time.Duration
	EnableFallback bool
}

// Service fetches and caches currency prices. Safe for concurrent use.
type Service struct {
	cfg    Config
	client *fasthttp.Client

	mu    sync.Mutex
	cache map[string]cacheEntry

	log zerolog.Logger
}

// NewService creates a price oracle service.
func NewService(cfg Config, log zerolog.Logger) *Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 60 * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	return &Service{
		cfg: cfg,
		client: &fasthttp.Client{
			ReadTimeout:         cfg.RequestTimeout,
			WriteTimeout:        cfg.RequestTimeout,
			MaxIdleConnDuration: 90 * time.Second,
			MaxConnsPerHost:     50,
		},
		cache: make(map[string]cacheEntry),
		log:   log,
	}
}

// IsSupported reports whether the currency can be staked. USD is always
// supported; it never needs pricing.
func (s *Service) IsSupported(symbol string) bool {
	symbol = strings.ToUpper(symbol)
	if symbol == "USD" {
		return true
	}
	_, ok := supportedCoins[symbol]
	return ok
}

// SupportedCurrencies lists every currency the platform accepts.
func (s *Service) SupportedCurrencies() []string {
	out := []string{"USD"}
	for sym := range supportedCoins {
		out = append(out, sym)
	}
	return out
}

// GetPrice returns the current USD price for a symbol. Cached prices are
// served within the TTL window; on upstream failure the static fallback
// is used (and cached) unless fallback is disabled.
func (s *Service) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	symbol = strings.ToUpper(symbol)

	if symbol == "USD" {
		return decimal.NewFromInt(1), nil
	}
	if _, ok := supportedCoins[symbol]; !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, symbol)
	}

	if price, ok := s.fromCache(symbol); ok {
		return price, nil
	}

	price, err := s.fetchUpstream(ctx, symbol)
	if err == nil {
		s.setCache(symbol, price)
		s.log.Info().Str("symbol", symbol).Str("price", price.String()).Msg("Fetched price from upstream")
		return price, nil
	}

	if !s.cfg.EnableFallback {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", ErrPriceUnavailable, symbol, err)
	}

	s.log.Warn().Err(err).Str("symbol", symbol).Msg("Upstream price fetch failed, using fallback")
	fallback := fallbackPrices[symbol]
	s.setCache(symbol, fallback)
	return fallback, nil
}

// ConvertToUSD converts an amount in the given currency to its USD value.
func (s *Service) ConvertToUSD(ctx context.Context, amount decimal.Decimal, symbol string) (decimal.Decimal, error) {
	if strings.ToUpper(symbol) == "USD" {
		return amount, nil
	}
	price, err := s.GetPrice(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(price), nil
}

func (s *Service) fromCache(symbol string) (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.cache[symbol]
	if !ok || time.Since(entry.fetchedAt) >= s.cfg.CacheTTL {
		return decimal.Zero, false
	}
	return entry.price, true
}

func (s *Service) setCache(symbol string, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[symbol] = cacheEntry{price: price, fetchedAt: time.Now()}
}

// fetchUpstream queries the upstream simple-price endpoint with a bounded
// timeout. The context deadline, when earlier, wins.
func (s *Service) fetchUpstream(ctx context.Context, symbol string) (decimal.Decimal, error) {
	coinID := supportedCoins[symbol]
	uri := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", s.cfg.APIURL, coinID)

	timeout := s.cfg.RequestTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return decimal.Zero, ctx.Err()
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseResponse(resp)
		fasthttp.ReleaseRequest(req)
	}()

	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodGet)
	if s.cfg.APIKey != "" {
		req.Header.Set("x-cg-pro-api-key", s.cfg.APIKey)
	}

	if err := s.client.DoTimeout(req, resp, timeout); err != nil {
		return decimal.Zero, fmt.Errorf("upstream request failed: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return decimal.Zero, fmt.Errorf("upstream returned status %d", resp.StatusCode())
	}

	var parsed map[string]map[string]json.Number
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode upstream response: %w", err)
	}

	raw, ok := parsed[coinID]["usd"]
	if !ok {
		return decimal.Zero, fmt.Errorf("upstream response missing usd price for %s", symbol)
	}
	price, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid upstream price %q: %w", raw, err)
	}
	return price, nil
}
