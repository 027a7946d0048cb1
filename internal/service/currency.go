package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// HomeCurrency is the currency all amounts are stored in. Conversion to
// the home currency is the identity.
const HomeCurrency = "PLN"

// rateCacheKey is the Redis key holding the provider's rate-table payload.
const rateCacheKey = "rates:" + HomeCurrency

// CurrencyConverter converts home-currency amounts using the latest rate
// table from an external provider. The provider payload is cached in Redis
// for Cache TTL so bursts of revenue queries do not hammer the provider.
// Every failure path degrades to returning the amount unconverted: a
// missing rate is not an error of the business operation that asked for it.
type CurrencyConverter struct {
	Client   *http.Client
	RatesURL string
	Redis    *redis.Client // optional; nil disables caching
	CacheTTL time.Duration
}

// NewCurrencyConverter builds a converter with a request-scoped HTTP
// timeout. rdb may be nil when Redis is unavailable.
func NewCurrencyConverter(ratesURL string, rdb *redis.Client, cacheTTL time.Duration) *CurrencyConverter {
	return &CurrencyConverter{
		Client:   &http.Client{Timeout: 10 * time.Second},
		RatesURL: ratesURL,
		Redis:    rdb,
		CacheTTL: cacheTTL,
	}
}

// rateTable mirrors the provider's JSON payload. Only the rates map is
// consumed; the base and date fields are ignored.
type rateTable struct {
	Rates map[string]float64 `json:"rates"`
}

// Convert converts a grosz amount into the target currency's minor units,
// rounding half away from zero. The amount comes back unchanged when the
// target is the home currency, the provider is unreachable, the payload is
// malformed, or the code is absent from the table.
func (cc *CurrencyConverter) Convert(ctx context.Context, amountGrosz int64, targetCurrency string) int64 {
	code := strings.ToUpper(strings.TrimSpace(targetCurrency))
	if code == "" || code == HomeCurrency {
		return amountGrosz
	}
	table, err := cc.rates(ctx)
	if err != nil {
		log.Printf("currency: rate lookup failed, returning unconverted: %v", err)
		return amountGrosz
	}
	rate, ok := table.Rates[code]
	if !ok {
		log.Printf("currency: no rate for %s, returning unconverted", code)
		return amountGrosz
	}
	return int64(math.Round(float64(amountGrosz) * rate))
}

// rates returns the cached rate table, fetching from the provider on a
// cache miss. Cache errors are ignored; the fetch is the source of truth.
func (cc *CurrencyConverter) rates(ctx context.Context) (rateTable, error) {
	var table rateTable
	if cc.Redis != nil {
		if raw, err := cc.Redis.Get(ctx, rateCacheKey).Bytes(); err == nil {
			if err := json.Unmarshal(raw, &table); err == nil && len(table.Rates) > 0 {
				return table, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cc.RatesURL, nil)
	if err != nil {
		return table, err
	}
	resp, err := cc.Client.Do(req)
	if err != nil {
		return table, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return table, fmt.Errorf("rate provider returned %s", resp.Status)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return table, err
	}
	if err := json.Unmarshal(raw, &table); err != nil {
		return table, err
	}
	if len(table.Rates) == 0 {
		return table, fmt.Errorf("rate provider payload has no rates")
	}

	if cc.Redis != nil {
		if err := cc.Redis.Set(ctx, rateCacheKey, raw, cc.CacheTTL).Err(); err != nil {
			log.Printf("currency: caching rate table failed: %v", err)
		}
	}
	return table, nil
}
