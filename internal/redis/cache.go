package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"tixpay/internal/domain"
)

// CacheStore handles fee quote caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// QuoteCacheTTL bounds staleness if fee schedules ever change via deploy.
const QuoteCacheTTL = 10 * time.Minute

const quoteCachePrefix = "cache:quote:"

// cachedQuote is the stored form of a fee quote.
type cachedQuote struct {
	TicketPrice decimal.Decimal `json:"ticket_price"`
	GrossPrice  decimal.Decimal `json:"gross_price"`
	Fee         decimal.Decimal `json:"fee"`
	PlatformFee decimal.Decimal `json:"platform_fee"`
}

// QuoteCacheKey builds the cache key for one quote input vector.
func QuoteCacheKey(method domain.PaymentMethod, channel domain.PaymentChannel, ticketPrice, platformPct decimal.Decimal) string {
	return fmt.Sprintf("%s%s:%s:%s:%s", quoteCachePrefix, method, channel, ticketPrice, platformPct)
}

// GetQuote retrieves a fee quote from cache. Returns nil on a miss.
func (s *CacheStore) GetQuote(ctx context.Context, key string) (*domain.FeeQuote, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var cached cachedQuote
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}

	return &domain.FeeQuote{
		TicketPrice: cached.TicketPrice,
		GrossPrice:  cached.GrossPrice,
		Fee:         cached.Fee,
		PlatformFee: cached.PlatformFee,
	}, nil
}

// SetQuote stores a fee quote in cache.
func (s *CacheStore) SetQuote(ctx context.Context, key string, quote *domain.FeeQuote) error {
	data, err := json.Marshal(cachedQuote{
		TicketPrice: quote.TicketPrice,
		GrossPrice:  quote.GrossPrice,
		Fee:         quote.Fee,
		PlatformFee: quote.PlatformFee,
	})
	if err != nil {
		return err
	}

	return s.client.Set(ctx, key, data, QuoteCacheTTL).Err()
}
