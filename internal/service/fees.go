package service

import (
	"context"
	"log"

	"tixpay/internal/domain"
	"tixpay/internal/fees"
	internalRedis "tixpay/internal/redis"
)

// FeeService computes transaction fee quotes, with a Redis cache in front of
// the calculator. The cache may be nil; quotes are then always recomputed.
type FeeService struct {
	cache *internalRedis.CacheStore
}

// NewFeeService creates a new FeeService.
func NewFeeService(cache *internalRedis.CacheStore) *FeeService {
	return &FeeService{cache: cache}
}

// GetQuote returns the fee breakdown for one ticket price and channel.
func (s *FeeService) GetQuote(ctx context.Context, params fees.QuoteParams) (*domain.FeeQuote, error) {
	if !params.TicketPrice.IsPositive() {
		return nil, ErrInvalidAmount
	}

	key := internalRedis.QuoteCacheKey(params.Method, params.Channel, params.TicketPrice, params.PlatformPct)

	if s.cache != nil {
		cached, err := s.cache.GetQuote(ctx, key)
		if err != nil {
			// Cache errors never fail a quote.
			log.Printf("quote cache read failed: %v", err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	quote, err := fees.Quote(params)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetQuote(ctx, key, quote); err != nil {
			log.Printf("quote cache write failed: %v", err)
		}
	}

	return quote, nil
}
