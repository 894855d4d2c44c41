package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/homebooking/internal/domain/model"
)

const keyPrefix = "homebooking:notifications:"

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	LPush(context.Context, string, ...any) *redis.IntCmd
	LTrim(context.Context, string, int64, int64) *redis.StatusCmd
	LRange(context.Context, string, int64, int64) *redis.StringSliceCmd
	Expire(context.Context, string, time.Duration) *redis.BoolCmd
}

// payload is the JSON form of a notification stored in a partner's list.
type payload struct {
	OrderID     uuid.UUID       `json:"order_id"`
	ServiceName string          `json:"service_name"`
	Category    string          `json:"category,omitempty"`
	Date        string          `json:"date"`
	Time        string          `json:"time"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	CreatedAt   time.Time       `json:"created_at"`
}

// RedisSink keeps the newest notifications per partner in a capped redis list.
type RedisSink struct {
	store cmdable
	raw   *redis.Client
	ttl   time.Duration
	limit int64
}

// NewRedisSink connects to url and verifies connectivity.
func NewRedisSink(ctx context.Context, url string, ttl time.Duration, limit int) (*RedisSink, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	sink := newRedisSink(raw, ttl, limit)
	sink.raw = raw
	return sink, nil
}

func newRedisSink(store cmdable, ttl time.Duration, limit int) *RedisSink {
	if limit <= 0 {
		limit = 1
	}
	return &RedisSink{store: store, ttl: ttl, limit: int64(limit)}
}

// Key returns the list key for partnerID.
func Key(partnerID uuid.UUID) string {
	return keyPrefix + partnerID.String()
}

// Push prepends n to its partner's list, trims the list and refreshes its TTL.
func (s *RedisSink) Push(ctx context.Context, n model.PartnerNotification) error {
	if s.store == nil {
		return errors.New("redis client not initialized")
	}
	body, err := json.Marshal(payload{
		OrderID:     n.OrderID,
		ServiceName: n.ServiceName,
		Category:    n.Category,
		Date:        n.Date,
		Time:        n.Time,
		Amount:      n.Amount,
		Currency:    n.Currency,
		CreatedAt:   n.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	key := Key(n.PartnerID)
	if err := s.store.LPush(ctx, key, string(body)).Err(); err != nil {
		return fmt.Errorf("push notification: %w", err)
	}
	if err := s.store.LTrim(ctx, key, 0, s.limit-1).Err(); err != nil {
		return fmt.Errorf("trim notifications: %w", err)
	}
	if s.ttl > 0 {
		if err := s.store.Expire(ctx, key, s.ttl).Err(); err != nil {
			return fmt.Errorf("expire notifications: %w", err)
		}
	}
	return nil
}

// List returns up to limit notifications for partnerID, newest first.
func (s *RedisSink) List(ctx context.Context, partnerID uuid.UUID, limit int) ([]model.PartnerNotification, error) {
	if s.store == nil {
		return nil, errors.New("redis client not initialized")
	}
	stop := s.limit - 1
	if limit > 0 && int64(limit) < s.limit {
		stop = int64(limit) - 1
	}
	raw, err := s.store.LRange(ctx, Key(partnerID), 0, stop).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	result := make([]model.PartnerNotification, 0, len(raw))
	for _, item := range raw {
		var p payload
		if err := json.Unmarshal([]byte(item), &p); err != nil {
			return nil, fmt.Errorf("decode notification: %w", err)
		}
		result = append(result, model.PartnerNotification{
			PartnerID:   partnerID,
			OrderID:     p.OrderID,
			ServiceName: p.ServiceName,
			Category:    p.Category,
			Date:        p.Date,
			Time:        p.Time,
			Amount:      p.Amount,
			Currency:    p.Currency,
			CreatedAt:   p.CreatedAt,
		})
	}
	return result, nil
}

// HealthCheck pings redis.
func (s *RedisSink) HealthCheck(ctx context.Context) error {
	if s.store == nil {
		return errors.New("redis client not initialized")
	}
	return s.store.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (s *RedisSink) Close() error {
	if s.raw == nil {
		return nil
	}
	return s.raw.Close()
}
