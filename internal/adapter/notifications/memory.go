package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/homebooking/internal/domain/model"
)

// MemorySink keeps notifications in process. Used when no redis is configured.
type MemorySink struct {
	mu    sync.Mutex
	lists map[uuid.UUID][]model.PartnerNotification
	ttl   time.Duration
	limit int
	now   func() time.Time
}

// NewMemorySink constructs MemorySink with the same retention rules as RedisSink.
func NewMemorySink(ttl time.Duration, limit int) *MemorySink {
	if limit <= 0 {
		limit = 1
	}
	return &MemorySink{
		lists: make(map[uuid.UUID][]model.PartnerNotification),
		ttl:   ttl,
		limit: limit,
		now:   time.Now,
	}
}

// Push prepends n to its partner's list.
func (s *MemorySink) Push(_ context.Context, n model.PartnerNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := append([]model.PartnerNotification{n}, s.lists[n.PartnerID]...)
	if len(list) > s.limit {
		list = list[:s.limit]
	}
	s.lists[n.PartnerID] = list
	return nil
}

// List returns up to limit unexpired notifications, newest first.
func (s *MemorySink) List(_ context.Context, partnerID uuid.UUID, limit int) ([]model.PartnerNotification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var result []model.PartnerNotification
	for _, n := range s.lists[partnerID] {
		if s.ttl > 0 && now.Sub(n.CreatedAt) > s.ttl {
			continue
		}
		result = append(result, n)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}
