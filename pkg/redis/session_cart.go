package redis

import (
	"context"
	"errors"
	"time"

	rd "github.com/redis/go-redis/v9"
)

// CartStorage persists anonymous carts as opaque JSON blobs keyed by session
// id. Every write refreshes the TTL so active carts do not expire mid-visit.
type CartStorage struct {
	rdb *rd.Client
	ttl time.Duration
}

func NewCartStorage(rdb *rd.Client, ttl time.Duration) *CartStorage {
	return &CartStorage{rdb: rdb, ttl: ttl}
}

// Load returns the stored cart payload. found=false means no cart exists.
func (s *CartStorage) Load(ctx context.Context, sessionID string) ([]byte, bool, error) {
	payload, err := s.rdb.Get(ctx, SessionCartKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return payload, true, nil
}

// Save overwrites the cart payload and refreshes its TTL.
func (s *CartStorage) Save(ctx context.Context, sessionID string, payload []byte) error {
	return s.rdb.Set(ctx, SessionCartKey(sessionID), payload, s.ttl).Err()
}

// Delete discards the whole session cart.
func (s *CartStorage) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, SessionCartKey(sessionID)).Err()
}
