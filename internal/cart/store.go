package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Store persists cart snapshots as JSON values in Redis. Every write
// refreshes the TTL so active carts stay alive.
type Store struct {
	R   *redis.Client
	TTL time.Duration
	Now func() time.Time
}

func (s *Store) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.TTL
}

func (s *Store) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func cartKey(id string) string { return "cart:" + id }

// Create initialises an empty cart for the given anonymous id, generating
// one when absent.
func (s *Store) Create(ctx context.Context, anonID string) (Cart, error) {
	if s == nil || s.R == nil {
		return Cart{}, errors.New("cart store not configured")
	}
	if anonID == "" {
		anonID = uuid.NewString()
	}
	c := Cart{
		ID:        uuid.NewString(),
		AnonID:    anonID,
		Lines:     []Line{},
		UpdatedAt: s.now(),
	}
	if err := s.Save(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// Get loads a cart snapshot by id.
func (s *Store) Get(ctx context.Context, id string) (Cart, error) {
	if s == nil || s.R == nil {
		return Cart{}, errors.New("cart store not configured")
	}
	data, err := s.R.Get(ctx, cartKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Cart{}, fmt.Errorf("cart %s: %w", id, ErrNotFound)
		}
		return Cart{}, err
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return Cart{}, fmt.Errorf("decode cart %s: %w", id, err)
	}
	return c, nil
}

// Save writes the cart snapshot and refreshes its TTL.
func (s *Store) Save(ctx context.Context, c Cart) error {
	if s == nil || s.R == nil {
		return errors.New("cart store not configured")
	}
	c.UpdatedAt = s.now()
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", c.ID, err)
	}
	return s.R.Set(ctx, cartKey(c.ID), data, s.ttl()).Err()
}

// Delete removes a cart entirely.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s == nil || s.R == nil {
		return errors.New("cart store not configured")
	}
	return s.R.Del(ctx, cartKey(id)).Err()
}
