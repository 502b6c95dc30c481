package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// storedResponse is what the store keeps per scope. Pending marks a request
// whose handler has not returned yet.
type storedResponse struct {
	Pending bool   `json:"pending"`
	Status  int    `json:"status,omitempty"`
	Body    []byte `json:"body,omitempty"`
	BodySum string `json:"body_sum"`
	SentAt  int64  `json:"sent_at_ms"`
}

func (s storedResponse) replayable() bool { return !s.Pending && s.Status != 0 }

type replayStore struct {
	rdb        *redis.Client
	pendingTTL time.Duration
}

// claim marks the scope pending. It reports false when the scope is already taken.
func (s replayStore) claim(ctx context.Context, sc requestScope) (bool, error) {
	payload, err := json.Marshal(storedResponse{Pending: true, BodySum: sc.bodySum, SentAt: sc.sentAt.UnixMilli()})
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, sc.storeKey, payload, s.pendingTTL).Result()
}

func (s replayStore) load(ctx context.Context, key string) (storedResponse, error) {
	var out storedResponse
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(raw, &out)
	return out, err
}

// finish replaces the pending marker with the handler's response.
func (s replayStore) finish(ctx context.Context, sc requestScope, status int, body []byte, ttl time.Duration) error {
	payload, err := json.Marshal(storedResponse{Status: status, Body: body, BodySum: sc.bodySum, SentAt: sc.sentAt.UnixMilli()})
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, sc.storeKey, payload, ttl).Err()
}
