package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"kasbon-backend/internal/logger"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderRequestAt      = "X-Request-At"
	HeaderReplayed       = "Idempotent-Replayed"

	// A pending claim expires on its own if the process dies mid-request.
	defaultPendingTTL = 60 * time.Second
	defaultMaxSkew    = 10 * time.Minute
	storeTimeout      = 2 * time.Second
)

type Option func(*idempotency)

// WithClock replaces time.Now for the X-Request-At skew check.
func WithClock(now func() time.Time) Option { return func(m *idempotency) { m.now = now } }

// WithMaxSkew bounds how far X-Request-At may drift from the server clock.
func WithMaxSkew(d time.Duration) Option { return func(m *idempotency) { m.maxSkew = d } }

type idempotency struct {
	store   replayStore
	ttl     time.Duration
	maxSkew time.Duration
	now     func() time.Time
}

// Idempotency replays the stored response of a mutating request sent twice
// with the same Idempotency-Key to the same method and path. A different body
// under a used key, or a retry while the first is still running, is a 409.
func Idempotency(rdb *redis.Client, ttl time.Duration, opts ...Option) echo.MiddlewareFunc {
	m := &idempotency{
		store:   replayStore{rdb: rdb, pendingTTL: defaultPendingTTL},
		ttl:     ttl,
		maxSkew: defaultMaxSkew,
		now:     time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m.handle
}

func (m *idempotency) handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		switch c.Request().Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return next(c)
		}

		sc, err := readScope(c.Request(), m.now().UTC(), m.maxSkew)
		if err != nil {
			var he headerError
			if errors.As(err, &he) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": he.Error()})
			}
			return err
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
		defer cancel()

		claimed, err := m.store.claim(ctx, sc)
		if err != nil {
			logger.Warn("idempotency store unavailable", "key", sc.storeKey, "error", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "idempotency store unavailable"})
		}
		if !claimed {
			return m.replay(ctx, c, sc)
		}

		capture := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
		c.Response().Writer = capture
		if err := next(c); err != nil {
			c.Error(err)
		}

		// the request context may already be cancelled once the response is out
		if err := m.store.finish(context.Background(), sc, capture.status, capture.body.Bytes(), m.ttl); err != nil {
			logger.Warn("idempotency result not stored", "key", sc.storeKey, "error", err)
		}
		return nil
	}
}

func (m *idempotency) replay(ctx context.Context, c echo.Context, sc requestScope) error {
	prev, err := m.store.load(ctx, sc.storeKey)
	if err != nil {
		logger.Warn("idempotency entry unreadable", "key", sc.storeKey, "error", err)
	}
	switch {
	case prev.BodySum != "" && prev.BodySum != sc.bodySum:
		return c.JSON(http.StatusConflict, map[string]string{"error": HeaderIdempotencyKey + " reused with different body"})
	case !prev.replayable():
		return c.JSON(http.StatusConflict, map[string]string{"error": "request is already in progress"})
	}

	c.Response().Header().Set(HeaderReplayed, "true")
	if len(prev.Body) == 0 {
		return c.NoContent(prev.Status)
	}
	return c.Blob(prev.Status, echo.MIMEApplicationJSON, prev.Body)
}

// captureWriter tees the response so it can be stored for replay.
type captureWriter struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (w *captureWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}
