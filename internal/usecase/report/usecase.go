package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"kasbon-backend/internal/domain/employee"
	"kasbon-backend/internal/domain/ledger"
	"kasbon-backend/internal/domain/loan"
	domain "kasbon-backend/internal/domain/report"
	"kasbon-backend/internal/logger"
	"kasbon-backend/pkg/id"
)

const (
	// summaries live under dashboard:summary:<generation>; Invalidate moves
	// the generation, so a summary computed before a write can never be read
	// after it, even if it is stored late.
	generationKey = "dashboard:generation"
	summaryPrefix = "dashboard:summary:"
	initialGen    = "0"

	DefaultTTL = 60 * time.Second
	// must outlive any summary written under an older generation
	generationTTL = 24 * time.Hour
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type Usecase struct {
	employees employee.Repository
	loans     loan.Repository
	txs       ledger.Repository
	cache     Cache
	ttl       time.Duration
	log       *slog.Logger
}

// NewUsecase builds the dashboard service. A nil cache disables caching.
func NewUsecase(employees employee.Repository, loans loan.Repository, txs ledger.Repository, cache Cache, ttl time.Duration) *Usecase {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Usecase{
		employees: employees,
		loans:     loans,
		txs:       txs,
		cache:     cache,
		ttl:       ttl,
		log:       logger.WithService("report"),
	}
}

// Dashboard returns the aggregate figures, served from cache when possible.
// Cache failures degrade to a fresh computation.
func (u *Usecase) Dashboard(ctx context.Context) (*domain.Summary, error) {
	gen, cacheable := u.generation(ctx)
	if cacheable {
		b, ok, err := u.cache.Get(ctx, summaryPrefix+gen)
		switch {
		case err != nil:
			u.log.Warn("dashboard cache read failed", "error", err)
		case ok:
			var s domain.Summary
			if err := json.Unmarshal(b, &s); err == nil {
				return &s, nil
			}
			u.log.Warn("dashboard cache entry unreadable, recomputing")
		}
	}

	s, err := u.compute(ctx)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if b, err := json.Marshal(s); err == nil {
			if err := u.cache.Set(ctx, summaryPrefix+gen, b, u.ttl); err != nil {
				u.log.Warn("dashboard cache write failed", "error", err)
			}
		}
	}
	return s, nil
}

// generation reads the current cache generation; false means do not cache.
func (u *Usecase) generation(ctx context.Context) (string, bool) {
	if u.cache == nil {
		return "", false
	}
	b, ok, err := u.cache.Get(ctx, generationKey)
	if err != nil {
		u.log.Warn("dashboard cache generation unreadable", "error", err)
		return "", false
	}
	if !ok {
		return initialGen, true
	}
	return string(b), true
}

func (u *Usecase) compute(ctx context.Context) (*domain.Summary, error) {
	emps, err := u.employees.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	loans, err := u.loans.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	txs, err := u.txs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	s := domain.Summarize(emps, loans, txs)
	return &s, nil
}

// Invalidate starts a new cache generation and drops the current summary.
func (u *Usecase) Invalidate(ctx context.Context) error {
	if u.cache == nil {
		return nil
	}
	prev, _ := u.generation(ctx)
	if err := u.cache.Set(ctx, generationKey, []byte(id.NewID32()), generationTTL); err != nil {
		// without a new generation the best we can do is drop the entry
		_ = u.cache.Delete(ctx, summaryPrefix+prev)
		return fmt.Errorf("bump dashboard generation: %w", err)
	}
	if prev != "" {
		if err := u.cache.Delete(ctx, summaryPrefix+prev); err != nil {
			u.log.Warn("stale dashboard entry not deleted", "error", err)
		}
	}
	return nil
}
