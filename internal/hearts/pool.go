package hearts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/studyquest/internal/domain"
	"github.com/phrazzld/studyquest/internal/platform/clock"
	"github.com/phrazzld/studyquest/internal/store"
)

// StorageKey is the key the hearts blob is stored under.
const StorageKey = "hearts-data"

// ErrNoHearts is returned by Pool.Consume when no heart is available.
var ErrNoHearts = errors.New("no hearts left")

// Status is a read of the pool at a point in time.
type Status struct {
	domain.HeartsData
	Max          int           `json:"max"`
	Regenerating bool          `json:"regenerating"`
	NextHeartIn  time.Duration `json:"-"`
	NextHeartSec int           `json:"nextHeartInSeconds"`
}

// Pool persists HeartsData under its own key and applies regeneration on
// every read.
type Pool struct {
	kv     store.KVStore
	clock  clock.Clock
	logger *slog.Logger
	mu     sync.Mutex
}

// NewPool creates a Pool.
func NewPool(kv store.KVStore, clk clock.Clock, logger *slog.Logger) *Pool {
	if kv == nil {
		panic("kv store cannot be nil")
	}
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		kv:     kv,
		clock:  clk,
		logger: logger.With(slog.String("component", "hearts_pool")),
	}
}

// Status returns the regenerated state.
func (p *Pool) Status(ctx context.Context) (Status, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()
	data, err := p.refresh(ctx, now)
	if err != nil {
		return Status{}, err
	}
	return p.status(data, now), nil
}

// Consume spends one heart. It returns ErrNoHearts, without writing, when
// the regenerated pool is empty.
func (p *Pool) Consume(ctx context.Context) (Status, error) {
	return p.update(ctx, func(data domain.HeartsData, now time.Time) (domain.HeartsData, error) {
		if !data.IsPremium && data.Hearts == 0 {
			return data, ErrNoHearts
		}
		return Consume(data, now), nil
	})
}

// Refill restores the pool to full.
func (p *Pool) Refill(ctx context.Context) (Status, error) {
	return p.update(ctx, func(data domain.HeartsData, _ time.Time) (domain.HeartsData, error) {
		data.Hearts = MaxHearts
		data.LastLostAt = nil
		return data, nil
	})
}

// SetPremium toggles premium status.
func (p *Pool) SetPremium(ctx context.Context, premium bool) (Status, error) {
	return p.update(ctx, func(data domain.HeartsData, _ time.Time) (domain.HeartsData, error) {
		data.IsPremium = premium
		if premium {
			data.Hearts = MaxHearts
			data.LastLostAt = nil
		}
		return data, nil
	})
}

func (p *Pool) update(
	ctx context.Context,
	fn func(domain.HeartsData, time.Time) (domain.HeartsData, error),
) (Status, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()
	data, err := p.refresh(ctx, now)
	if err != nil {
		return Status{}, err
	}

	next, err := fn(data, now)
	if err != nil {
		return p.status(data, now), err
	}

	if err := p.save(ctx, next); err != nil {
		return Status{}, err
	}
	return p.status(next, now), nil
}

// refresh loads, regenerates and writes back when regeneration changed
// anything.
func (p *Pool) refresh(ctx context.Context, now time.Time) (domain.HeartsData, error) {
	stored, err := p.load(ctx)
	if err != nil {
		return domain.HeartsData{}, err
	}

	data := Regenerate(stored, now)
	if !equal(data, stored) {
		if err := p.save(ctx, data); err != nil {
			return domain.HeartsData{}, err
		}
		p.logger.Debug("hearts regenerated",
			slog.Int("from", stored.Hearts),
			slog.Int("to", data.Hearts))
	}
	return data, nil
}

func (p *Pool) load(ctx context.Context) (domain.HeartsData, error) {
	raw, err := p.kv.Get(ctx, StorageKey)
	if store.IsNotFoundError(err) {
		return Full(), nil
	}
	if err != nil {
		return domain.HeartsData{}, fmt.Errorf("failed to load hearts: %w", err)
	}

	var data domain.HeartsData
	if err := json.Unmarshal(raw, &data); err != nil {
		p.logger.Warn("corrupt hearts data, starting full", slog.String("error", err.Error()))
		return Full(), nil
	}
	return Clamp(data), nil
}

func (p *Pool) save(ctx context.Context, data domain.HeartsData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode hearts: %w", err)
	}
	if err := p.kv.Set(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("failed to save hearts: %w", err)
	}
	return nil
}

func (p *Pool) status(data domain.HeartsData, now time.Time) Status {
	next, regenerating := TimeUntilNext(data, now)
	return Status{
		HeartsData:   data,
		Max:          MaxHearts,
		Regenerating: regenerating,
		NextHeartIn:  next,
		NextHeartSec: int(next.Seconds()),
	}
}

func equal(a, b domain.HeartsData) bool {
	if a.Hearts != b.Hearts || a.IsPremium != b.IsPremium {
		return false
	}
	if a.LastLostAt == nil || b.LastLostAt == nil {
		return a.LastLostAt == b.LastLostAt
	}
	return a.LastLostAt.Equal(*b.LastLostAt)
}
