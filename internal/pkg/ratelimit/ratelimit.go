package ratelimit

import (
	"context"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// CleanUpInterval is how often the memory store drops expired counters.
const CleanUpInterval = 30 * time.Second

// Limiter counts hits per key inside a fixed window.
type Limiter interface {
	// Hit records one attempt and reports the state after it, in one step.
	Hit(ctx context.Context, key string) (Result, error)
	// Peek reports the state without recording anything.
	Peek(ctx context.Context, key string) (Result, error)
	Clear(ctx context.Context, key string) error
}

type Result struct {
	Limit      int
	Attempts   int
	Remaining  int
	Reached    bool
	RetryAfter time.Duration
}

// Exhausted is true once the window holds Limit attempts; the next Hit
// would go over.
func (r Result) Exhausted() bool {
	return r.Attempts >= r.Limit
}

// NewMemoryStore returns an in-process store. Expired counters are evicted
// every CleanUpInterval, so keys chosen by clients do not accumulate.
func NewMemoryStore() limiter.Store {
	return memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          "promptstudio",
		CleanUpInterval: CleanUpInterval,
	})
}

// FixedWindow allows maxAttempts hits per key per window. Several windows
// can share one store as long as their keys differ.
type FixedWindow struct {
	limiter *limiter.Limiter
	now     func() time.Time
}

func New(store limiter.Store, maxAttempts int, window time.Duration) *FixedWindow {
	return &FixedWindow{
		limiter: limiter.New(store, limiter.Rate{Period: window, Limit: int64(maxAttempts)}),
		now:     time.Now,
	}
}

func (w *FixedWindow) Hit(ctx context.Context, key string) (Result, error) {
	lc, err := w.limiter.Get(ctx, key)
	if err != nil {
		return Result{}, err
	}
	return w.result(lc), nil
}

func (w *FixedWindow) Peek(ctx context.Context, key string) (Result, error) {
	lc, err := w.limiter.Peek(ctx, key)
	if err != nil {
		return Result{}, err
	}
	return w.result(lc), nil
}

func (w *FixedWindow) Clear(ctx context.Context, key string) error {
	_, err := w.limiter.Reset(ctx, key)
	return err
}

func (w *FixedWindow) result(lc limiter.Context) Result {
	// Reset is in whole seconds; round the wait up to at least one.
	retry := time.Duration(lc.Reset-w.now().Unix()) * time.Second
	if retry < time.Second {
		retry = time.Second
	}
	return Result{
		Limit:      int(lc.Limit),
		Attempts:   int(lc.Limit - lc.Remaining),
		Remaining:  int(lc.Remaining),
		Reached:    lc.Reached,
		RetryAfter: retry,
	}
}
