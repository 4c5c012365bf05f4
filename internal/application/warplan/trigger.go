package warplan

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/time/rate"

	"github.com/castlebay/warroom-go/internal/application/common"
	"github.com/castlebay/warroom-go/internal/domain/shared"
)

// Trigger debounces regeneration requests per campaign. Intel refreshes
// and war events can fire it freely; the limiter collapses bursts into
// at most one generation per configured interval. Operators bypass the
// limiter with force.
type Trigger struct {
	run   func(ctx context.Context, campaignID string) error
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewTrigger creates a trigger running fn on each accepted fire.
func NewTrigger(limit rate.Limit, burst int, fn func(ctx context.Context, campaignID string) error) *Trigger {
	return &Trigger{
		run:      fn,
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Fire requests a regeneration of the campaign. It reports whether the
// generation actually ran: false means the limiter swallowed the
// request, or another invocation held the campaign lock. A held lock is
// not an error here because the holder is already doing the work this
// fire asked for.
func (t *Trigger) Fire(ctx context.Context, campaignID string, force bool) (bool, error) {
	if !force && !t.limiter(campaignID).Allow() {
		return false, nil
	}

	err := t.run(ctx, campaignID)
	if err != nil {
		var lockErr *shared.LockTimeoutError
		if errors.As(err, &lockErr) {
			common.LoggerFromContext(ctx).Log("INFO", "regeneration already in progress, trigger skipped", map[string]interface{}{
				"campaign_id": campaignID,
			})
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (t *Trigger) limiter(campaignID string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.limiters[campaignID]
	if !ok {
		l = rate.NewLimiter(t.limit, t.burst)
		t.limiters[campaignID] = l
	}
	return l
}
