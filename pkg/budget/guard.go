// Package budget gates generation requests behind a monthly spending
// ceiling and records every attempt, approved or rejected, in the ledger.
package budget

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/reelgate/reelgate/pkg/ledger"
	"github.com/reelgate/reelgate/pkg/models"
	"github.com/reelgate/reelgate/pkg/pricing"
)

// ErrBudgetExceeded is returned when a request would exceed the monthly limit.
var ErrBudgetExceeded = errors.New("budget exceeded")

// ExceededError carries the figures behind a rejection so the caller can
// decide whether to raise the limit or retry at a lower tier.
type ExceededError struct {
	Estimate  models.Cents
	Remaining models.Cents
	Shortfall models.Cents
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("budget exceeded: estimate %s, remaining %s (short by %s)",
		e.Estimate, e.Remaining, e.Shortfall)
}

func (e *ExceededError) Unwrap() error { return ErrBudgetExceeded }

// Decision is the outcome of an authorization check.
type Decision struct {
	EntryID   string
	Approved  bool
	Estimate  models.Cents
	Remaining models.Cents // remaining budget before this request
	Shortfall models.Cents // estimate minus remaining, zero when approved
}

// Guard enforces the monthly limit. The check-and-append step is one
// critical section: two concurrent authorizations can never both observe a
// spend total that the other's commit invalidates.
type Guard struct {
	mu     sync.Mutex
	limit  models.Cents
	rates  pricing.Table
	ledger ledger.Ledger
	log    zerolog.Logger
	now    func() time.Time
}

// New creates a Guard. The limit must be positive.
func New(limit models.Cents, rates pricing.Table, l ledger.Ledger, log zerolog.Logger) (*Guard, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("monthly limit must be positive, got %s", limit)
	}
	return &Guard{
		limit:  limit,
		rates:  rates,
		ledger: l,
		log:    log,
		now:    time.Now,
	}, nil
}

// Estimate computes the cost of a request without touching the ledger.
func (g *Guard) Estimate(req models.GenerationRequest) (models.Cents, error) {
	return pricing.Estimate(g.rates, req)
}

// Preview returns the decision Authorize would make right now, without
// recording anything. Used for dry runs.
func (g *Guard) Preview(ctx context.Context, req models.GenerationRequest) (Decision, error) {
	est, err := g.Estimate(req)
	if err != nil {
		return Decision{}, err
	}
	spent, err := g.ledger.SpentInPeriod(ctx, models.PeriodOf(g.now()))
	if err != nil {
		return Decision{}, err
	}
	return g.decide("", est, spent), nil
}

// Authorize estimates the request, decides against the remaining budget and
// appends a ledger entry for the attempt whether approved or rejected.
// Rejected attempts are recorded so operators can see near-misses and
// rejected demand.
func (g *Guard) Authorize(ctx context.Context, req models.GenerationRequest) (Decision, error) {
	est, err := g.Estimate(req)
	if err != nil {
		return Decision{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now().UTC()
	period := models.PeriodOf(now)
	spent, err := g.ledger.SpentInPeriod(ctx, period)
	if err != nil {
		return Decision{}, err
	}

	d := g.decide(uuid.NewString(), est, spent)
	status := models.StatusApproved
	if !d.Approved {
		status = models.StatusRejected
	}
	entry := models.LedgerEntry{
		ID:              d.EntryID,
		Period:          period,
		CreatedAt:       now,
		DurationSeconds: req.DurationSeconds,
		Tier:            req.Tier,
		Aspect:          req.Aspect,
		PromptChars:     len(req.Prompt),
		Amount:          est,
		Authorized:      d.Approved,
		Status:          status,
	}
	if err := g.ledger.Append(ctx, entry); err != nil {
		return Decision{}, err
	}

	g.log.Debug().
		Str("entry_id", d.EntryID).
		Bool("approved", d.Approved).
		Float64("estimate_usd", est.Dollars()).
		Float64("remaining_usd", d.Remaining.Dollars()).
		Msg("authorization decision")

	return d, nil
}

func (g *Guard) decide(entryID string, est, spent models.Cents) Decision {
	remaining := g.limit - spent
	d := Decision{
		EntryID:   entryID,
		Estimate:  est,
		Remaining: remaining,
	}
	if spent+est <= g.limit {
		d.Approved = true
	} else {
		d.Shortfall = est - remaining
	}
	return d
}

// Summary reads the current period's spend from the ledger.
func (g *Guard) Summary(ctx context.Context) (models.BudgetSummary, error) {
	now := g.now().UTC()
	period := models.PeriodOf(now)
	stats, err := g.ledger.StatsForPeriod(ctx, period)
	if err != nil {
		return models.BudgetSummary{}, err
	}
	start, err := models.PeriodStart(period)
	if err != nil {
		return models.BudgetSummary{}, err
	}
	remaining := g.limit - stats.Spent
	if remaining < 0 {
		remaining = 0
	}
	return models.BudgetSummary{
		PeriodStart:   start,
		MonthlyLimit:  g.limit,
		Spent:         stats.Spent,
		Remaining:     remaining,
		UsedPercent:   float64(stats.Spent) / float64(g.limit) * 100,
		EntryCount:    stats.EntryCount,
		RejectedCount: stats.RejectedCount,
	}, nil
}
