// Package retry wraps the generation client with caller-side recovery:
// exponential backoff on transport failures and an optional fallback chain
// of cheaper tiers on budget rejection. The core client stays free of
// sleep and backoff timing.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/reelgate/reelgate/pkg/budget"
	"github.com/reelgate/reelgate/pkg/client"
	"github.com/reelgate/reelgate/pkg/models"
)

// Options controls retry behavior.
type Options struct {
	// MaxRetries is the number of additional attempts per tier after the
	// first, on transport failures only.
	MaxRetries uint64
	// InitialBackoff is the first wait between attempts; it grows
	// exponentially up to MaxBackoff.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// TierFallback lists cheaper tiers to try, in order, when the budget
	// guard rejects the requested tier.
	TierFallback []models.Tier
}

// DefaultOptions matches three attempts starting at a two-second backoff.
func DefaultOptions() Options {
	return Options{
		MaxRetries:     2,
		InitialBackoff: 2 * time.Second,
		MaxBackoff:     30 * time.Second,
	}
}

// Generate runs c.Generate with backoff and tier fallback. Every attempt is
// a fresh request and a fresh authorization: a failed submission is never
// resubmitted, it is re-authorized against the updated spend total.
//
// Invalid requests are returned immediately. Budget rejections move to the
// next fallback tier; when no tier fits the remaining budget, the last
// rejection is returned.
func Generate(ctx context.Context, c *client.Client, req models.GenerationRequest, opts Options, log zerolog.Logger) (models.GenerationResult, error) {
	tiers := append([]models.Tier{req.Tier}, opts.TierFallback...)

	var lastErr error
	for _, tier := range tiers {
		attempt := req
		attempt.Tier = tier

		res, err := generateWithBackoff(ctx, c, attempt, opts, log)
		if err == nil {
			return res, nil
		}
		lastErr = err

		var invalid *models.InvalidRequestError
		if errors.As(err, &invalid) {
			return models.GenerationResult{}, err
		}
		if errors.Is(err, budget.ErrBudgetExceeded) {
			log.Warn().Str("tier", string(tier)).Err(err).Msg("tier rejected, trying fallback")
			continue
		}
		// Transport failure after all retries: fallback tiers will not help.
		return models.GenerationResult{}, err
	}
	return models.GenerationResult{}, lastErr
}

func generateWithBackoff(ctx context.Context, c *client.Client, req models.GenerationRequest, opts Options, log zerolog.Logger) (models.GenerationResult, error) {
	bo := backoff.NewExponentialBackOff()
	if opts.InitialBackoff > 0 {
		bo.InitialInterval = opts.InitialBackoff
	}
	if opts.MaxBackoff > 0 {
		bo.MaxInterval = opts.MaxBackoff
	}
	bo.MaxElapsedTime = 0

	var res models.GenerationResult
	op := func() error {
		var err error
		res, err = c.Generate(ctx, req)
		if err == nil {
			return nil
		}
		var invalid *models.InvalidRequestError
		if errors.As(err, &invalid) || errors.Is(err, budget.ErrBudgetExceeded) {
			return backoff.Permanent(err)
		}
		log.Warn().Err(err).Str("tier", string(req.Tier)).Msg("generation attempt failed, backing off")
		return err
	}

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, opts.MaxRetries), ctx))
	if err != nil {
		return models.GenerationResult{}, err
	}
	return res, nil
}
