// Package client implements the budget-guarded generation client: every
// outgoing request clears the budget guard, authorized requests go to the
// external transport, and every attempt lands in the ledger.
package client

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/reelgate/reelgate/pkg/budget"
	"github.com/reelgate/reelgate/pkg/ledger"
	"github.com/reelgate/reelgate/pkg/models"
	"github.com/reelgate/reelgate/pkg/transport"
)

// Client gates generation requests behind the budget guard.
//
// The estimate is charged at authorization time and stands even if the
// external call later fails, like a prepaid hold. A caller that retries
// after a failure must construct and authorize a new request; the client
// never resubmits an authorized entry.
type Client struct {
	guard     *budget.Guard
	ledger    ledger.Ledger
	transport transport.Transport
	log       zerolog.Logger
}

// New creates a Client.
func New(guard *budget.Guard, l ledger.Ledger, t transport.Transport, log zerolog.Logger) *Client {
	return &Client{guard: guard, ledger: l, transport: t, log: log}
}

// EstimateCost computes the cost of a request. Deterministic, no side
// effects.
func (c *Client) EstimateCost(req models.GenerationRequest) (models.Cents, error) {
	return c.guard.Estimate(req)
}

// Preview returns the decision Generate would make, without recording an
// attempt or spending anything. Used for dry runs.
func (c *Client) Preview(ctx context.Context, req models.GenerationRequest) (budget.Decision, error) {
	return c.guard.Preview(ctx, req)
}

// Authorize checks the request against the remaining budget and records the
// attempt in the ledger, approved or rejected.
func (c *Client) Authorize(ctx context.Context, req models.GenerationRequest) (budget.Decision, error) {
	return c.guard.Authorize(ctx, req)
}

// Generate authorizes the request and, if approved, submits it to the
// generation service. A rejection returns *budget.ExceededError with the
// estimate and remaining budget; no external call is made. A submission
// failure moves the entry to failed and returns the transport error — the
// charged estimate stands.
func (c *Client) Generate(ctx context.Context, req models.GenerationRequest) (models.GenerationResult, error) {
	decision, err := c.guard.Authorize(ctx, req)
	if err != nil {
		return models.GenerationResult{}, err
	}
	if !decision.Approved {
		return models.GenerationResult{}, &budget.ExceededError{
			Estimate:  decision.Estimate,
			Remaining: decision.Remaining,
			Shortfall: decision.Shortfall,
		}
	}

	jobID, err := c.transport.Submit(ctx, req)
	if err != nil {
		if markErr := c.ledger.MarkTerminal(ctx, decision.EntryID, models.StatusFailed); markErr != nil {
			c.log.Error().Err(markErr).Str("entry_id", decision.EntryID).Msg("failed to record submission failure")
		}
		return models.GenerationResult{}, err
	}

	if err := c.ledger.MarkSubmitted(ctx, decision.EntryID, jobID); err != nil {
		return models.GenerationResult{}, err
	}

	c.log.Info().
		Str("job_id", jobID).
		Float64("estimate_usd", decision.Estimate.Dollars()).
		Float64("duration_s", req.DurationSeconds).
		Str("tier", string(req.Tier)).
		Msg("generation submitted")

	return models.GenerationResult{JobID: jobID, Status: models.JobPending}, nil
}

// PollUntilTerminal polls the job at interval spacing until it completes or
// fails, or until maxWait elapses. Timeout and context cancellation both
// return the last known pending status without an error and without
// touching the entry — cancellation is not a transport failure. A terminal
// outcome is written back to the ledger entry before returning.
func (c *Client) PollUntilTerminal(ctx context.Context, jobID string, maxWait, interval time.Duration) (models.GenerationResult, error) {
	entry, err := c.ledger.FindByJobID(ctx, jobID)
	if err != nil {
		return models.GenerationResult{}, err
	}

	pending := models.GenerationResult{JobID: jobID, Status: models.JobPending}
	deadline := time.Now().Add(maxWait)

	for {
		upd, err := c.transport.Poll(ctx, jobID)
		if err != nil {
			// A failed read does not consume the entry: the job may still
			// complete, and a later idempotent poll can observe it.
			return models.GenerationResult{}, err
		}

		if upd.Status != models.JobPending {
			status := models.StatusCompleted
			if upd.Status == models.JobFailed {
				status = models.StatusFailed
			}
			if err := c.ledger.MarkTerminal(ctx, entry.ID, status); err != nil {
				return models.GenerationResult{}, err
			}
			c.log.Info().Str("job_id", jobID).Str("status", string(upd.Status)).Msg("generation finished")
			return models.GenerationResult{JobID: jobID, Status: upd.Status, OutputRef: upd.OutputRef}, nil
		}

		if time.Now().Add(interval).After(deadline) {
			c.log.Debug().Str("job_id", jobID).Msg("poll wait exhausted, job still pending")
			return pending, nil
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			c.log.Debug().Str("job_id", jobID).Msg("polling cancelled, job still pending")
			return pending, nil
		case <-timer.C:
		}
	}
}

// Summary reports the current period's spend. Pure read.
func (c *Client) Summary(ctx context.Context) (models.BudgetSummary, error) {
	return c.guard.Summary(ctx)
}
