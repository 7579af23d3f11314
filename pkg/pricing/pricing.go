// Package pricing maps quality tiers to per-second rates and turns a
// generation request into a cost estimate.
package pricing

import (
	"math"

	"github.com/reelgate/reelgate/pkg/models"
)

// Table maps each quality tier to its rate in cents per second of video.
// The set of keys is closed; estimating against an unknown tier fails
// instead of falling back to a default rate.
type Table map[models.Tier]models.Cents

// DefaultTable returns the standard per-second rates.
func DefaultTable() Table {
	return Table{
		models.TierLow:    2, // $0.02/s
		models.TierMedium: 3, // $0.03/s
		models.TierHigh:   5, // $0.05/s
	}
}

// Rate returns the per-second rate for a tier.
func (t Table) Rate(tier models.Tier) (models.Cents, bool) {
	r, ok := t[tier]
	return r, ok
}

// Estimate computes the cost of a request: duration times the tier rate,
// rounded to whole cents. It is deterministic and has no side effects.
func Estimate(t Table, req models.GenerationRequest) (models.Cents, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}
	rate, ok := t.Rate(req.Tier)
	if !ok {
		return 0, &models.InvalidRequestError{Reason: "no rate configured for tier " + string(req.Tier)}
	}
	return models.Cents(math.Round(req.DurationSeconds * float64(rate))), nil
}
