package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelgate/reelgate/pkg/models"
)

func validRequest() models.GenerationRequest {
	return models.GenerationRequest{
		Prompt:          "a programmer debugging at 3am",
		DurationSeconds: 60,
		Tier:            models.TierLow,
		Aspect:          models.AspectWidescreen,
	}
}

func TestEstimateLowTier(t *testing.T) {
	est, err := Estimate(DefaultTable(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, models.Cents(120), est) // 60s * $0.02/s = $1.20
}

func TestEstimateAllTiers(t *testing.T) {
	table := DefaultTable()
	req := validRequest()
	req.DurationSeconds = 90

	cases := []struct {
		tier models.Tier
		want models.Cents
	}{
		{models.TierLow, 180},    // $1.80
		{models.TierMedium, 270}, // $2.70
		{models.TierHigh, 450},   // $4.50
	}
	for _, tc := range cases {
		req.Tier = tc.tier
		est, err := Estimate(table, req)
		require.NoError(t, err)
		assert.Equal(t, tc.want, est, "tier %s", tc.tier)
	}
}

func TestEstimateDeterministic(t *testing.T) {
	table := DefaultTable()
	req := validRequest()

	first, err := Estimate(table, req)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Estimate(table, req)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEstimateRoundsFractionalSeconds(t *testing.T) {
	req := validRequest()
	req.DurationSeconds = 30.4
	req.Tier = models.TierHigh // 30.4 * 5 = 152

	est, err := Estimate(DefaultTable(), req)
	require.NoError(t, err)
	assert.Equal(t, models.Cents(152), est)

	req.DurationSeconds = 30.5 // 152.5 rounds up
	est, err = Estimate(DefaultTable(), req)
	require.NoError(t, err)
	assert.Equal(t, models.Cents(153), est)
}

func TestEstimateUnknownTier(t *testing.T) {
	req := validRequest()
	req.Tier = "ultra"

	_, err := Estimate(DefaultTable(), req)
	var invalid *models.InvalidRequestError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Reason, "ultra")
}

func TestEstimateInvalidRequests(t *testing.T) {
	table := DefaultTable()

	req := validRequest()
	req.Prompt = ""
	_, err := Estimate(table, req)
	var invalid *models.InvalidRequestError
	assert.ErrorAs(t, err, &invalid)

	req = validRequest()
	req.DurationSeconds = 0
	_, err = Estimate(table, req)
	assert.ErrorAs(t, err, &invalid)

	req = validRequest()
	req.DurationSeconds = -5
	_, err = Estimate(table, req)
	assert.ErrorAs(t, err, &invalid)

	req = validRequest()
	req.Aspect = "21:9"
	_, err = Estimate(table, req)
	assert.ErrorAs(t, err, &invalid)
}

func TestEstimateNoRateForKnownTier(t *testing.T) {
	// A table missing a known tier must fail rather than default.
	table := Table{models.TierLow: 2}
	req := validRequest()
	req.Tier = models.TierHigh

	_, err := Estimate(table, req)
	var invalid *models.InvalidRequestError
	assert.ErrorAs(t, err, &invalid)
}
