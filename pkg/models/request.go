package models

import "fmt"

// Tier is a video quality tier. The set is closed: an unknown tier is an
// invalid request, never a silent default rate.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// Valid reports whether the tier is one of the known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierLow, TierMedium, TierHigh:
		return true
	}
	return false
}

// AspectRatio is the requested video aspect ratio. Informational only; it
// does not affect cost.
type AspectRatio string

const (
	AspectWidescreen AspectRatio = "16:9"
	AspectSquare     AspectRatio = "1:1"
	AspectPortrait   AspectRatio = "9:16"
)

// Valid reports whether the aspect ratio is supported.
func (a AspectRatio) Valid() bool {
	switch a {
	case AspectWidescreen, AspectSquare, AspectPortrait:
		return true
	}
	return false
}

// Style is an optional visual style preset passed through to the
// generation service as a prompt hint.
type Style string

const (
	StyleSilentFilm  Style = "black_and_white_silent_film"
	StyleCinematic   Style = "cinematic"
	StyleDocumentary Style = "documentary"
	StyleAnimated    Style = "animated"
	StyleRealistic   Style = "realistic"
)

// GenerationRequest describes one proposed video generation. Callers build
// it fully before any budget check; it is never mutated afterwards.
type GenerationRequest struct {
	Prompt          string      `json:"prompt"`
	DurationSeconds float64     `json:"duration_seconds"`
	Tier            Tier        `json:"tier"`
	Aspect          AspectRatio `json:"aspect_ratio"`
	Style           Style       `json:"style,omitempty"`
}

// Validate checks the request against the input constraints. It returns an
// *InvalidRequestError describing the first violation found.
func (r GenerationRequest) Validate() error {
	if r.Prompt == "" {
		return &InvalidRequestError{Reason: "prompt must not be empty"}
	}
	if r.DurationSeconds <= 0 {
		return &InvalidRequestError{Reason: fmt.Sprintf("duration must be positive, got %g", r.DurationSeconds)}
	}
	if !r.Tier.Valid() {
		return &InvalidRequestError{Reason: fmt.Sprintf("unknown tier %q", r.Tier)}
	}
	if r.Aspect != "" && !r.Aspect.Valid() {
		return &InvalidRequestError{Reason: fmt.Sprintf("unknown aspect ratio %q", r.Aspect)}
	}
	return nil
}

// InvalidRequestError reports a malformed generation request. It is never
// retried; the caller must fix the input.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return "invalid request: " + e.Reason
}
