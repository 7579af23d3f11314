package models

import "time"

// EntryStatus is the lifecycle state of a ledger entry.
//
// Transitions: approved|rejected at creation; approved -> submitted once a
// job id is obtained; submitted -> completed|failed from the observed job
// outcome; approved -> failed when submission errors before a job id.
// rejected, completed and failed are terminal.
type EntryStatus string

const (
	StatusApproved  EntryStatus = "approved"
	StatusRejected  EntryStatus = "rejected"
	StatusSubmitted EntryStatus = "submitted"
	StatusCompleted EntryStatus = "completed"
	StatusFailed    EntryStatus = "failed"
)

// Terminal reports whether no further transition is allowed from the status.
func (s EntryStatus) Terminal() bool {
	switch s {
	case StatusRejected, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// LedgerEntry records one authorization attempt. Identity, cost and the
// authorized flag are frozen at creation; only the status and job id may be
// attached afterwards, each exactly once.
//
// The entry keeps the prompt length rather than the prompt text to stay
// compact.
type LedgerEntry struct {
	ID              string      `json:"id"`
	Period          string      `json:"period"`
	CreatedAt       time.Time   `json:"created_at"`
	DurationSeconds float64     `json:"duration_seconds"`
	Tier            Tier        `json:"tier"`
	Aspect          AspectRatio `json:"aspect_ratio,omitempty"`
	PromptChars     int         `json:"prompt_chars"`
	Amount          Cents       `json:"amount_cents"`
	Authorized      bool        `json:"authorized"`
	Status          EntryStatus `json:"status"`
	JobID           string      `json:"job_id,omitempty"`
}

// BudgetSummary is a point-in-time read of the current period's spend.
type BudgetSummary struct {
	PeriodStart   time.Time `json:"period_start"`
	MonthlyLimit  Cents     `json:"monthly_limit_cents"`
	Spent         Cents     `json:"spent_cents"`
	Remaining     Cents     `json:"remaining_cents"`
	UsedPercent   float64   `json:"used_percent"`
	EntryCount    int       `json:"entry_count"`
	RejectedCount int       `json:"rejected_count"`
}

// PeriodOf returns the calendar-month budget period a timestamp falls in,
// as "2006-01" in UTC. An entry belongs to the period current when it was
// appended, so the period is stamped on the entry, never derived at query
// time.
func PeriodOf(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// PeriodStart returns the first instant of a "2006-01" period in UTC.
func PeriodStart(period string) (time.Time, error) {
	return time.Parse("2006-01", period)
}
