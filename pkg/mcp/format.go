package mcp

import (
	"fmt"
	"strings"

	"github.com/reelgate/reelgate/pkg/budget"
	"github.com/reelgate/reelgate/pkg/models"
)

// formatDecision renders a preview decision as text.
func formatDecision(d budget.Decision) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Estimated cost: %s\n", d.Estimate)
	fmt.Fprintf(&b, "Remaining budget: %s\n", d.Remaining)
	if d.Approved {
		b.WriteString("Decision: would be approved\n")
	} else {
		fmt.Fprintf(&b, "Decision: would be rejected (short by %s)\n", d.Shortfall)
	}
	return b.String()
}

// formatSummary renders the budget summary as text.
func formatSummary(s models.BudgetSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Period start: %s\n", s.PeriodStart.Format("2006-01-02"))
	fmt.Fprintf(&b, "Monthly limit: %s\n", s.MonthlyLimit)
	fmt.Fprintf(&b, "Spent: %s (%.1f%%)\n", s.Spent, s.UsedPercent)
	fmt.Fprintf(&b, "Remaining: %s\n", s.Remaining)
	fmt.Fprintf(&b, "Attempts: %d (%d rejected)\n", s.EntryCount, s.RejectedCount)
	return b.String()
}

// formatEntries renders ledger entries as a text table.
func formatEntries(entries []models.LedgerEntry) string {
	if len(entries) == 0 {
		return "No ledger entries found."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %8s %-8s %10s %-10s %s\n",
		"Time", "Duration", "Tier", "Cost", "Status", "Job ID")
	b.WriteString(strings.Repeat("-", 80) + "\n")
	for _, e := range entries {
		job := e.JobID
		if job == "" {
			job = "-"
		}
		fmt.Fprintf(&b, "%-20s %7gs %-8s %10s %-10s %s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"),
			e.DurationSeconds, e.Tier, e.Amount, e.Status, job)
	}
	return b.String()
}
