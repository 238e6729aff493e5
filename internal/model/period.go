package model

import "time"

// PeriodStatus is the lifecycle state of an accounting period.
type PeriodStatus string

const (
	PeriodOpen   PeriodStatus = "OPEN"
	PeriodClosed PeriodStatus = "CLOSED"
)

// Period is a bounded, inclusive date range that can be closed to postings.
type Period struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	StartDate time.Time    `json:"startDate"`
	EndDate   time.Time    `json:"endDate"`
	Status    PeriodStatus `json:"status"`
	ClosedAt  *time.Time   `json:"closedAt,omitempty"`
	// ClosingJournalID is set when the period was closed through the closing workflow.
	ClosingJournalID string `json:"closingJournalId,omitempty"`
}

// Contains reports whether date falls on a calendar day within [StartDate, EndDate].
func (p Period) Contains(date time.Time) bool {
	d := Day(date)
	return !d.Before(Day(p.StartDate)) && !d.After(Day(p.EndDate))
}

// Overlaps reports whether two periods share at least one day.
func (p Period) Overlaps(o Period) bool {
	return !Day(p.EndDate).Before(Day(o.StartDate)) && !Day(o.EndDate).Before(Day(p.StartDate))
}

// Day returns the calendar date of t, read in t's own location, as
// midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// InRange reports whether date lies within the optional inclusive bounds.
// A nil bound is open-ended.
func InRange(date time.Time, from, to *time.Time) bool {
	d := Day(date)
	if from != nil && d.Before(Day(*from)) {
		return false
	}
	if to != nil && d.After(Day(*to)) {
		return false
	}
	return true
}
