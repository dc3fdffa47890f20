package entity

import (
	"time"

	"github.com/google/uuid"
)

// PayoutStatus is the state of one rotation slot.
type PayoutStatus string

const (
	PayoutStatusPending PayoutStatus = "pending"
	PayoutStatusPaid    PayoutStatus = "paid"
)

// PayoutFrequency is the spacing between consecutive rotation dates.
type PayoutFrequency string

const (
	PayoutFrequencyWeekly  PayoutFrequency = "weekly"
	PayoutFrequencyMonthly PayoutFrequency = "monthly"
)

// IsValid reports whether the frequency is supported.
func (f PayoutFrequency) IsValid() bool {
	return f == PayoutFrequencyWeekly || f == PayoutFrequencyMonthly
}

// PayoutEntry is one slot in a group's rotation.
type PayoutEntry struct {
	UserID        string       `json:"user_id"`
	PayoutDate    time.Time    `json:"payout_date"`
	Status        PayoutStatus `json:"status"`
	TransactionID *uuid.UUID   `json:"transaction_id,omitempty"`
	PaidAt        *time.Time   `json:"paid_at,omitempty"`
}

// DateOnly truncates t to midnight UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonthsClamped adds n months to date, clamping to the last day of the target month
// so that Jan 31 + 1 month is Feb 28/29 rather than overflowing into March.
func AddMonthsClamped(date time.Time, n int) time.Time {
	y, m, d := date.Date()
	firstOfTarget := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, 0, 0, 0, 0, time.UTC)
}

// BuildSchedule lays out order starting at start with the given spacing. All entries are pending.
func BuildSchedule(order []string, start time.Time, frequency PayoutFrequency) []PayoutEntry {
	start = DateOnly(start)
	entries := make([]PayoutEntry, len(order))
	for i, userID := range order {
		var date time.Time
		switch frequency {
		case PayoutFrequencyWeekly:
			date = start.AddDate(0, 0, 7*i)
		default:
			date = AddMonthsClamped(start, i)
		}
		entries[i] = PayoutEntry{
			UserID:     userID,
			PayoutDate: date,
			Status:     PayoutStatusPending,
		}
	}
	return entries
}

// NextPendingIndex returns the index of the pending entry with the earliest date,
// ties broken by list order, or -1 when nothing is pending.
func NextPendingIndex(entries []PayoutEntry) int {
	best := -1
	for i, e := range entries {
		if e.Status != PayoutStatusPending {
			continue
		}
		if best < 0 || e.PayoutDate.Before(entries[best].PayoutDate) {
			best = i
		}
	}
	return best
}

// NextPayoutDate returns the earliest pending date on or after today. When every pending
// entry is overdue it falls back to the earliest overdue one, and to nil when none is pending.
func NextPayoutDate(entries []PayoutEntry, today time.Time) *time.Time {
	today = DateOnly(today)
	var upcoming, overdue *time.Time
	for i := range entries {
		e := entries[i]
		if e.Status != PayoutStatusPending {
			continue
		}
		d := e.PayoutDate
		if !d.Before(today) {
			if upcoming == nil || d.Before(*upcoming) {
				upcoming = &d
			}
		} else if overdue == nil || d.Before(*overdue) {
			overdue = &d
		}
	}
	if upcoming != nil {
		return upcoming
	}
	return overdue
}

// PendingEntryIndexFor returns the earliest pending entry of userID, or -1.
func PendingEntryIndexFor(entries []PayoutEntry, userID string) int {
	best := -1
	for i, e := range entries {
		if e.UserID != userID || e.Status != PayoutStatusPending {
			continue
		}
		if best < 0 || e.PayoutDate.Before(entries[best].PayoutDate) {
			best = i
		}
	}
	return best
}

// UnlinkedPendingIndexFor returns the earliest pending entry of userID not yet tied
// to a payout, or -1.
func UnlinkedPendingIndexFor(entries []PayoutEntry, userID string) int {
	best := -1
	for i, e := range entries {
		if e.UserID != userID || e.Status != PayoutStatusPending || e.TransactionID != nil {
			continue
		}
		if best < 0 || e.PayoutDate.Before(entries[best].PayoutDate) {
			best = i
		}
	}
	return best
}

// EntryIndexForTransaction returns the entry linked to a payout transaction, or -1.
func EntryIndexForTransaction(entries []PayoutEntry, transactionID uuid.UUID) int {
	for i, e := range entries {
		if e.TransactionID != nil && *e.TransactionID == transactionID {
			return i
		}
	}
	return -1
}

// MoveEntry moves the element at from to position to, shifting the others. Dates stay
// attached to their entries.
func MoveEntry(entries []PayoutEntry, from, to int) []PayoutEntry {
	out := make([]PayoutEntry, 0, len(entries))
	moved := entries[from]
	for i, e := range entries {
		if i == from {
			continue
		}
		out = append(out, e)
	}
	out = append(out[:to], append([]PayoutEntry{moved}, out[to:]...)...)
	return out
}
