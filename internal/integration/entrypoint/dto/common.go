// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"time"

	"github.com/savings-circle/backend/internal/domain/valueobject"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message"`
}

// PaginationResponse describes one page of a listing.
type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Money is an amount rendered both as minor units and as a fixed two-decimal string.
type Money struct {
	Cents  int64  `json:"cents"`
	Amount string `json:"amount"`
}

// NewMoney renders cents.
func NewMoney(cents int64) Money {
	return Money{Cents: cents, Amount: valueobject.FormatCents(cents)}
}

// formatDate renders an optional timestamp as RFC 3339 in UTC.
func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

// DateLayout is the calendar date format used by schedule requests and responses.
const DateLayout = "2006-01-02"

// ParseDate accepts a calendar date or a full RFC 3339 timestamp and returns it in UTC.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
