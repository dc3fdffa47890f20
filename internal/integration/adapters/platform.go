package adapters

import (
	"strings"
	"time"

	"github.com/savings-circle/backend/internal/application/adapter"
)

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// operatorDirectory implements adapter.OperatorDirectory over a fixed set of user ids.
type operatorDirectory struct {
	ids map[string]struct{}
}

// NewOperatorDirectory creates a directory of the configured platform operators.
func NewOperatorDirectory(ids []string) adapter.OperatorDirectory {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			set[id] = struct{}{}
		}
	}
	return &operatorDirectory{ids: set}
}

// IsOperator reports whether userID is a platform operator.
func (d *operatorDirectory) IsOperator(userID string) bool {
	_, ok := d.ids[userID]
	return ok
}
