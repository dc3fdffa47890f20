package valueobject

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// InviteCodeLength is the number of characters in an invite code.
const InviteCodeLength = 6

// inviteAlphabet omits characters that are easy to confuse when read aloud (0/O, 1/I/L).
const inviteAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// GenerateInviteCode returns a random upper-case invite code.
func GenerateInviteCode() (string, error) {
	var sb strings.Builder
	max := big.NewInt(int64(len(inviteAlphabet)))
	for i := 0; i < InviteCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate invite code: %w", err)
		}
		sb.WriteByte(inviteAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// NormalizeInviteCode upper-cases and trims a user supplied code so lookups are case-insensitive.
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValidInviteCode reports whether a normalized code has the expected shape.
func IsValidInviteCode(code string) bool {
	if len(code) != InviteCodeLength {
		return false
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
