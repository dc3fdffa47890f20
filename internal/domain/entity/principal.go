package entity

// Principal is the verified identity of a caller as asserted by the identity provider.
type Principal struct {
	UserID string
	Name   string
	Email  string
	Phone  string
}
