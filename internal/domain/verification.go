package domain

import "time"

// OTPRecord is a single outstanding one-time code issued for one identifier.
// Keyed by the lower-cased email in the OTP store.
type OTPRecord struct {
	Code     string    `json:"-"`
	IssuedAt time.Time `json:"issued_at"`
}

// Purpose names the flow a verified code (and the ticket issued for it) unlocks.
type Purpose string

const (
	PurposeSignup        Purpose = "signup"
	PurposePasswordReset Purpose = "password_reset"
)

// Valid reports whether p is a known purpose.
func (p Purpose) Valid() bool {
	return p == PurposeSignup || p == PurposePasswordReset
}

// Ticket is the proof of a successful OTP verification handed back to the client.
type Ticket struct {
	Token     string    `json:"ticket"`
	Email     string    `json:"email"`
	Purpose   Purpose   `json:"purpose"`
	ExpiresAt time.Time `json:"expires_at"`
}
