package domain

import "fmt"

// Mode tags a pending verification with the flow that issued the code. The
// code itself lives in the single User.OTP slot, so issuing a code for one
// mode invalidates any code pending for the other.
type Mode string

const (
	ModeRegister Mode = "register"
	ModeLogin    Mode = "login"
)

// ParseMode validates a mode tag received from a client.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeRegister, ModeLogin:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown verification mode %q: %w", s, ErrBadRequest)
	}
}

// Pending describes a code that was issued and awaits confirmation.
// DeliveryErr is set when the code was stored but the email could not be sent.
type Pending struct {
	UserID      string
	Mode        Mode
	DeliveryErr error
}

// Step is the screen a successful verification leads to.
type Step int

const (
	StepQuestionnaire Step = iota + 1
	StepDashboard
)
