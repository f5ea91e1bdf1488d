package checkout

import (
	"time"
)

// State is the position of a user inside the checkout conversation. The
// order is strict: input belonging to a later state never advances an
// earlier one.
type State int

const (
	StateIdle State = iota
	StateAwaitingAddress
	StateAwaitingPhone
	StateAwaitingComment
	StateAwaitingDate
	StateAwaitingConfirmation
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingAddress:
		return "awaiting_address"
	case StateAwaitingPhone:
		return "awaiting_phone"
	case StateAwaitingComment:
		return "awaiting_comment"
	case StateAwaitingDate:
		return "awaiting_date"
	case StateAwaitingConfirmation:
		return "awaiting_confirmation"
	default:
		return "unknown"
	}
}

const dateLayout = "02.01.2006"

// ValidPhone accepts digits with at most a single leading plus. No length
// or country-code checks.
func ValidPhone(phone string) bool {
	if phone == "" {
		return false
	}
	for i, r := range phone {
		if r == '+' && i == 0 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return phone != "+"
}

// ParseDeliveryDate parses exactly DD.MM.YYYY.
func ParseDeliveryDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

func FormatDeliveryDate(t time.Time) string {
	return t.Format(dateLayout)
}
