package lifecycle

import (
	"fmt"
	"time"
)

// AgeGroup returns the decade of the age reached on now, e.g. "30s". It is
// empty for an unknown or future birthday.
func AgeGroup(birthday *time.Time, now time.Time) string {
	if birthday == nil {
		return ""
	}
	b := *birthday

	age := now.Year() - b.Year()
	if now.Month() < b.Month() || (now.Month() == b.Month() && now.Day() < b.Day()) {
		age--
	}
	if age < 0 {
		return ""
	}
	return fmt.Sprintf("%ds", age/10*10)
}
