package wizard

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the canonical calendar representation users type and the
// rendered letter reproduces.
const DateLayout = "02-01-2006"

// Date window constants: the start date may lie up to 30 days in the
// past and up to a year ahead; the end date must fall within a year of
// the start.
const (
	StartDateLookback = 30 * 24 * time.Hour
	StartDateHorizon  = 365 * 24 * time.Hour
	EndDateHorizon    = 365 * 24 * time.Hour
)

var phonePattern = regexp.MustCompile(`^[0-9]{10,12}$`)

// ValidationError carries the user-facing message for a rejected answer.
// The step is re-prompted; no field is written.
type ValidationError struct {
	Field   Field
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidPhone accepts exactly strings of 10, 11 or 12 decimal digits.
func ValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// ParseDate parses the canonical DD-MM-YYYY representation.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// RequiredText trims the value and reports whether anything remains.
func RequiredText(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	return trimmed, trimmed != ""
}

// dateOnly truncates a time to its calendar day so window comparisons
// ignore the time of day.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
