package timeutil

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedTime indicates a time-of-day string that could not be parsed.
var ErrMalformedTime = fmt.Errorf("malformed time of day")

const minutesPerDay = 24 * 60

// ToMinutes parses an "HH:MM" or "HH:MM:SS" string into minutes since midnight.
// Seconds are accepted and ignored, matching how the database stores times.
func ToMinutes(timeOfDay string) (int, error) {
	parts := strings.Split(timeOfDay, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, timeOfDay)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, timeOfDay)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, timeOfDay)
	}
	if len(parts) == 3 {
		seconds, err := strconv.Atoi(parts[2])
		if err != nil || seconds < 0 || seconds > 59 {
			return 0, fmt.Errorf("%w: %q", ErrMalformedTime, timeOfDay)
		}
	}

	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, timeOfDay)
	}

	return hours*60 + minutes, nil
}

// FromMinutes formats minutes since midnight as a zero-padded "HH:MM:SS" string.
// Values are taken modulo 1440, so offsets past midnight wrap around.
func FromMinutes(minutes int) string {
	minutes %= minutesPerDay
	if minutes < 0 {
		minutes += minutesPerDay
	}
	return fmt.Sprintf("%02d:%02d:00", minutes/60, minutes%60)
}
