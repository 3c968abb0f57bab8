package records

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidTime is returned by ParseTime for strings that are neither
// MM:SS nor a bare number of seconds.
var ErrInvalidTime = errors.New("invalid time")

// maxSeconds bounds ParseTime results so component arithmetic cannot overflow.
const maxSeconds = math.MaxInt32

// NormalizeKey lowercases name and strips everything except a-z and 0-9.
// "Bench Press (Barbell)" and "bench-press barbell" share a key.
func NormalizeKey(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// OneRepMax estimates a one-rep max with the Brzycki formula, rounded to one
// decimal. A single rep returns the weight unchanged. Rep counts the formula
// cannot express (<= 0 or >= 37) return 0.
func OneRepMax(weight, reps float64) float64 {
	if reps == 1 {
		return weight
	}
	if reps <= 0 || reps >= 37 {
		return 0
	}
	return math.Round(weight*36/(37-reps)*10) / 10
}

// ParseTime converts "MM:SS" (or "H:MM:SS") or a bare integer number of
// seconds into total seconds.
func ParseTime(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidTime)
	}

	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) > 3 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
		total := 0
		for _, p := range parts {
			n, err := parseDigits(p)
			if err != nil || n > maxSeconds || total > (maxSeconds-n)/60 {
				return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
			}
			total = total*60 + n
		}
		if total <= 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
		return total, nil
	}

	n, err := parseDigits(s)
	if err != nil || n <= 0 || n > maxSeconds {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return n, nil
}

func parseDigits(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidTime
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidTime
		}
	}
	return strconv.Atoi(s)
}

// FormatSeconds renders seconds as M:SS (or H:MM:SS past an hour).
func FormatSeconds(total int) string {
	if total < 0 {
		total = 0
	}
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}
