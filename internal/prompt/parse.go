package prompt

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// dateLayouts are tried in order by ParseDate.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006/01/02 15:04",
	"2006/01/02",
	"02 Jan 2006 15:04",
	"02 Jan 2006",
	"Jan 2 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseRatio reads a probability written as "70%", "7/10", "7 in 10" or "0.7".
// It does not check the [0, 1] range; the builder does.
func ParseRatio(input string) (float64, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	if s == "" {
		return 0, eris.New("empty ratio")
	}

	if strings.HasSuffix(s, "%") {
		v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
		if err != nil {
			return 0, eris.Wrapf(err, "parse percentage %q", input)
		}
		return v / 100, nil
	}

	s = strings.Replace(s, " in ", "/", 1)
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil {
			return 0, eris.Wrapf(err, "parse numerator %q", input)
		}
		d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err != nil {
			return 0, eris.Wrapf(err, "parse denominator %q", input)
		}
		if d == 0 {
			return 0, eris.Errorf("zero denominator in %q", input)
		}
		return n / d, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "parse ratio %q", input)
	}
	return v, nil
}

// ParseDate reads a date or date-time in one of the supported layouts,
// interpreting zone-less input in loc.
func ParseDate(input string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(input)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, eris.Errorf("unrecognised date %q", input)
}

// ParseBool reads yes/no style answers.
func ParseBool(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "yes", "y", "true", "t", "1":
		return true
	}
	return false
}
