package record

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/phenotab/phenotab/semantic"
)

var isoDurationPattern = regexp.MustCompile(`^P(?:\d+Y)?(?:\d+M)?(?:\d+W)?(?:\d+D)?(?:T(?:\d+H)?(?:\d+M)?(?:\d+S)?)?$`)

// CheckISO8601Duration validates an age duration such as "P12Y5M28D".
func CheckISO8601Duration(s string) error {
	v := strings.TrimSpace(s)
	if v == "" || v == "P" || v == "PT" || !isoDurationPattern.MatchString(v) {
		return fmt.Errorf("invalid ISO-8601 duration %q", s)
	}
	return nil
}

// AgeElement builds a time element from an age duration.
func AgeElement(duration string) (*TimeElement, error) {
	if err := CheckISO8601Duration(duration); err != nil {
		return nil, err
	}
	return &TimeElement{Age: &Age{ISO8601Duration: strings.TrimSpace(duration)}}, nil
}

// TimestampElement builds a time element from a point in time.
func TimestampElement(t time.Time) *TimeElement {
	return &TimeElement{Timestamp: &t}
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// ParseTimestamp accepts the date spellings cohort tables actually contain.
// Date-only values are midnight UTC.
func ParseTimestamp(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

// TimeElementFrom interprets a raw cell according to the temporal encoding
// of the column it came from.
func TimeElementFrom(tt semantic.TimeElementType, raw string) (*TimeElement, error) {
	switch tt {
	case semantic.TimeAge:
		return AgeElement(raw)
	case semantic.TimeDate:
		t, err := ParseTimestamp(raw)
		if err != nil {
			return nil, err
		}
		return TimestampElement(t), nil
	default:
		return nil, fmt.Errorf("unsupported time element type %v", tt)
	}
}
