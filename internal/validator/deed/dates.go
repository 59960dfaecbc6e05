package deed

import (
	"fmt"
	"strings"
	"time"

	"deedcheck/internal/domain"
)

// Date is a calendar date without time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// dateLayouts are tried in order. Numeric slash dates are US month-first.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	time.RFC3339,
}

// ParseDate parses s using the accepted layouts. Impossible calendar
// dates (e.g. February 30) are rejected.
func ParseDate(s string) (Date, error) {
	s = strings.Join(strings.Fields(s), " ")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return Date{Year: y, Month: m, Day: d}, nil
		}
	}
	return Date{}, fmt.Errorf("unparseable date: %q", s)
}

// Compare returns -1, 0 or +1 as d is before, equal to or after o.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText renders the date as YYYY-MM-DD.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts any layout ParseDate accepts.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// CheckDateOrder parses both dates and requires recorded >= signed.
// Same-day recording is valid.
func CheckDateOrder(signedDate, recordedDate string) (signed, recorded Date, err error) {
	signed, perr := ParseDate(signedDate)
	if perr != nil {
		return Date{}, Date{}, newFailure(domain.FailureMalformedDate, domain.StageDateCheck,
			"calendar date (e.g. 2024-01-15)", signedDate,
			fmt.Sprintf("MalformedDate: signed_date %q is not a valid calendar date", signedDate),
			FieldSignedDate)
	}
	recorded, perr = ParseDate(recordedDate)
	if perr != nil {
		return Date{}, Date{}, newFailure(domain.FailureMalformedDate, domain.StageDateCheck,
			"calendar date (e.g. 2024-01-15)", recordedDate,
			fmt.Sprintf("MalformedDate: recorded_date %q is not a valid calendar date", recordedDate),
			FieldRecordedDate)
	}

	if recorded.Before(signed) {
		return Date{}, Date{}, newFailure(domain.FailureDateOrderViolation, domain.StageDateCheck,
			fmt.Sprintf("recorded_date >= %s", signed), recorded.String(),
			fmt.Sprintf("DateOrderViolation: recorded_date %s precedes signed_date %s", recorded, signed),
			FieldSignedDate, FieldRecordedDate)
	}
	return signed, recorded, nil
}
