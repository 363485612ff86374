package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Calendar date without time-of-day or zone
// =============================================================================

// Date is a calendar day. It never carries a clock time or a location, so two
// dates compare and subtract the same way on every machine.
type Date struct {
	year  int
	month time.Month
	day   int
}

const dateLayout = "2006-01-02"

// Constructors

// NewDate normalizes out-of-range components the way time.Date does
// (e.g. Feb 30 becomes Mar 1 or Mar 2).
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf keeps the calendar components of t as they read in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{year: y, month: m, day: d}
}

// ParseDate parses YYYY-MM-DD and rejects dates that do not exist.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

func Today() Date { return DateOf(time.Now()) }

// Properties
func (d Date) Year() int { return d.year }
func (d Date) Month() time.Month { return d.month }
func (d Date) Day() int { return d.day }
func (d Date) IsZero() bool { return d == Date{} }
func (d Date) YearMonth() YearMonth { return YearMonth{Year: d.year, Month: d.month} }

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time { return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC) }

// Comparison
func (d Date) Compare(other Date) int {
	switch {
	case d.ordinal() < other.ordinal():
		return -1
	case d.ordinal() > other.ordinal():
		return 1
	default:
		return 0
	}
}

func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }
func (d Date) After(other Date) bool { return d.Compare(other) > 0 }
func (d Date) Equal(other Date) bool { return d.Compare(other) == 0 }
func (d Date) BeforeOrEqual(other Date) bool { return d.Compare(other) <= 0 }
func (d Date) AfterOrEqual(other Date) bool { return d.Compare(other) >= 0 }

// Arithmetic
func (d Date) AddDays(n int) Date { return NewDate(d.year, d.month, d.day+n) }

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.year, int(d.month), d.day)
}

func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ordinal counts days since 1970-01-01 using integer civil-calendar math.
// Valid for the whole proleptic Gregorian calendar, negative years included.
func (d Date) ordinal() int {
	y := d.year
	m := int(d.month)
	if m <= 2 {
		y--
	}
	era := y / 400
	if y < 0 && y%400 != 0 {
		era--
	}
	yoe := y - era*400
	mp := (m + 9) % 12
	doy := (153*mp+2)/5 + d.day - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

// =============================================================================
// YEAR-MONTH - Calendar month key used by allocations and reports
// =============================================================================

type YearMonth struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

func NewYearMonth(year int, month time.Month) (YearMonth, error) {
	if month < time.January || month > time.December {
		return YearMonth{}, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	return YearMonth{Year: year, Month: month}, nil
}

func (ym YearMonth) FirstDay() Date { return Date{year: ym.Year, month: ym.Month, day: 1} }
func (ym YearMonth) LastDay() Date {
	return Date{year: ym.Year, month: ym.Month, day: DaysInMonth(ym.Year, ym.Month)}
}
func (ym YearMonth) Days() int { return DaysInMonth(ym.Year, ym.Month) }

func (ym YearMonth) Next() YearMonth { return ym.AddMonths(1) }
func (ym YearMonth) Previous() YearMonth { return ym.AddMonths(-1) }

func (ym YearMonth) AddMonths(n int) YearMonth {
	idx := ym.index() + n
	year := idx / 12
	if idx < 0 && idx%12 != 0 {
		year--
	}
	return YearMonth{Year: year, Month: time.Month(idx-year*12) + 1}
}

func (ym YearMonth) Before(other YearMonth) bool { return ym.index() < other.index() }
func (ym YearMonth) After(other YearMonth) bool { return ym.index() > other.index() }

func (ym YearMonth) String() string { return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month)) }

func (ym YearMonth) index() int { return ym.Year*12 + int(ym.Month) - 1 }
