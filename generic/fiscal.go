package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// FISCAL CALENDAR - Maps calendar dates to fiscal years and quarters
// =============================================================================

// FiscalCalendar describes a fiscal year made of four three-month quarters
// starting on the first day of StartMonth. A fiscal year is labelled with the
// calendar year in which it ends, so with a December start FY2024 runs from
// 2023-12-01 to 2024-11-30.
type FiscalCalendar struct {
	StartMonth time.Month
}

// DefaultFiscalCalendar starts the year on December 1:
//
//	Q1: Dec 1 - end of February
//	Q2: Mar 1 - May 31
//	Q3: Jun 1 - Aug 31
//	Q4: Sep 1 - Nov 30
var DefaultFiscalCalendar = FiscalCalendar{StartMonth: time.December}

// FiscalPeriod identifies one fiscal quarter.
type FiscalPeriod struct {
	Year    int `json:"fiscal_year"`
	Quarter int `json:"fiscal_quarter"`
}

func (fp FiscalPeriod) String() string { return fmt.Sprintf("FY%d Q%d", fp.Year, fp.Quarter) }

// ParseFiscalPeriod reads the "FY2024 Q1" form produced by String.
func ParseFiscalPeriod(s string) (FiscalPeriod, error) {
	var fp FiscalPeriod
	if _, err := fmt.Sscanf(s, "FY%d Q%d", &fp.Year, &fp.Quarter); err != nil {
		return FiscalPeriod{}, fmt.Errorf("parse fiscal period %q: %w", s, err)
	}
	if err := validateQuarter(fp.Quarter); err != nil {
		return FiscalPeriod{}, err
	}
	return fp, nil
}

func (fc FiscalCalendar) startMonth() time.Month {
	if fc.StartMonth < time.January || fc.StartMonth > time.December {
		return DefaultFiscalCalendar.StartMonth
	}
	return fc.StartMonth
}

// firstMonth returns the calendar month that opens the fiscal year.
func (fc FiscalCalendar) firstMonth(fiscalYear int) YearMonth {
	start := fc.startMonth()
	if start == time.January {
		return YearMonth{Year: fiscalYear, Month: start}
	}
	return YearMonth{Year: fiscalYear - 1, Month: start}
}

// YearOf returns the fiscal year containing d.
func (fc FiscalCalendar) YearOf(d Date) int {
	start := fc.startMonth()
	if start != time.January && d.Month() >= start {
		return d.Year() + 1
	}
	return d.Year()
}

// QuarterOf returns the fiscal quarter (1-4) containing d.
func (fc FiscalCalendar) QuarterOf(d Date) int {
	offset := (int(d.Month()) - int(fc.startMonth()) + 12) % 12
	return offset/3 + 1
}

// PeriodOf returns the fiscal year and quarter containing d.
func (fc FiscalCalendar) PeriodOf(d Date) FiscalPeriod {
	return FiscalPeriod{Year: fc.YearOf(d), Quarter: fc.QuarterOf(d)}
}

// QuarterRange returns the dates covered by a fiscal quarter. The end of each
// quarter comes from the real month length, so a quarter ending in February
// ends on the 29th in leap years.
func (fc FiscalCalendar) QuarterRange(fiscalYear, quarter int) (Period, error) {
	if err := validateQuarter(quarter); err != nil {
		return Period{}, err
	}
	first := fc.firstMonth(fiscalYear).AddMonths((quarter - 1) * 3)
	return Period{Start: first.FirstDay(), End: first.AddMonths(2).LastDay()}, nil
}

// YearRange returns the dates covered by a fiscal year.
func (fc FiscalCalendar) YearRange(fiscalYear int) Period {
	first := fc.firstMonth(fiscalYear)
	return Period{Start: first.FirstDay(), End: first.AddMonths(11).LastDay()}
}

func validateQuarter(quarter int) error {
	if quarter < 1 || quarter > 4 {
		return &InvalidQuarterError{Quarter: quarter}
	}
	return nil
}

// Package-level helpers bound to DefaultFiscalCalendar.

func FiscalYearOf(d Date) int { return DefaultFiscalCalendar.YearOf(d) }
func FiscalQuarterOf(d Date) int { return DefaultFiscalCalendar.QuarterOf(d) }
func FiscalPeriodOf(d Date) FiscalPeriod { return DefaultFiscalCalendar.PeriodOf(d) }
func FiscalYearRange(fiscalYear int) Period {
	return DefaultFiscalCalendar.YearRange(fiscalYear)
}
func FiscalQuarterRange(fiscalYear, quarter int) (Period, error) {
	return DefaultFiscalCalendar.QuarterRange(fiscalYear, quarter)
}

// FiscalRange resolves a report window: the whole fiscal year when quarter is
// nil, otherwise the single quarter.
func FiscalRange(fiscalYear int, quarter *int) (Period, error) {
	if quarter == nil {
		return FiscalYearRange(fiscalYear), nil
	}
	return FiscalQuarterRange(fiscalYear, *quarter)
}
