package domain

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// Period is an inclusive range of calendar dates in UTC.
type Period struct {
	Start time.Time
	End   time.Time
}

func NewPeriod(start, end time.Time) (Period, error) {
	p := Period{Start: truncateDay(start), End: truncateDay(end)}
	if p.End.Before(p.Start) {
		return Period{}, ErrInvalidPeriod
	}
	return p, nil
}

func ParsePeriod(start, end string) (Period, error) {
	s, err := ParseDate(start)
	if err != nil {
		return Period{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return Period{}, err
	}
	return NewPeriod(s, e)
}

// ClosingPeriod returns the bulk billing period ending at closing. It starts
// on startDay of the same month when closing is on or after startDay,
// otherwise on startDay of the previous month.
func ClosingPeriod(closing time.Time, startDay int) Period {
	closing = truncateDay(closing)
	year, month, day := closing.Date()
	if day < startDay {
		month--
		if month < time.January {
			month = time.December
			year--
		}
	}
	return Period{
		Start: time.Date(year, month, startDay, 0, 0, 0, 0, time.UTC),
		End:   closing,
	}
}

// LastClosingDate returns the latest closing day strictly before today. The
// closing day is the day before startDay, so the period it closes is complete.
func LastClosingDate(today time.Time, startDay int) time.Time {
	today = truncateDay(today)
	year, month, _ := today.Date()
	closing := time.Date(year, month, startDay, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	if !closing.Before(today) {
		closing = time.Date(year, month-1, startDay, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	}
	return closing
}

// ReceiptDate is receiptDay of the month the period ends in.
func (p Period) ReceiptDate(receiptDay int) time.Time {
	year, month, _ := p.End.Date()
	return time.Date(year, month, receiptDay, 0, 0, 0, 0, time.UTC)
}

func (p Period) String() string {
	return fmt.Sprintf("%s:%s", p.Start.Format(DateLayout), p.End.Format(DateLayout))
}

func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

func truncateDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
