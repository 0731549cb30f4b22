package core

import (
	"strings"
	"time"
)

// Layouts for the two date input channels: the free-text field and the
// calendar picker.
const (
	TextDateLayout   = "02/01/2006"
	PickerDateLayout = "2006-01-02"
)

// Date is a calendar date without a time component.
type Date struct {
	time.Time
}

// NewDate creates a new Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses either input representation: DD/MM/YYYY free text or
// the YYYY-MM-DD picker value.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	for _, layout := range []string{TextDateLayout, PickerDateLayout} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, ErrInvalidDate
}

// ResolveDate merges the two input channels of a dual date field into the
// single canonical value. The free-text field wins when it parses; a text
// value that fails to parse falls back to the picker's last successful
// selection, so the canonical date only ever changes on a successful
// parse.
func ResolveDate(text, picker string) (Date, error) {
	if strings.TrimSpace(text) != "" {
		if d, err := ParseDate(text); err == nil {
			return d, nil
		}
	}
	if strings.TrimSpace(picker) != "" {
		return ParseDate(picker)
	}
	return Date{}, ErrInvalidDate
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// After reports whether d falls on a later calendar day than other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// Text renders the date in the free-text field format.
func (d Date) Text() string {
	return d.Format(TextDateLayout)
}

// ISO renders the date in the calendar-picker format, also used for
// storage and ordering.
func (d Date) ISO() string {
	return d.Format(PickerDateLayout)
}
