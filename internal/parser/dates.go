package parser

import (
	"regexp"
	"strings"
	"time"
)

var isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// slashFormats are tried for slash- or dash-delimited dates, US order first.
var slashFormats = []string{
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"01-02-2006",
	"1-2-2006",
	"01-02-06",
}

// looseFormats are the generic fallback for everything else.
var looseFormats = []string{
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"2006/01/02",
	"20060102",
	"Jan 2",
	"2 Jan",
}

// NormalizeDate coerces a model- or OCR-reported date into YYYY-MM-DD.
// The cascade is: already ISO, slash-delimited with 2- or 4-digit year,
// then a set of loose formats. Returns nil when nothing matches, so the
// transaction survives with an unknown date instead of being dropped.
func NormalizeDate(raw *string) *string {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return nil
	}

	if isoDateRe.MatchString(s) {
		if _, err := time.Parse("2006-01-02", s); err == nil {
			return &s
		}
		return nil
	}

	for _, f := range slashFormats {
		if t, err := time.Parse(f, s); err == nil {
			return isoString(fixCentury(t))
		}
	}
	for _, f := range looseFormats {
		if t, err := time.Parse(f, s); err == nil {
			// Year-less formats parse into year 0; leave those alone
			// rather than inventing a year.
			if t.Year() == 0 {
				return nil
			}
			return isoString(fixCentury(t))
		}
	}
	return nil
}

func fixCentury(t time.Time) time.Time {
	if t.Year() < 100 {
		return t.AddDate(2000, 0, 0)
	}
	return t
}

func isoString(t time.Time) *string {
	s := t.Format("2006-01-02")
	return &s
}
