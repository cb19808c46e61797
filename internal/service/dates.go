package service

import (
	"regexp"
	"strings"
	"time"
)

// Stay dates are recognized in several written forms and normalized to
// YYYY-MM-DD. Years are never written by users, so the current year is
// assumed and rolled forward when the result would already be in the past.

const dateLayout = "2006-01-02"

// Checkout falls back to three nights after checkin when it is missing or
// does not follow it.
const defaultStayNights = 3

var monthNumbers = map[string]int{
	"january": 1, "jan": 1,
	"february": 2, "feb": 2,
	"march": 3, "mar": 3,
	"april": 4, "apr": 4,
	"may": 5,
	"june": 6, "jun": 6,
	"july": 7, "jul": 7,
	"august": 8, "aug": 8,
	"september": 9, "sep": 9, "sept": 9,
	"october": 10, "oct": 10,
	"november": 11, "nov": 11,
	"december": 12, "dec": 12,
}

const monthAlternation = `january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec`

var (
	// "6/15 - 6/20", "6/15-6/20"
	slashRangeRe = regexp.MustCompile(`(\d{1,2})/(\d{1,2})\s*-\s*(\d{1,2})/(\d{1,2})`)
	// "June 15-20", "June 15 - 20"
	monthDayRangeRe = regexp.MustCompile(`(?i)\b(` + monthAlternation + `)\s+(\d{1,2})\s*-\s*(\d{1,2})\b`)
	// "15 June - 20 June", "15 June - 20 July"
	dayMonthRangeRe = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(` + monthAlternation + `)\s*-\s*(\d{1,2})\s+(` + monthAlternation + `)\b`)
	// "06-15 to 06-20"
	dashRangeRe = regexp.MustCompile(`(?i)\b(\d{1,2})-(\d{1,2})\s+(?:to|through)\s+(\d{1,2})-(\d{1,2})\b`)
	// "check in 6/15", "arriving on 6/15"
	checkinRe = regexp.MustCompile(`(?i)(?:check[\s-]?in\b|checking\s+in|arriv\w*|\bstart\b)\D{0,12}?(\d{1,2})/(\d{1,2})`)
	// "check out 6/20", "leaving 6/20"
	checkoutRe = regexp.MustCompile(`(?i)(?:check[\s-]?out\b|checking\s+out|leav\w*|depart\w*|\bend\b)\D{0,12}?(\d{1,2})/(\d{1,2})`)
)

// matchDates runs the date cascade against the conversation text. The
// returned strings are normalized YYYY-MM-DD; ok is false when nothing in
// the text reads as a stay date.
func matchDates(text string, now time.Time) (checkin, checkout string, ok bool) {
	if in, out, found := matchDateRange(text, now); found {
		return in.Format(dateLayout), out.Format(dateLayout), true
	}

	inMatch := checkinRe.FindStringSubmatch(text)
	outMatch := checkoutRe.FindStringSubmatch(text)
	if inMatch == nil && outMatch == nil {
		return "", "", false
	}

	var in, out time.Time
	var haveIn, haveOut bool
	if inMatch != nil {
		in, haveIn = buildDate(atoi(inMatch[1]), atoi(inMatch[2]), now)
	}
	if outMatch != nil {
		out, haveOut = buildDate(atoi(outMatch[1]), atoi(outMatch[2]), now)
	}
	switch {
	case haveIn && haveOut:
	case haveIn:
		out = in.AddDate(0, 0, defaultStayNights)
	case haveOut:
		in = out.AddDate(0, 0, -defaultStayNights)
	default:
		return "", "", false
	}
	in, out = repairDatePair(in, out, now)
	return in.Format(dateLayout), out.Format(dateLayout), true
}

func matchDateRange(text string, now time.Time) (in, out time.Time, ok bool) {
	if m := slashRangeRe.FindStringSubmatch(text); m != nil {
		in, okIn := buildDate(atoi(m[1]), atoi(m[2]), now)
		out, okOut := buildDate(atoi(m[3]), atoi(m[4]), now)
		if okIn && okOut {
			in, out = repairDatePair(in, out, now)
			return in, out, true
		}
	}
	if m := dayMonthRangeRe.FindStringSubmatch(text); m != nil {
		in, okIn := buildDate(monthNumbers[strings.ToLower(m[2])], atoi(m[1]), now)
		out, okOut := buildDate(monthNumbers[strings.ToLower(m[4])], atoi(m[3]), now)
		if okIn && okOut {
			in, out = repairDatePair(in, out, now)
			return in, out, true
		}
	}
	if m := monthDayRangeRe.FindStringSubmatch(text); m != nil {
		month := monthNumbers[strings.ToLower(m[1])]
		in, okIn := buildDate(month, atoi(m[2]), now)
		out, okOut := buildDate(month, atoi(m[3]), now)
		if okIn && okOut {
			in, out = repairDatePair(in, out, now)
			return in, out, true
		}
	}
	if m := dashRangeRe.FindStringSubmatch(text); m != nil {
		in, okIn := buildDate(atoi(m[1]), atoi(m[2]), now)
		out, okOut := buildDate(atoi(m[3]), atoi(m[4]), now)
		if okIn && okOut {
			in, out = repairDatePair(in, out, now)
			return in, out, true
		}
	}
	return time.Time{}, time.Time{}, false
}

// buildDate validates month/day by round-tripping through time.Date, which
// silently normalizes out-of-range components.
func buildDate(month, day int, now time.Time) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(now.Year(), time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if int(d.Month()) != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

// repairDatePair enforces ordering and rolls past dates into next year.
func repairDatePair(in, out time.Time, now time.Time) (time.Time, time.Time) {
	if !out.After(in) {
		out = in.AddDate(0, 0, defaultStayNights)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if in.Before(today) {
		in = in.AddDate(1, 0, 0)
		out = out.AddDate(1, 0, 0)
	}
	return in, out
}

// Groups captured by the date patterns are one or two digits, so the
// conversion cannot fail.
func atoi(s string) int {
	n, _ := atoiGroup(s)
	return n
}
