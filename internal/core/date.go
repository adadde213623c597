package core

import (
	"fmt"
	"sort"
	"time"
)

// French month abbreviations, indexed by time.Month.
var frenchMonths = [...]string{
	time.January:   "Jan.",
	time.February:  "Fév.",
	time.March:     "Mar.",
	time.April:     "Avr.",
	time.May:       "Mai",
	time.June:      "Juin",
	time.July:      "Juil.",
	time.August:    "Aoû.",
	time.September: "Sep.",
	time.October:   "Oct.",
	time.November:  "Nov.",
	time.December:  "Déc.",
}

// ValidateISODate checks that s is a real calendar date in YYYY-MM-DD form.
func ValidateISODate(s string) error {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// FormatDate renders an ISO date for display, e.g. "2004-04-04" → "04 Avr. 04".
// Unparseable dates are returned untouched rather than hidden from the list.
func FormatDate(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return fmt.Sprintf("%02d %s %02d", t.Day(), frenchMonths[t.Month()], t.Year()%100)
}

// SortAntiChronological orders bills newest-date-first, in place. Zero-padded
// ISO dates compare lexicographically the same as chronologically, so a plain
// string comparison is enough. The sort is stable: bills sharing a date keep
// the store's relative order.
func SortAntiChronological(bills []Bill) {
	sort.SliceStable(bills, func(i, j int) bool {
		return bills[i].Date > bills[j].Date
	})
}
