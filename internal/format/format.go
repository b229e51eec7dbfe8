// Package format renders timestamps, sizes and counts the way the dashboard
// shows them. Every function is pure.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	dateLayout     = "Jan 2, 2006"
	timeLayout     = "15:04:05"
	dateTimeLayout = dateLayout + " " + timeLayout
	// DateKeyLayout is the layout of timeline group keys.
	DateKeyLayout = "2006-01-02"
)

var printer = message.NewPrinter(language.English)

func in(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc)
}

// Date renders "Jan 15, 2024". A nil location means UTC.
func Date(t time.Time, loc *time.Location) string {
	return in(t, loc).Format(dateLayout)
}

// Time renders "14:30:05".
func Time(t time.Time, loc *time.Location) string {
	return in(t, loc).Format(timeLayout)
}

// DateTime renders "Jan 15, 2024 14:30:05".
func DateTime(t time.Time, loc *time.Location) string {
	return in(t, loc).Format(dateTimeLayout)
}

// DateKey renders the calendar date used to group timeline entries.
func DateKey(t time.Time, loc *time.Location) string {
	return in(t, loc).Format(DateKeyLayout)
}

// Relative renders how long ago t was relative to now. Anything older than
// thirty days falls back to the absolute date.
func Relative(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour") + " ago"
	case d < 30*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day") + " ago"
	default:
		return Date(t, time.UTC)
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}

var sizeUnits = []string{"KB", "MB", "GB", "TB", "PB"}

// Size renders a byte count with 1024-based units and one decimal.
func Size(bytes int64) string {
	if bytes < 1024 {
		return fmt.Sprintf("%d B", bytes)
	}
	value := float64(bytes)
	unit := ""
	for _, u := range sizeUnits {
		value /= 1024
		unit = u
		if value < 1024 {
			break
		}
	}
	return fmt.Sprintf("%.1f %s", value, unit)
}

// Number renders an integer with thousands separators.
func Number(n int64) string {
	return printer.Sprintf("%d", n)
}

// Percent renders a percentage rounded to one decimal, dropping a trailing ".0".
func Percent(p float64) string {
	rounded := math.Round(p*10) / 10
	s := strconv.FormatFloat(rounded, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0") + "%"
}
