// Package format holds the display helpers shared by the profile and top plays embeds.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Helpers are the number and time renderers the play formatter depends on.
type Helpers struct {
	Number   func(n int64) string
	Relative func(epochSeconds int64) string
}

// DefaultHelpers renders numbers with thousands separators and times as
// Discord relative timestamps.
func DefaultHelpers() Helpers {
	return Helpers{Number: Number, Relative: DiscordRelative}
}

// Number renders n with thousands separators, e.g. 1,234,567.
func Number(n int64) string {
	return printer.Sprintf("%d", n)
}

// NumberPtr is Number with "N/A" for nil.
func NumberPtr(n *int64) string {
	if n == nil {
		return "N/A"
	}
	return Number(*n)
}

// Fixed renders v with d decimals, or "N/A" for nil.
func Fixed(v *float64, d int) string {
	if v == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*v, 'f', d, 64)
}

// BigNumber abbreviates n as 1.5K, 2M, 3.1B. The decimal is dropped when it is zero.
func BigNumber(n float64) string {
	abbrev := func(v float64, suffix string) string {
		return strings.TrimSuffix(strconv.FormatFloat(v, 'f', 1, 64), ".0") + suffix
	}
	switch {
	case n >= 1e9:
		return abbrev(n/1e9, "B")
	case n >= 1e6:
		return abbrev(n/1e6, "M")
	case n >= 1e3:
		return abbrev(n/1e3, "K")
	default:
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
}

// DiscordRelative renders a timestamp Discord shows as "3 days ago" in the
// reader's locale.
func DiscordRelative(epochSeconds int64) string {
	return fmt.Sprintf("<t:%d:R>", epochSeconds)
}

// TimeAgo renders the largest whole unit between t and now, e.g. "2 months ago".
// Months are 30 days and years 365.
func TimeAgo(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}
	sec := int64(d / time.Second)
	mins := sec / 60
	hr := mins / 60
	day := hr / 24
	month := day / 30
	year := day / 365

	unit := func(n int64, name string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s ago", name)
		}
		return fmt.Sprintf("%d %ss ago", n, name)
	}

	switch {
	case year > 0:
		return unit(year, "year")
	case month > 0:
		return unit(month, "month")
	case day > 0:
		return unit(day, "day")
	case hr > 0:
		return unit(hr, "hour")
	case mins > 0:
		return unit(mins, "minute")
	default:
		return unit(sec, "second")
	}
}

// TimeAgoFromEpoch is TimeAgo for epoch seconds measured against the wall clock.
func TimeAgoFromEpoch(epochSeconds int64) string {
	return TimeAgo(time.Unix(epochSeconds, 0), time.Now())
}
