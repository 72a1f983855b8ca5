package lotfolio

import (
	"fmt"
	"strings"
)

// Window is a fixed lookback period used by the performance calculator and by
// the relative slices of the rate table.
type Window int

const (
	Day1 Window = iota
	Week1
	Month1
	Month3
	YTD
	Year1
	Year3
	Year5
)

// Windows lists all lookback windows in ascending length order.
var Windows = []Window{Day1, Week1, Month1, Month3, YTD, Year1, Year3, Year5}

func (w Window) String() string {
	switch w {
	case Day1:
		return "1d"
	case Week1:
		return "1w"
	case Month1:
		return "1m"
	case Month3:
		return "3m"
	case YTD:
		return "ytd"
	case Year1:
		return "1y"
	case Year3:
		return "3y"
	case Year5:
		return "5y"
	default:
		panic(fmt.Sprintf("unknown window %d", int(w)))
	}
}

// ParseWindow parses a string like "1w" or "ytd" into a Window.
func ParseWindow(s string) (Window, error) {
	switch strings.ToLower(s) {
	case "1d", "day":
		return Day1, nil
	case "1w", "week":
		return Week1, nil
	case "1m", "month":
		return Month1, nil
	case "3m", "quarter":
		return Month3, nil
	case "ytd":
		return YTD, nil
	case "1y", "year":
		return Year1, nil
	case "3y":
		return Year3, nil
	case "5y":
		return Year5, nil
	default:
		return 0, fmt.Errorf("unknown window: %q", s)
	}
}

// Start returns the date the window looks back to, from the given day.
// YTD starts on January 1st of the same year.
func (w Window) Start(from Date) Date {
	switch w {
	case Day1:
		return from.Add(-1)
	case Week1:
		return from.Add(-7)
	case Month1:
		return from.AddMonth(-1)
	case Month3:
		return from.AddMonth(-3)
	case YTD:
		return from.StartOfYear()
	case Year1:
		return from.AddYear(-1)
	case Year3:
		return from.AddYear(-3)
	case Year5:
		return from.AddYear(-5)
	default:
		panic(fmt.Sprintf("unknown window %d", int(w)))
	}
}
