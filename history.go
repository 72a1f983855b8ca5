package lotfolio

import (
	"iter"
	"slices"
	"sort"
)

// History stores a chronological series of float values keyed by date, with
// unique dates and a sorted order maintained on every append. It backs both
// the per-security price histories and the CPI index series.
type History struct {
	days   []Date
	values []float64
}

// Len returns the number of points in the history.
func (h *History) Len() int { return len(h.days) }

// Latest returns the latest date and value, or zero values when empty.
func (h *History) Latest() (day Date, value float64) {
	last := len(h.days) - 1
	if last < 0 {
		return Date{}, 0
	}
	return h.days[last], h.values[last]
}

// First returns the earliest date and value, or zero values when empty.
func (h *History) First() (day Date, value float64) {
	if len(h.days) == 0 {
		return Date{}, 0
	}
	return h.days[0], h.values[0]
}

type chronological struct{ *History }

func (s chronological) Len() int           { return len(s.days) }
func (s chronological) Less(i, j int) bool { return s.days[i].Before(s.days[j]) }
func (s chronological) Swap(i, j int) {
	s.days[i], s.days[j] = s.days[j], s.days[i]
	s.values[i], s.values[j] = s.values[j], s.values[i]
}

// Append adds a point to the history. An existing value at that date is
// overwritten, giving priority to the latest data.
func (h *History) Append(on Date, v float64) *History {
	if i := slices.Index(h.days, on); i >= 0 {
		h.values[i] = v
		return h
	}
	h.days, h.values = append(h.days, on), append(h.values, v)
	sort.Sort(chronological{h})
	return h
}

// Values iterates over all date/value pairs in chronological order.
func (h *History) Values() iter.Seq2[Date, float64] {
	return func(yield func(Date, float64) bool) {
		for i, on := range h.days {
			if !yield(on, h.values[i]) {
				return
			}
		}
	}
}

// Get returns the value recorded exactly at day.
func (h *History) Get(day Date) (float64, bool) {
	if i := slices.Index(h.days, day); i >= 0 {
		return h.values[i], true
	}
	return 0, false
}

// AsOf returns the value on a given day, or the most recent value before it.
func (h *History) AsOf(day Date) (float64, bool) {
	i, found := slices.BinarySearchFunc(h.days, day, func(d, t Date) int {
		if d.After(t) {
			return 1
		}
		if d.Before(t) {
			return -1
		}
		return 0
	})
	if found {
		return h.values[i], true
	}
	// i is the insertion index; the last entry before day sits at i-1.
	if i == 0 {
		return 0, false
	}
	return h.values[i-1], true
}

// OnOrAfter returns the first value recorded on day or after it.
func (h *History) OnOrAfter(day Date) (Date, float64, bool) {
	for i, on := range h.days {
		if !on.Before(day) {
			return on, h.values[i], true
		}
	}
	return Date{}, 0, false
}
