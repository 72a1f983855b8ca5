package lotfolio

import (
	"testing"
	"time"
)

func TestNewDateNormalizes(t *testing.T) {
	testCases := []struct {
		name string
		got  Date
		want Date
	}{
		{"day zero is last of previous month", NewDate(2025, time.March, 0), NewDate(2025, time.February, 28)},
		{"day overflow rolls the month", NewDate(2025, time.January, 32), NewDate(2025, time.February, 1)},
		{"month overflow rolls the year", NewDate(2025, time.December+1, 1), NewDate(2026, time.January, 1)},
		{"leap february", NewDate(2024, time.February, 29), NewDate(2024, time.February, 29)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %s, want %s", tc.got, tc.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	testCases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2025-07-01", want: NewDate(2025, time.July, 1)},
		{in: "2025-7-1", want: NewDate(2025, time.July, 1)},
		{in: " 2025-07-01 ", want: NewDate(2025, time.July, 1)},
		{in: "today", want: Today()},
		{in: "01/07/2025", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseDate(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseDate(%q) = %s, want error", tc.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) failed: %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tc.in, got, tc.want)
			}
		})
	}
}

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2025, time.January, 31)

	if got := d.Add(1); got != NewDate(2025, time.February, 1) {
		t.Errorf("Add(1) = %s", got)
	}
	if got := d.AddMonth(1); got != NewDate(2025, time.March, 3) {
		// time.Date normalization: January 31 plus a month overflows February
		t.Errorf("AddMonth(1) = %s", got)
	}
	if got := d.AddYear(-1); got != NewDate(2024, time.January, 31) {
		t.Errorf("AddYear(-1) = %s", got)
	}
	if got := d.StartOfYear(); got != NewDate(2025, time.January, 1) {
		t.Errorf("StartOfYear() = %s", got)
	}
	if got := NewDate(2025, time.February, 10).Days(NewDate(2025, time.January, 10)); got != 31 {
		t.Errorf("Days() = %d, want 31", got)
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2025, time.July, 1)
	data, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() failed: %v", err)
	}
	if string(data) != `"2025-07-01"` {
		t.Errorf("MarshalJSON() = %s", data)
	}
	var back Date
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON() failed: %v", err)
	}
	if back != d {
		t.Errorf("round trip = %s, want %s", back, d)
	}
}

func TestWindowStart(t *testing.T) {
	from := NewDate(2025, time.June, 30)
	testCases := []struct {
		w    Window
		want Date
	}{
		{Day1, NewDate(2025, time.June, 29)},
		{Week1, NewDate(2025, time.June, 23)},
		{Month1, NewDate(2025, time.May, 30)},
		{Month3, NewDate(2025, time.March, 30)},
		{YTD, NewDate(2025, time.January, 1)},
		{Year1, NewDate(2024, time.June, 30)},
		{Year5, NewDate(2020, time.June, 30)},
	}
	for _, tc := range testCases {
		t.Run(tc.w.String(), func(t *testing.T) {
			if got := tc.w.Start(from); got != tc.want {
				t.Errorf("Start(%s) = %s, want %s", from, got, tc.want)
			}
		})
	}
}

func TestParseWindow(t *testing.T) {
	for _, w := range Windows {
		got, err := ParseWindow(w.String())
		if err != nil {
			t.Errorf("ParseWindow(%q) failed: %v", w, err)
		}
		if got != w {
			t.Errorf("ParseWindow(%q) = %s", w, got)
		}
	}
	if _, err := ParseWindow("2w"); err == nil {
		t.Error("ParseWindow accepted an unknown window")
	}
}
