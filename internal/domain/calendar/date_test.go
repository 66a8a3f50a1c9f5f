package calendar

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{"2024-02-29", Date{2024, time.February, 29}, false},
		{"2023-02-29", Date{}, true},
		{"2024-13-01", Date{}, true},
		{"15/03/2024", Date{}, true},
		{"", Date{}, true},
	}
	for _, tc := range tests {
		got, err := ParseDate(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseDate(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ParseDate(%q) err = %v, want ErrInvalidDate", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseDate(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseEventDate(t *testing.T) {
	tests := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{"2024-02-10", Date{2024, time.February, 10}, false},
		{"2024-02-10T18:30:00", Date{2024, time.February, 10}, false},
		{"2024-02-10T18:30", Date{2024, time.February, 10}, false},
		{"2024-02-10T18:30:00.250", Date{2024, time.February, 10}, false},
		{"2024-02-10T23:30:00-05:00", Date{2024, time.February, 10}, false},
		{"2024-02-10T00:15:00+13:00", Date{2024, time.February, 10}, false},
		{"2024-02-10T12:00:00Z", Date{2024, time.February, 10}, false},
		{"2024-02-10 09:00:00", Date{2024, time.February, 10}, false},
		{"2024-02-30T10:00:00", Date{}, true},
		{"2024-02-10T25:00:00", Date{}, true},
		{"2024-02-10X10:00", Date{}, true},
		{"10/02/2024 18:30", Date{}, true},
		{"", Date{}, true},
	}
	for _, tc := range tests {
		got, err := ParseEventDate(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseEventDate(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ParseEventDate(%q) err = %v, want ErrInvalidDate", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseEventDate(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestDate_Arithmetic(t *testing.T) {
	d := NewDate(2023, time.December, 31)
	if got := d.AddDays(1); got != NewDate(2024, time.January, 1) {
		t.Errorf("AddDays(1) = %s", got)
	}
	if got := NewDate(2024, time.March, 0); got != NewDate(2024, time.February, 29) {
		t.Errorf("day 0 of March = %s", got)
	}
	if !d.Before(d.AddDays(1)) || d.Before(d) || !d.AddDays(1).After(d) {
		t.Error("ordering is wrong")
	}
	if d.Weekday() != time.Sunday {
		t.Errorf("2023-12-31 weekday = %v, want Sunday", d.Weekday())
	}
}

// TestDateOf_KeepsLocalDay checks that a late-evening local time is not
// shifted to the next UTC day.
func TestDateOf_KeepsLocalDay(t *testing.T) {
	loc := time.FixedZone("NZDT", 13*3600)
	ts := time.Date(2024, time.January, 1, 0, 30, 0, 0, loc)
	if got := DateOf(ts); got != NewDate(2024, time.January, 1) {
		t.Errorf("DateOf = %s, want 2024-01-01", got)
	}
	if got := DateOf(ts.UTC()); got != NewDate(2023, time.December, 31) {
		t.Errorf("DateOf(UTC) = %s, want 2023-12-31", got)
	}
}

func TestDate_JSON(t *testing.T) {
	var v struct {
		Date Date `json:"date"`
	}
	if err := json.Unmarshal([]byte(`{"date":"2024-07-04"}`), &v); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if v.Date != NewDate(2024, time.July, 4) {
		t.Errorf("Date = %s", v.Date)
	}
	out, _ := json.Marshal(v)
	if string(out) != `{"date":"2024-07-04"}` {
		t.Errorf("Marshal = %s", out)
	}
	if err := json.Unmarshal([]byte(`{"date":"July 4"}`), &v); err == nil {
		t.Error("expected error for bad date")
	}
}

func TestDaysIn(t *testing.T) {
	if DaysIn(2024, time.February) != 29 || DaysIn(2100, time.February) != 28 || DaysIn(2024, time.December) != 31 {
		t.Error("DaysIn is wrong")
	}
}
