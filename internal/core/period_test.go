package core

import (
	"testing"
	"time"
)

func TestPeriodOf(t *testing.T) {
	got := PeriodOf(time.Date(2024, 6, 17, 13, 45, 0, 0, time.UTC))
	want := Period{Year: 2024, Month: time.June}
	if got != want {
		t.Errorf("PeriodOf() = %v, want %v", got, want)
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Period
		wantErr bool
	}{
		{name: "valid", input: "2024-03", want: Period{Year: 2024, Month: time.March}},
		{name: "december", input: "2023-12", want: Period{Year: 2023, Month: time.December}},
		{name: "bad month", input: "2024-13", wantErr: true},
		{name: "garbage", input: "not-a-period", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePeriod(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePeriod(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParsePeriod(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPeriodString(t *testing.T) {
	p := Period{Year: 2024, Month: time.February}
	if got := p.String(); got != "2024-02" {
		t.Errorf("String() = %q, want %q", got, "2024-02")
	}
}

func TestPeriodNext(t *testing.T) {
	tests := []struct {
		name string
		p    Period
		want Period
	}{
		{
			name: "mid year",
			p:    Period{Year: 2024, Month: time.June},
			want: Period{Year: 2024, Month: time.July},
		},
		{
			name: "december wraps to january",
			p:    Period{Year: 2023, Month: time.December},
			want: Period{Year: 2024, Month: time.January},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Next(); got != tt.want {
				t.Errorf("Next() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPeriodCompare(t *testing.T) {
	jan := Period{Year: 2024, Month: time.January}
	feb := Period{Year: 2024, Month: time.February}
	prevDec := Period{Year: 2023, Month: time.December}

	if !jan.Before(feb) {
		t.Error("2024-01 should be before 2024-02")
	}
	if !feb.After(jan) {
		t.Error("2024-02 should be after 2024-01")
	}
	if !prevDec.Before(jan) {
		t.Error("2023-12 should be before 2024-01")
	}
	if jan.Compare(jan) != 0 {
		t.Error("a period should compare equal to itself")
	}
}

func TestPeriodsBetween(t *testing.T) {
	tests := []struct {
		name    string
		after   Period
		through Period
		want    []Period
	}{
		{
			name:    "three elapsed months",
			after:   Period{Year: 2024, Month: time.January},
			through: Period{Year: 2024, Month: time.April},
			want: []Period{
				{Year: 2024, Month: time.February},
				{Year: 2024, Month: time.March},
				{Year: 2024, Month: time.April},
			},
		},
		{
			name:    "spans year boundary",
			after:   Period{Year: 2023, Month: time.November},
			through: Period{Year: 2024, Month: time.February},
			want: []Period{
				{Year: 2023, Month: time.December},
				{Year: 2024, Month: time.January},
				{Year: 2024, Month: time.February},
			},
		},
		{
			name:    "same period yields nothing",
			after:   Period{Year: 2024, Month: time.March},
			through: Period{Year: 2024, Month: time.March},
			want:    nil,
		},
		{
			name:    "through before after yields nothing",
			after:   Period{Year: 2024, Month: time.May},
			through: Period{Year: 2024, Month: time.March},
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PeriodsBetween(tt.after, tt.through)
			if len(got) != len(tt.want) {
				t.Fatalf("PeriodsBetween() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("PeriodsBetween()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPeriodStringOrderMatchesChronology(t *testing.T) {
	// The storage layer compares last_funded lexicographically.
	a := Period{Year: 2023, Month: time.December}
	b := Period{Year: 2024, Month: time.January}
	if !(a.String() < b.String()) {
		t.Errorf("expected %q < %q", a.String(), b.String())
	}
}
