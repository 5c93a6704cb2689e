package contracts

import (
	"math"
	"testing"
	"time"
)

func TestJudgment_Clamp(t *testing.T) {
	tests := []struct {
		name string
		in   Judgment
		want Judgment
	}{
		{
			name: "in range is untouched",
			in:   Judgment{Direction: -1, Severity: 3, Confidence: 0.55, Horizon: HorizonShort},
			want: Judgment{Direction: -1, Severity: 3, Confidence: 0.55, Horizon: HorizonShort},
		},
		{
			name: "overshoot is clamped",
			in:   Judgment{Direction: 2, Severity: 9, Confidence: 1.7, Horizon: HorizonLong},
			want: Judgment{Direction: 1, Severity: 5, Confidence: 1.0, Horizon: HorizonLong},
		},
		{
			name: "undershoot is clamped",
			in:   Judgment{Direction: -3, Severity: 0, Confidence: -0.2, Horizon: HorizonMedium},
			want: Judgment{Direction: -1, Severity: 1, Confidence: 0, Horizon: HorizonMedium},
		},
		{
			name: "unknown horizon resets to short",
			in:   Judgment{Direction: 0, Severity: 1, Confidence: 0.3, Horizon: "someday"},
			want: Judgment{Direction: 0, Severity: 1, Confidence: 0.3, Horizon: HorizonShort},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Clamp()
			if got != tt.want {
				t.Errorf("Clamp() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAgeDecay(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		publishedAt string
		want        float64
	}{
		{"fresh event has full weight", "2026-03-10 12:00:00", 1.0},
		{"one half-life", "2026-03-09 12:00:00", 0.5},
		{"two half-lives", "2026-03-08 12:00:00", 0.25},
		{"twelve hours", "2026-03-10 00:00:00", math.Pow(0.5, 0.5)},
		{"future timestamp clamps to one", "2026-03-11 12:00:00", 1.0},
		{"unparsable fails open to one", "yesterday-ish", 1.0},
		{"empty fails open to one", "", 1.0},
	}

	epsilon := 1e-9
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AgeDecay(tt.publishedAt, now)
			if math.Abs(got-tt.want) > epsilon {
				t.Errorf("AgeDecay(%q) = %v, want %v", tt.publishedAt, got, tt.want)
			}
		})
	}
}

func TestNewEvaluatedEvent_Scores(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ev := Event{
		Title:       "Company X recalls flagship product",
		Source:      "TWSE",
		PublishedAt: "2026-03-09 12:00:00", // exactly one half-life old
	}
	j := Judgment{Direction: -1, Severity: 3, Confidence: 0.55, Horizon: HorizonShort}

	got := NewEvaluatedEvent(ev, j, now)

	wantScore := -1.65
	wantBase := 1.65 * 0.5 * (0.6 + 0.4*0.55)

	epsilon := 1e-9
	if math.Abs(got.EventScore-wantScore) > epsilon {
		t.Errorf("EventScore = %v, want %v", got.EventScore, wantScore)
	}
	if math.Abs(got.BaseScore-wantBase) > epsilon {
		t.Errorf("BaseScore = %v, want %v", got.BaseScore, wantBase)
	}
}

func TestParseEventTime(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"2026-03-10 12:00:00", true},
		{"2026-03-10T12:00:00", true},
		{"2026-03-10T12:00:00Z", true},
		{"2026-03-10", true},
		{"10/03/2026", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if _, ok := ParseEventTime(tt.in); ok != tt.ok {
				t.Errorf("ParseEventTime(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
		})
	}
}
