package gradient

import (
	"regexp"
	"testing"
)

var hexRe = regexp.MustCompile(`^#[0-9a-f]{6}$`)

func TestTempColor_Format(t *testing.T) {
	for _, temp := range []float64{-40, -20, 0, 32.5, 68, 88, 115, 140} {
		got := TempColor(temp)
		if !hexRe.MatchString(got) {
			t.Errorf("TempColor(%v) = %q, not a hex color", temp, got)
		}
	}
}

func TestTempColor_Clamps(t *testing.T) {
	if TempColor(-100) != TempColor(-20) {
		t.Error("cold end should clamp to the first stop")
	}
	if TempColor(200) != TempColor(115) {
		t.Error("hot end should clamp to the last stop")
	}
}

func TestTempColor_ExactStops(t *testing.T) {
	tests := []struct {
		temp float64
		want string
	}{
		{-20, "#311b92"},
		{32, "#4dd0e1"},
		{68, "#d4e157"},
		{115, "#b71c1c"},
	}
	for _, tt := range tests {
		if got := TempColor(tt.temp); got != tt.want {
			t.Errorf("TempColor(%v) = %q, want %q", tt.temp, got, tt.want)
		}
	}
}

func TestTempColor_InterpolatesBetweenStops(t *testing.T) {
	// Midpoint of the 88 (#ff7043) to 100 (#e53935) segment.
	got := TempColor(94)
	if got == TempColor(88) || got == TempColor(100) {
		t.Errorf("TempColor(94) = %q, should differ from both endpoints", got)
	}
	if got != "#f2553c" {
		t.Errorf("TempColor(94) = %q, want #f2553c", got)
	}
}
