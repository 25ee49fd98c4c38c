package systems

import "testing"

func TestFormatClock(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{9, "0:09"},
		{60, "1:00"},
		{125, "2:05"},
		{-3, "0:00"},
	}
	for _, tt := range tests {
		if got := FormatClock(tt.seconds); got != tt.want {
			t.Errorf("FormatClock(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestTimeFraction(t *testing.T) {
	if got := TimeFraction(30, 60); got != 0.5 {
		t.Errorf("TimeFraction(30, 60) = %v", got)
	}
	if got := TimeFraction(90, 60); got != 1 {
		t.Errorf("fraction should clamp to 1, got %v", got)
	}
	if got := TimeFraction(10, 0); got != 0 {
		t.Errorf("zero limit should give 0, got %v", got)
	}
}
