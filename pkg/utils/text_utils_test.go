package utils

import "testing"

// TestWrapText basicfont 每个字符 7 像素宽
func TestWrapText(t *testing.T) {
	face := DefaultFace()

	tests := []struct {
		name     string
		input    string
		maxWidth float64
		want     []string
	}{
		{"fits", "Grow the doll", 200, []string{"Grow the doll"}},
		{"wraps on words", "Release before it touches the edge", 7 * 16, []string{"Release before", "it touches the", "edge"}},
		{"long word alone", "Matryoshka dolls", 7 * 5, []string{"Matryoshka", "dolls"}},
		{"no width", "abc", 0, []string{"abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapText(tt.input, face, tt.maxWidth)
			if len(got) != len(tt.want) {
				t.Fatalf("WrapText() = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestMeasureText(t *testing.T) {
	if w := MeasureText("abcd", DefaultFace()); w != 28 {
		t.Errorf("MeasureText = %v, want 28", w)
	}
	if w := MeasureText("", DefaultFace()); w != 0 {
		t.Errorf("MeasureText empty = %v, want 0", w)
	}
}
