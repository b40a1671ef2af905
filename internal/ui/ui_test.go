package ui

import "testing"

func TestColor(t *testing.T) {
	Init(false)
	defer Init(true)

	got := Color("hello", FgCyan)
	want := FgCyan + "hello" + Reset
	if got != want {
		t.Errorf("Color() = %q, want %q", got, want)
	}
}

func TestColorDisabled(t *testing.T) {
	Init(true)

	if got := Color("hello", FgGreen); got != "hello" {
		t.Errorf("expected plain string with colors disabled, got %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{in: 0, want: "0"},
		{in: 999, want: "999"},
		{in: 1000, want: "1,000"},
		{in: 8324, want: "8,324"},
		{in: 1234567, want: "1,234,567"},
	}

	for _, tt := range tests {
		if got := formatNumber(tt.in); got != tt.want {
			t.Errorf("formatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
