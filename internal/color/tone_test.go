package color

import "testing"

func TestFrequencyFor(t *testing.T) {
	tests := []struct {
		label    Label
		expected uint16
	}{
		{Red, 262},
		{Yellow, 294},
		{Green, 330},
		{Magenta, 349},
		{Blue, 392},
		{Cyan, 440},
		{White, 523},
		{Dark, 196},
		{Undefined, 196},
		{Label(42), 196},
	}

	for _, tt := range tests {
		t.Run(tt.label.String(), func(t *testing.T) {
			if got := FrequencyFor(tt.label); got != tt.expected {
				t.Errorf("FrequencyFor(%s) = %d, want %d", tt.label, got, tt.expected)
			}
		})
	}
}

func TestLabel_Names(t *testing.T) {
	if Yellow.DisplayName() != "Amarelo" {
		t.Errorf("Yellow.DisplayName() = %s", Yellow.DisplayName())
	}
	if Label(42).String() != "undefined" {
		t.Errorf("unknown label should render as undefined, got %s", Label(42))
	}

	for _, l := range []Label{Undefined, Dark, White, Yellow, Magenta, Cyan, Red, Green, Blue} {
		parsed, ok := ParseLabel(l.String())
		if !ok || parsed != l {
			t.Errorf("ParseLabel(%q) = %v, %v", l.String(), parsed, ok)
		}
	}

	if Dark.Audible() || Undefined.Audible() || !Red.Audible() {
		t.Error("only Dark and Undefined are silent")
	}
}
