package label

import "testing"

func TestLabel(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Tag
	}{
		{"recall is negative", "Company X recalls flagship product", Negative},
		{"lawsuit is negative", "Supplier hit with lawsuit over defects", Negative},
		{"production cut is negative", "Company X cuts production amid weak demand", Negative},
		{"zh fine is negative", "台積電遭罰款 主管機關開鍘", Negative},
		{"zh recall is negative", "車廠宣布召回三萬輛新車", Negative},
		{"expansion is positive", "Company Y announces expansion into new markets", Positive},
		{"record high is positive", "Quarterly revenue hits record high", Positive},
		{"zh growth is positive", "營收創新高 年增三成", Positive},
		{"plain headline is neutral", "Company Z holds annual shareholder meeting", Neutral},
		{"empty is neutral", "", Neutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Label(tt.text); got != tt.want {
				t.Errorf("Label(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestLabel_NegativePrecedence(t *testing.T) {
	// Mixed headlines carry both polarities; negative wins.
	texts := []string{
		"Record profit but recall announced for flagship line",
		"營收創新高 但遭罰款三億元",
	}
	for _, text := range texts {
		if got := Label(text); got != Negative {
			t.Errorf("Label(%q) = %v, want %v", text, got, Negative)
		}
	}
}

func TestLabel_CaseInsensitive(t *testing.T) {
	if got := Label("COMPANY X RECALLS PRODUCT"); got != Negative {
		t.Errorf("Label upper-case = %v, want %v", got, Negative)
	}
}
