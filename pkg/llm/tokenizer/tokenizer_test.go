package tokenizer

import "testing"

func TestEstimate(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"abcdefgh", 2},
	}
	for _, tt := range tests {
		if got := Estimate(tt.text); got != tt.want {
			t.Errorf("Estimate(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestNilTokenizerFallsBackToEstimate(t *testing.T) {
	var tok *Tokenizer
	text := `{"risk": {"budget_overrun": "high"}}`
	if got, want := tok.CountTokens(text), Estimate(text); got != want {
		t.Errorf("CountTokens on nil tokenizer = %d, want %d", got, want)
	}
}
