package service

import "testing"

func TestSentimentLabel(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  string
	}{
		{"positive", 0.42, "positive"},
		{"barely positive", 0.01, "positive"},
		{"negative", -0.3, "negative"},
		{"zero is neutral", 0, "neutral"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SentimentLabel(tt.score); got != tt.want {
				t.Errorf("SentimentLabel(%v) = %q, want %q", tt.score, got, tt.want)
			}
		})
	}
}

func TestSanitizeComments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text unchanged", "great video, thanks", "great video, thanks"},
		{"emoji stripped", "great video 🔥🔥", "great video"},
		{"newlines collapsed", "line one\n\nline two", "line one line two"},
		{"non ascii replaced", "très bien", "tr s bien"},
		{"leading trailing whitespace", "  hello  ", "hello"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeComments(tt.input); got != tt.want {
				t.Errorf("SanitizeComments(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
