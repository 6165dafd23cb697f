package service

import (
	"testing"
	"time"
)

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantOK  bool
	}{
		{"hours minutes seconds", "PT1H2M3S", 3723, true},
		{"minutes seconds", "PT4M59S", 299, true},
		{"exactly five minutes", "PT5M", 300, true},
		{"seconds only", "PT45S", 45, true},
		{"hours only", "PT2H", 7200, true},
		{"empty designator", "PT", 0, false},
		{"missing prefix", "1H2M", 0, false},
		{"days not supported", "P1DT2H", 0, false},
		{"garbage", "not a duration", 0, false},
		{"empty string", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseISODuration(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseISODuration(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseISODuration(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestEnglishLetterRatio(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  float64
	}{
		{"all letters", "Golang", 1.0},
		{"empty", "", 0},
		{"whitespace ignored", "Go  Lang", 1.0},
		{"exactly seventy percent", "abcdefg123", 0.7},
		{"digits and symbols", "12345", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnglishLetterRatio(tt.title)
			if got != tt.want {
				t.Errorf("EnglishLetterRatio(%q) = %v, want %v", tt.title, got, tt.want)
			}
		})
	}
}

func TestPassesEnglishFilter(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  bool
	}{
		{"plain english title", "Learn Go in One Video", true},
		{"exactly at cutoff rejected", "abcdefg123", false},
		{"just above cutoff", "abcdefgh12", true},
		{"mostly non ascii", "Go 言語の入門講座です", false},
		{"empty title", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PassesEnglishFilter(tt.title); got != tt.want {
				t.Errorf("PassesEnglishFilter(%q) = %v, want %v", tt.title, got, tt.want)
			}
		})
	}
}

func TestRankScore(t *testing.T) {
	// 0.4*1000 + 0.3*(100/1000)*1000 + 0.2*50 + 0 = 440
	got := RankScore(1000, 100, 50, time.Time{})
	if got != 440 {
		t.Errorf("RankScore = %v, want 440", got)
	}
}

func TestRankScoreZeroViews(t *testing.T) {
	// 播放数为 0 时点赞率项不计入，不能除零
	published := time.Unix(86400*100, 0).UTC()
	got := RankScore(0, 500, 10, published)
	want := 0.2*10 + 0.1*100
	if got != want {
		t.Errorf("RankScore = %v, want %v", got, want)
	}
}

func TestRankScoreOrdering(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	popular := RankScore(100000, 5000, 800, now)
	obscure := RankScore(300, 10, 2, now)
	if popular <= obscure {
		t.Errorf("popular video should outrank obscure one: %v <= %v", popular, obscure)
	}
}

func TestIsVideoHost(t *testing.T) {
	tests := []struct {
		link string
		want bool
	}{
		{"https://www.youtube.com/watch?v=abc", true},
		{"https://youtu.be/abc", true},
		{"https://vimeo.com/12345", true},
		{"https://www.dailymotion.com/video/x1", true},
		{"https://go.dev/blog/error-handling", false},
		{"https://medium.com/some-article", false},
	}

	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			if got := IsVideoHost(tt.link); got != tt.want {
				t.Errorf("IsVideoHost(%q) = %v, want %v", tt.link, got, tt.want)
			}
		})
	}
}

func TestSearchCacheKeyDeterministic(t *testing.T) {
	a := searchCacheKey([]string{"go tutorial"}, []string{"go intro"}, 2, 2)
	b := searchCacheKey([]string{"go tutorial"}, []string{"go intro"}, 2, 2)
	if a != b {
		t.Errorf("same inputs produced different cache keys: %q vs %q", a, b)
	}
	c := searchCacheKey([]string{"go tutorial"}, []string{"go intro"}, 2, 3)
	if a == c {
		t.Error("different counts should produce different cache keys")
	}
}
