package model

import "testing"

func TestLatestAttempt(t *testing.T) {
	q := &Quiz{}
	if q.LatestAttempt() != nil {
		t.Error("expected nil for quiz without attempts")
	}

	q.Attempts = []Attempt{
		{Score: 2, Total: 5},
		{Score: 4, Total: 5},
	}
	latest := q.LatestAttempt()
	if latest == nil || latest.Score != 4 {
		t.Errorf("LatestAttempt = %+v, want the last one", latest)
	}
}
