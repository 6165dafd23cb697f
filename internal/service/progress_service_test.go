package service

import (
	"errors"
	"learnpath_backend/internal/model"
	"learnpath_backend/internal/util"
	"reflect"
	"testing"
)

func sampleQuestions(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{
			Type:          "multiple_choice",
			Prompt:        "q",
			Options:       []string{"right", "wrong1", "wrong2", "wrong3"},
			CorrectAnswer: "right",
		}
	}
	return qs
}

func TestScoreQuiz(t *testing.T) {
	qs := sampleQuestions(5)

	tests := []struct {
		name    string
		answers map[int]string
		want    int
	}{
		{"all correct", map[int]string{0: "right", 1: "right", 2: "right", 3: "right", 4: "right"}, 5},
		{"partial", map[int]string{0: "right", 1: "wrong1", 2: "right"}, 2},
		{"no answers", map[int]string{}, 0},
		{"out of range index ignored", map[int]string{9: "right"}, 0},
		{"nil answers", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoreQuiz(qs, tt.answers); got != tt.want {
				t.Errorf("ScoreQuiz = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPassed(t *testing.T) {
	tests := []struct {
		name  string
		score int
		total int
		want  bool
	}{
		{"eight of ten passes", 8, 10, true},
		{"seven of ten fails", 7, 10, false},
		{"four of five passes", 4, 5, true},
		{"perfect", 5, 5, true},
		{"zero total", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Passed(tt.score, tt.total); got != tt.want {
				t.Errorf("Passed(%d, %d) = %v, want %v", tt.score, tt.total, got, tt.want)
			}
		})
	}
}

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		total     int
		want      float64
	}{
		{"half", 3, 6, 50},
		{"all", 4, 4, 100},
		{"none", 0, 4, 0},
		{"zero total", 2, 0, 0},
		{"over count clamped", 5, 4, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProgressPercent(tt.completed, tt.total); got != tt.want {
				t.Errorf("ProgressPercent(%d, %d) = %v, want %v", tt.completed, tt.total, got, tt.want)
			}
		})
	}
}

func TestWeakTopics(t *testing.T) {
	qs := sampleQuestions(5)
	topics := []string{"pointers", "slices", "maps"}

	t.Run("wrong answers map to topics by index", func(t *testing.T) {
		attempt := &model.Attempt{Answers: map[int]string{
			0: "right",
			1: "wrong1", // -> slices
			2: "right",
			3: "wrong2", // 下标 3 对 3 个主题取模 -> pointers
			4: "right",
		}}
		got := WeakTopics(qs, attempt, topics)
		want := []string{"slices", "pointers"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("WeakTopics = %v, want %v", got, want)
		}
	})

	t.Run("duplicate topics collapsed", func(t *testing.T) {
		attempt := &model.Attempt{Answers: map[int]string{
			0: "wrong1", // -> pointers
			3: "wrong1", // -> pointers
		}}
		got := WeakTopics(qs[:4], attempt, topics)
		// 未作答的题也算错
		want := []string{"pointers", "slices", "maps"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("WeakTopics = %v, want %v", got, want)
		}
	})

	t.Run("nil attempt", func(t *testing.T) {
		if got := WeakTopics(qs, nil, topics); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("no topics", func(t *testing.T) {
		attempt := &model.Attempt{Answers: map[int]string{0: "wrong1"}}
		if got := WeakTopics(qs, attempt, nil); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})
}

func TestAppendUnique(t *testing.T) {
	list := []string{"a", "b"}
	list = appendUnique(list, "b")
	if len(list) != 2 {
		t.Errorf("duplicate was appended: %v", list)
	}
	list = appendUnique(list, "c")
	if len(list) != 3 || list[2] != "c" {
		t.Errorf("new value not appended: %v", list)
	}
}

func quizWithAttempts(attempts ...model.Attempt) model.Quiz {
	return model.Quiz{Questions: sampleQuestions(5), Attempts: attempts, IsActive: true}
}

func TestReattemptAllowed(t *testing.T) {
	tests := []struct {
		name    string
		quizzes []model.Quiz
		wantErr error
	}{
		{
			"no quizzes",
			nil,
			util.ErrLessonNotActionable,
		},
		{
			"quiz never attempted",
			[]model.Quiz{quizWithAttempts()},
			util.ErrQuizUnattempted,
		},
		{
			"one failed one unattempted",
			[]model.Quiz{
				quizWithAttempts(model.Attempt{Score: 1, Total: 5}),
				quizWithAttempts(),
			},
			util.ErrQuizUnattempted,
		},
		{
			"passing attempt blocks reattempt",
			[]model.Quiz{quizWithAttempts(model.Attempt{Score: 4, Total: 5})},
			util.ErrQuizNotAllFailed,
		},
		{
			"earlier pass counts even after later fail",
			[]model.Quiz{quizWithAttempts(
				model.Attempt{Score: 5, Total: 5},
				model.Attempt{Score: 1, Total: 5},
			)},
			util.ErrQuizNotAllFailed,
		},
		{
			"all attempted all failed",
			[]model.Quiz{
				quizWithAttempts(model.Attempt{Score: 2, Total: 5}),
				quizWithAttempts(model.Attempt{Score: 3, Total: 5}, model.Attempt{Score: 0, Total: 5}),
			},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ReattemptAllowed(tt.quizzes); !errors.Is(err, tt.wantErr) {
				t.Errorf("ReattemptAllowed = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
