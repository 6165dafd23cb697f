package service

import (
	"errors"
	"learnpath_backend/internal/model"
	"learnpath_backend/internal/util"
	"testing"
)

func TestExtractJSONBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n[1,2]\n```", `[1,2]`},
		{"leading commentary", `Here is the plan: {"a":1} hope it helps`, `{"a":1}`},
		{"array with noise", `Sure! [1,2,3].`, `[1,2,3]`},
		{"no json at all", "sorry, I cannot do that", "sorry, I cannot do that"},
		{"whitespace padding", "  \n{\"a\":1}\n  ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSONBlock(tt.input); got != tt.want {
				t.Errorf("extractJSONBlock(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeQuestions(t *testing.T) {
	valid := model.Question{
		Type:          "multiple_choice",
		Prompt:        "What declares a variable?",
		Options:       []string{"var", "def", "let", "dim"},
		CorrectAnswer: "var",
	}

	t.Run("valid question untouched", func(t *testing.T) {
		out := normalizeQuestions([]model.Question{valid})
		if out[0].CorrectAnswer != "var" || len(out[0].Options) != 4 {
			t.Errorf("valid question was modified: %+v", out[0])
		}
	})

	t.Run("wrong option count replaced with placeholders", func(t *testing.T) {
		q := valid
		q.Options = []string{"var", "def"}
		out := normalizeQuestions([]model.Question{q})
		if len(out[0].Options) != 4 {
			t.Fatalf("expected 4 options, got %d", len(out[0].Options))
		}
		if out[0].Options[0] != "A" {
			t.Errorf("expected placeholder options, got %v", out[0].Options)
		}
		// 原答案不在占位选项里,回退到第一个选项
		if out[0].CorrectAnswer != "A" {
			t.Errorf("expected correctAnswer A, got %q", out[0].CorrectAnswer)
		}
	})

	t.Run("answer not among options falls back to first", func(t *testing.T) {
		q := valid
		q.CorrectAnswer = "banana"
		out := normalizeQuestions([]model.Question{q})
		if out[0].CorrectAnswer != "var" {
			t.Errorf("expected fallback to first option, got %q", out[0].CorrectAnswer)
		}
	})

	t.Run("missing type filled in", func(t *testing.T) {
		q := valid
		q.Type = ""
		out := normalizeQuestions([]model.Question{q})
		if out[0].Type != "multiple_choice" {
			t.Errorf("expected type filled, got %q", out[0].Type)
		}
	})
}

func TestValidateRoadmapPlan(t *testing.T) {
	makePlan := func() *RoadmapPlan {
		return &RoadmapPlan{
			Title: "Go Foundations",
			Modules: []ModulePlan{
				{
					Title: "Basics",
					Lessons: []LessonPlan{
						{Title: "Syntax", Topics: []string{"variables"}, VideoPhrases: []string{"go syntax"}, ArticlePhrases: []string{"go basics"}},
						{Title: "Types", Topics: []string{"structs"}, VideoPhrases: []string{"go types"}, ArticlePhrases: []string{"go structs"}},
					},
				},
			},
		}
	}

	t.Run("well formed plan accepted", func(t *testing.T) {
		if err := validateRoadmapPlan(makePlan(), 1, 2); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("wrong module count rejected", func(t *testing.T) {
		if err := validateRoadmapPlan(makePlan(), 3, 2); !errors.Is(err, util.ErrGenerationFormat) {
			t.Errorf("expected ErrGenerationFormat, got %v", err)
		}
	})

	t.Run("wrong lesson count rejected", func(t *testing.T) {
		if err := validateRoadmapPlan(makePlan(), 1, 3); !errors.Is(err, util.ErrGenerationFormat) {
			t.Errorf("expected ErrGenerationFormat, got %v", err)
		}
	})

	t.Run("empty title rejected", func(t *testing.T) {
		plan := makePlan()
		plan.Title = ""
		if err := validateRoadmapPlan(plan, 1, 2); !errors.Is(err, util.ErrGenerationFormat) {
			t.Errorf("expected ErrGenerationFormat, got %v", err)
		}
	})

	t.Run("missing phrases fall back to lesson title", func(t *testing.T) {
		plan := makePlan()
		plan.Modules[0].Lessons[0].Topics = nil
		plan.Modules[0].Lessons[0].VideoPhrases = nil
		plan.Modules[0].Lessons[0].ArticlePhrases = nil
		if err := validateRoadmapPlan(plan, 1, 2); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		l := plan.Modules[0].Lessons[0]
		if len(l.Topics) != 1 || l.Topics[0] != "Syntax" {
			t.Errorf("topics fallback = %v", l.Topics)
		}
		if len(l.VideoPhrases) != 1 || l.VideoPhrases[0] != "Syntax tutorial" {
			t.Errorf("video phrase fallback = %v", l.VideoPhrases)
		}
		if len(l.ArticlePhrases) != 1 || l.ArticlePhrases[0] != "Syntax" {
			t.Errorf("article phrase fallback = %v", l.ArticlePhrases)
		}
	})
}
