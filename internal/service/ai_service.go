package service

import (
	"context"
	"encoding/json"
	"fmt"
	"learnpath_backend/internal/config"
	"learnpath_backend/internal/model"
	"learnpath_backend/internal/util"
	"learnpath_backend/pkg/logger"
	"learnpath_backend/pkg/monitoring"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const (
	minAssessmentQuestions = 5
	minQuizQuestions       = 3
	quizQuestionCount      = 5
)

// GenerationService 封装 Gemini 结构化生成：
// 固定指令模板 + 代码块剥离 + JSON 校验，失败重试一次后返回 ErrGenerationFormat
type GenerationService struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGenerationService(ctx context.Context, cfg config.AIConfig) (*GenerationService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create generation client: %w", err)
	}

	m := client.GenerativeModel(cfg.Model)
	m.SetTemperature(cfg.Temperature)

	return &GenerationService{client: client, model: m}, nil
}

func (s *GenerationService) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

type LessonPlan struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Topics         []string `json:"topics"`
	VideoPhrases   []string `json:"videoSearchPhrases"`
	ArticlePhrases []string `json:"articleSearchPhrases"`
}

type ModulePlan struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Lessons     []LessonPlan `json:"lessons"`
}

type RoadmapPlan struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Tags        []string     `json:"tags"`
	Modules     []ModulePlan `json:"modules"`
}

// generateJSON 一次生成调用：取文本、剥离代码块、解析 JSON；格式错误时带提示重试一次
func (s *GenerationService) generateJSON(ctx context.Context, kind, prompt string, out interface{}) error {
	p := prompt
	for attempt := 0; attempt < 2; attempt++ {
		if attempt == 1 {
			p = prompt + "\n\nYour previous output was not valid JSON. Respond with the JSON object only, no markdown fences, no commentary."
		}

		resp, err := s.model.GenerateContent(ctx, genai.Text(p))
		if err != nil {
			monitoring.GenerationCounter.WithLabelValues(kind, "provider_error").Inc()
			return fmt.Errorf("generation call failed: %w", err)
		}

		raw := collectText(resp)
		cleaned := extractJSONBlock(raw)
		if err := json.Unmarshal([]byte(cleaned), out); err != nil {
			logger.Log.Warn("generation output not parseable",
				zap.String("kind", kind), zap.Int("attempt", attempt), zap.Error(err))
			monitoring.GenerationCounter.WithLabelValues(kind, "format_error").Inc()
			continue
		}

		monitoring.GenerationCounter.WithLabelValues(kind, "success").Inc()
		return nil
	}
	return util.ErrGenerationFormat
}

func collectText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
	}
	return sb.String()
}

// extractJSONBlock 去掉 markdown 代码块标记与 JSON 前后的多余文本
func extractJSONBlock(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	end := strings.LastIndexAny(s, "}]")
	if end < start {
		return s
	}
	return s[start : end+1]
}

// GenerateRoadmapPlan 生成整棵路线骨架；模块/课时数量不符视为格式错误
func (s *GenerationService) GenerateRoadmapPlan(ctx context.Context, p *model.Personalization, a *model.Assessment, moduleCount, lessonsPerModule int) (*RoadmapPlan, error) {
	topics := make([]string, 0, len(p.Topics))
	for _, t := range p.Topics {
		topics = append(topics, fmt.Sprintf("%s (%s)", t.Name, t.Level))
	}

	prompt := fmt.Sprintf(`You are a curriculum designer. Create a learning roadmap as JSON.

Learner goal: %s
Difficulty: %s
Pace: %s
Topics: %s
Assessment score: %d out of %d

Output a single JSON object with this exact shape:
{"title": string, "description": string, "tags": [string],
 "modules": [{"title": string, "description": string,
   "lessons": [{"title": string, "description": string,
     "topics": [string],
     "videoSearchPhrases": [string],
     "articleSearchPhrases": [string]}]}]}

Produce exactly %d modules, each with exactly %d lessons.
Each lesson needs 2-3 topics, 2-3 video search phrases and 1-2 article search phrases.
Respond with the JSON object only.`,
		p.Prompt, p.Difficulty, p.Pace, strings.Join(topics, ", "),
		a.Score, a.MaxScore, moduleCount, lessonsPerModule)

	var plan RoadmapPlan
	if err := s.generateJSON(ctx, "roadmap", prompt, &plan); err != nil {
		return nil, err
	}
	if err := validateRoadmapPlan(&plan, moduleCount, lessonsPerModule); err != nil {
		return nil, err
	}
	return &plan, nil
}

func validateRoadmapPlan(plan *RoadmapPlan, moduleCount, lessonsPerModule int) error {
	if plan.Title == "" || len(plan.Modules) != moduleCount {
		return util.ErrGenerationFormat
	}
	for i := range plan.Modules {
		m := &plan.Modules[i]
		if m.Title == "" || len(m.Lessons) != lessonsPerModule {
			return util.ErrGenerationFormat
		}
		for j := range m.Lessons {
			l := &m.Lessons[j]
			if l.Title == "" {
				return util.ErrGenerationFormat
			}
			// 缺失的检索短语回退到课时标题，不让单个坏字段卡住整个流水线
			if len(l.Topics) == 0 {
				l.Topics = []string{l.Title}
			}
			if len(l.VideoPhrases) == 0 {
				l.VideoPhrases = []string{l.Title + " tutorial"}
			}
			if len(l.ArticlePhrases) == 0 {
				l.ArticlePhrases = []string{l.Title}
			}
		}
	}
	return nil
}

// GenerateAssessmentQuestions 依据个性化信息生成学前评估题
func (s *GenerationService) GenerateAssessmentQuestions(ctx context.Context, p *model.Personalization) ([]model.Question, error) {
	topics := make([]string, 0, len(p.Topics))
	for _, t := range p.Topics {
		topics = append(topics, fmt.Sprintf("%s (%s)", t.Name, t.Level))
	}

	prompt := fmt.Sprintf(`Generate a multiple-choice placement assessment as JSON.

Learner goal: %s
Difficulty: %s
Topics: %s

Output a JSON array of at least %d questions, each:
{"type": "multiple_choice", "prompt": string, "options": [4 strings],
 "correctAnswer": string (one of options), "explanation": string}

Respond with the JSON array only.`,
		p.Prompt, p.Difficulty, strings.Join(topics, ", "), minAssessmentQuestions)

	var questions []model.Question
	if err := s.generateJSON(ctx, "assessment", prompt, &questions); err != nil {
		return nil, err
	}
	if len(questions) < minAssessmentQuestions {
		return nil, util.ErrGenerationFormat
	}
	return normalizeQuestions(questions), nil
}

// GenerateQuiz 为课时/模块生成小测；avoid 列出历史题目以免重复出题
func (s *GenerationService) GenerateQuiz(ctx context.Context, topics []string, avoid []model.Question) ([]model.Question, error) {
	var avoidBlock string
	if len(avoid) > 0 {
		prompts := make([]string, 0, len(avoid))
		for _, q := range avoid {
			prompts = append(prompts, "- "+q.Prompt)
		}
		avoidBlock = "\nDo NOT repeat any of these previously asked questions:\n" + strings.Join(prompts, "\n")
	}

	prompt := fmt.Sprintf(`Generate a multiple-choice quiz as JSON covering these topics: %s.

Output a JSON array of exactly %d questions, each:
{"type": "multiple_choice", "prompt": string, "options": [4 strings],
 "correctAnswer": string (one of options), "explanation": string}%s

Respond with the JSON array only.`,
		strings.Join(topics, ", "), quizQuestionCount, avoidBlock)

	var questions []model.Question
	if err := s.generateJSON(ctx, "quiz", prompt, &questions); err != nil {
		return nil, err
	}
	if len(questions) < minQuizQuestions {
		return nil, util.ErrGenerationFormat
	}
	return normalizeQuestions(questions), nil
}

var placeholderOptions = []string{"A", "B", "C", "D"}

// normalizeQuestions 修复策略：选项不是 4 个就退回占位选项，
// correctAnswer 不在选项里就取 options[0]。坏题被压成合法的低质量题而不是整体失败
func normalizeQuestions(qs []model.Question) []model.Question {
	out := make([]model.Question, 0, len(qs))
	for _, q := range qs {
		if q.Type == "" {
			q.Type = "multiple_choice"
		}
		if len(q.Options) != 4 {
			q.Options = append([]string(nil), placeholderOptions...)
		}
		member := false
		for _, o := range q.Options {
			if o == q.CorrectAnswer {
				member = true
				break
			}
		}
		if !member {
			q.CorrectAnswer = q.Options[0]
		}
		out = append(out, q)
	}
	return out
}
