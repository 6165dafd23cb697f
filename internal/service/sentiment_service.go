package service

import (
	"context"
	"encoding/json"
	"learnpath_backend/pkg/logger"
	"learnpath_backend/pkg/monitoring"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"google.golang.org/api/language/v1"
	"google.golang.org/api/youtube/v3"
)

const (
	sentimentCacheTTL  = 30 * 24 * time.Hour
	maxCommentsFetched = 20
)

// VideoSentiment 情感标注结果。Score 保留字符串形式的十进制数
type VideoSentiment struct {
	Score string `json:"score"`
	Label string `json:"label"`
}

// SentimentService 拉取视频评论并做整体情感分析。
// 情感是视频本身的属性，与引用它的课时无关，所以按视频缓存 30 天
type SentimentService struct {
	YouTube  *youtube.Service
	Language *language.Service
	Redis    *redis.Client
}

func NewSentimentService(yt *youtube.Service, lang *language.Service, rdb *redis.Client) *SentimentService {
	return &SentimentService{YouTube: yt, Language: lang, Redis: rdb}
}

// Annotate 返回视频的聚合情感。评论被关闭或为空时不调用情感接口，
// 直接返回固定哨兵值；任何失败都降级为中性结果，不向上抛错
func (s *SentimentService) Annotate(ctx context.Context, videoID string) VideoSentiment {
	cacheKey := "sentiment:video:" + videoID
	if val, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
		var cached VideoSentiment
		if json.Unmarshal([]byte(val), &cached) == nil {
			return cached
		}
	}

	result := s.annotate(ctx, videoID)

	if data, err := json.Marshal(result); err == nil {
		s.Redis.Set(ctx, cacheKey, data, sentimentCacheTTL)
	}
	return result
}

func (s *SentimentService) annotate(ctx context.Context, videoID string) VideoSentiment {
	call := s.YouTube.CommentThreads.List([]string{"snippet"}).
		VideoId(videoID).
		MaxResults(maxCommentsFetched).
		Order("relevance").
		TextFormat("plainText")

	resp, err := call.Context(ctx).Do()
	if err != nil {
		// 评论被关闭时 YouTube 返回 403，这不算失败
		logger.Log.Debug("comment fetch failed", zap.String("video", videoID), zap.Error(err))
		monitoring.ProviderErrorCounter.WithLabelValues("youtube_comments").Inc()
		return VideoSentiment{Score: "0", Label: "comments_disabled"}
	}

	var sb strings.Builder
	for _, item := range resp.Items {
		if item.Snippet == nil || item.Snippet.TopLevelComment == nil || item.Snippet.TopLevelComment.Snippet == nil {
			continue
		}
		sb.WriteString(item.Snippet.TopLevelComment.Snippet.TextDisplay)
		sb.WriteString(" ")
	}

	text := SanitizeComments(sb.String())
	if text == "" {
		return VideoSentiment{Score: "0", Label: "no_comments"}
	}

	req := &language.AnalyzeSentimentRequest{
		Document: &language.Document{
			Type:    "PLAIN_TEXT",
			Content: text,
		},
	}
	analysis, err := s.Language.Documents.AnalyzeSentiment(req).Context(ctx).Do()
	if err != nil {
		logger.Log.Warn("sentiment analysis failed", zap.String("video", videoID), zap.Error(err))
		monitoring.ProviderErrorCounter.WithLabelValues("language").Inc()
		return VideoSentiment{Score: "0", Label: "neutral"}
	}

	if analysis.DocumentSentiment == nil {
		return VideoSentiment{Score: "0", Label: "neutral"}
	}

	score := float64(analysis.DocumentSentiment.Score)
	return VideoSentiment{
		Score: strconv.FormatFloat(score, 'f', 2, 64),
		Label: SentimentLabel(score),
	}
}

// SanitizeComments 去掉不可打印的非 ASCII 字符并压缩空白
func SanitizeComments(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		if r >= 32 && r <= 126 {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// SentimentLabel 标签只由分数符号决定
func SentimentLabel(score float64) string {
	switch {
	case score > 0:
		return "positive"
	case score < 0:
		return "negative"
	default:
		return "neutral"
	}
}
