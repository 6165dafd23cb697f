package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"learnpath_backend/internal/config"
	"learnpath_backend/internal/model"
	"learnpath_backend/pkg/logger"
	"learnpath_backend/pkg/monitoring"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/youtube/v3"
)

const (
	searchCacheTTL      = 30 * 24 * time.Hour
	maxVideoPhrases     = 3
	minVideoSeconds     = 300
	englishRatioCutoff  = 0.7
	maxArticlesPerQuery = 2
	searchPageSize      = 10

	// 固定的发布时间下限，过老的教程会引用过时的工具链
	publishedAfterCutoff = "2018-01-01T00:00:00Z"
)

// ResourceCandidate 搜索+排序产出的候选资源，尚未持久化。
// 视频的 NaturalKey 在搜索期确定（youtube_<id>），文章的留空、
// 持久化时才生成新键（文章不跨课时去重）
type ResourceCandidate struct {
	NaturalKey   string             `json:"naturalKey"`
	Type         model.ResourceType `json:"type"`
	Title        string             `json:"title"`
	URL          string             `json:"url"`
	Thumbnail    string             `json:"thumbnail"`
	Views        int64              `json:"views"`
	Likes        int64              `json:"likes"`
	CommentCount int64              `json:"commentCount"`
	Duration     int                `json:"duration"`
	PublishedAt  time.Time          `json:"publishedAt"`
	Sentiment    VideoSentiment     `json:"sentiment"`
}

// LessonResourceSet 一个课时的全部候选资源。
// PrimaryDuration 取情感得分最高的视频时长，作为课时时长
type LessonResourceSet struct {
	Candidates      []ResourceCandidate `json:"candidates"`
	PrimaryDuration int                 `json:"primaryDuration"`
}

// SearchService 视频/文章检索与加权排序。
// 配额、权限类错误一律记录日志后降级，返回成功的那部分结果
type SearchService struct {
	YouTube   *youtube.Service
	Search    *customsearch.Service
	Sentiment *SentimentService
	Redis     *redis.Client
	Config    config.GoogleConfig
}

func NewSearchService(yt *youtube.Service, cs *customsearch.Service, sentiment *SentimentService, rdb *redis.Client, cfg config.GoogleConfig) *SearchService {
	return &SearchService{
		YouTube:   yt,
		Search:    cs,
		Sentiment: sentiment,
		Redis:     rdb,
		Config:    cfg,
	}
}

// FindLessonResources 为一个课时查找资源：视频子流程 + 文章子流程。
// 相同短语组合的完整结果缓存 30 天，跨用户复用
func (s *SearchService) FindLessonResources(ctx context.Context, videoPhrases, articlePhrases []string, videoCount, articleCount int) LessonResourceSet {
	cacheKey := searchCacheKey(videoPhrases, articlePhrases, videoCount, articleCount)
	if val, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
		var cached LessonResourceSet
		if json.Unmarshal([]byte(val), &cached) == nil {
			return cached
		}
	}

	set := LessonResourceSet{}

	videos := s.FindVideoResources(ctx, videoPhrases, videoCount)
	set.Candidates = append(set.Candidates, videos...)
	set.PrimaryDuration = primaryVideoDuration(videos)

	if articleCount > 0 {
		articles := s.FindArticleResources(ctx, articlePhrases, articleCount)
		set.Candidates = append(set.Candidates, articles...)
	}

	if data, err := json.Marshal(set); err == nil {
		s.Redis.Set(ctx, cacheKey, data, searchCacheTTL)
	}
	return set
}

// FindVideoResources 视频子流程：检索、过滤、加权排序、情感标注，取前 limit 个
func (s *SearchService) FindVideoResources(ctx context.Context, phrases []string, limit int) []ResourceCandidate {
	if len(phrases) > maxVideoPhrases {
		phrases = phrases[:maxVideoPhrases]
	}

	seen := make(map[string]bool)
	var ids []string
	for _, phrase := range phrases {
		call := s.YouTube.Search.List([]string{"snippet"}).
			Q(phrase).
			Type("video").
			VideoCategoryId("27"). // Education
			VideoDuration("medium").
			VideoDefinition("high").
			VideoEmbeddable("true").
			VideoSyndicated("true").
			PublishedAfter(publishedAfterCutoff).
			RegionCode(s.Config.Region).
			RelevanceLanguage("en").
			MaxResults(searchPageSize)

		resp, err := call.Context(ctx).Do()
		if err != nil {
			logger.Log.Warn("video search failed", zap.String("phrase", phrase), zap.Error(err))
			monitoring.ProviderErrorCounter.WithLabelValues("youtube_search").Inc()
			continue
		}
		for _, item := range resp.Items {
			if item.Id == nil || item.Id.VideoId == "" || seen[item.Id.VideoId] {
				continue
			}
			seen[item.Id.VideoId] = true
			ids = append(ids, item.Id.VideoId)
		}
	}

	if len(ids) == 0 {
		return nil
	}

	details, err := s.YouTube.Videos.List([]string{"snippet", "statistics", "contentDetails"}).
		Id(ids...).Context(ctx).Do()
	if err != nil {
		logger.Log.Warn("video details fetch failed", zap.Error(err))
		monitoring.ProviderErrorCounter.WithLabelValues("youtube_videos").Inc()
		return nil
	}

	type scored struct {
		candidate ResourceCandidate
		score     float64
	}
	var survivors []scored
	for _, v := range details.Items {
		if v.Snippet == nil || v.ContentDetails == nil {
			continue
		}
		seconds, ok := ParseISODuration(v.ContentDetails.Duration)
		if !ok || seconds < minVideoSeconds {
			continue
		}
		if !PassesEnglishFilter(v.Snippet.Title) {
			continue
		}

		var views, likes, comments int64
		if v.Statistics != nil {
			views = int64(v.Statistics.ViewCount)
			likes = int64(v.Statistics.LikeCount)
			comments = int64(v.Statistics.CommentCount)
		}
		publishedAt, _ := time.Parse(time.RFC3339, v.Snippet.PublishedAt)

		thumbnail := ""
		if v.Snippet.Thumbnails != nil && v.Snippet.Thumbnails.High != nil {
			thumbnail = v.Snippet.Thumbnails.High.Url
		}

		survivors = append(survivors, scored{
			candidate: ResourceCandidate{
				NaturalKey:   "youtube_" + v.Id,
				Type:         model.VideoResource,
				Title:        v.Snippet.Title,
				URL:          "https://www.youtube.com/watch?v=" + v.Id,
				Thumbnail:    thumbnail,
				Views:        views,
				Likes:        likes,
				CommentCount: comments,
				Duration:     seconds,
				PublishedAt:  publishedAt,
			},
			score: RankScore(views, likes, comments, publishedAt),
		})
	}

	sort.Slice(survivors, func(i, j int) bool {
		return survivors[i].score > survivors[j].score
	})
	if limit > 0 && len(survivors) > limit {
		survivors = survivors[:limit]
	}

	out := make([]ResourceCandidate, 0, len(survivors))
	for _, sc := range survivors {
		c := sc.candidate
		videoID := strings.TrimPrefix(c.NaturalKey, "youtube_")
		c.Sentiment = s.Sentiment.Annotate(ctx, videoID)
		out = append(out, c)
	}
	return out
}

// FindArticleResources 文章子流程：只用第一条短语查一次，过滤视频站域名与非英文标题
func (s *SearchService) FindArticleResources(ctx context.Context, phrases []string, limit int) []ResourceCandidate {
	if len(phrases) == 0 {
		return nil
	}
	if limit > maxArticlesPerQuery {
		limit = maxArticlesPerQuery
	}

	resp, err := s.Search.Cse.List().
		Cx(s.Config.SearchEngineID).
		Q(phrases[0]).
		Num(searchPageSize).
		Context(ctx).Do()
	if err != nil {
		logger.Log.Warn("article search failed", zap.String("phrase", phrases[0]), zap.Error(err))
		monitoring.ProviderErrorCounter.WithLabelValues("customsearch").Inc()
		return nil
	}

	var out []ResourceCandidate
	for _, item := range resp.Items {
		if IsVideoHost(item.Link) {
			continue
		}
		if !PassesEnglishFilter(item.Title) {
			continue
		}
		out = append(out, ResourceCandidate{
			// NaturalKey 留空，持久化时为每条文章生成新键
			Type:  model.ArticleResource,
			Title: item.Title,
			URL:   item.Link,
		})
		if len(out) >= limit {
			break
		}
	}
	return out
}

// primaryVideoDuration 课时时长取情感得分最高的视频，而不是排序第一的视频
func primaryVideoDuration(videos []ResourceCandidate) int {
	best := -1
	bestScore := 0.0
	for i, v := range videos {
		score, err := strconv.ParseFloat(v.Sentiment.Score, 64)
		if err != nil {
			score = 0
		}
		if best < 0 || score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best < 0 {
		return 0
	}
	return videos[best].Duration
}

func searchCacheKey(videoPhrases, articlePhrases []string, videoCount, articleCount int) string {
	h := sha1.New()
	fmt.Fprintf(h, "%s|%s|%d|%d",
		strings.Join(videoPhrases, ","), strings.Join(articlePhrases, ","), videoCount, articleCount)
	return "search:lesson:" + hex.EncodeToString(h.Sum(nil))
}

var isoDurationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseISODuration 解析 ISO-8601 时长（PT#H#M#S，各段可省略）为秒数
func ParseISODuration(s string) (int, bool) {
	m := isoDurationRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	if m[1] == "" && m[2] == "" && m[3] == "" {
		return 0, false
	}
	seconds := 0
	if m[1] != "" {
		h, _ := strconv.Atoi(m[1])
		seconds += h * 3600
	}
	if m[2] != "" {
		min, _ := strconv.Atoi(m[2])
		seconds += min * 60
	}
	if m[3] != "" {
		sec, _ := strconv.Atoi(m[3])
		seconds += sec
	}
	return seconds, true
}

// EnglishLetterRatio ASCII 字母数 / 非空白字符数
func EnglishLetterRatio(title string) float64 {
	letters, total := 0, 0
	for _, r := range title {
		if r == ' ' || r == '\t' || r == '\n' {
			continue
		}
		total++
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			letters++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(letters) / float64(total)
}

// PassesEnglishFilter 比例必须严格大于 0.7，恰好 0.7 不通过
func PassesEnglishFilter(title string) bool {
	return EnglishLetterRatio(title) > englishRatioCutoff
}

// RankScore 加权排序分：0.4*播放 + 0.3*点赞率*1000 + 0.2*评论数 + 0.1*发布天数。
// 播放数缺失时点赞率项记 0
func RankScore(views, likes, comments int64, publishedAt time.Time) float64 {
	likeRatio := 0.0
	if views > 0 {
		likeRatio = float64(likes) / float64(views)
	}
	publishedDays := float64(publishedAt.Unix()) / 86400
	if publishedAt.IsZero() {
		publishedDays = 0
	}
	return 0.4*float64(views) + 0.3*likeRatio*1000 + 0.2*float64(comments) + 0.1*publishedDays
}

var videoHosts = []string{
	"youtube.com",
	"youtu.be",
	"vimeo.com",
	"dailymotion.com",
}

// IsVideoHost 文章搜索要排除视频站的链接
func IsVideoHost(link string) bool {
	lower := strings.ToLower(link)
	for _, host := range videoHosts {
		if strings.Contains(lower, host) {
			return true
		}
	}
	return false
}
