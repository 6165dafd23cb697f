package model

import "time"

type ResourceType string

const (
	VideoResource   ResourceType = "youtube"
	ArticleResource ResourceType = "article"
)

// Resource 外部学习资源。NaturalKey 全局唯一（youtube_<videoId> 或文章的生成键），
// 同一资源被多个课时引用时只保留一条记录，通过 Lesson.ResourceIDs 重新链接
// swagger:model Resource
type Resource struct {
	UUIDBase
	NaturalKey     string       `gorm:"uniqueIndex;size:255;not null" json:"naturalKey"`
	Type           ResourceType `gorm:"size:20;not null" json:"type"`
	Title          string       `gorm:"size:512;not null" json:"title"`
	URL            string       `gorm:"size:512;not null" json:"url"`
	Thumbnail      string       `gorm:"size:512" json:"thumbnail"`
	SentimentScore string       `gorm:"size:20" json:"sentimentScore"`
	SentimentLabel string       `gorm:"size:40" json:"sentimentLabel"`
	Views          int64        `gorm:"default:0" json:"views"`
	Likes          int64        `gorm:"default:0" json:"likes"`
	CommentCount   int64        `gorm:"default:0" json:"commentCount"`
	Duration       int          `gorm:"default:0" json:"duration"` // 秒
	PublishedAt    time.Time    `json:"publishedAt"`
	Status         UnitStatus   `gorm:"size:20;default:'locked'" json:"status"`
	LessonID       string       `gorm:"index;type:varchar(36)" json:"lessonId"` // 首次创建它的课时
}

func (Resource) TableName() string {
	return "resources"
}
