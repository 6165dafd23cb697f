package model

type RoadmapStatus string

const (
	RoadmapDraft     RoadmapStatus = "draft"
	RoadmapActive    RoadmapStatus = "active"
	RoadmapCompleted RoadmapStatus = "completed"
)

type UnitStatus string

const (
	StatusLocked     UnitStatus = "locked"
	StatusInProgress UnitStatus = "in_progress"
	StatusCompleted  UnitStatus = "completed"
)

// Roadmap 课程树根节点
// 约束：每个 (user, assessment, personalization) 组合只存在一条路线
// swagger:model Roadmap
type Roadmap struct {
	UUIDBase
	UserID            uint          `gorm:"uniqueIndex:idx_roadmap_key;type:bigint unsigned;not null" json:"userId"`
	AssessmentID      string        `gorm:"uniqueIndex:idx_roadmap_key;type:varchar(36);not null" json:"assessmentId"`
	PersonalizationID string        `gorm:"uniqueIndex:idx_roadmap_key;type:varchar(36);not null" json:"personalizationId"`
	Title             string        `gorm:"size:255;not null" json:"title"`
	Description       string        `gorm:"type:text" json:"description"`
	Tags              []string      `gorm:"serializer:json" json:"tags"`
	Status            RoadmapStatus `gorm:"size:20;default:'active'" json:"status"`
	Modules           []Module      `gorm:"foreignKey:RoadmapID" json:"modules,omitempty"`
}

func (Roadmap) TableName() string {
	return "roadmaps"
}

// swagger:model Module
type Module struct {
	UUIDBase
	RoadmapID   string     `gorm:"index;type:varchar(36);not null" json:"roadmapId"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Order       int        `gorm:"default:0" json:"order"`
	Status      UnitStatus `gorm:"size:20;default:'locked'" json:"status"`
	Lessons     []Lesson   `gorm:"foreignKey:ModuleID" json:"lessons,omitempty"`
}

func (Module) TableName() string {
	return "modules"
}

// Lesson 课时。ResourceIDs 保持资源顺序，且可与其他课时共享同一资源
// swagger:model Lesson
type Lesson struct {
	UUIDBase
	ModuleID       string     `gorm:"index;type:varchar(36);not null" json:"moduleId"`
	Title          string     `gorm:"size:255;not null" json:"title"`
	Description    string     `gorm:"type:text" json:"description"`
	Order          int        `gorm:"default:0" json:"order"`
	Topics         []string   `gorm:"serializer:json" json:"topics"`
	VideoPhrases   []string   `gorm:"serializer:json" json:"videoPhrases"`
	ArticlePhrases []string   `gorm:"serializer:json" json:"articlePhrases"`
	ResourceIDs    []string   `gorm:"serializer:json" json:"resourceIds"`
	Status         UnitStatus `gorm:"size:20;default:'locked'" json:"status"`
	Duration       int        `gorm:"default:0" json:"duration"` // 秒，取自情感得分最高的主视频
}

func (Lesson) TableName() string {
	return "lessons"
}
