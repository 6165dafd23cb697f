package model

// Assessment 学前评估，每个 personalization 只生成一份
// 提交是单向的：未提交 -> 已提交，分数只在提交时计算一次
// swagger:model Assessment
type Assessment struct {
	UUIDBase
	UserID            uint           `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	PersonalizationID string         `gorm:"uniqueIndex;type:varchar(36);not null" json:"personalizationId"`
	Questions         []Question     `gorm:"serializer:json" json:"questions"`
	Answers           map[int]string `gorm:"serializer:json" json:"answers,omitempty"`
	IsSubmitted       bool           `gorm:"default:false" json:"isSubmitted"`
	Score             int            `gorm:"default:0" json:"score"`
	MaxScore          int            `gorm:"default:0" json:"maxScore"`
}

func (Assessment) TableName() string {
	return "assessments"
}
