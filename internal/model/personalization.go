package model

type TopicPreference struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

// Personalization 学习偏好，创建后不可修改
// swagger:model Personalization
type Personalization struct {
	UUIDBase
	UserID            uint              `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	Prompt            string            `gorm:"type:text;not null" json:"prompt"`
	Difficulty        string            `gorm:"size:20;default:'beginner'" json:"difficulty"`
	EstimatedDuration string            `gorm:"size:20;default:'medium'" json:"estimatedDuration"` // short / medium / long
	Pace              string            `gorm:"size:20;default:'steady'" json:"pace"`
	ResourceTypes     []string          `gorm:"serializer:json" json:"resourceTypes"`
	Platforms         []string          `gorm:"serializer:json" json:"platforms"`
	Topics            []TopicPreference `gorm:"serializer:json" json:"topics"`
}

func (Personalization) TableName() string {
	return "personalizations"
}
