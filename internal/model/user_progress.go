package model

// UserProgress 每个 (user, roadmap) 一条，与课程树的状态变更同事务更新
type UserProgress struct {
	BaseModel
	UserID             uint     `gorm:"uniqueIndex:idx_user_roadmap;type:bigint unsigned;not null" json:"userId"`
	RoadmapID          string   `gorm:"uniqueIndex:idx_user_roadmap;type:varchar(36);not null" json:"roadmapId"`
	CompletedResources []string `gorm:"serializer:json" json:"completedResources"`
	CompletedLessons   []string `gorm:"serializer:json" json:"completedLessons"`
	CompletedModules   []string `gorm:"serializer:json" json:"completedModules"`
	FailedQuizLessons  []string `gorm:"serializer:json" json:"failedQuizLessons"`
	XP                 int      `gorm:"default:0" json:"xp"`
	ProgressPercentage float64  `gorm:"default:0" json:"progressPercentage"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}
