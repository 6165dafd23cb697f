package model

type QuizParentType string

const (
	QuizParentLesson QuizParentType = "lesson"
	QuizParentModule QuizParentType = "module"
)

// Quiz 小测。同一 parent 下最多一份 isActive=true，
// 被替换的小测保留作答历史，供"避免重复出题"提示词使用
// swagger:model Quiz
type Quiz struct {
	UUIDBase
	ParentID   string         `gorm:"index:idx_quiz_parent;type:varchar(36);not null" json:"parentId"`
	ParentType QuizParentType `gorm:"index:idx_quiz_parent;size:10;not null" json:"parentType"`
	Questions  []Question     `gorm:"serializer:json" json:"questions"`
	Attempts   []Attempt      `gorm:"serializer:json" json:"attempts"`
	IsActive   bool           `gorm:"default:true" json:"isActive"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// LatestAttempt 返回最近一次作答，没有则返回 nil
func (q *Quiz) LatestAttempt() *Attempt {
	if len(q.Attempts) == 0 {
		return nil
	}
	return &q.Attempts[len(q.Attempts)-1]
}
