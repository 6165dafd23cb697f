package model

import "time"

// Question 评估与小测共用的题目结构，序列化为 JSON 列存储
type Question struct {
	Type          string   `json:"type"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// Attempt 一次小测作答记录，只追加不覆盖
type Attempt struct {
	Score     int            `json:"score"`
	Total     int            `json:"total"`
	XPAwarded int            `json:"xpAwarded"`
	Answers   map[int]string `json:"answers"`
	Timestamp time.Time      `json:"timestamp"`
}
