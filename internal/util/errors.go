package util

import "errors"

var (
	ErrUserNotFound        = errors.New("用户不存在")
	ErrEmailRegistered     = errors.New("该邮箱已被注册")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrNotFound            = errors.New("record not found")
	ErrAlreadySubmitted    = errors.New("assessment already submitted")
	ErrAlreadyCompleted    = errors.New("resource already completed")
	ErrGenerationFormat    = errors.New("generation output failed validation")
	ErrQuizUnattempted     = errors.New("attempt existing quizzes first")
	ErrQuizNotAllFailed    = errors.New("not all quiz attempts failed")
	ErrNoFailedAttempt     = errors.New("no failed attempt to remediate")
	ErrLessonNotActionable = errors.New("lesson has no quiz history")
)
