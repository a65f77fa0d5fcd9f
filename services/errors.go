package services

import "github.com/pkg/errors"

// 业务错误分类，controller 层据此映射 HTTP 状态码
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrSessionExpired = errors.New("session expired")
	ErrConflict       = errors.New("conflict")
)
