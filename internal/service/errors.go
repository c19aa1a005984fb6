package service

import "fmt"

// 错误分类: NotFound / Validation / CorruptState
// controller 层用 errors.As 映射到 404 / 400 / 500

// NotFoundError 目标不存在 (参数 code、枚举、版本、对比单等)
type NotFoundError struct {
	Kind string // attribute / enum / edition / sheet
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s 不存在: %s", e.Kind, e.Key)
}

// NewNotFound 创建 NotFoundError
func NewNotFound(kind, keyFormat string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Kind: kind, Key: fmt.Sprintf(keyFormat, args...)}
}

// ValidationError 请求内容不合法 (类型不匹配、词表外枚举值、空对比列表等)
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// NewValidation 创建 ValidationError
func NewValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// CorruptStateError 持久化状态损坏 (快照反序列化失败)
// 统一策略: 记 warning 日志并回退到实时计算，不向终端用户抛 500
type CorruptStateError struct {
	Msg string
	Err error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}

func (e *CorruptStateError) Unwrap() error {
	return e.Err
}
