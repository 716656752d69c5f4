package xerr

import "fmt"

// CodeError 自定义错误结构
type CodeError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error 实现 error 接口
func (e *CodeError) Error() string {
	return fmt.Sprintf("Code: %d, Message: %s", e.Code, e.Message)
}

// New 创建新的 CodeError
func New(code int, msg string) *CodeError {
	return &CodeError{Code: code, Message: msg}
}

// 常用通用错误码
const (
	OK                  = 200
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	Conflict            = 409
	InternalServerError = 500

	// 业务错误码（处方流转）
	InvalidTransitionCode = 40901 // 状态机不允许的流转
	StatusConflictCode    = 40902 // 并发更新冲突，基于过期状态的流转被拒绝
)

// 常用预定义错误
var (
	ErrSuccess     = New(OK, "Success")
	ErrServerError = New(InternalServerError, "系统错误，请联系工作人员")
	ErrParam       = New(BadRequest, "参数错误")

	ErrPrescriptionNotFound = New(NotFound, "处方不存在")
	ErrNotificationNotFound = New(NotFound, "通知不存在")
)

// NewInvalidTransition 状态机拒绝的流转
func NewInvalidTransition(oldStatus, newStatus string) *CodeError {
	return New(InvalidTransitionCode, fmt.Sprintf("状态不允许从 %s 流转到 %s", oldStatus, newStatus))
}

// NewStatusConflict 并发冲突：读取到的状态已被其他请求更新
func NewStatusConflict(oldStatus string) *CodeError {
	return New(StatusConflictCode, fmt.Sprintf("处方状态已变更（原状态 %s），请刷新后重试", oldStatus))
}

// IsCode 判断 err 是否为指定业务码的 CodeError
func IsCode(err error, code int) bool {
	e, ok := err.(*CodeError)
	return ok && e.Code == code
}
