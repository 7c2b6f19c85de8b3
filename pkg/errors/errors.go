// Package errors 提供统一的错误处理框架
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Code 错误码
type Code string

const (
	// 通用错误码
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeNotFound     Code = "NOT_FOUND"
	CodeCanceled     Code = "CANCELED"
	CodeUnavailable  Code = "SERVICE_UNAVAILABLE"
	CodeRateLimited  Code = "RATE_LIMITED"

	// 排课引擎相关
	CodeConfig             Code = "CONFIG_ERROR"
	CodeInfeasibleDomain   Code = "INFEASIBLE_DOMAIN"
	CodeUnsatisfiableModel Code = "UNSATISFIABLE_MODEL"
	CodeTimeoutAbort       Code = "TIMEOUT_ABORT"
	CodeScheduleConflict   Code = "SCHEDULE_CONFLICT"

	// 数据相关
	CodeDatabaseError Code = "DATABASE_ERROR"
)

// 失败描述中的错误类别
const (
	KindConfig             = "ConfigError"
	KindInfeasibleDomain   = "InfeasibleDomainError"
	KindUnsatisfiableModel = "UnsatisfiableModelError"
	KindTimeoutAbort       = "TimeoutAbort"
	KindCanceled           = "Canceled"
	KindInternal           = "InternalError"
)

// AppError 应用错误
type AppError struct {
	Code       Code                   `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Cause      error                  `json:"-"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails 添加详细信息
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause 添加原因
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithField 添加字段
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// New 创建新错误
func New(code Code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code Code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// codeToHTTPStatus 错误码转HTTP状态码
func codeToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeConfig:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInfeasibleDomain, CodeUnsatisfiableModel:
		return http.StatusUnprocessableEntity
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeTimeoutAbort:
		return http.StatusGatewayTimeout
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	case CodeCanceled:
		// nginx 约定的 Client Closed Request
		return 499
	default:
		return http.StatusInternalServerError
	}
}

// Is 检查错误是否为特定类型
func Is(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode 获取错误码
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetHTTPStatus 获取HTTP状态码
func GetHTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// ConfigError 创建输入配置错误，在建模之前返回
func ConfigError(reason string) *AppError {
	return New(CodeConfig, reason)
}

// InfeasibleDomain 创建空定义域错误，携带课程身份便于调用方修正数据
func InfeasibleDomain(subject, year, section string) *AppError {
	return New(CodeInfeasibleDomain,
		fmt.Sprintf("课程 '%s' (年级 %s, 班级 %s) 在教师可用时间内没有合法的开始时段", subject, year, section)).
		WithField("subject", subject).
		WithField("year", year).
		WithField("section", section)
}

// UnsatisfiableModel 创建无解错误
func UnsatisfiableModel() *AppError {
	return New(CodeUnsatisfiableModel, "穷举搜索后不存在满足全部互斥约束的课表")
}

// TimeoutAbort 创建求解超时错误
func TimeoutAbort(limit time.Duration) *AppError {
	return New(CodeTimeoutAbort, fmt.Sprintf("求解在 %s 内未能得出结论，可增大时限后重试", limit.Round(time.Millisecond)))
}

// Canceled 创建求解被取消错误
func Canceled(cause error) *AppError {
	return Wrap(cause, CodeCanceled, "求解已被调用方取消")
}

// NotFound 创建资源不存在错误
func NotFound(resource, id string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s '%s' 不存在", resource, id))
}

// ScheduleConflict 创建课表冲突错误
func ScheduleConflict(details string) *AppError {
	return New(CodeScheduleConflict, fmt.Sprintf("课表校验发现冲突: %s", details))
}

// FromContext 将 context 错误转换为引擎错误
func FromContext(err error, limit time.Duration) *AppError {
	if errors.Is(err, context.DeadlineExceeded) {
		return TimeoutAbort(limit).WithCause(err)
	}
	return Canceled(err)
}

// Failure 失败描述
type Failure struct {
	ErrorKind string                 `json:"error_kind"`
	Message   string                 `json:"message"`
	Code      Code                   `json:"code,omitempty"`
	Details   string                 `json:"details,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// ToFailure 将任意错误转换为失败描述
func ToFailure(err error) Failure {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return Failure{ErrorKind: KindInternal, Message: err.Error(), Code: CodeInternal}
	}

	f := Failure{
		Message: appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
		Fields:  appErr.Fields,
	}
	switch appErr.Code {
	case CodeConfig, CodeInvalidInput:
		f.ErrorKind = KindConfig
	case CodeInfeasibleDomain:
		f.ErrorKind = KindInfeasibleDomain
	case CodeUnsatisfiableModel:
		f.ErrorKind = KindUnsatisfiableModel
	case CodeTimeoutAbort:
		f.ErrorKind = KindTimeoutAbort
	case CodeCanceled:
		f.ErrorKind = KindCanceled
	default:
		f.ErrorKind = KindInternal
	}
	return f
}

// ValidationErrors 验证错误集合
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// ValidationError 单个验证错误
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error 实现 error 接口
func (ve *ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return "验证失败"
	}
	return fmt.Sprintf("验证失败: %s - %s", ve.Errors[0].Field, ve.Errors[0].Message)
}

// Add 添加验证错误
func (ve *ValidationErrors) Add(field, message string) {
	ve.Errors = append(ve.Errors, ValidationError{Field: field, Message: message})
}

// HasErrors 检查是否有错误
func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

// ToAppError 转换为 ConfigError
func (ve *ValidationErrors) ToAppError() *AppError {
	msg := "输入配置无效"
	if len(ve.Errors) > 0 {
		msg = fmt.Sprintf("输入配置无效: %s %s", ve.Errors[0].Field, ve.Errors[0].Message)
	}
	err := New(CodeConfig, msg)
	err.Fields = make(map[string]interface{})
	for _, e := range ve.Errors {
		err.Fields[e.Field] = e.Message
	}
	return err
}
