package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Code 错误类别，写入响应的 error 字段
type Code string

const (
	CodeMissingFields     Code = "MissingFields"
	CodeInvalidFormat     Code = "InvalidFormat"
	CodeInvalidLength     Code = "InvalidLength"
	CodeInvalidNumber     Code = "InvalidNumber"
	CodeInvalidEnum       Code = "InvalidEnum"
	CodeInvalidEmail      Code = "InvalidEmail"
	CodeInvalidID         Code = "InvalidId"
	CodeInvalidPayload    Code = "InvalidPayload"
	CodeEmptyPayload      Code = "EmptyPayload"
	CodeDanglingReference Code = "DanglingReference"
	CodeDuplicateKey      Code = "DuplicateKey"
	CodeNotFound          Code = "NotFound"
	CodeUnauthorized      Code = "Unauthorized"
	CodeForbidden         Code = "Forbidden"
	CodeInternal          Code = "InternalError"
)

// Error 统一错误结构，handler 按 Status 映射为 HTTP 状态码
type Error struct {
	Code    Code
	Message string
	Fields  []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New 创建错误
func New(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// MissingFields 缺少必填字段，一次性列出全部缺失字段
func MissingFields(fields ...string) *Error {
	return &Error{
		Code:    CodeMissingFields,
		Message: "missing required fields: " + strings.Join(fields, ", "),
		Fields:  fields,
	}
}

// InvalidEnum 枚举值越界，提示允许的取值集合
func InvalidEnum(field string, allowed []string) *Error {
	return &Error{
		Code:    CodeInvalidEnum,
		Message: fmt.Sprintf("%s must be one of: %s", field, strings.Join(allowed, ", ")),
		Fields:  []string{field},
	}
}

// DanglingReference 外键指向不存在的文档
func DanglingReference(field, value string) *Error {
	return &Error{
		Code:    CodeDanglingReference,
		Message: fmt.Sprintf("%s %q does not reference an existing document", field, value),
		Fields:  []string{field},
	}
}

// DuplicateKey 唯一约束冲突
func DuplicateKey(field string) *Error {
	return &Error{
		Code:    CodeDuplicateKey,
		Message: fmt.Sprintf("a document with this %s already exists", field),
		Fields:  []string{field},
	}
}

// NotFound 目标文档不存在
func NotFound(what string) *Error {
	return New(CodeNotFound, "%s not found", what)
}

// InvalidID 路径ID不符合存储引擎的ID格式
func InvalidID(id string) *Error {
	return New(CodeInvalidID, "%q is not a valid document id", id)
}

// EmptyPayload 更新请求未携带任何字段
func EmptyPayload() *Error {
	return New(CodeEmptyPayload, "update payload contains no fields")
}

// Unauthorized 会话缺失或无效
func Unauthorized(message string) *Error {
	return New(CodeUnauthorized, "%s", message)
}

// Forbidden 权限不足（仅域名强制模式下出现）
func Forbidden(message string) *Error {
	return New(CodeForbidden, "%s", message)
}

// Status 将错误映射为HTTP状态码，未分类错误一律500
func Status(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
