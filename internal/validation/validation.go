package validation

import (
	"math"
	"regexp"
	"unicode/utf8"

	"github.com/fabworks/moldline/internal/apperr"
	"github.com/google/uuid"
)

var (
	// 业务编号：大写字母、数字、连字符
	identifierPattern = regexp.MustCompile(`^[A-Z0-9-]+$`)
	// local@domain 邮箱格式
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
)

// Identifier 校验业务编号格式
func Identifier(field, value string) error {
	if !identifierPattern.MatchString(value) {
		return apperr.New(apperr.CodeInvalidFormat,
			"%s must contain only uppercase letters, digits and hyphens", field)
	}
	return nil
}

// MinLength 校验最小长度，按字符数而非字节数
func MinLength(field, value string, min int) error {
	if utf8.RuneCountInString(value) < min {
		return apperr.New(apperr.CodeInvalidLength,
			"%s must be at least %d characters", field, min)
	}
	return nil
}

// MaxLength 校验最大长度，按字符数而非字节数
func MaxLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return apperr.New(apperr.CodeInvalidLength,
			"%s must be at most %d characters", field, max)
	}
	return nil
}

// Positive 校验正的有限数
func Positive(field string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return apperr.New(apperr.CodeInvalidNumber,
			"%s must be a positive finite number", field)
	}
	return nil
}

// NonNegative 校验非负的有限数
func NonNegative(field string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return apperr.New(apperr.CodeInvalidNumber,
			"%s must be a non-negative finite number", field)
	}
	return nil
}

// NonNegativeInt 校验非负整数
func NonNegativeInt(field string, value int) error {
	if value < 0 {
		return apperr.New(apperr.CodeInvalidNumber,
			"%s must be a non-negative number", field)
	}
	return nil
}

// Enum 校验闭集枚举
func Enum(field, value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return apperr.InvalidEnum(field, allowed)
}

// Email 校验邮箱格式
func Email(field, value string) error {
	if !emailPattern.MatchString(value) {
		return apperr.New(apperr.CodeInvalidEmail,
			"%s must be a valid email address", field)
	}
	return nil
}

// DocumentID 校验路径ID是否符合存储引擎的原生ID格式（UUID）。
// 格式错误与"未找到"是不同的失败：前者400，后者404。
func DocumentID(value string) error {
	if _, err := uuid.Parse(value); err != nil {
		return apperr.InvalidID(value)
	}
	return nil
}

// Missing 收集值为空的必填字段名
type Missing struct {
	fields []string
}

// Check 登记一个必填字段；empty为真时记为缺失
func (m *Missing) Check(field string, empty bool) {
	if empty {
		m.fields = append(m.fields, field)
	}
}

// Err 若有缺失字段则返回 MissingFields 错误，命名全部缺失字段
func (m *Missing) Err() error {
	if len(m.fields) == 0 {
		return nil
	}
	return apperr.MissingFields(m.fields...)
}
