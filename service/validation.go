package service

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const passwordSpecials = "@$!%*?&"

// IsStrongPassword 至少 8 位，只含字母、数字和 @$!%*?&，且三类字符各至少一个
func IsStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var letter, digit, special bool
	for _, r := range password {
		switch {
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return false
		}
	}
	return letter && digit && special
}

// RegisterValidators 注册自定义校验标签 strongpwd
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation("strongpwd", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})
}

var validate = newValidator()

func newValidator() *validator.Validate {
	// 与 gin 的 binding 标签共用同一套规则
	v := validator.New()
	v.SetTagName("binding")
	if err := RegisterValidators(v); err != nil {
		panic(err)
	}
	return v
}

// validateStruct 校验失败统一转为 Validation 错误
func validateStruct(req interface{}, message string) error {
	if err := validate.Struct(req); err != nil {
		return WrapError(KindValidation, message, err)
	}
	return nil
}
