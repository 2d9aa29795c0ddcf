package service

import (
	"errors"
	"fmt"

	"threadsnet/repository"
)

// ErrorKind 业务错误类型，由 handler 映射为 HTTP 状态码
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	}
	return "internal"
}

// ServiceError 业务错误
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewError 创建业务错误
func NewError(kind ErrorKind, message string) error {
	return &ServiceError{Kind: kind, Message: message}
}

// WrapError 包装底层错误
func WrapError(kind ErrorKind, message string, err error) error {
	return &ServiceError{Kind: kind, Message: message, Err: err}
}

// KindOf 未识别的错误一律视为 Internal
func KindOf(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsConflict(err error) bool   { return KindOf(err) == KindConflict }
func IsForbidden(err error) bool  { return KindOf(err) == KindForbidden }
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

func IsUnauthorized(err error) bool { return KindOf(err) == KindUnauthorized }

// storeError 把仓储层哨兵错误转换为业务错误
func storeError(err error, notFoundMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return NewError(KindNotFound, notFoundMsg)
	case errors.Is(err, repository.ErrDuplicate):
		return WrapError(KindConflict, "record already exists", err)
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return err
	}
	return WrapError(KindInternal, "internal error", err)
}
