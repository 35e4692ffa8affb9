package hook

import (
	"errors"
	"fmt"
)

// 配置错误的哨兵值。它们都表示配置本身有问题，调用方不应重试。
var (
	ErrUnknownOperator          = errors.New("unknown condition operator / 未知条件运算符")
	ErrUnknownOperation         = errors.New("unknown result operation / 未知结果操作")
	ErrUnknownConditionType     = errors.New("unknown condition type / 未知条件类型")
	ErrUnknownResultType        = errors.New("unknown result type / 未知结果类型")
	ErrUnknownPhase             = errors.New("unknown hook phase / 未知 hook 阶段")
	ErrMissingField             = errors.New("field not found in record / 记录中不存在该字段")
	ErrMissingValue             = errors.New("no value has been given / 未提供值")
	ErrFieldConditionNotAllowed = errors.New("field conditions not allowed / 不允许字段条件")
	ErrUnsupportedFieldMutation = errors.New("results on other record fields are not supported / 不支持修改其他字段")
	ErrInvalidOperand           = errors.New("invalid condition operand / 条件操作数无效")
	ErrInvalidPattern           = errors.New("invalid condition pattern / 条件正则无效")
	ErrInvalidPayload           = errors.New("invalid result payload / 结果载荷无效")
)

// Error 包装 hook 相关错误并附带上下文。
type Error struct {
	Type    error  // 基础错误类型
	Message string // 错误信息
}

// Error 实现 error 接口。
func (e *Error) Error() string {
	if e.Message == "" {
		return e.Type.Error()
	}
	return fmt.Sprintf("%s: %s", e.Type.Error(), e.Message)
}

// Unwrap 返回底层错误类型。
func (e *Error) Unwrap() error {
	return e.Type
}

// Is 判断 err 链中是否匹配目标错误。
func (e *Error) Is(target error) bool {
	return errors.Is(e.Type, target)
}

func newError(errType error, format string, args ...any) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}
