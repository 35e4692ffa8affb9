package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRule 表示登记了容器不认识的具名规则。
var ErrUnknownRule = errors.New("unknown validation rule / 未知校验规则")

// PathPrefix 是所有错误路径的命名空间。
const PathPrefix = "jconfig"

// externalMarker 标记不属于模型字段本身的外部错误（例如唯一性冲突）。
const externalMarker = "_external"

// FieldError 是一次校验拒绝：字段、错误码与消息模板参数。
type FieldError struct {
	Namespace string            `json:"namespace"`
	Field     string            `json:"field"`
	Code      string            `json:"code"`
	Params    map[string]string `json:"params,omitempty"`
	External  bool              `json:"external,omitempty"`
}

// Path 返回可被翻译的错误路径：
// jconfig/<model>/<field>.<code> 或 jconfig/<model>/_external.<field>.<code>。
func (e FieldError) Path() string {
	var b strings.Builder
	b.WriteString(PathPrefix)
	b.WriteByte('/')
	b.WriteString(e.Namespace)
	b.WriteByte('/')
	if e.External {
		b.WriteString(externalMarker)
		b.WriteByte('.')
	}
	b.WriteString(e.Field)
	b.WriteByte('.')
	b.WriteString(e.Code)
	return b.String()
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s %v", e.Path(), e.Params)
}

// Errors 按上报顺序保存校验拒绝。
type Errors []FieldError

// Empty 判断是否没有任何拒绝。
func (e Errors) Empty() bool { return len(e) == 0 }

// Paths 返回全部错误路径。
func (e Errors) Paths() []string {
	out := make([]string, 0, len(e))
	for _, fe := range e {
		out = append(out, fe.Path())
	}
	return out
}

// Field 返回指定字段的拒绝。
func (e Errors) Field(alias string) Errors {
	var out Errors
	for _, fe := range e {
		if fe.Field == alias {
			out = append(out, fe)
		}
	}
	return out
}
