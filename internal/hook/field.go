package hook

// Field 是 hook 结果作用的可变字段状态。
//
// 实现方必须是一份独立快照：hook 在一次校验中对它的修改不能泄漏到缓存的字段定义上。
type Field interface {
	Alias() string
	Required() bool
	SetRequired(required bool)
	Description() string
	SetDescription(description string)
	// Error 返回 hook 设置的错误信息；没有错误时 ok 为 false。
	Error() (msg string, ok bool)
	SetError(msg string)
	// ForcedValue 返回强制值，nil 表示未设置。
	ForcedValue() any
	SetForcedValue(value any)
	Values() []any
	SetValues(values []any)
}

// Owner 是 Manager 所属的字段。Manager 只持有引用，不拥有字段。
type Owner interface {
	Alias() string
	// State 返回一份重置到声明式默认值的新快照。
	State() Field
}
