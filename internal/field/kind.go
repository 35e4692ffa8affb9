package field

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind 表示无法识别的字段类别。
var ErrUnknownKind = errors.New("unknown field kind / 未知字段类别")

// Kind 决定从记录读取字段值的方式。
type Kind int

const (
	// Scalar 直接读取属性值。
	Scalar Kind = iota
	// BelongsTo 读取唯一关联记录的主键。
	BelongsTo
	// ManyToMany 读取全部关联主键并以逗号连接。
	ManyToMany
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case BelongsTo:
		return "belongs_to"
	case ManyToMany:
		return "many_to_many"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Relational 判断是否为关联类别。
func (k Kind) Relational() bool {
	return k == BelongsTo || k == ManyToMany
}

// ParseKind 解析类别名称，空串视为 Scalar。
func ParseKind(name string) (Kind, error) {
	key := strings.NewReplacer("_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(name)))
	switch key {
	case "", "scalar":
		return Scalar, nil
	case "belongsto":
		return BelongsTo, nil
	case "manytomany":
		return ManyToMany, nil
	}
	return Scalar, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// MarshalText 实现 encoding.TextMarshaler。
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler。
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
