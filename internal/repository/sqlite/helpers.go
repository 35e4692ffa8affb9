// 文件路径: internal/repository/sqlite/helpers.go
// 模块说明: 这是 internal 模块里的 helpers 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package sqlite

import (
	"encoding/json"
)

func encodeValues(values map[string]any) (string, error) {
	if len(values) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeValues(s string) (map[string]any, error) {
	res := make(map[string]any)
	if s == "" {
		return res, nil
	}
	if err := json.Unmarshal([]byte(s), &res); err != nil {
		return nil, err
	}
	return res, nil
}
