package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/creamcroissant/fieldconf/internal/model"
	"github.com/creamcroissant/fieldconf/internal/record"
)

var errInvalidAssignment = errors.New("expected alias=value / 参数格式应为 alias=value")

// parseAssignments 把 alias=value 参数解析为值表，保留出现顺序。
func parseAssignments(args []string) (map[string]any, []string, error) {
	values := make(map[string]any, len(args))
	order := make([]string, 0, len(args))
	for _, arg := range args {
		alias, value, ok := strings.Cut(arg, "=")
		alias = strings.TrimSpace(alias)
		if !ok || alias == "" {
			return nil, nil, fmt.Errorf("%w: %q", errInvalidAssignment, arg)
		}
		if _, seen := values[alias]; !seen {
			order = append(order, alias)
		}
		values[alias] = value
	}
	return values, order, nil
}

// buildRecord 按模型声明把值写入新记录；关联字段的值按逗号拆分为主键。
func buildRecord(m *model.Config, values map[string]any) (*record.Map, error) {
	rec := record.New(nil)
	if err := assign(m, rec, values); err != nil {
		return nil, err
	}
	return rec, nil
}

func assign(m *model.Config, rec *record.Map, values map[string]any) error {
	for alias, value := range values {
		d, err := m.Field(alias)
		if err != nil {
			return err
		}
		if !d.Kind().Relational() {
			rec.Set(alias, value)
			continue
		}
		rec.SetRelated(alias, splitKeys(fmt.Sprint(value))...)
	}
	return nil
}

func splitKeys(raw string) []string {
	var keys []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			keys = append(keys, part)
		}
	}
	return keys
}
