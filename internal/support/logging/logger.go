// 文件路径: internal/support/logging/logger.go
// 模块说明: 这是 internal 模块里的 logger 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options customize the slog logger construction.
type Options struct {
	Level     slog.Level
	Format    string
	AddSource bool
	// Output 默认为 os.Stderr，CLI 的标准输出只留给命令结果。
	Output io.Writer
}

// New returns a slog.Logger configured according to options (JSON by default).
func New(opts Options) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: opts.Level, AddSource: opts.AddSource}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var handler slog.Handler
	switch strings.ToLower(opts.Format) {
	case "text", "console":
		handler = slog.NewTextHandler(out, handlerOpts)
	default:
		handler = slog.NewJSONHandler(out, handlerOpts)
	}

	return slog.New(handler)
}

// ParseLevel 把 debug/info/warn/error 转换为 slog.Level，无法识别时返回 Info。
func ParseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Discard 返回丢弃全部输出的 logger，供测试与静默模式使用。
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
