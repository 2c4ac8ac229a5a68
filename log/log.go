package log

import (
	"io"
)

var defaultLogger Logger

func init() {
	slog, err := NewSLogWithOptions(&SLogOptions{
		Level:  "info",
		Format: "text",
		Output: "stderr",
	})
	if err != nil {
		panic("failed to initialize default logger: " + err.Error())
	}
	defaultLogger = slog
}

// Default 返回进程默认日志器，输出 text 格式到 stderr
func Default() Logger {
	return defaultLogger
}

// Discard 返回丢弃所有输出的日志器
func Discard() Logger {
	l, _ := NewSLog(io.Discard, "error")
	return l
}
