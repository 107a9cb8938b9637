package scheduler

import (
	"fmt"
	"runtime"
)

// PanicError 封装任务goroutine中recover到的panic值及当时的调用栈（对外导出）
type PanicError struct {
	// Value panic()的原始值
	Value any

	// Stack panic发生时该goroutine的调用栈
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v\n\n%s", e.Value, e.Stack)
}

// Message 尽力从panic值中提取文本信息
// 字符串原样返回，error取其Error()，其余类型返回false
func (e *PanicError) Message() (string, bool) {
	switch v := e.Value.(type) {
	case string:
		return v, true
	case error:
		return v.Error(), true
	default:
		return "", false
	}
}

func newPanicError(v any) *PanicError {
	// 8KiB 覆盖绝大多数调用栈，超出部分由runtime.Stack自行截断
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return &PanicError{
		Value: v,
		Stack: string(buf[:n]),
	}
}
