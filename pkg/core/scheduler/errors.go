package scheduler

import "fmt"

// RuntimeError 某个任务返回了业务错误（对外导出）
// Err 为任务返回的原始错误，保留给调用方检查（支持errors.Is/As）
type RuntimeError struct {
	Node string
	Err  error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("run %s failed: %v", e.Node, e.Err)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// RuntimePanicError 某个任务异常终止（panic）（对外导出）
type RuntimePanicError struct {
	Node  string
	Panic *PanicError
}

func (e *RuntimePanicError) Error() string {
	if msg, ok := e.Panic.Message(); ok {
		return fmt.Sprintf("run %s panic: %s", e.Node, msg)
	}
	return fmt.Sprintf("run %s panic occurred", e.Node)
}

func (e *RuntimePanicError) Unwrap() error { return e.Panic }
