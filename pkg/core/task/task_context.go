// Package task 定义引擎层的任务函数契约与注册中心。
package task

import (
	"fmt"
	"strconv"
	"sync"
)

// Func 引擎层任务函数的统一签名（对外导出）
// ctx 为整次执行共享的上下文，params 为该task在配置中声明的静态参数。
// 引擎在构图时把Func包装成 graph.Task 再交给调度器
type Func func(ctx *TaskContext, params map[string]string) error

// TaskContext 一次工作流执行的共享上下文（对外导出）
// 对所有并发执行的任务只读；results 是上下文自身提供的并发安全
// 结果存储，任务可以写入，调度器不感知
type TaskContext struct {
	RunID      string            // 本次执行的运行ID
	WorkflowID string            // 所属Workflow ID
	Params     map[string]string // 执行参数（只读）

	results sync.Map // 节点名 -> 任务写入的结果
}

// NewTaskContext 创建TaskContext（对外导出）
func NewTaskContext(runID, workflowID string, params map[string]string) *TaskContext {
	if params == nil {
		params = make(map[string]string)
	}
	return &TaskContext{
		RunID:      runID,
		WorkflowID: workflowID,
		Params:     params,
	}
}

// GetParam 获取字符串参数
func (tc *TaskContext) GetParam(key string) (string, bool) {
	v, ok := tc.Params[key]
	return v, ok
}

// GetParamInt 获取整型参数
func (tc *TaskContext) GetParamInt(key string) (int, error) {
	v, ok := tc.Params[key]
	if !ok {
		return 0, fmt.Errorf("参数不存在: %s", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("参数%s不是整数: %w", key, err)
	}
	return n, nil
}

// PutResult 写入任务结果（并发安全）
func (tc *TaskContext) PutResult(key string, value any) {
	tc.results.Store(key, value)
}

// GetResult 读取任务结果（并发安全）
func (tc *TaskContext) GetResult(key string) (any, bool) {
	return tc.results.Load(key)
}

// RangeResults 遍历所有结果（并发安全）
func (tc *TaskContext) RangeResults(fn func(key string, value any) bool) {
	tc.results.Range(func(k, v any) bool {
		return fn(k.(string), v)
	})
}
