// Package event 提供运行事件的定义与发布订阅总线。
//
// 事件用于观察一次图执行的生命周期（运行级与节点级），
// 调度器本身不依赖事件总线。
package event

import (
	"time"

	"github.com/google/uuid"
)

// Type 事件类型
type Type string

const (
	// 运行级事件
	EventRunStarted   Type = "run.started"   // 一次执行开始
	EventRunSucceeded Type = "run.succeeded" // 一次执行全部成功
	EventRunFailed    Type = "run.failed"    // 一次执行失败（含panic）

	// 节点级事件
	EventNodeStarted   Type = "node.started"   // 节点任务开始
	EventNodeSucceeded Type = "node.succeeded" // 节点任务成功
	EventNodeFailed    Type = "node.failed"    // 节点任务返回错误
	EventNodePanicked  Type = "node.panicked"  // 节点任务panic
)

// RunEvent 运行事件（对外导出）
type RunEvent struct {
	ID         string    `json:"id"`          // 事件ID（UUID）
	Type       Type      `json:"type"`        // 事件类型
	RunID      string    `json:"run_id"`      // 运行ID
	WorkflowID string    `json:"workflow_id"` // Workflow ID
	Node       string    `json:"node"`        // 节点名（运行级事件为空）
	Message    string    `json:"message"`     // 附加信息（失败原因等）
	Timestamp  time.Time `json:"timestamp"`   // 事件时间
}

// NewRunEvent 创建运行事件（对外导出）
func NewRunEvent(eventType Type, runID, workflowID, node, message string) *RunEvent {
	return &RunEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		RunID:      runID,
		WorkflowID: workflowID,
		Node:       node,
		Message:    message,
		Timestamp:  time.Now(),
	}
}
