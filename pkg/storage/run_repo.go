// Package storage 定义运行历史的存储接口与记录类型。
//
// 存储只做事后记录（观测用途），调度器本身从不读取运行历史。
package storage

import (
	"context"
	"time"
)

// 运行状态常量
const (
	StatusRunning   = "running"   // 执行中
	StatusSucceeded = "succeeded" // 全部任务成功
	StatusFailed    = "failed"    // 某个任务失败
	StatusPanicked  = "panicked"  // 某个任务panic
)

// RunRecord 一次工作流执行的记录（对外导出）
type RunRecord struct {
	RunID      string     `db:"run_id" json:"run_id"`
	WorkflowID string     `db:"workflow_id" json:"workflow_id"`
	Status     string     `db:"status" json:"status"`
	FailedNode string     `db:"failed_node" json:"failed_node"` // 失败/panic的节点名，成功时为空
	Error      string     `db:"error" json:"error"`             // 失败原因文本，成功时为空
	StartedAt  time.Time  `db:"started_at" json:"started_at"`
	FinishedAt *time.Time `db:"finished_at" json:"finished_at"` // 执行中为nil
}

// RunRepository 运行历史存储接口（对外导出）
type RunRepository interface {
	// Save 记录一次新开始的执行
	Save(ctx context.Context, record *RunRecord) error
	// UpdateFinished 执行结束后更新状态与结果
	UpdateFinished(ctx context.Context, record *RunRecord) error
	// GetByID 按运行ID查询
	GetByID(ctx context.Context, runID string) (*RunRecord, error)
	// ListByWorkflow 按Workflow查询，按开始时间倒序
	ListByWorkflow(ctx context.Context, workflowID string, limit int) ([]*RunRecord, error)
	// ListRecent 查询最近的执行，按开始时间倒序
	ListRecent(ctx context.Context, limit int) ([]*RunRecord, error)
}
