// Package dto 定义API请求与响应结构。
package dto

// APIResponse 通用API响应结构
type APIResponse[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) APIResponse[any] {
	return APIResponse[any]{
		Code:    code,
		Message: message,
	}
}

// WorkflowSummary Workflow摘要信息
type WorkflowSummary struct {
	WorkflowID  string `json:"workflow_id"`
	Description string `json:"description"`
	TaskCount   int    `json:"task_count"`
	CronExpr    string `json:"cron_expr,omitempty"`
}

// WorkflowDetail Workflow详细信息
type WorkflowDetail struct {
	WorkflowSummary
	Tasks []TaskSummary `json:"tasks"`
}

// TaskSummary Task摘要信息
type TaskSummary struct {
	TaskID       string            `json:"task_id"`
	JobID        string            `json:"job_id"`
	Params       map[string]string `json:"params,omitempty"`
	Dependencies []string          `json:"dependencies,omitempty"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp"`
}
