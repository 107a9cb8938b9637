package dto

// ExecuteRequest 触发一次workflow执行
type ExecuteRequest struct {
	// Params 运行级参数，对所有任务只读可见
	Params map[string]string `json:"params"`
}

// UploadRequest 上传workflow配置（YAML原文）
type UploadRequest struct {
	Config string `json:"config" binding:"required"`
}
