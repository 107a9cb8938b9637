// Package config 提供工作流定义文件（YAML）的加载与校验。
package config

// Config 工作流配置文件根结构（对外导出）
type Config struct {
	Jobs      []JobDefinition      `yaml:"jobs"`
	Workflows []WorkflowDefinition `yaml:"workflows"`
}

// JobDefinition Job定义
// 把配置中的job_id绑定到注册中心里的函数func_key
type JobDefinition struct {
	JobID       string `yaml:"job_id"`
	FuncKey     string `yaml:"func_key"`
	Description string `yaml:"description"`
}

// WorkflowDefinition Workflow定义
type WorkflowDefinition struct {
	WorkflowID  string           `yaml:"workflow_id"`
	Description string           `yaml:"description"`
	Cron        string           `yaml:"cron"` // 可选，设置后可注册到定时调度器
	Tasks       []TaskDefinition `yaml:"tasks"`
}

// TaskDefinition Task定义
// Dependencies 列出必须先成功完成的前置task_id
type TaskDefinition struct {
	TaskID       string            `yaml:"task_id"`
	JobID        string            `yaml:"job_id"`
	Params       map[string]string `yaml:"params"`
	Dependencies []string          `yaml:"dependencies"`
}

// GetJobByID 根据JobID获取Job定义
func (c *Config) GetJobByID(jobID string) *JobDefinition {
	for i := range c.Jobs {
		if c.Jobs[i].JobID == jobID {
			return &c.Jobs[i]
		}
	}
	return nil
}

// GetWorkflowByID 根据WorkflowID获取Workflow定义
func (c *Config) GetWorkflowByID(workflowID string) *WorkflowDefinition {
	for i := range c.Workflows {
		if c.Workflows[i].WorkflowID == workflowID {
			return &c.Workflows[i]
		}
	}
	return nil
}
