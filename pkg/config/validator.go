package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// Validate 校验配置的引用完整性（对外导出）
//
// 只做配置层校验：ID非空且唯一、job引用可解析、依赖引用指向同一
// workflow内的task、cron表达式合法。图层面的校验（自环、重复边、
// 循环依赖）由graph包在构图和冻结时完成
func Validate(cfg *Config) error {
	jobIDs := make(map[string]struct{}, len(cfg.Jobs))
	for i, job := range cfg.Jobs {
		if job.JobID == "" {
			return fmt.Errorf("第%d个job缺少job_id", i+1)
		}
		if job.FuncKey == "" {
			return fmt.Errorf("job %s 缺少func_key", job.JobID)
		}
		if _, dup := jobIDs[job.JobID]; dup {
			return fmt.Errorf("job_id重复: %s", job.JobID)
		}
		jobIDs[job.JobID] = struct{}{}
	}

	workflowIDs := make(map[string]struct{}, len(cfg.Workflows))
	for i, wf := range cfg.Workflows {
		if wf.WorkflowID == "" {
			return fmt.Errorf("第%d个workflow缺少workflow_id", i+1)
		}
		if _, dup := workflowIDs[wf.WorkflowID]; dup {
			return fmt.Errorf("workflow_id重复: %s", wf.WorkflowID)
		}
		workflowIDs[wf.WorkflowID] = struct{}{}

		if wf.Cron != "" {
			parser := cron.NewParser(
				cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
			if _, err := parser.Parse(wf.Cron); err != nil {
				return fmt.Errorf("workflow %s 的cron表达式无效: %w", wf.WorkflowID, err)
			}
		}

		if len(wf.Tasks) == 0 {
			return fmt.Errorf("workflow %s 没有任何task", wf.WorkflowID)
		}
		taskIDs := make(map[string]struct{}, len(wf.Tasks))
		for j, t := range wf.Tasks {
			if t.TaskID == "" {
				return fmt.Errorf("workflow %s 第%d个task缺少task_id", wf.WorkflowID, j+1)
			}
			if _, dup := taskIDs[t.TaskID]; dup {
				return fmt.Errorf("workflow %s 中task_id重复: %s", wf.WorkflowID, t.TaskID)
			}
			taskIDs[t.TaskID] = struct{}{}
			if t.JobID == "" {
				return fmt.Errorf("workflow %s 的task %s 缺少job_id", wf.WorkflowID, t.TaskID)
			}
			if _, ok := jobIDs[t.JobID]; !ok {
				return fmt.Errorf("workflow %s 的task %s 引用了未定义的job: %s",
					wf.WorkflowID, t.TaskID, t.JobID)
			}
		}
		for _, t := range wf.Tasks {
			for _, dep := range t.Dependencies {
				if dep == t.TaskID {
					return fmt.Errorf("workflow %s 的task %s 依赖自身", wf.WorkflowID, t.TaskID)
				}
				if _, ok := taskIDs[dep]; !ok {
					return fmt.Errorf("workflow %s 的task %s 依赖了未定义的task: %s",
						wf.WorkflowID, t.TaskID, dep)
				}
			}
		}
	}
	return nil
}
