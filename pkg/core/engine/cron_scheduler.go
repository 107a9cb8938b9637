package engine

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"
)

// CronScheduler 定时调度器（对外导出）
// 周期性触发已加载工作流的执行，表达式支持秒级精度
type CronScheduler struct {
	cron    *cron.Cron
	engine  *Engine
	entries map[string]cron.EntryID // workflowID -> cron.EntryID
	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewCronScheduler 创建定时调度器（对外导出）
func NewCronScheduler(eng *Engine) *CronScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &CronScheduler{
		cron:    cron.New(cron.WithSeconds()),
		engine:  eng,
		entries: make(map[string]cron.EntryID),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// RegisterWorkflow 把已加载的工作流注册到定时调度器（对外导出）
// 工作流定义必须带有合法的cron表达式
func (cs *CronScheduler) RegisterWorkflow(workflowID string) error {
	wf, ok := cs.engine.Workflow(workflowID)
	if !ok {
		return fmt.Errorf("workflow未加载: %s", workflowID)
	}
	cronExpr := wf.Definition().Cron
	if cronExpr == "" {
		return fmt.Errorf("workflow %s 未设置cron表达式", workflowID)
	}
	parser := cron.NewParser(
		cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(cronExpr); err != nil {
		return fmt.Errorf("workflow %s 的cron表达式无效: %w", workflowID, err)
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	if _, exists := cs.entries[workflowID]; exists {
		return fmt.Errorf("workflow %s 已注册到定时调度器", workflowID)
	}
	entryID, err := cs.cron.AddFunc(cronExpr, func() {
		cs.triggerWorkflow(workflowID)
	})
	if err != nil {
		return fmt.Errorf("添加cron任务失败: %w", err)
	}
	cs.entries[workflowID] = entryID
	log.Printf("[Cron调度器] 已注册workflow: ID=%s, CronExpr=%s", workflowID, cronExpr)
	return nil
}

// UnregisterWorkflow 从定时调度器移除工作流（对外导出）
func (cs *CronScheduler) UnregisterWorkflow(workflowID string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	entryID, exists := cs.entries[workflowID]
	if !exists {
		return fmt.Errorf("workflow %s 未注册到定时调度器", workflowID)
	}
	cs.cron.Remove(entryID)
	delete(cs.entries, workflowID)
	log.Printf("[Cron调度器] 已移除workflow: ID=%s", workflowID)
	return nil
}

// Registered 返回所有已注册的workflowID
func (cs *CronScheduler) Registered() []string {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	ids := make([]string, 0, len(cs.entries))
	for id := range cs.entries {
		ids = append(ids, id)
	}
	return ids
}

// triggerWorkflow 到点触发一次执行
func (cs *CronScheduler) triggerWorkflow(workflowID string) {
	select {
	case <-cs.ctx.Done():
		return
	default:
	}
	record, err := cs.engine.RunWorkflow(cs.ctx, workflowID, nil)
	if err != nil {
		runID := ""
		if record != nil {
			runID = record.RunID
		}
		log.Printf("[Cron调度器] workflow执行失败: ID=%s, run=%s, err=%v",
			workflowID, runID, err)
		return
	}
	log.Printf("[Cron调度器] workflow执行成功: ID=%s, run=%s", workflowID, record.RunID)
}

// Start 启动定时调度（对外导出）
func (cs *CronScheduler) Start() {
	cs.cron.Start()
	log.Printf("[Cron调度器] 已启动, 注册数=%d", len(cs.Registered()))
}

// Stop 停止定时调度（对外导出）
// 已触发的执行不会被中断
func (cs *CronScheduler) Stop() {
	cs.cancel()
	cs.cron.Stop()
	log.Printf("[Cron调度器] 已停止")
}
