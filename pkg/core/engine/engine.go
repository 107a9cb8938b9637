// Package engine 把图调度核心与配置、事件、运行历史组装为完整引擎。
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/LENAX/dag-engine/pkg/config"
	"github.com/LENAX/dag-engine/pkg/core/event"
	"github.com/LENAX/dag-engine/pkg/core/graph"
	"github.com/LENAX/dag-engine/pkg/core/scheduler"
	"github.com/LENAX/dag-engine/pkg/core/task"
	"github.com/LENAX/dag-engine/pkg/storage"
)

// Workflow 引擎内一个已加载的工作流（小写字段，不导出）
type Workflow struct {
	def       config.WorkflowDefinition
	scheduler *scheduler.Scheduler[task.TaskContext]
}

// Definition 工作流定义
func (w *Workflow) Definition() config.WorkflowDefinition { return w.def }

// Engine 调度引擎核心结构体（对外导出）
type Engine struct {
	registry  task.FunctionRegistry
	bus       *event.Bus
	runRepo   storage.RunRepository // 可选，nil时不记录运行历史
	workflows map[string]*Workflow  // workflowID -> Workflow
	cron      *CronScheduler
	mu        sync.RWMutex
}

// Option Engine配置项
type Option func(*Engine)

// WithRunRepository 启用运行历史记录
func WithRunRepository(repo storage.RunRepository) Option {
	return func(e *Engine) { e.runRepo = repo }
}

// WithBus 使用外部事件总线（默认自建）
func WithBus(bus *event.Bus) Option {
	return func(e *Engine) { e.bus = bus }
}

// NewEngine 创建Engine实例（对外导出的工厂方法）
func NewEngine(registry task.FunctionRegistry, opts ...Option) *Engine {
	e := &Engine{
		registry:  registry,
		workflows: make(map[string]*Workflow),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.bus == nil {
		e.bus = event.NewBus(false)
	}
	e.cron = NewCronScheduler(e)
	return e
}

// Registry 函数注册中心
func (e *Engine) Registry() task.FunctionRegistry { return e.registry }

// Bus 事件总线
func (e *Engine) Bus() *event.Bus { return e.bus }

// Cron 定时调度器
func (e *Engine) Cron() *CronScheduler { return e.cron }

// RunRepository 运行历史存储（可能为nil）
func (e *Engine) RunRepository() storage.RunRepository { return e.runRepo }

// LoadConfig 加载配置中的所有工作流（对外导出）
// 每个工作流被构图并冻结；任一工作流构图失败则整体失败，
// 已加载的工作流保持不变
func (e *Engine) LoadConfig(cfg *config.Config) error {
	if err := config.Validate(cfg); err != nil {
		return err
	}
	loaded := make(map[string]*Workflow, len(cfg.Workflows))
	for _, def := range cfg.Workflows {
		wf, err := e.buildWorkflow(cfg, def)
		if err != nil {
			return fmt.Errorf("加载workflow %s 失败: %w", def.WorkflowID, err)
		}
		loaded[def.WorkflowID] = wf
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for id, wf := range loaded {
		if _, exists := e.workflows[id]; exists {
			return fmt.Errorf("workflow已加载: %s", id)
		}
		e.workflows[id] = wf
	}
	return nil
}

// buildWorkflow 把工作流定义构建为冻结图与调度器
func (e *Engine) buildWorkflow(cfg *config.Config, def config.WorkflowDefinition) (*Workflow, error) {
	g := graph.New[task.TaskContext]()
	for _, t := range def.Tasks {
		job := cfg.GetJobByID(t.JobID)
		fn, ok := e.registry.Get(job.FuncKey)
		if !ok {
			return nil, fmt.Errorf("task %s 的函数未注册: %s", t.TaskID, job.FuncKey)
		}
		if err := g.AddNode(t.TaskID, e.wrapTask(def.WorkflowID, t.TaskID, fn, t.Params)); err != nil {
			return nil, err
		}
	}
	// 先加完所有节点再加边，依赖边方向为 前置 -> 后置
	for _, t := range def.Tasks {
		for _, dep := range t.Dependencies {
			if err := g.AddEdge(dep, t.TaskID); err != nil {
				return nil, err
			}
		}
	}
	frozen, err := g.Froze()
	if err != nil {
		return nil, err
	}
	return &Workflow{def: def, scheduler: scheduler.New(frozen)}, nil
}

// wrapTask 在任务函数外包一层参数展开与节点级事件发布
// 静态参数中的 ${key} 占位符在每次执行时用运行参数展开
func (e *Engine) wrapTask(workflowID, taskID string, fn task.Func, params map[string]string) graph.Task[task.TaskContext] {
	if params == nil {
		params = make(map[string]string)
	}
	return func(tc *task.TaskContext) error {
		e.publish(event.NewRunEvent(event.EventNodeStarted, tc.RunID, workflowID, taskID, ""))
		expanded, err := task.ExpandParams(params, tc.Params)
		if err != nil {
			e.publish(event.NewRunEvent(event.EventNodeFailed, tc.RunID, workflowID, taskID, err.Error()))
			return err
		}
		if err := fn(tc, expanded); err != nil {
			e.publish(event.NewRunEvent(event.EventNodeFailed, tc.RunID, workflowID, taskID, err.Error()))
			return err
		}
		e.publish(event.NewRunEvent(event.EventNodeSucceeded, tc.RunID, workflowID, taskID, ""))
		return nil
	}
}

func (e *Engine) publish(ev *event.RunEvent) {
	if err := e.bus.Publish(ev); err != nil {
		log.Printf("[Engine] 发布事件失败: type=%s, err=%v", ev.Type, err)
	}
}

// Workflow 按ID查找已加载的工作流
func (e *Engine) Workflow(workflowID string) (*Workflow, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	wf, ok := e.workflows[workflowID]
	return wf, ok
}

// WorkflowIDs 所有已加载的工作流ID
func (e *Engine) WorkflowIDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, 0, len(e.workflows))
	for id := range e.workflows {
		ids = append(ids, id)
	}
	return ids
}

// RunWorkflow 同步执行一个工作流（对外导出）
//
// params 为运行级参数，对所有任务只读可见。
// 返回本次执行的RunRecord；执行失败时error为调度器的
// *RuntimeError / *RuntimePanicError，RunRecord仍然有效。
// ctx 只用于存储调用，不会取消已派发的任务
func (e *Engine) RunWorkflow(ctx context.Context, workflowID string, params map[string]string) (*storage.RunRecord, error) {
	wf, ok := e.Workflow(workflowID)
	if !ok {
		return nil, fmt.Errorf("workflow未加载: %s", workflowID)
	}

	record := &storage.RunRecord{
		RunID:      uuid.NewString(),
		WorkflowID: workflowID,
		Status:     storage.StatusRunning,
		StartedAt:  time.Now().UTC(),
	}
	if e.runRepo != nil {
		if err := e.runRepo.Save(ctx, record); err != nil {
			// 历史记录是观测用途，不阻止执行
			log.Printf("[Engine] 保存运行记录失败: run=%s, err=%v", record.RunID, err)
		}
	}
	e.publish(event.NewRunEvent(event.EventRunStarted, record.RunID, workflowID, "", ""))

	tc := task.NewTaskContext(record.RunID, workflowID, params)
	runErr := wf.scheduler.Run(tc)

	finished := time.Now().UTC()
	record.FinishedAt = &finished
	var failed *scheduler.RuntimeError
	var panicked *scheduler.RuntimePanicError
	switch {
	case runErr == nil:
		record.Status = storage.StatusSucceeded
		e.publish(event.NewRunEvent(event.EventRunSucceeded, record.RunID, workflowID, "", ""))
	case errors.As(runErr, &panicked):
		record.Status = storage.StatusPanicked
		record.FailedNode = panicked.Node
		record.Error = panicked.Error()
		e.publish(event.NewRunEvent(event.EventNodePanicked, record.RunID, workflowID, panicked.Node, panicked.Error()))
		e.publish(event.NewRunEvent(event.EventRunFailed, record.RunID, workflowID, panicked.Node, panicked.Error()))
	case errors.As(runErr, &failed):
		record.Status = storage.StatusFailed
		record.FailedNode = failed.Node
		record.Error = failed.Error()
		e.publish(event.NewRunEvent(event.EventRunFailed, record.RunID, workflowID, failed.Node, failed.Error()))
	default:
		record.Status = storage.StatusFailed
		record.Error = runErr.Error()
		e.publish(event.NewRunEvent(event.EventRunFailed, record.RunID, workflowID, "", runErr.Error()))
	}

	if e.runRepo != nil {
		if err := e.runRepo.UpdateFinished(ctx, record); err != nil {
			log.Printf("[Engine] 更新运行记录失败: run=%s, err=%v", record.RunID, err)
		}
	}
	return record, runErr
}

// Close 关闭引擎持有的资源
func (e *Engine) Close() error {
	e.cron.Stop()
	return e.bus.Close()
}
