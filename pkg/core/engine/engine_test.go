package engine_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LENAX/dag-engine/pkg/config"
	"github.com/LENAX/dag-engine/pkg/core/engine"
	"github.com/LENAX/dag-engine/pkg/core/event"
	"github.com/LENAX/dag-engine/pkg/core/graph"
	"github.com/LENAX/dag-engine/pkg/core/scheduler"
	"github.com/LENAX/dag-engine/pkg/core/task"
	"github.com/LENAX/dag-engine/pkg/storage"
	"github.com/LENAX/dag-engine/pkg/storage/sqlite"
)

const pipelineYAML = `
jobs:
  - {job_id: extract, func_key: extract}
  - {job_id: transform, func_key: transform}
  - {job_id: load, func_key: load}

workflows:
  - workflow_id: etl
    tasks:
      - task_id: extract_a
        job_id: extract
        params: {source: "a"}
      - task_id: extract_b
        job_id: extract
        params: {source: "b"}
      - task_id: transform_all
        job_id: transform
        dependencies: [extract_a, extract_b]
      - task_id: load_all
        job_id: load
        dependencies: [transform_all]
`

// setupEngine 注册ETL函数并加载配置
func setupEngine(t *testing.T, failTransform bool, opts ...engine.Option) (*engine.Engine, *atomic.Uint32) {
	t.Helper()
	var nRun atomic.Uint32

	registry := task.NewRegistry()
	mustRegister := func(key string, fn task.Func) {
		if err := registry.Register(key, fn); err != nil {
			t.Fatalf("注册函数%s失败: %v", key, err)
		}
	}
	mustRegister("extract", func(tc *task.TaskContext, params map[string]string) error {
		nRun.Add(1)
		tc.PutResult("extract_"+params["source"], params["source"])
		return nil
	})
	mustRegister("transform", func(tc *task.TaskContext, params map[string]string) error {
		nRun.Add(1)
		if failTransform {
			return fmt.Errorf("变换失败")
		}
		if _, ok := tc.GetResult("extract_a"); !ok {
			return fmt.Errorf("上游结果缺失: extract_a")
		}
		if _, ok := tc.GetResult("extract_b"); !ok {
			return fmt.Errorf("上游结果缺失: extract_b")
		}
		tc.PutResult("transformed", true)
		return nil
	})
	mustRegister("load", func(tc *task.TaskContext, params map[string]string) error {
		nRun.Add(1)
		return nil
	})

	eng := engine.NewEngine(registry, opts...)
	t.Cleanup(func() { eng.Close() })

	cfg, err := config.Parse([]byte(pipelineYAML))
	if err != nil {
		t.Fatalf("解析配置失败: %v", err)
	}
	if err := eng.LoadConfig(cfg); err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	return eng, &nRun
}

func TestRunWorkflow(t *testing.T) {
	eng, nRun := setupEngine(t, false)

	record, err := eng.RunWorkflow(context.Background(), "etl", map[string]string{"env": "test"})
	if err != nil {
		t.Fatalf("执行workflow失败: %v", err)
	}
	if record.Status != storage.StatusSucceeded {
		t.Fatalf("状态应为succeeded, 实际: %s", record.Status)
	}
	if record.RunID == "" || record.FinishedAt == nil {
		t.Fatalf("运行记录不完整: %+v", record)
	}
	if n := nRun.Load(); n != 4 {
		t.Fatalf("应执行4个任务, 实际: %d", n)
	}
}

func TestRunWorkflowFailure(t *testing.T) {
	eng, nRun := setupEngine(t, true)

	record, err := eng.RunWorkflow(context.Background(), "etl", nil)
	var failed *scheduler.RuntimeError
	if !errors.As(err, &failed) {
		t.Fatalf("期望RuntimeError, 实际: %v", err)
	}
	if failed.Node != "transform_all" {
		t.Fatalf("失败节点应为transform_all, 实际: %s", failed.Node)
	}
	if record.Status != storage.StatusFailed || record.FailedNode != "transform_all" {
		t.Fatalf("运行记录不匹配: %+v", record)
	}
	// load_all不应被派发
	if n := nRun.Load(); n != 3 {
		t.Fatalf("应执行3个任务, 实际: %d", n)
	}
}

func TestRunWorkflowNotLoaded(t *testing.T) {
	eng, _ := setupEngine(t, false)
	if _, err := eng.RunWorkflow(context.Background(), "missing", nil); err == nil {
		t.Fatalf("未加载的workflow应报错")
	}
}

func TestLoadConfigUnknownFuncKey(t *testing.T) {
	registry := task.NewRegistry()
	eng := engine.NewEngine(registry)
	defer eng.Close()

	cfg, err := config.Parse([]byte(`
jobs:
  - {job_id: j, func_key: nowhere}
workflows:
  - workflow_id: w
    tasks:
      - {task_id: a, job_id: j}
`))
	if err != nil {
		t.Fatalf("解析配置失败: %v", err)
	}
	if err := eng.LoadConfig(cfg); err == nil {
		t.Fatalf("未注册的func_key应报错")
	}
}

func TestLoadConfigCyclicWorkflow(t *testing.T) {
	registry := task.NewRegistry()
	if err := registry.Register("noop", func(*task.TaskContext, map[string]string) error { return nil }); err != nil {
		t.Fatalf("注册函数失败: %v", err)
	}
	eng := engine.NewEngine(registry)
	defer eng.Close()

	cfg, err := config.Parse([]byte(`
jobs:
  - {job_id: j, func_key: noop}
workflows:
  - workflow_id: w
    tasks:
      - {task_id: a, job_id: j, dependencies: [b]}
      - {task_id: b, job_id: j, dependencies: [a]}
`))
	if err != nil {
		t.Fatalf("解析配置失败: %v", err)
	}
	err = eng.LoadConfig(cfg)
	if err == nil {
		t.Fatalf("循环依赖应报错")
	}
	var cyclic *graph.CyclicGraphError
	if !errors.As(err, &cyclic) {
		t.Fatalf("期望CyclicGraphError, 实际: %v", err)
	}
	if cyclic.Ring != "[a, b]" {
		t.Fatalf("环报告不匹配: %q", cyclic.Ring)
	}
}

func TestRunWorkflowParamExpansion(t *testing.T) {
	var gotURL atomic.Value

	registry := task.NewRegistry()
	if err := registry.Register("fetch", func(tc *task.TaskContext, params map[string]string) error {
		gotURL.Store(params["url"])
		return nil
	}); err != nil {
		t.Fatalf("注册函数失败: %v", err)
	}
	eng := engine.NewEngine(registry)
	defer eng.Close()

	cfg, err := config.Parse([]byte(`
jobs:
  - {job_id: fetch, func_key: fetch}
workflows:
  - workflow_id: w
    tasks:
      - task_id: a
        job_id: fetch
        params: {url: "${base_url}/data"}
`))
	if err != nil {
		t.Fatalf("解析配置失败: %v", err)
	}
	if err := eng.LoadConfig(cfg); err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	if _, err := eng.RunWorkflow(context.Background(), "w", map[string]string{"base_url": "https://a.example.com"}); err != nil {
		t.Fatalf("执行workflow失败: %v", err)
	}
	if got := gotURL.Load(); got != "https://a.example.com/data" {
		t.Fatalf("占位符未展开: %v", got)
	}

	// 缺少运行参数时任务应失败
	record, err := eng.RunWorkflow(context.Background(), "w", nil)
	var failed *scheduler.RuntimeError
	if !errors.As(err, &failed) || failed.Node != "a" {
		t.Fatalf("期望节点a的RuntimeError, 实际: %v", err)
	}
	if record.Status != storage.StatusFailed {
		t.Fatalf("状态应为failed, 实际: %s", record.Status)
	}
}

func TestRunEvents(t *testing.T) {
	eng, _ := setupEngine(t, false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := eng.Bus().Subscribe(ctx)
	if err != nil {
		t.Fatalf("订阅事件失败: %v", err)
	}

	record, err := eng.RunWorkflow(context.Background(), "etl", nil)
	if err != nil {
		t.Fatalf("执行workflow失败: %v", err)
	}

	// run.started + 4×(node.started+node.succeeded) + run.succeeded
	counts := make(map[event.Type]int)
	deadline := time.After(3 * time.Second)
	for received := 0; received < 10; received++ {
		select {
		case ev := <-events:
			if ev.RunID != record.RunID {
				t.Fatalf("事件RunID不匹配: %s / %s", ev.RunID, record.RunID)
			}
			counts[ev.Type]++
		case <-deadline:
			t.Fatalf("等待事件超时, 已收到: %v", counts)
		}
	}
	if counts[event.EventRunStarted] != 1 || counts[event.EventRunSucceeded] != 1 {
		t.Fatalf("运行级事件数不匹配: %v", counts)
	}
	if counts[event.EventNodeStarted] != 4 || counts[event.EventNodeSucceeded] != 4 {
		t.Fatalf("节点级事件数不匹配: %v", counts)
	}
}

func TestRunHistory(t *testing.T) {
	repo, db, err := sqlite.NewRunRepo(":memory:")
	if err != nil {
		t.Fatalf("创建Repository失败: %v", err)
	}
	db.SetMaxOpenConns(1)
	defer db.Close()

	eng, _ := setupEngine(t, false, engine.WithRunRepository(repo))

	record, err := eng.RunWorkflow(context.Background(), "etl", nil)
	if err != nil {
		t.Fatalf("执行workflow失败: %v", err)
	}

	stored, err := repo.GetByID(context.Background(), record.RunID)
	if err != nil {
		t.Fatalf("查询运行记录失败: %v", err)
	}
	if stored.Status != storage.StatusSucceeded || stored.WorkflowID != "etl" {
		t.Fatalf("运行记录不匹配: %+v", stored)
	}
	if stored.FinishedAt == nil {
		t.Fatalf("结束时间未记录")
	}
}
