// Package scheduler 驱动FrozenGraph的并发执行。
//
// 调度模型：每个就绪节点派发为一个独立goroutine；驱动循环本身单线程，
// 是依赖计数器的唯一修改者和完成事件的唯一消费者，因此调度状态无需加锁。
// 并发只存在于任务执行本身。
package scheduler

import (
	"sync"

	"github.com/LENAX/dag-engine/pkg/core/graph"
)

// Scheduler 并发调度器（对外导出）
// 持有不可变的FrozenGraph，可多次Run；每次Run使用独立的
// 运行期状态和完成通道，多个Run并发调用互不干扰
type Scheduler[C any] struct {
	frozen *graph.FrozenGraph[C]
}

// New 创建Scheduler（对外导出的工厂方法）
func New[C any](frozen *graph.FrozenGraph[C]) *Scheduler[C] {
	return &Scheduler[C]{frozen: frozen}
}

// completion 一次任务执行的完成事件
// 每个被派发的goroutine恰好发送一条
type completion struct {
	index    int
	err      error
	panicked *PanicError
}

// Run 执行整张图（对外导出）
//
// 所有父节点成功完成之前节点不会被派发；依赖已满足的节点并发执行。
// 某个任务失败或panic后不再派发新节点，但已派发的任务不会被取消，
// Run会等它们全部结束后才返回，并报告最先到达的那个失败事件：
// 任务错误返回 *RuntimeError，panic返回 *RuntimePanicError。
// 没有超时机制，永不结束的任务会让Run永久阻塞。
//
// TODO: 小任务数量很大的场景下一任务一goroutine并不划算，可以考虑
// 固定大小的worker池消费就绪队列。
func (s *Scheduler[C]) Run(ctx *C) error {
	nNode := s.frozen.Len()

	// 运行期剩余依赖计数，从静态入度拷贝，只属于本次Run
	remaining := make([]int, nNode)
	for i := 0; i < nNode; i++ {
		remaining[i] = s.frozen.Node(i).ParentCount()
	}

	// 缓冲到节点总数，故障后迟到的事件也不会阻塞发送方
	results := make(chan completion, nNode)
	var wg sync.WaitGroup
	dispatched := 0

	dispatch := func(index int) {
		task := s.frozen.Node(index).Task()
		dispatched++
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := completion{index: index}
			func() {
				defer func() {
					if v := recover(); v != nil {
						c.panicked = newPanicError(v)
					}
				}()
				c.err = task(ctx)
			}()
			results <- c
		}()
	}

	// 合成根节点视为已完成，它的子节点恰为所有零依赖节点
	cursor := s.frozen.Root()
	received := 0
	var runErr error
	for i := 0; i < nNode; i++ {
		for _, childIndex := range cursor.Children() {
			remaining[childIndex]--
			if remaining[childIndex] > 0 {
				continue
			}
			// 计数器从1降到0，恰好派发一次
			dispatch(childIndex)
		}
		c := <-results
		received++
		if c.panicked != nil {
			runErr = &RuntimePanicError{
				Node:  s.frozen.Node(c.index).Name(),
				Panic: c.panicked,
			}
			break
		}
		if c.err != nil {
			runErr = &RuntimeError{
				Node: s.frozen.Node(c.index).Name(),
				Err:  c.err,
			}
			break
		}
		cursor = s.frozen.Node(c.index)
	}

	// 故障后不再更新计数器，但必须收完所有已派发任务的事件，
	// 保证没有goroutine在Run返回后仍引用运行期状态
	for received < dispatched {
		<-results
		received++
	}
	wg.Wait()
	return runErr
}
