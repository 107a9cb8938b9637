// Package graph 提供任务依赖图的构建与冻结（编译）能力。
//
// 典型用法：逐个 AddNode / AddEdge 构图，最后 Froze 得到不可变的
// FrozenGraph，交给 scheduler 并发执行。
package graph

// Task 任务函数类型（对外导出）
// ctx 为整个执行过程共享的只读上下文，任务可能在任意goroutine中被调用，
// 因此函数自身必须是并发安全的，且不得持有比一次执行更短生命周期的引用
type Task[C any] func(ctx *C) error

// Node 图中的一个节点
// index 按插入顺序分配且稠密；children 保持边的插入顺序，
// childrenSet 仅用于构图期拒绝重复边
type Node[C any] struct {
	index       int
	name        string
	task        Task[C]
	parentCount int
	children    []int
	childrenSet map[int]struct{}
}

func newNode[C any](index int, name string, task Task[C]) *Node[C] {
	return &Node[C]{
		index:       index,
		name:        name,
		task:        task,
		childrenSet: make(map[int]struct{}),
	}
}

// Index 节点索引（插入顺序分配）
func (n *Node[C]) Index() int { return n.index }

// Name 节点名
func (n *Node[C]) Name() string { return n.name }

// ParentCount 静态入度（含冻结时根节点补的一条边）
func (n *Node[C]) ParentCount() int { return n.parentCount }

// Children 子节点索引列表（边的插入顺序）
// 冻结后不再变化，调用方不得修改
func (n *Node[C]) Children() []int { return n.children }

// Task 节点的任务函数
func (n *Node[C]) Task() Task[C] { return n.task }

// addChild 注册一条 parent -> child 的边
// 重复检查失败时不产生任何状态变更
func addChild[C any](parent, child *Node[C]) error {
	if _, dup := parent.childrenSet[child.index]; dup {
		return &DuplicatedEdgeError{From: parent.name, To: child.name}
	}
	parent.childrenSet[child.index] = struct{}{}
	child.parentCount++
	parent.children = append(parent.children, child.index)
	return nil
}

// Graph 可变的任务依赖图构建器（对外导出）
// 非并发安全，构图应在单个goroutine中完成
type Graph[C any] struct {
	nodes       []*Node[C]
	nodeIndices map[string]int
	frozen      bool
}

// New 创建空Graph（对外导出的工厂方法）
func New[C any]() *Graph[C] {
	return &Graph[C]{
		nodes:       make([]*Node[C], 0),
		nodeIndices: make(map[string]int),
	}
}

// Len 当前节点数
func (g *Graph[C]) Len() int { return len(g.nodes) }

// AddNode 注册一个命名任务节点
// 空名返回 *InvalidNodeError，重名返回 *DuplicatedNodeError，
// 失败时Graph保持调用前的状态
func (g *Graph[C]) AddNode(name string, task Task[C]) error {
	if g.frozen {
		return ErrGraphFrozen
	}
	if name == "" {
		return &InvalidNodeError{Name: name}
	}
	if _, exists := g.nodeIndices[name]; exists {
		return &DuplicatedNodeError{Name: name}
	}
	index := len(g.nodes)
	g.nodes = append(g.nodes, newNode(index, name, task))
	g.nodeIndices[name] = index
	return nil
}

// AddEdge 注册一条 from -> to 的依赖边（to 依赖 from）
// 端点为空或自环返回 *InvalidEdgeError，端点未注册返回 *NodeNotFoundError，
// 重复边返回 *DuplicatedEdgeError；失败时Graph保持调用前的状态
func (g *Graph[C]) AddEdge(from, to string) error {
	if g.frozen {
		return ErrGraphFrozen
	}
	if from == "" || to == "" || from == to {
		return &InvalidEdgeError{From: from, To: to}
	}
	parentIndex, ok := g.nodeIndices[from]
	if !ok {
		return &NodeNotFoundError{Name: from}
	}
	childIndex, ok := g.nodeIndices[to]
	if !ok {
		return &NodeNotFoundError{Name: to}
	}
	// 自环已被拒绝，parent 与 child 必为两个不同的节点
	return addChild(g.nodes[parentIndex], g.nodes[childIndex])
}
