package graph

import (
	"errors"
	"fmt"
)

// ErrGraphFrozen 图已被冻结后再次操作（对外导出）
// Froze 会消费Graph，冻结之后任何构图操作都返回此错误
var ErrGraphFrozen = errors.New("graph already frozen")

// InvalidNodeError 节点名非法（空名）
type InvalidNodeError struct {
	Name string
}

func (e *InvalidNodeError) Error() string {
	return fmt.Sprintf("invalid node: %s", e.Name)
}

// DuplicatedNodeError 节点名重复注册
type DuplicatedNodeError struct {
	Name string
}

func (e *DuplicatedNodeError) Error() string {
	return fmt.Sprintf("duplicated node: %s", e.Name)
}

// NodeNotFoundError 边引用了未注册的节点
type NodeNotFoundError struct {
	Name string
}

func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("node not found: %s", e.Name)
}

// InvalidEdgeError 边非法（端点为空或自环）
type InvalidEdgeError struct {
	From string
	To   string
}

func (e *InvalidEdgeError) Error() string {
	return fmt.Sprintf("invalid edge: %s -> %s", e.From, e.To)
}

// DuplicatedEdgeError 边重复添加
type DuplicatedEdgeError struct {
	From string
	To   string
}

func (e *DuplicatedEdgeError) Error() string {
	return fmt.Sprintf("duplicated edge: %s -> %s", e.From, e.To)
}

// CyclicGraphError 冻结时检测到循环依赖
// Ring 为所有入度始终无法归零的节点名列表（按插入顺序），
// 格式如 "[A, B]"，是完整的未解析集合而非最小环
type CyclicGraphError struct {
	Ring string
}

func (e *CyclicGraphError) Error() string {
	return fmt.Sprintf("found ring in graph: %s", e.Ring)
}
