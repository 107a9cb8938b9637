package graph

import "strings"

// RootName 合成根节点的保留名
const RootName = "$ROOT"

// FrozenGraph 冻结后的不可变依赖图（对外导出）
// 已确认无环：每个节点都能从根节点沿子边到达。
// root 是合成节点（index = 节点数），它的子节点恰为所有零入度节点，
// 它的任务永远不应被调用
type FrozenGraph[C any] struct {
	nodes []*Node[C]
	root  *Node[C]
}

// Len 真实节点数（不含合成根节点）
func (f *FrozenGraph[C]) Len() int { return len(f.nodes) }

// Root 合成根节点
func (f *FrozenGraph[C]) Root() *Node[C] { return f.root }

// Node 按索引取节点
func (f *FrozenGraph[C]) Node(index int) *Node[C] { return f.nodes[index] }

// Froze 冻结Graph，校验无环并产出FrozenGraph（对外导出）
// Graph被消费：无论成功失败，调用后原Graph不再可用。
// 使用Kahn算法做拓扑排序检测循环；检测到循环时返回 *CyclicGraphError，
// 其Ring为所有入度无法归零的节点名（插入顺序）
func (g *Graph[C]) Froze() (*FrozenGraph[C], error) {
	if g.frozen {
		return nil, ErrGraphFrozen
	}
	g.frozen = true

	nNode := len(g.nodes)
	root := newNode(nNode, RootName, func(*C) error {
		panic("in ROOT node")
	})

	// 先快照静态入度，再挂根节点的边：
	// Kahn用快照计数，而运行期的parentCount包含根节点补的那条边
	inDegrees := make([]int, nNode)
	for i, node := range g.nodes {
		inDegrees[i] = node.parentCount
	}
	queue := make([]int, 0, nNode)
	for index, inDegree := range inDegrees {
		if inDegree == 0 {
			queue = append(queue, index)
			if err := addChild(root, g.nodes[index]); err != nil {
				return nil, err
			}
		}
	}
	for queueI := 0; queueI < len(queue); queueI++ {
		cursor := g.nodes[queue[queueI]]
		for _, childIndex := range cursor.children {
			inDegrees[childIndex]--
			if inDegrees[childIndex] == 0 {
				queue = append(queue, childIndex)
			}
		}
	}
	if len(queue) < nNode {
		var ring strings.Builder
		ring.WriteByte('[')
		for index, inDegree := range inDegrees {
			if inDegree > 0 {
				if ring.Len() > 1 {
					ring.WriteString(", ")
				}
				ring.WriteString(g.nodes[index].name)
			}
		}
		ring.WriteByte(']')
		return nil, &CyclicGraphError{Ring: ring.String()}
	}

	frozen := &FrozenGraph[C]{nodes: g.nodes, root: root}
	g.nodes = nil
	g.nodeIndices = nil
	return frozen, nil
}
