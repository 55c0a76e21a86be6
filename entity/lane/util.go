package lane

import (
	"sync"

	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/container"
)

// laneList 带增删缓冲的车道车辆链表
// 功能：Update阶段各车辆并发登记增删，Prepare阶段统一应用并恢复有序
// 泛型参数：T-列表元素类型，E-节点附加信息类型
type laneList[T container.IHasVAndLength, E any] struct {
	list              *container.List[T, E]
	addBuffer         []*container.ListNode[T, E]
	addBufferMutex    sync.Mutex
	removeBuffer      []*container.ListNode[T, E]
	removeBufferMutex sync.Mutex
}

// newLaneList 创建车道链表，id用于日志
func newLaneList[T container.IHasVAndLength, E any](id string) laneList[T, E] {
	return laneList[T, E]{
		list: &container.List[T, E]{
			ID: id,
		},
		addBuffer:    make([]*container.ListNode[T, E], 0),
		removeBuffer: make([]*container.ListNode[T, E], 0),
	}
}

// prepare 应用缓冲区中的增删
// 算法说明：
// 1. 移除删除缓冲区中的节点
// 2. 取出位置逆序的节点（环路上越过终点的车辆）
// 3. 将新增节点与逆序节点一并归并回链表
func (l *laneList[T, E]) prepare() {
	for _, v := range l.removeBuffer {
		l.list.Remove(v)
	}
	unsorted := l.list.PopUnsorted()
	l.list.Merge(append(l.addBuffer, unsorted...))
	l.removeBuffer = l.removeBuffer[:0]
	l.addBuffer = l.addBuffer[:0]
}

// add 登记新增节点（线程安全），节点必须不在任何链表中
func (l *laneList[T, E]) add(node *container.ListNode[T, E]) {
	if node.Parent() != nil {
		log.Panic("add node who has parent")
	}
	l.addBufferMutex.Lock()
	l.addBuffer = append(l.addBuffer, node)
	l.addBufferMutex.Unlock()
}

// remove 登记删除节点（线程安全），节点必须属于本链表
func (l *laneList[T, E]) remove(node *container.ListNode[T, E]) {
	if node.Parent() != l.list {
		log.Panicf("remove node %v (parent=%v) from wrong parent %+v", node, node.Parent(), l.list)
	}
	l.removeBufferMutex.Lock()
	l.removeBuffer = append(l.removeBuffer, node)
	l.removeBufferMutex.Unlock()
}
