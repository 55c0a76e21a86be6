package container

import (
	"cmp"
	"fmt"
	"log"
	"slices"
)

// IHasVAndLength 链表元素需要提供速度与长度
type IHasVAndLength interface {
	V() float64      // 获取速度
	Length() float64 // 获取长度
}

// ListNode 按位置S升序排列的双向链表节点
// 说明：S为元素车头所在的位置，Extra为挂在节点上的附加信息（如本步变道方向）
type ListNode[T IHasVAndLength, E any] struct {
	parent     *List[T, E]
	prev, next *ListNode[T, E]
	S          float64 // 排序键
	Value      T
	Extra      E
}

func (n *ListNode[T, E]) String() string {
	return fmt.Sprintf("Node{S:%v, Value:%v, Extra:%+v}", n.S, n.Value, n.Extra)
}

// Prev 前驱节点，头节点返回nil
func (n *ListNode[T, E]) Prev() *ListNode[T, E] { return n.prev }

// Next 后继节点，尾节点返回nil
func (n *ListNode[T, E]) Next() *ListNode[T, E] { return n.next }

// Parent 节点所在的链表，不在任何链表中时返回nil
func (n *ListNode[T, E]) Parent() *List[T, E] { return n.parent }

// V 元素速度
func (n *ListNode[T, E]) V() float64 { return n.Value.V() }

// L 元素长度
func (n *ListNode[T, E]) L() float64 { return n.Value.Length() }

// InsertBefore 在当前节点之前插入add
// 说明：add必须不在任何链表中
func (n *ListNode[T, E]) InsertBefore(add *ListNode[T, E]) {
	if add.parent != nil {
		log.Panic("insert node who already in list")
	}
	add.parent = n.parent
	add.next = n
	add.prev = n.prev
	n.prev = add
	if add.prev != nil {
		add.prev.next = add
	} else {
		add.parent.head = add
	}
	n.parent.length++
}

// InsertAfter 在当前节点之后插入add
// 说明：add必须不在任何链表中
func (n *ListNode[T, E]) InsertAfter(add *ListNode[T, E]) {
	if add.parent != nil {
		log.Panic("insert node who already in list")
	}
	add.parent = n.parent
	add.prev = n
	add.next = n.next
	n.next = add
	if add.next != nil {
		add.next.prev = add
	} else {
		add.parent.tail = add
	}
	n.parent.length++
}

// List 按S升序维护的双向链表
// 功能：存放一条车道上的车辆，Prepare阶段通过PopUnsorted+Merge恢复有序
type List[T IHasVAndLength, E any] struct {
	ID         string
	head, tail *ListNode[T, E]
	length     int
}

func (l *List[T, E]) String() string {
	return fmt.Sprintf("List{ID:%v, Len:%d}", l.ID, l.length)
}

// Keys 按链表顺序返回所有节点的S
func (l *List[T, E]) Keys() []float64 {
	keys := make([]float64, 0, l.length)
	for node := l.head; node != nil; node = node.next {
		keys = append(keys, node.S)
	}
	return keys
}

// Values 按链表顺序返回所有元素
func (l *List[T, E]) Values() []T {
	values := make([]T, 0, l.length)
	for node := l.head; node != nil; node = node.next {
		values = append(values, node.Value)
	}
	return values
}

// Len 节点数
func (l *List[T, E]) Len() int { return l.length }

// First 头节点（S最小），空链表返回nil
func (l *List[T, E]) First() *ListNode[T, E] { return l.head }

// Last 尾节点（S最大），空链表返回nil
func (l *List[T, E]) Last() *ListNode[T, E] { return l.tail }

// PushFront 插入到链表头部
func (l *List[T, E]) PushFront(add *ListNode[T, E]) {
	if add.parent != nil {
		log.Panic("push front node who already in list")
	}
	add.next = nil
	add.prev = nil
	if l.head == nil {
		add.parent = l
		l.head = add
		l.tail = add
		l.length++
		return
	}
	// length++和add.parent在InsertBefore中处理
	l.head.InsertBefore(add)
}

// PushBack 插入到链表尾部
func (l *List[T, E]) PushBack(add *ListNode[T, E]) {
	if add.parent != nil {
		log.Panic("push back node who already in list")
	}
	add.next = nil
	add.prev = nil
	if l.tail == nil {
		add.parent = l
		l.head = add
		l.tail = add
		l.length++
		return
	}
	// length++和add.parent在InsertAfter中处理
	l.tail.InsertAfter(add)
}

// Remove 移除属于本链表的节点
func (l *List[T, E]) Remove(node *ListNode[T, E]) {
	if node.parent != l {
		log.Panic("remove node from wrong list")
	}
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}
	node.prev = nil
	node.next = nil
	node.parent = nil
	l.length--
}

// PopUnsorted 移除所有S小于前驱的节点并返回
// 说明：剩余节点保持升序；环路上越过终点回绕到起点的车辆会在这里被取出
func (l *List[T, E]) PopUnsorted() (unsorted []*ListNode[T, E]) {
	for node := l.head; node != nil; {
		next := node.next
		if node.prev != nil && node.prev.S > node.S {
			l.Remove(node)
			unsorted = append(unsorted, node)
		}
		node = next
	}
	return unsorted
}

// Merge 将一批不在链表中的节点按S插入
// 算法说明：
// 1. 将adds按S稳定排序
// 2. 与链表做一次归并，S相同时新节点排在已有节点之前
func (l *List[T, E]) Merge(adds []*ListNode[T, E]) {
	slices.SortStableFunc(adds, func(a, b *ListNode[T, E]) int { return cmp.Compare(a.S, b.S) })
	node := l.head
	for _, add := range adds {
		for node != nil && node.S < add.S {
			node = node.next
		}
		if node != nil {
			node.InsertBefore(add)
		} else {
			l.PushBack(add)
		}
	}
}
