package container_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/container"
)

type car struct {
	v, length float64
}

func (c car) V() float64      { return c.v }
func (c car) Length() float64 { return c.length }

type node = container.ListNode[car, int]

func newNode(s float64) *node {
	return &node{S: s, Value: car{v: 10, length: 4}}
}

func TestListInit(t *testing.T) {
	l := &container.List[car, int]{ID: "empty"}
	assert.Nil(t, l.First())
	assert.Nil(t, l.Last())
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, l.Keys())
}

func TestListOperation(t *testing.T) {
	l := &container.List[car, int]{ID: "lane"}

	// 1
	n1 := newNode(1)
	l.PushBack(n1)
	// 2, 1
	n2 := newNode(2)
	l.PushFront(n2)
	// 3, 2, 1
	n3 := newNode(3)
	n2.InsertBefore(n3)
	// 3, 2, 1, 4
	n4 := newNode(4)
	n1.InsertAfter(n4)
	require.Equal(t, 4, l.Len())
	assert.Equal(t, []float64{3, 2, 1, 4}, l.Keys())
	assert.Equal(t, n3, l.First())
	assert.Equal(t, n4, l.Last())
	assert.Equal(t, n1, n1.Next().Prev())
	assert.Equal(t, n1, n1.Prev().Next())
	assert.Equal(t, l, n1.Parent())
	assert.Equal(t, 10.0, n1.V())
	assert.Equal(t, 4.0, n1.L())

	// 0, 3, 2, 1, 4 -> 0, 3, 4 + [2, 1]
	n0 := newNode(0)
	l.PushFront(n0)
	unsorted := l.PopUnsorted()
	assert.ElementsMatch(t, []*node{n2, n1}, unsorted)
	assert.Equal(t, 3, l.Len())

	l.Merge(unsorted)
	assert.Equal(t, []float64{0, 1, 2, 3, 4}, l.Keys())
	assert.Nil(t, l.First().Prev())
	assert.Nil(t, l.Last().Next())

	l.Remove(n4)
	assert.Equal(t, n3, l.Last())
	assert.Equal(t, 4, l.Len())
	assert.Nil(t, n4.Parent())
}

func TestListMergeIntoEmpty(t *testing.T) {
	l := &container.List[car, int]{}
	l.Merge([]*node{newNode(5), newNode(-1), newNode(2)})
	assert.Equal(t, []float64{-1, 2, 5}, l.Keys())
	assert.Equal(t, 3, l.Len())
}

func TestListWrapAroundResort(t *testing.T) {
	// 环路：位于尾部的车辆越过终点后S变小
	l := &container.List[car, int]{}
	a, b, c := newNode(10), newNode(50), newNode(95)
	l.Merge([]*node{a, b, c})
	c.S = 2
	l.Merge(l.PopUnsorted())
	assert.Equal(t, []float64{2, 10, 50}, l.Keys())
	assert.Equal(t, c, l.First())
}

func TestListPanics(t *testing.T) {
	l := &container.List[car, int]{}
	other := &container.List[car, int]{}
	n := newNode(1)
	l.PushBack(n)
	assert.Panics(t, func() { l.PushBack(n) })
	assert.Panics(t, func() { other.Remove(n) })
}
