// 行为模型参数仓库：以类型化的参数键存取驾驶员/车辆参数
package parameter

import (
	"errors"
	"fmt"
	"maps"
)

// ErrParameter 参数缺失或取值非法
var ErrParameter = errors.New("parameter")

// Error 参数错误，携带参数ID
type Error struct {
	ID     string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("parameter %s: %s", e.ID, e.Reason)
}

func (e *Error) Unwrap() error {
	return ErrParameter
}

// Type 参数类型（参数键）
// 功能：定义参数的ID、描述、默认值与取值检查
type Type[T any] struct {
	id          string
	description string
	def         T
	hasDefault  bool
	check       func(T) error
}

// NewType 创建带默认值的参数类型
func NewType[T any](id, description string, def T, check func(T) error) Type[T] {
	return Type[T]{id: id, description: description, def: def, hasDefault: true, check: check}
}

// NewTypeNoDefault 创建没有默认值的参数类型
func NewTypeNoDefault[T any](id, description string, check func(T) error) Type[T] {
	return Type[T]{id: id, description: description, check: check}
}

func (t Type[T]) ID() string          { return t.id }
func (t Type[T]) Description() string { return t.description }

// Default 获取默认值，不存在时ok为false
func (t Type[T]) Default() (v T, ok bool) {
	return t.def, t.hasDefault
}

func (t Type[T]) String() string {
	return t.id
}

// Reader 只读参数视图
// 说明：邻车的参数以快照形式暴露给感知层，只允许读取
type Reader interface {
	Lookup(id string) (any, bool)
}

// Parameters 参数集合
// 功能：按参数ID存储取值，支持可重置的临时取值
// 说明：零值可直接使用，nil指针只可读取
type Parameters struct {
	values   map[string]any
	previous map[string]any // SetResettable前的取值，nil表示此前未设置
}

// New 创建空参数集合
func New() *Parameters {
	return &Parameters{
		values:   make(map[string]any),
		previous: make(map[string]any),
	}
}

func (p *Parameters) lazyInit() {
	if p.values == nil {
		p.values = make(map[string]any)
	}
	if p.previous == nil {
		p.previous = make(map[string]any)
	}
}

// Lookup 按ID查找参数值
func (p *Parameters) Lookup(id string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[id]
	return v, ok
}

// Clone 复制参数集合（用于生成供其他车辆读取的快照）
func (p *Parameters) Clone() *Parameters {
	if p == nil {
		return New()
	}
	q := &Parameters{
		values:   maps.Clone(p.values),
		previous: maps.Clone(p.previous),
	}
	q.lazyInit()
	return q
}

// Len 已设置的参数数量
func (p *Parameters) Len() int {
	if p == nil {
		return 0
	}
	return len(p.values)
}

// Get 读取参数，未设置时返回*Error
func Get[T any](r Reader, t Type[T]) (T, error) {
	var zero T
	if r == nil {
		return zero, &Error{ID: t.id, Reason: "no parameters available"}
	}
	raw, ok := r.Lookup(t.id)
	if !ok {
		return zero, &Error{ID: t.id, Reason: "not set"}
	}
	v, ok := raw.(T)
	if !ok {
		return zero, &Error{ID: t.id, Reason: fmt.Sprintf("stored value %v has type %T", raw, raw)}
	}
	return v, nil
}

// Lookup 读取参数，未设置时ok为false
func Lookup[T any](r Reader, t Type[T]) (T, bool) {
	v, err := Get(r, t)
	return v, err == nil
}

// Set 设置参数值，值检查失败时返回错误
func Set[T any](p *Parameters, t Type[T], v T) error {
	if t.check != nil {
		if err := t.check(v); err != nil {
			return &Error{ID: t.id, Reason: err.Error()}
		}
	}
	p.lazyInit()
	p.values[t.id] = v
	delete(p.previous, t.id)
	return nil
}

// SetDefault 将参数设置为默认值
func SetDefault[T any](p *Parameters, t Type[T]) error {
	if !t.hasDefault {
		return &Error{ID: t.id, Reason: "no default value"}
	}
	return Set(p, t, t.def)
}

// SetResettable 临时设置参数值，可通过Reset恢复到设置之前的取值
func SetResettable[T any](p *Parameters, t Type[T], v T) error {
	if t.check != nil {
		if err := t.check(v); err != nil {
			return &Error{ID: t.id, Reason: err.Error()}
		}
	}
	p.lazyInit()
	old, ok := p.values[t.id]
	if !ok {
		old = nil
	}
	p.values[t.id] = v
	p.previous[t.id] = old
	return nil
}

// Reset 恢复SetResettable之前的取值
func Reset[T any](p *Parameters, t Type[T]) error {
	if p == nil {
		return &Error{ID: t.id, Reason: "no parameters available"}
	}
	old, ok := p.previous[t.id]
	if !ok {
		return &Error{ID: t.id, Reason: "reset without resettable set"}
	}
	delete(p.previous, t.id)
	if old == nil {
		delete(p.values, t.id)
	} else {
		p.values[t.id] = old
	}
	return nil
}
