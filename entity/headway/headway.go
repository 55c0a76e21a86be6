// 邻车感知快照：一次感知周期内观察车辆感知到的邻车信息
package headway

import (
	"errors"
	"fmt"
	"math"

	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/parameter"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/unit"
)

var (
	// ErrInvalidArgument 构造参数缺失或非法
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrSpeedLimit 车道无法提供限速
	ErrSpeedLimit = errors.New("speed limit unavailable")
)

// Overlap 并行邻车的重叠描述
type Overlap struct {
	Front   unit.Length // 邻车车头在本车车头前方的距离（负值表示在后方）
	Overlap unit.Length // 纵向重叠长度
	Rear    unit.Length // 邻车车尾在本车车尾前方的距离（负值表示在后方）
}

// Info 所有构造方式共有的邻车信息
type Info struct {
	ID                  string
	GtuType             entity.GtuType // 为空表示未知
	Length              unit.Length
	Width               unit.Length
	DesiredSpeed        unit.Speed
	FacingSameDirection bool
	Status              Status
	Parameters          parameter.Reader // 邻车自身的参数视图，nil表示无法感知
}

// Headway 感知到的邻车
// 功能：保存某一感知时刻的邻车不可变快照
// 说明：纵向(distance)与并行(overlap)两种表示方式恰有一种被设置
type Headway struct {
	info Info

	distance unit.Length
	overlap  *Overlap

	speed        unit.Speed
	acceleration unit.Acceleration
	moving       bool // 速度与加速度是否已知
}

func newHeadway(info Info) (*Headway, error) {
	if info.ID == "" {
		return nil, fmt.Errorf("%w: headway id must not be empty", ErrInvalidArgument)
	}
	if !(info.Width > 0) {
		return nil, fmt.Errorf("%w: width of %s must be set, got %v", ErrInvalidArgument, info.ID, float64(info.Width))
	}
	if math.IsNaN(float64(info.Length)) || info.Length < 0 {
		return nil, fmt.Errorf("%w: length of %s must be non-negative, got %v", ErrInvalidArgument, info.ID, float64(info.Length))
	}
	return &Headway{info: info}, nil
}

// NewMoving 创建前方或后方的运动邻车
func NewMoving(info Info, distance unit.Length, speed unit.Speed, acceleration unit.Acceleration) (*Headway, error) {
	h, err := newHeadway(info)
	if err != nil {
		return nil, err
	}
	h.distance = distance
	h.speed = speed
	h.acceleration = acceleration
	h.moving = true
	return h, nil
}

// NewStatic 创建前方或后方的静止（运动状态未知）邻车
func NewStatic(info Info, distance unit.Length) (*Headway, error) {
	h, err := newHeadway(info)
	if err != nil {
		return nil, err
	}
	h.distance = distance
	return h, nil
}

// NewMovingParallel 创建与本车纵向重叠的运动邻车
func NewMovingParallel(info Info, overlap Overlap, speed unit.Speed, acceleration unit.Acceleration) (*Headway, error) {
	h, err := newHeadway(info)
	if err != nil {
		return nil, err
	}
	h.overlap = &overlap
	h.speed = speed
	h.acceleration = acceleration
	h.moving = true
	return h, nil
}

// NewStaticParallel 创建与本车纵向重叠的静止（运动状态未知）邻车
func NewStaticParallel(info Info, overlap Overlap) (*Headway, error) {
	h, err := newHeadway(info)
	if err != nil {
		return nil, err
	}
	h.overlap = &overlap
	return h, nil
}

func (h *Headway) ID() string                   { return h.info.ID }
func (h *Headway) GtuType() entity.GtuType      { return h.info.GtuType }
func (h *Headway) Length() unit.Length          { return h.info.Length }
func (h *Headway) Width() unit.Length           { return h.info.Width }
func (h *Headway) DesiredSpeed() unit.Speed     { return h.info.DesiredSpeed }
func (h *Headway) IsFacingSameDirection() bool  { return h.info.FacingSameDirection }
func (h *Headway) Status() Status               { return h.info.Status }
func (h *Headway) Parameters() parameter.Reader { return h.info.Parameters }
func (h *Headway) IsBrakingLightsOn() bool      { return h.info.Status.Has(BrakingLights) }
func (h *Headway) IsLeftTurnIndicatorOn() bool  { return h.info.Status.Has(LeftTurnIndicator) }
func (h *Headway) IsRightTurnIndicatorOn() bool { return h.info.Status.Has(RightTurnIndicator) }
func (h *Headway) IsEmergencyLightsOn() bool    { return h.info.Status.Has(EmergencyLights) }
func (h *Headway) IsHonking() bool              { return h.info.Status.Has(Honk) }
func (h *Headway) IsParallel() bool             { return h.overlap != nil }
func (h *Headway) HasKnownKinematics() bool     { return h.moving }

// Distance 纵向距离，并行邻车ok为false
func (h *Headway) Distance() (d unit.Length, ok bool) {
	if h.overlap != nil {
		return 0, false
	}
	return h.distance, true
}

// Overlap 重叠描述，纵向邻车ok为false
func (h *Headway) Overlap() (o Overlap, ok bool) {
	if h.overlap == nil {
		return Overlap{}, false
	}
	return *h.overlap, true
}

// Speed 速度，静止（未知）邻车ok为false
func (h *Headway) Speed() (v unit.Speed, ok bool) {
	return h.speed, h.moving
}

// Acceleration 加速度，静止（未知）邻车ok为false
func (h *Headway) Acceleration() (a unit.Acceleration, ok bool) {
	return h.acceleration, h.moving
}

// SpeedOrZero 速度，未知时视为0（跟驰计算中将其视为静止障碍）
func (h *Headway) SpeedOrZero() unit.Speed {
	if !h.moving {
		return 0
	}
	return h.speed
}

func (h *Headway) String() string {
	if h.overlap != nil {
		return fmt.Sprintf("Headway{ID:%s, Overlap:%+v, V:%v, Status:%v}", h.info.ID, *h.overlap, h.speed, h.info.Status)
	}
	return fmt.Sprintf("Headway{ID:%s, Distance:%v, V:%v, Status:%v}", h.info.ID, h.distance, h.speed, h.info.Status)
}
