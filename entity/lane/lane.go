package lane

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/unit"
)

// Lane 环路上的一条车道
// 功能：维护车道上按位置排序的车辆链表，提供相邻车道、限速与邻车扫描
// 说明：位置s取值[0, length)，越过终点后回到起点
type Lane struct {
	index  int
	length float64
	width  float64

	speedLimits  map[entity.GtuType]unit.Speed
	defaultLimit unit.Speed
	// 两侧车道线为实线，禁止驶入或驶出
	noLaneChange bool

	leftLane, rightLane *Lane

	vehicles laneList[entity.IVehicle, entity.VehicleExtra]
}

// newLane 根据道路配置创建编号为index的车道
func newLane(index int, road config.Road) *Lane {
	l := &Lane{
		index:        index,
		length:       road.Length,
		width:        road.LaneWidth,
		speedLimits:  make(map[entity.GtuType]unit.Speed),
		defaultLimit: unit.Speed(road.SpeedLimits[config.DefaultSpeedLimitKey]),
		noLaneChange: lo.Contains(road.NoLaneChange, index),
		vehicles:     newLaneList[entity.IVehicle, entity.VehicleExtra](fmt.Sprintf("lane %d vehicles", index)),
	}
	for k, v := range road.SpeedLimits {
		if k != config.DefaultSpeedLimitKey {
			l.speedLimits[entity.GtuType(k)] = unit.Speed(v)
		}
	}
	return l
}

// prepare 应用本步的车辆增删，并将越过终点的车辆重新排到链表头部
func (l *Lane) prepare() {
	l.vehicles.prepare()
}

func (l *Lane) String() string {
	return fmt.Sprintf("Lane %d", l.index)
}

// ID 环路上车道ID即车道编号
func (l *Lane) ID() int32 {
	return int32(l.index)
}

func (l *Lane) Index() int      { return l.index }
func (l *Lane) Length() float64 { return l.length }
func (l *Lane) Width() float64  { return l.width }

// LeftLane 左侧车道，不存在时返回nil
func (l *Lane) LeftLane() entity.ILane {
	if l.leftLane == nil {
		return nil
	}
	return l.leftLane
}

// RightLane 右侧车道，不存在时返回nil
func (l *Lane) RightLane() entity.ILane {
	if l.rightLane == nil {
		return nil
	}
	return l.rightLane
}

// NeighborLane 根据side获取左(side=0)/右(side=1)侧的车道
func (l *Lane) NeighborLane(side int) entity.ILane {
	switch side {
	case entity.LEFT:
		return l.LeftLane()
	case entity.RIGHT:
		return l.RightLane()
	default:
		log.Panicf("invalid side %d", side)
		return nil
	}
}

func (l *Lane) neighbor(side int) *Lane {
	if side == entity.LEFT {
		return l.leftLane
	}
	return l.rightLane
}

// LaneChangeAllowed 是否允许向side侧合法变道
// 说明：目标车道存在，且本车道与目标车道都未被设置为禁止变道
func (l *Lane) LaneChangeAllowed(side int) bool {
	target := l.neighbor(side)
	return target != nil && !l.noLaneChange && !target.noLaneChange
}

// SpeedLimit 对指定车辆类别的限速
// 说明：未单独配置的类别使用默认限速，未知类别（空字符串）返回错误
func (l *Lane) SpeedLimit(gtuType entity.GtuType) (unit.Speed, error) {
	if gtuType == "" {
		return 0, fmt.Errorf("%v: no speed limit for unknown gtu type", l)
	}
	if v, ok := l.speedLimits[gtuType]; ok {
		return v, nil
	}
	return l.defaultLimit, nil
}

// Vehicles 车道上的车辆链表，按位置升序
func (l *Lane) Vehicles() *entity.VehicleList {
	return l.vehicles.list
}

// VehicleCount 车辆数
func (l *Lane) VehicleCount() int {
	return l.vehicles.list.Len()
}

// AddVehicle 向车道链表中添加车辆（Prepare后生效）
func (l *Lane) AddVehicle(node *entity.VehicleNode) {
	l.vehicles.add(node)
}

// RemoveVehicle 从车道链表中移除车辆（Prepare后生效）
func (l *Lane) RemoveVehicle(node *entity.VehicleNode) {
	l.vehicles.remove(node)
}

// Wrap 将任意位置归一化到[0, length)
func (l *Lane) Wrap(s float64) float64 {
	s = math.Mod(s, l.length)
	if s < 0 {
		s += l.length
	}
	return s
}

// Scan 以s为观察点扫描车道上的车辆
// 功能：返回前方ahead、后方behind范围内的车辆，按距离由近及远排序
// 参数：s-观察点位置，ahead-前方扫描距离，behind-后方扫描距离
// 返回：leaders-Ds>=0的车辆，followers-Ds<0的车辆
// 算法说明：
// 1. 对每辆车计算环路上的有向距离Ds，取值[-L/2, L/2)
// 2. 按ahead/behind过滤后分别按|Ds|升序排列
// 说明：观察点所在车辆自身（Ds=0）也会出现在leaders中，由调用方排除
func (l *Lane) Scan(s, ahead, behind float64) (leaders, followers []entity.Neighbor) {
	half := l.length / 2
	for node := l.vehicles.list.First(); node != nil; node = node.Next() {
		ds := l.Wrap(node.S-s+half) - half
		switch {
		case ds >= 0 && ds <= ahead:
			leaders = append(leaders, entity.Neighbor{Node: node, Ds: ds})
		case ds < 0 && -ds <= behind:
			followers = append(followers, entity.Neighbor{Node: node, Ds: ds})
		}
	}
	slices.SortFunc(leaders, func(a, b entity.Neighbor) int { return cmp.Compare(a.Ds, b.Ds) })
	slices.SortFunc(followers, func(a, b entity.Neighbor) int { return cmp.Compare(b.Ds, a.Ds) })
	return
}
