package entity

import (
	"fmt"

	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/parameter"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/container"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/unit"
)

// 方位常量
const (
	NONE   = -1
	LEFT   = 0 // 左侧
	RIGHT  = 1 // 右侧
	BEFORE = 0 // 后方，等价于prev/behind
	AFTER  = 1 // 前方，等价于next/ahead
)

// Flip 左右互换
func Flip(side int) int {
	return 1 - side
}

// SideName 方位名称
func SideName(side int) string {
	switch side {
	case LEFT:
		return "LEFT"
	case RIGHT:
		return "RIGHT"
	default:
		return "NONE"
	}
}

// RelativeLane 相对车道，左负右正，0为当前车道
type RelativeLane int

const (
	RelLeftLeft   RelativeLane = -2
	RelLeft       RelativeLane = -1
	RelCurrent    RelativeLane = 0
	RelRight      RelativeLane = 1
	RelRightRight RelativeLane = 2
)

// Adjacent 获取side方向相邻n条车道的相对车道
func Adjacent(side, n int) RelativeLane {
	if side == LEFT {
		return RelativeLane(-n)
	}
	return RelativeLane(n)
}

func (r RelativeLane) String() string {
	switch {
	case r < 0:
		return fmt.Sprintf("LEFT(%d)", -r)
	case r > 0:
		return fmt.Sprintf("RIGHT(%d)", r)
	default:
		return "CURRENT"
	}
}

// GtuType 交通参与者类别，空字符串表示未知
type GtuType string

const (
	GtuTypeCar   GtuType = "CAR"
	GtuTypeTruck GtuType = "TRUCK"
)

// SpeedLimitInfo 限速信息
type SpeedLimitInfo struct {
	MaxVehicleSpeed unit.Speed // 车辆最高速度
	SpeedLimit      unit.Speed // 车道对该类车辆的限速
}

// 转向灯与双闪状态
type Indicators struct {
	Left   bool
	Right  bool
	Hazard bool
}

// VehicleSnapshot 车辆在上一步结束时的状态，供其他车辆感知
// 说明：Prepare阶段生成，Update阶段只读
type VehicleSnapshot struct {
	ID           int32
	GtuType      GtuType
	Lane         int // 所在车道编号，最左侧为0
	S            float64
	V            float64
	A            float64
	Length       float64
	Width        float64
	DesiredSpeed float64
	Indicators   Indicators
	Honk         bool
	LaneChange   int                   // 上一步执行的变道方向NONE/LEFT/RIGHT
	Params       *parameter.Parameters // 参数快照
}

// IndicatorsAt 获取指定时刻的转向灯状态（快照本身即该时刻的状态）
func (s *VehicleSnapshot) IndicatorsAt(float64) Indicators { return s.Indicators }

// AccelerationAt 获取指定时刻的加速度
func (s *VehicleSnapshot) AccelerationAt(float64) unit.Acceleration { return unit.Acceleration(s.A) }

// HonkingAt 获取指定时刻是否鸣笛
func (s *VehicleSnapshot) HonkingAt(float64) bool { return s.Honk }

// entity/vehicle/vehicle.go的依赖倒置
type IVehicle interface {
	ID() int32                  // 获取车辆ID
	GtuType() GtuType           // 获取车辆类别
	V() float64                 // 获取车辆速度
	Length() float64            // 获取车长
	Snapshot() *VehicleSnapshot // 获取上一步结束时的快照

	String() string
}

// 车辆链表节点上的附加信息
type VehicleExtra struct {
	LaneChange int // 本步骤正在进行的变道方向NONE/LEFT/RIGHT
}

// 车辆链表节点类型
type VehicleNode = container.ListNode[IVehicle, VehicleExtra]

// 车辆链表类型
type VehicleList = container.List[IVehicle, VehicleExtra]

// Neighbor 车道扫描结果
type Neighbor struct {
	Node *VehicleNode
	// 沿行驶方向从观察点到邻车车头的距离，环路上取[-L/2, L/2)
	Ds float64
}

// entity/lane/lane.go的依赖倒置
type ILane interface {
	String() string

	ID() int32        // 获取车道ID
	Index() int       // 车道在道路中的偏移量，最左侧为0，往右侧递增
	Length() float64  // 获取车道（环路）长度
	Width() float64   // 获取车道宽度
	// 将位置映射到环路的[0, Length())
	Wrap(s float64) float64
	LeftLane() ILane  // 获取左侧的车道
	RightLane() ILane // 获取右侧的车道
	// 根据side获取左(side=0)/右(side=1)侧的车道
	NeighborLane(side int) ILane
	// 是否允许向side方向合法变道
	LaneChangeAllowed(side int) bool
	// 获取对指定车辆类别的限速
	SpeedLimit(gtuType GtuType) (unit.Speed, error)

	Vehicles() *VehicleList // 获取车道上的车辆
	VehicleCount() int      // 车辆数

	// 以s为观察点，获取前方ahead、后方behind范围内的车辆，按距离由近及远排序
	Scan(s, ahead, behind float64) (leaders, followers []Neighbor)

	AddVehicle(node *VehicleNode)    // 向车道链表中添加车辆（Prepare后生效）
	RemoveVehicle(node *VehicleNode) // 从车道链表中移除车辆（Prepare后生效）
}
