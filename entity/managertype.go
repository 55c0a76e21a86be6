package entity

import (
	personv2 "git.fiblab.net/sim/protos/v2/go/city/person/v2"
	"git.fiblab.net/sim/syncer/v3"
)

// Manager依赖倒置

// entity/lane/manager.go的依赖倒置
type ILaneManager interface {
	// 输入车道编号，查找车道，如果不存在则panic
	Get(index int) ILane
	// 输入车道编号，查找车道，如果不存在则返回error
	GetOrError(index int) (ILane, error)
	Lanes() []ILane // 所有车道，按从左到右排序

	Prepare() // 准备阶段：应用车辆增删并重排链表
}

// entity/vehicle/manager.go的依赖倒置
type IVehicleManager interface {
	// 初始化
	Init(pbs []*personv2.Person, laneManager ILaneManager)
	// 注册到Sidecar
	Register(sidecar *syncer.Sidecar)

	// 输入车辆ID，查找车辆，如果不存在则panic
	Get(id int32) IVehicle
	// 输入车辆ID，查找车辆，如果不存在则返回error
	GetOrError(id int32) (IVehicle, error)
	Vehicles() []IVehicle

	Prepare()          // 准备阶段：snapshot与链表节点更新
	Update(dt float64) // 更新阶段
}
