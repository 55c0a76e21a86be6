package vehicle

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"git.fiblab.net/general/common/v2/parallel"
	personv2 "git.fiblab.net/sim/protos/v2/go/city/person/v2"
	"git.fiblab.net/sim/protos/v2/go/city/person/v2/personv2connect"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity"
)

// GlobalRuntime 全局运行时数据结构
// 功能：统计变道次数与总行驶距离
type GlobalRuntime struct {
	NumLaneChanges int32   // 累计变道次数
	TravelDistance float64 // 总行驶距离
}

// VehicleManager Vehicle管理器
// 功能：管理环路上的所有车辆，提供创建、查找、Prepare/Update两阶段推进与RPC查询
type VehicleManager struct {
	personv2connect.UnimplementedPersonServiceHandler

	ctx entity.ITaskContext

	data     map[int32]*Vehicle
	vehicles []*Vehicle // 按ID升序

	snapshot, runtime GlobalRuntime
	runtimeMtx        sync.Mutex
}

// NewManager 创建Vehicle管理器实例
func NewManager(ctx entity.ITaskContext) *VehicleManager {
	return &VehicleManager{
		ctx:      ctx,
		data:     make(map[int32]*Vehicle),
		vehicles: make([]*Vehicle, 0),
	}
}

// Init 初始化所有车辆
// 功能：根据person数据并行创建车辆，建立ID映射并加入初始车道
// 参数：pbs-person数据列表，laneManager-车道管理器
// 说明：数据非法（属性越界、缺少初始位置、ID重复）时直接退出
func (m *VehicleManager) Init(pbs []*personv2.Person, laneManager entity.ILaneManager) {
	type result struct {
		v   *Vehicle
		err error
	}
	results := parallel.GoMap(pbs, func(pb *personv2.Person) result {
		v, err := newVehicle(m.ctx, m, pb)
		return result{v, err}
	})
	vehicles := make([]*Vehicle, 0, len(results))
	for _, r := range results {
		if r.err != nil {
			log.Panicf("init vehicle failed: %v", r.err)
		}
		vehicles = append(vehicles, r.v)
	}
	m.data = lo.SliceToMap(vehicles, func(v *Vehicle) (int32, *Vehicle) {
		return v.id, v
	})
	if len(m.data) != len(vehicles) {
		log.Panicf("duplicate vehicle id in %d persons", len(vehicles))
	}
	slices.SortFunc(vehicles, func(a, b *Vehicle) int { return cmp.Compare(a.id, b.id) })
	m.vehicles = vehicles
	log.Infof("init %d vehicles on %d lanes", len(m.vehicles), len(laneManager.Lanes()))
}

// Get 根据ID获取车辆，如果不存在则panic
func (m *VehicleManager) Get(id int32) entity.IVehicle {
	v, err := m.GetOrError(id)
	if err != nil {
		log.Panic(err)
	}
	return v
}

// GetOrError 根据ID获取车辆，如果不存在则返回错误
func (m *VehicleManager) GetOrError(id int32) (entity.IVehicle, error) {
	if v, ok := m.data[id]; !ok {
		return nil, fmt.Errorf("no id %d in vehicle data", id)
	} else {
		return v, nil
	}
}

// Vehicles 所有车辆，按ID升序
func (m *VehicleManager) Vehicles() []entity.IVehicle {
	return lo.Map(m.vehicles, func(v *Vehicle, _ int) entity.IVehicle { return v })
}

// Stats 上一步结束时的全局统计
func (m *VehicleManager) Stats() GlobalRuntime {
	return m.snapshot
}

// 准备阶段：snapshot与链表节点更新
// 说明：需要在车道Prepare之前调用，车道Prepare时应用本阶段产生的节点增删
func (m *VehicleManager) Prepare() {
	parallel.GoFor(m.vehicles, func(v *Vehicle) { v.prepare() })
	m.snapshot = m.runtime
	log.Debug("VehicleManager: prepare done")
}

// 更新阶段
func (m *VehicleManager) Update(dt float64) {
	parallel.GoFor(m.vehicles, func(v *Vehicle) {
		distance := v.runtime.Distance
		laneChanged, err := v.update(dt)
		if err != nil {
			log.Panicf("update failed: %v", err)
		}
		m.record(v.runtime.Distance-distance, laneChanged)
	})
}

// record 记录一步的行驶距离与变道
func (m *VehicleManager) record(ds float64, laneChanged bool) {
	m.runtimeMtx.Lock()
	defer m.runtimeMtx.Unlock()
	m.runtime.TravelDistance += ds
	if laneChanged {
		m.runtime.NumLaneChanges++
	}
}
