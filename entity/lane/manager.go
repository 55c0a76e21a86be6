package lane

import (
	"fmt"

	"git.fiblab.net/general/common/v2/parallel"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/config"
)

// LaneManager Lane管理器
// 功能：按环路配置创建所有车道，提供按编号查找与Prepare阶段的链表维护
type LaneManager struct {
	ctx entity.ITaskContext

	lanes []*Lane
}

// NewManager 创建Lane管理器实例
func NewManager(ctx entity.ITaskContext) *LaneManager {
	return &LaneManager{
		ctx:   ctx,
		lanes: make([]*Lane, 0),
	}
}

// Init 初始化所有车道
// 功能：创建road.Lanes条车道并建立左右相邻关系
// 参数：road-补全默认值后的道路配置
// 说明：车道编号从左到右递增，0号车道没有左侧车道
func (m *LaneManager) Init(road config.Road) {
	m.lanes = lo.Times(road.Lanes, func(i int) *Lane {
		return newLane(i, road)
	})
	for i, l := range m.lanes {
		if i > 0 {
			l.leftLane = m.lanes[i-1]
		}
		if i+1 < len(m.lanes) {
			l.rightLane = m.lanes[i+1]
		}
	}
	log.Infof("init %d lanes, length=%.1fm", len(m.lanes), road.Length)
}

// Get 根据编号获取车道，如果不存在则panic
func (m *LaneManager) Get(index int) entity.ILane {
	lane, err := m.GetOrError(index)
	if err != nil {
		log.Panic(err)
	}
	return lane
}

// GetOrError 根据编号获取车道，如果不存在则返回错误
func (m *LaneManager) GetOrError(index int) (entity.ILane, error) {
	if index < 0 || index >= len(m.lanes) {
		return nil, fmt.Errorf("no index %d in lane data", index)
	}
	return m.lanes[index], nil
}

// Lanes 所有车道，按从左到右排序
func (m *LaneManager) Lanes() []entity.ILane {
	return lo.Map(m.lanes, func(l *Lane, _ int) entity.ILane { return l })
}

// Prepare 准备阶段：并行应用所有车道的车辆增删并重排链表
func (m *LaneManager) Prepare() {
	parallel.GoFor(m.lanes, func(l *Lane) { l.prepare() })
}
