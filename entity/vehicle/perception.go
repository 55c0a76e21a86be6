package vehicle

import (
	"strconv"

	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/headway"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/parameter"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/vehicle/lmrs"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/unit"
)

// 感知的相对车道范围
var perceivedLanes = []entity.RelativeLane{
	entity.RelLeftLeft, entity.RelLeft, entity.RelCurrent, entity.RelRight, entity.RelRightRight,
}

// relativeLane 沿相邻关系查找相对车道，不存在时返回nil
func relativeLane(lane entity.ILane, rel entity.RelativeLane) entity.ILane {
	side, n := entity.RIGHT, int(rel)
	if rel < 0 {
		side, n = entity.LEFT, -n
	}
	for ; n > 0 && lane != nil; n-- {
		lane = lane.NeighborLane(side)
	}
	return lane
}

// countLanes 统计side侧的车道数
func countLanes(lane entity.ILane, side int) int {
	n := 0
	for l := lane.NeighborLane(side); l != nil; l = l.NeighborLane(side) {
		n++
	}
	return n
}

// newHeadwayInfo 由邻车快照生成感知信息
func newHeadwayInfo(snap *entity.VehicleSnapshot, t float64) headway.Info {
	info := headway.Info{
		ID:                  strconv.Itoa(int(snap.ID)),
		GtuType:             snap.GtuType,
		Length:              unit.Length(snap.Length),
		Width:               unit.Length(snap.Width),
		DesiredSpeed:        unit.Speed(snap.DesiredSpeed),
		FacingSameDirection: true,
		Status:              headway.CollectStatusFlags(snap, t),
	}
	if snap.Params != nil {
		info.Parameters = snap.Params
	}
	return info
}

// perceive 构造本车的感知结果
// 功能：扫描左右各两条车道在LOOKAHEAD/LOOKBACK范围内的车辆
// 算法说明：
// 1. ds为邻车车头相对本车车头的距离；ds>=0时车距为ds-邻车长，否则为-ds-本车长
// 2. 相邻车道上车距为负的车辆与本车纵向重叠，记为并行车辆
// 3. 隔一条车道的重叠车辆不参与决策，直接忽略；当前车道的重叠车辆保留为负车距
func (v *Vehicle) perceive(sli entity.SpeedLimitInfo, t float64) (*lmrs.Perception, error) {
	lookAhead, err := parameter.Get(v.params, parameter.LOOKAHEAD)
	if err != nil {
		return nil, err
	}
	lookBack, err := parameter.Get(v.params, parameter.LOOKBACK)
	if err != nil {
		return nil, err
	}
	self := v.runtime
	p := &lmrs.Perception{
		Speed:        unit.Speed(self.V),
		Acceleration: unit.Acceleration(self.A),
		Length:       unit.Length(v.length),
		SpeedLimit:   sli,
		LaneChange:   entity.NONE,
		LanesLeft:    countLanes(self.Lane, entity.LEFT),
		LanesRight:   countLanes(self.Lane, entity.RIGHT),
		LaneChangeAllowed: [2]bool{
			self.Lane.LaneChangeAllowed(entity.LEFT),
			self.Lane.LaneChangeAllowed(entity.RIGHT),
		},
		Leaders:   make(map[entity.RelativeLane][]*headway.Headway),
		Followers: make(map[entity.RelativeLane][]*headway.Headway),
	}
	if self.LCRemaining > 0 {
		p.LaneChange = self.LCSide
	}

	for _, rel := range perceivedLanes {
		lane := relativeLane(self.Lane, rel)
		if lane == nil {
			continue
		}
		leaders, followers := lane.Scan(self.S, lookAhead.SI(), lookBack.SI())
		for _, n := range append(leaders, followers...) {
			other := n.Node.Value
			if other.ID() == v.id {
				continue
			}
			snap := other.Snapshot()
			if snap == nil {
				continue
			}
			gap := n.Ds - snap.Length
			if n.Ds < 0 {
				gap = -n.Ds - v.length
			}
			info := newHeadwayInfo(snap, t)
			speed, acc := unit.Speed(snap.V), unit.Acceleration(snap.A)
			if gap < 0 && rel != entity.RelCurrent {
				if rel != entity.RelLeft && rel != entity.RelRight {
					continue
				}
				side := entity.RIGHT
				if rel == entity.RelLeft {
					side = entity.LEFT
				}
				overlap := headway.Overlap{
					Front:   unit.Length(n.Ds),
					Overlap: unit.Length(min(0, n.Ds) - max(-v.length, n.Ds-snap.Length)),
					Rear:    unit.Length(n.Ds - snap.Length + v.length),
				}
				h, err := headway.NewMovingParallel(info, overlap, speed, acc)
				if err != nil {
					return nil, err
				}
				p.Parallel[side] = append(p.Parallel[side], h)
				continue
			}
			h, err := headway.NewMoving(info, unit.Length(gap), speed, acc)
			if err != nil {
				return nil, err
			}
			if n.Ds >= 0 {
				p.Leaders[rel] = append(p.Leaders[rel], h)
			} else {
				p.Followers[rel] = append(p.Followers[rel], h)
			}
		}
	}
	return p, nil
}
