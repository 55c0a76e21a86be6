// LMRS变道模型：变道意愿、礼让、社会化期望速度与间隙接受
package lmrs

import (
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/headway"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/unit"
)

// Perception 本车一次感知周期的结果
// 说明：Leaders/Followers按距离由近及远排列，Parallel为与本车纵向重叠的相邻车道车辆
type Perception struct {
	Speed        unit.Speed
	Acceleration unit.Acceleration // 本车当前加速度
	Length       unit.Length
	SpeedLimit   entity.SpeedLimitInfo
	LaneChange   int // 正在进行的变道方向NONE/LEFT/RIGHT

	LanesLeft  int // 左侧车道数
	LanesRight int // 右侧车道数
	// [LEFT/RIGHT] 车道线是否允许向该侧变道
	LaneChangeAllowed [2]bool

	Leaders   map[entity.RelativeLane][]*headway.Headway
	Followers map[entity.RelativeLane][]*headway.Headway
	Parallel  [2][]*headway.Headway
}

// GetLeaders 获取相对车道上的前车
func (p *Perception) GetLeaders(lane entity.RelativeLane) []*headway.Headway {
	return p.Leaders[lane]
}

// GetFollowers 获取相对车道上的后车
func (p *Perception) GetFollowers(lane entity.RelativeLane) []*headway.Headway {
	return p.Followers[lane]
}

// HasLane 检查相对车道是否存在
func (p *Perception) HasLane(lane entity.RelativeLane) bool {
	switch {
	case lane < 0:
		return int(-lane) <= p.LanesLeft
	case lane > 0:
		return int(lane) <= p.LanesRight
	default:
		return true
	}
}

// LegalLaneChangePossible 检查是否可以合法地向side侧变道
func (p *Perception) LegalLaneChangePossible(side int) bool {
	return p.HasLane(entity.Adjacent(side, 1)) && p.LaneChangeAllowed[side]
}

// IsAlongside 检查side侧是否有并行车辆
func (p *Perception) IsAlongside(side int) bool {
	return len(p.Parallel[side]) > 0
}
