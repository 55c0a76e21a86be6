package following

import (
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/unit"
)

// IDMPlus IDM+模型
// 功能：自由流项与交互项取最小值而非相加
type IDMPlus struct {
	base
}

// NewIDMPlus 创建IDM+模型
func NewIDMPlus(c Config) *IDMPlus {
	return &IDMPlus{base{c: c}}
}

func (m *IDMPlus) Name() string     { return "IDM+" }
func (m *IDMPlus) LongName() string { return "Intelligent Driver Model+" }

func (m *IDMPlus) ComputeAcceleration(
	followerSpeed, followerMaxSpeed, leaderSpeed unit.Speed, headway unit.Length, speedLimit unit.Speed,
) unit.Acceleration {
	return m.FollowingAcceleration(followerSpeed, m.DesiredSpeed(followerMaxSpeed, speedLimit), leaderSpeed, headway)
}

// FollowingAcceleration IDM+加速度 a*min(1-(v/vDes)^4, 1-(s*/s)^2)
// 说明：期望速度为0时自由流分量取0，车距不为正时直接在一步内停车
func (m *IDMPlus) FollowingAcceleration(
	followerSpeed, desiredSpeed, leaderSpeed unit.Speed, headway unit.Length,
) unit.Acceleration {
	if headway <= 0 {
		return m.stopNow(followerSpeed)
	}
	var left float64
	if ratio, ok := m.freeRatio(followerSpeed, desiredSpeed); ok {
		left = 1 - ratio
	}
	s := float64(m.desiredGap(followerSpeed, leaderSpeed) / headway)
	right := 1 - s*s
	return m.noReverse(unit.Acceleration(float64(m.c.A)*min(left, right)), followerSpeed)
}

// WithDesiredHeadway 返回期望车头时距为t的副本
func (m *IDMPlus) WithDesiredHeadway(t unit.Duration) CarFollowingModel {
	c := m.c
	c.TSafe = t
	return NewIDMPlus(c)
}

func (m *IDMPlus) WithConfig(c Config) CarFollowingModel {
	return NewIDMPlus(c)
}
