package following

import (
	"math"

	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/unit"
)

// IDM 智能驾驶模型
// 功能：自由流加速度与交互减速度叠加
// 说明：https://en.wikipedia.org/wiki/Intelligent_driver_model
type IDM struct {
	base
}

// NewIDM 创建IDM模型
func NewIDM(c Config) *IDM {
	return &IDM{base{c: c}}
}

func (m *IDM) Name() string     { return "IDM" }
func (m *IDM) LongName() string { return "Intelligent Driver Model" }

func (m *IDM) ComputeAcceleration(
	followerSpeed, followerMaxSpeed, leaderSpeed unit.Speed, headway unit.Length, speedLimit unit.Speed,
) unit.Acceleration {
	return m.FollowingAcceleration(followerSpeed, m.DesiredSpeed(followerMaxSpeed, speedLimit), leaderSpeed, headway)
}

// FollowingAcceleration IDM加速度
// 算法说明：
// 1. 自由流项 a*(1-(v/vDes)^4)，期望速度为0时为0
// 2. 交互项 -a*(s*/s)^2
// 3. 两项相加，并限制一步内不倒车
// 4. 车距不为正时直接在一步内停车
func (m *IDM) FollowingAcceleration(
	followerSpeed, desiredSpeed, leaderSpeed unit.Speed, headway unit.Length,
) unit.Acceleration {
	if headway <= 0 {
		return m.stopNow(followerSpeed)
	}
	var free float64
	if ratio, ok := m.freeRatio(followerSpeed, desiredSpeed); ok {
		free = float64(m.c.A) * (1 - ratio)
	}
	s := float64(m.desiredGap(followerSpeed, leaderSpeed) / headway)
	interaction := -float64(m.c.A) * s * s
	return m.noReverse(unit.Acceleration(free+interaction), followerSpeed)
}

// WithDesiredHeadway 返回期望车头时距为t的副本
func (m *IDM) WithDesiredHeadway(t unit.Duration) CarFollowingModel {
	c := m.c
	c.TSafe = t
	return NewIDM(c)
}

func (m *IDM) WithConfig(c Config) CarFollowingModel {
	return NewIDM(c)
}

func sqrtAB(a, b unit.Acceleration) float64 {
	return math.Sqrt(float64(a) * float64(b))
}
