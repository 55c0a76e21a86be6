package following

import (
	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/headway"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/unit"
)

// FreeRoad 无前车时使用的车距
var FreeRoad = unit.Length(mathutil.INF)

// AccelerationStep 加速度决策及其有效期
type AccelerationStep struct {
	Acceleration unit.Acceleration
	ValidUntil   float64       // 有效期截止的仿真时刻
	Duration     unit.Duration // 有效时长
}

// ComputeAccelerationStep 计算对一组前车的加速度决策
// 功能：对maxDistance范围内的全部前车分别计算跟车加速度，取最小值
// 参数：m-跟驰模型，now-当前时刻，followerSpeed/followerMaxSpeed-本车速度与最高速度，
// leaders-前车（并行车辆被忽略），maxDistance-前视距离，speedLimit-限速
// 返回：加速度及有效期（当前时刻+StepSize）
// 说明：没有有效前车时以无穷远车距计算，结果恰为自由流加速度
func ComputeAccelerationStep(
	m CarFollowingModel, now float64,
	followerSpeed, followerMaxSpeed unit.Speed,
	leaders []*headway.Headway, maxDistance unit.Length, speedLimit unit.Speed,
) AccelerationStep {
	desired := m.DesiredSpeed(followerMaxSpeed, speedLimit)
	acc := unit.Acceleration(mathutil.INF)
	found := false
	for _, l := range leaders {
		d, ok := l.Distance()
		if !ok || d > maxDistance {
			continue
		}
		acc = min(acc, m.FollowingAcceleration(followerSpeed, desired, l.SpeedOrZero(), d))
		found = true
	}
	if !found {
		acc = m.FollowingAcceleration(followerSpeed, desired, 0, FreeRoad)
	}
	return AccelerationStep{
		Acceleration: acc,
		ValidUntil:   now + m.StepSize().SI(),
		Duration:     m.StepSize(),
	}
}

// FollowSingleLeader 跟随单一前车
func FollowSingleLeader(
	m CarFollowingModel, followerSpeed, desiredSpeed unit.Speed, distance unit.Length, leaderSpeed unit.Speed,
) unit.Acceleration {
	return m.FollowingAcceleration(followerSpeed, desiredSpeed, leaderSpeed, distance)
}

// FollowLeaders 跟随一组前车，取最小加速度
// 说明：未知速度的前车视为静止，并行车辆被忽略，没有前车时返回自由流加速度
func FollowLeaders(
	m CarFollowingModel, followerSpeed, desiredSpeed unit.Speed, leaders []*headway.Headway,
) unit.Acceleration {
	acc := unit.Acceleration(mathutil.INF)
	found := false
	for _, l := range leaders {
		d, ok := l.Distance()
		if !ok {
			continue
		}
		acc = min(acc, m.FollowingAcceleration(followerSpeed, desiredSpeed, l.SpeedOrZero(), d))
		found = true
	}
	if !found {
		return FreeAcceleration(m, followerSpeed, desiredSpeed)
	}
	return acc
}

// FreeAcceleration 自由流加速度
func FreeAcceleration(m CarFollowingModel, followerSpeed, desiredSpeed unit.Speed) unit.Acceleration {
	return m.FollowingAcceleration(followerSpeed, desiredSpeed, 0, FreeRoad)
}

// Stop 在distance处停车（虚拟的静止前车）
func Stop(m CarFollowingModel, followerSpeed, desiredSpeed unit.Speed, distance unit.Length) unit.Acceleration {
	return m.FollowingAcceleration(followerSpeed, desiredSpeed, 0, distance)
}
