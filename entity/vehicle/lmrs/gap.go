package lmrs

import (
	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/headway"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/parameter"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/vehicle/following"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/unit"
)

// AcceptLaneChange 判断是否接受向side侧变道
// 功能：合法性检查与间隙接受
// 参数：params-本车参数，p-感知结果，cfm-跟驰模型，desire-该侧变道意愿，side-变道方向
// 返回：是否可以变道
// 算法说明：
// 1. 不允许合法变道或目标车道存在并行车辆时拒绝
// 2. 阈值为-desire*B：本车跟随目标车道前车的加速度、目标车道后车跟随本车的加速度、本车当前加速度均不得低于阈值
// 3. 两车道外正在向目标车道变道的前车，本车跟随其的加速度不得低于-B
func AcceptLaneChange(
	params parameter.Reader, p *Perception, cfm following.CarFollowingModel, desire float64, side int,
) (bool, error) {
	if !p.LegalLaneChangePossible(side) || p.IsAlongside(side) {
		return false, nil
	}
	b, err := parameter.Get(params, parameter.B)
	if err != nil {
		return false, err
	}
	threshold := -unit.Acceleration(desire) * b
	target := entity.Adjacent(side, 1)

	aSelf := unit.Acceleration(mathutil.INF)
	for _, leader := range p.GetLeaders(target) {
		distance, ok := leader.Distance()
		if !ok {
			continue
		}
		a, err := SingleAcceleration(distance, p.Speed, leader.SpeedOrZero(), desire, params, p.SpeedLimit, cfm)
		if err != nil {
			return false, err
		}
		aSelf = min(aSelf, a)
	}
	aFollow := unit.Acceleration(mathutil.INF)
	for _, follower := range p.GetFollowers(target) {
		distance, ok := follower.Distance()
		if !ok {
			continue
		}
		fp := follower.Parameters()
		if fp == nil {
			fp = params
		}
		a, err := SingleAcceleration(distance, follower.SpeedOrZero(), p.Speed, desire, fp, p.SpeedLimit, cfm)
		if err != nil {
			return false, err
		}
		aFollow = min(aFollow, a)
	}
	if aSelf < threshold || aFollow < threshold || p.Acceleration < threshold {
		return false, nil
	}

	// 两车道外向目标车道切入的车辆
	v0 := cfm.DesiredSpeed(p.SpeedLimit.MaxVehicleSpeed, p.SpeedLimit.SpeedLimit)
	for _, leader := range p.GetLeaders(entity.Adjacent(side, 2)) {
		distance, ok := leader.Distance()
		if !ok || !changingTowards(leader, entity.Flip(side)) {
			continue
		}
		if following.FollowSingleLeader(cfm, p.Speed, v0, distance, leader.SpeedOrZero()) < -b {
			return false, nil
		}
	}
	return true, nil
}

// changingTowards 邻车是否打开了side侧转向灯
func changingTowards(h *headway.Headway, side int) bool {
	if side == entity.LEFT {
		return h.IsLeftTurnIndicatorOn()
	}
	return h.IsRightTurnIndicatorOn()
}
