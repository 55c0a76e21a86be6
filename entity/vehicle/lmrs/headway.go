package lmrs

import (
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/parameter"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/vehicle/following"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/unit"
)

// DesiredHeadway 依变道意愿计算的车头时距
// 说明：T = min(当前T, d*TMIN + (1-d)*TMAX)，d截断到[0, 1]
func DesiredHeadway(params parameter.Reader, desire float64) (unit.Duration, error) {
	tMin, err := parameter.Get(params, parameter.TMIN)
	if err != nil {
		return 0, err
	}
	tMax, err := parameter.Get(params, parameter.TMAX)
	if err != nil {
		return 0, err
	}
	t, err := parameter.Get(params, parameter.T)
	if err != nil {
		return 0, err
	}
	d := lo.Clamp(desire, 0, 1)
	return min(unit.Interpolate(tMax, tMin, d), t), nil
}

// SetDesiredHeadway 依变道意愿临时缩短车头时距
// 说明：之后由ExponentialHeadwayRelaxation逐步恢复到TMAX
func SetDesiredHeadway(params *parameter.Parameters, desire float64) error {
	t, err := DesiredHeadway(params, desire)
	if err != nil {
		return err
	}
	return parameter.SetResettable(params, parameter.T, t)
}

// ExponentialHeadwayRelaxation 车头时距以DT/TAU的比例向TMAX指数松弛
func ExponentialHeadwayRelaxation(params *parameter.Parameters) error {
	dt, err := parameter.Get(params, parameter.DT)
	if err != nil {
		return err
	}
	tau, err := parameter.Get(params, parameter.TAU)
	if err != nil {
		return err
	}
	t, err := parameter.Get(params, parameter.T)
	if err != nil {
		return err
	}
	tMax, err := parameter.Get(params, parameter.TMAX)
	if err != nil {
		return err
	}
	ratio := min(float64(dt/tau), 1)
	return parameter.Set(params, parameter.T, unit.Interpolate(t, tMax, ratio))
}

// WithHeadway 使用参数中的车头时距替换跟驰模型的期望车头时距
func WithHeadway(cfm following.CarFollowingModel, t unit.Duration) following.CarFollowingModel {
	if m, ok := cfm.(following.DesiredHeadwayModel); ok {
		return m.WithDesiredHeadway(t)
	}
	return cfm
}

// SingleAcceleration 以意愿调整后的车头时距计算跟随单一前车的加速度
// 参数：distance-车距，followerSpeed/leaderSpeed-后车与前车速度，desire-变道意愿，
// params-后车参数（读取T、TMIN、TMAX），sli-限速信息，cfm-跟驰模型
// 说明：不修改params
func SingleAcceleration(
	distance unit.Length, followerSpeed, leaderSpeed unit.Speed, desire float64,
	params parameter.Reader, sli entity.SpeedLimitInfo, cfm following.CarFollowingModel,
) (unit.Acceleration, error) {
	t, err := DesiredHeadway(params, desire)
	if err != nil {
		return 0, err
	}
	m := WithHeadway(cfm, t)
	v0 := m.DesiredSpeed(sli.MaxVehicleSpeed, sli.SpeedLimit)
	return following.FollowSingleLeader(m, followerSpeed, v0, distance, leaderSpeed), nil
}
