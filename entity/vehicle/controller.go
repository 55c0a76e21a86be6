package vehicle

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/headway"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/parameter"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/vehicle/following"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/vehicle/lmrs"
)

var lmrsSocioDesiredSpeed = lmrs.NewSocioDesiredSpeed(following.ParameterDesiredSpeed{})

// 控制结果
type controlResult struct {
	A            float64
	DesiredSpeed float64
	LaneChange   int
	Indicators   entity.Indicators
}

// voluntaryIncentives 车辆使用的自愿性变道动机
func (v *Vehicle) voluntaryIncentives() []lmrs.VoluntaryIncentive {
	if v.ctx.RuntimeConfig().Social {
		return []lmrs.VoluntaryIncentive{lmrs.IncentiveCourtesy{}, lmrs.IncentiveKeep{}}
	}
	return []lmrs.VoluntaryIncentive{lmrs.IncentiveKeep{}}
}

// control 计算本步的加速度与变道决策
// 功能：感知邻车，依LMRS模型给出加速度、变道方向与灯光状态
// 参数：t-当前时刻
// 返回：控制结果，参数缺失等错误
// 算法说明：
// 1. 限速信息与感知；期望速度（开启社会交互时为社会化期望速度）
// 2. 开启社会交互时依前车更新RHO并缩短车头时距（tailgating）
// 3. 当前车道第一辆前车发生变化时，按其变道意愿初始化车头时距
// 4. 以当前车头时距跟随当前车道前车
// 5. 变道意愿与变道决策；最近一次变道未完成时保持原方向、不发起新变道
// 6. 未变道时车头时距向TMAX松弛，意愿不低于DCOOP时打开对应转向灯
func (v *Vehicle) control(t float64) (controlResult, error) {
	rc := v.ctx.RuntimeConfig()
	result := controlResult{LaneChange: entity.NONE}

	sli, err := headway.DeriveSpeedLimitInfo(v)
	if err != nil {
		return result, err
	}
	p, err := v.perceive(sli, t)
	if err != nil {
		return result, err
	}
	v0, err := v.desiredSpeed.DesiredSpeed(v.params, sli, p.GetFollowers(entity.RelCurrent))
	if err != nil {
		return result, err
	}
	result.DesiredSpeed = v0.SI()

	if rc.Social {
		if err := lmrs.Tailgate(v.params, p, v0); err != nil {
			return result, err
		}
	}
	leaders := p.GetLeaders(entity.RelCurrent)
	leader := ""
	if len(leaders) > 0 {
		leader = leaders[0].ID()
	}
	if leader != "" && leader != v.lastLeader {
		if dlc, ok := parameter.Lookup(leaders[0].Parameters(), parameter.DLC); ok {
			if err := lmrs.SetDesiredHeadway(v.params, dlc); err != nil {
				return result, err
			}
		}
	}
	v.lastLeader = leader

	tCur, err := parameter.Get(v.params, parameter.T)
	if err != nil {
		return result, err
	}
	a := following.FollowLeaders(lmrs.WithHeadway(v.cfm, tCur), p.Speed, v0, leaders)

	var desire lmrs.Desire
	switch {
	case !rc.LaneChange:
	case p.LaneChange != entity.NONE:
		// 变道保持期内对外公布完全意愿
		desire, err = lmrs.LaneChangeDesire(v.params, p, v.cfm, nil, v.voluntaryIncentives())
		if err != nil {
			return result, err
		}
		if err := publishDesire(v.params, desire); err != nil {
			return result, err
		}
		result.Indicators = indicatorsFor(p.LaneChange)
	default:
		desire, err = lmrs.LaneChangeDesire(v.params, p, v.cfm, nil, v.voluntaryIncentives())
		if err != nil {
			return result, err
		}
		decision, err := lmrs.Decide(v.params, p, v.cfm, v0, desire, a)
		if err != nil {
			return result, err
		}
		a = decision.Acceleration
		result.LaneChange = decision.LaneChange
		result.Indicators = indicatorsFor(decision.LaneChange)
	}

	if result.LaneChange == entity.NONE && p.LaneChange == entity.NONE {
		if err := lmrs.ExponentialHeadwayRelaxation(v.params); err != nil {
			return result, err
		}
		dCoop, err := parameter.Get(v.params, parameter.DCOOP)
		if err != nil {
			return result, err
		}
		switch {
		case desire.LeftIsLargerOrEqual() && desire.Left >= dCoop:
			result.Indicators = indicatorsFor(entity.LEFT)
		case !desire.LeftIsLargerOrEqual() && desire.Right >= dCoop:
			result.Indicators = indicatorsFor(entity.RIGHT)
		}
	}
	result.A = a.SI()
	return result, nil
}

func publishDesire(params *parameter.Parameters, d lmrs.Desire) error {
	if err := parameter.Set(params, parameter.DLEFT, d.Left); err != nil {
		return err
	}
	return parameter.Set(params, parameter.DRIGHT, d.Right)
}

func indicatorsFor(side int) entity.Indicators {
	return entity.Indicators{Left: side == entity.LEFT, Right: side == entity.RIGHT}
}

// computeVAndDistance 匀加速运动一步，不允许倒车
// 返回：步末速度与本步行驶距离
func computeVAndDistance(v, a, dt float64) (float64, float64) {
	dv := a * dt
	if v+dv < 0 {
		// 速度减到0后停车
		return 0, v * v / 2 / -a
	}
	return v + dv, (v + dv/2) * dt
}

// update 更新阶段：计算控制量并推进运动状态
// 算法说明：
// 1. 控制量叠加加速度噪声，并截断到[最大制动加速度, 最大加速度]
// 2. 积分速度与位置，位置在环路上回绕
// 3. 变道瞬间完成：换到目标车道并保持laneChangeDuration的变道状态
func (v *Vehicle) update(dt float64) (laneChanged bool, err error) {
	result, err := v.control(v.ctx.Clock().T)
	if err != nil {
		return false, fmt.Errorf("vehicle %d: %w", v.id, err)
	}
	rc := v.ctx.RuntimeConfig()
	a := result.A
	if noise := rc.C.AccNoise; noise > 0 {
		a += noise * v.generator.Noise()
	}
	a = lo.Clamp(a, v.maxBrA, v.maxA)

	r := &v.runtime
	r.A = a
	r.DesiredSpeed = result.DesiredSpeed
	r.Indicators = result.Indicators
	r.LaneChange = result.LaneChange
	var ds float64
	r.V, ds = computeVAndDistance(r.V, a, dt)
	r.Distance += ds
	r.S = r.Lane.Wrap(r.S + ds)

	r.LCRemaining = max(r.LCRemaining-dt, 0)
	if r.LCRemaining == 0 {
		r.LCSide = entity.NONE
	}
	if result.LaneChange != entity.NONE {
		target := r.Lane.NeighborLane(result.LaneChange)
		if target == nil {
			return false, fmt.Errorf("vehicle %d: no lane on %s of %v", v.id, entity.SideName(result.LaneChange), r.Lane)
		}
		r.Lane = target
		r.LCSide = result.LaneChange
		r.LCRemaining = laneChangeDuration
		log.Debugf("vehicle %d changes lane to %v at s=%.2f", v.id, target, r.S)
		return true, nil
	}
	return false, nil
}

