package lmrs

import (
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/parameter"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/vehicle/following"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/unit"
)

// Decision 一步的变道决策
type Decision struct {
	LaneChange   int               // 变道方向NONE/LEFT/RIGHT
	Acceleration unit.Acceleration // 考虑目标车道前车后的加速度
	Desire       Desire
}

// Decide 依变道意愿做出变道决策
// 功能：意愿不低于DFREE且间隙可接受时变道，并更新对外公布的意愿参数
// 参数：params-本车参数，p-感知结果，cfm-跟驰模型，v0-期望速度，desire-总意愿，a-本车道跟车加速度
// 算法说明：
// 1. 左侧意愿不小于右侧且不低于DFREE时尝试向左，否则右侧意愿不低于DFREE时尝试向右
// 2. 接受变道时记录DLC，按意愿缩短车头时距，并跟随目标车道前车
// 3. 变道时对外公布完全意愿（DLEFT/DRIGHT取1/0），否则公布总意愿
func Decide(
	params *parameter.Parameters, p *Perception, cfm following.CarFollowingModel,
	v0 unit.Speed, desire Desire, a unit.Acceleration,
) (Decision, error) {
	decision := Decision{LaneChange: entity.NONE, Acceleration: a, Desire: desire}
	dFree, err := parameter.Get(params, parameter.DFREE)
	if err != nil {
		return decision, err
	}
	side := entity.NONE
	switch {
	case desire.LeftIsLargerOrEqual() && desire.Left >= dFree:
		side = entity.LEFT
	case !desire.LeftIsLargerOrEqual() && desire.Right >= dFree:
		side = entity.RIGHT
	}
	if side != entity.NONE {
		d := desire.Side(side)
		ok, err := AcceptLaneChange(params, p, cfm, d, side)
		if err != nil {
			return decision, err
		}
		if ok {
			if err := parameter.Set(params, parameter.DLC, d); err != nil {
				return decision, err
			}
			if err := SetDesiredHeadway(params, d); err != nil {
				return decision, err
			}
			t, err := parameter.Get(params, parameter.T)
			if err != nil {
				return decision, err
			}
			decision.LaneChange = side
			decision.Acceleration = min(a, following.FollowLeaders(
				WithHeadway(cfm, t), p.Speed, v0, p.GetLeaders(entity.Adjacent(side, 1)),
			))
		}
	}

	published := desire
	switch decision.LaneChange {
	case entity.LEFT:
		published = Desire{Left: 1}
	case entity.RIGHT:
		published = Desire{Right: 1}
	}
	if err := parameter.Set(params, parameter.DLEFT, published.Left); err != nil {
		return decision, err
	}
	if err := parameter.Set(params, parameter.DRIGHT, published.Right); err != nil {
		return decision, err
	}
	return decision, nil
}
