package lmrs

import (
	"fmt"
	"math"

	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/headway"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/parameter"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/vehicle/following"
)

// Desire 左右两侧的变道意愿，正值表示倾向于向该侧变道
type Desire struct {
	Left  float64
	Right float64
}

// Side 获取side侧的意愿
func (d Desire) Side(side int) float64 {
	if side == entity.LEFT {
		return d.Left
	}
	return d.Right
}

// LeftIsLargerOrEqual 左侧意愿是否不小于右侧
func (d Desire) LeftIsLargerOrEqual() bool {
	return d.Left >= d.Right
}

func (d Desire) String() string {
	return fmt.Sprintf("Desire{Left:%.3f, Right:%.3f}", d.Left, d.Right)
}

func newDesire(side int, v float64) Desire {
	if side == entity.LEFT {
		return Desire{Left: v}
	}
	return Desire{Right: v}
}

// MandatoryIncentive 强制性变道动机（如路径需要）
type MandatoryIncentive interface {
	DetermineDesire(
		params parameter.Reader, p *Perception, cfm following.CarFollowingModel, mandatory Desire,
	) (Desire, error)
}

// VoluntaryIncentive 自愿性变道动机
type VoluntaryIncentive interface {
	DetermineDesire(
		params parameter.Reader, p *Perception, cfm following.CarFollowingModel, mandatory, voluntary Desire,
	) (Desire, error)
}

// LaneChangeDesire 计算总变道意愿
// 功能：组合强制性与自愿性动机
// 参数：params-本车参数，p-感知结果，cfm-跟驰模型，mandatory/voluntary-动机列表（按顺序求值）
// 返回：总意愿
// 算法说明：
// 1. 正在变道时，对变道方向返回完全意愿
// 2. 强制性意愿：每侧取绝对值最大的动机
// 3. 自愿性意愿：每侧求和
// 4. 强制性意愿与自愿性意愿方向相反且|强制性意愿|位于(DSYNC, DCOOP)时，自愿性意愿的权重由1线性降至0，
// 超过DCOOP时权重为0
// 5. 总意愿 = 强制性 + LAMBDA_V * 权重 * 自愿性
func LaneChangeDesire(
	params parameter.Reader, p *Perception, cfm following.CarFollowingModel,
	mandatory []MandatoryIncentive, voluntary []VoluntaryIncentive,
) (Desire, error) {
	if p.LaneChange == entity.LEFT || p.LaneChange == entity.RIGHT {
		return newDesire(p.LaneChange, 1), nil
	}
	dSync, err := parameter.Get(params, parameter.DSYNC)
	if err != nil {
		return Desire{}, err
	}
	dCoop, err := parameter.Get(params, parameter.DCOOP)
	if err != nil {
		return Desire{}, err
	}
	lambdaV, err := parameter.Get(params, parameter.LAMBDAV)
	if err != nil {
		return Desire{}, err
	}

	var m Desire
	for _, incentive := range mandatory {
		d, err := incentive.DetermineDesire(params, p, cfm, m)
		if err != nil {
			return Desire{}, err
		}
		if math.Abs(d.Left) > math.Abs(m.Left) {
			m.Left = d.Left
		}
		if math.Abs(d.Right) > math.Abs(m.Right) {
			m.Right = d.Right
		}
	}

	var v Desire
	for _, incentive := range voluntary {
		d, err := incentive.DetermineDesire(params, p, cfm, m, v)
		if err != nil {
			return Desire{}, err
		}
		v.Left += d.Left
		v.Right += d.Right
	}

	return Desire{
		Left:  m.Left + lambdaV*voluntaryWeight(m.Left, v.Left, dSync, dCoop)*v.Left,
		Right: m.Right + lambdaV*voluntaryWeight(m.Right, v.Right, dSync, dCoop)*v.Right,
	}, nil
}

// voluntaryWeight 自愿性意愿的权重thetaV
func voluntaryWeight(mandatory, voluntary, dSync, dCoop float64) float64 {
	abs := math.Abs(mandatory)
	switch {
	case abs <= dSync || mandatory*voluntary >= 0:
		return 1
	case abs < dCoop:
		return (dCoop - abs) / (dCoop - dSync)
	default:
		return 0
	}
}

// neighborDesire 读取邻车向dir反方向变道的意愿
// 说明：邻车位于dir侧时，其向本车方向变道的意愿为dir的反方向；参数不可感知时ok为false
func neighborDesire(h *headway.Headway, dir int) (desire float64, ok bool, err error) {
	params := h.Parameters()
	if params == nil {
		return 0, false, nil
	}
	t := parameter.DLEFT
	if dir == entity.LEFT {
		t = parameter.DRIGHT
	}
	d, err := parameter.Get(params, t)
	if err != nil {
		return 0, false, fmt.Errorf("neighbor %s: %w", h.ID(), err)
	}
	return d, true, nil
}
