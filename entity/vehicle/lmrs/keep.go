package lmrs

import (
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/parameter"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/vehicle/following"
)

// IncentiveKeep 靠右行驶动机
// 说明：右侧存在车道且强制性与自愿性意愿都不排斥向右时，产生DFREE的向右意愿
type IncentiveKeep struct{}

func (IncentiveKeep) DetermineDesire(
	params parameter.Reader, p *Perception, _ following.CarFollowingModel, mandatory, voluntary Desire,
) (Desire, error) {
	if mandatory.Right < 0 || voluntary.Right < 0 || !p.HasLane(entity.RelRight) {
		return Desire{}, nil
	}
	dFree, err := parameter.Get(params, parameter.DFREE)
	if err != nil {
		return Desire{}, err
	}
	return Desire{Right: dFree}, nil
}
