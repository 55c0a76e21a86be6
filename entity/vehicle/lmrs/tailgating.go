package lmrs

import (
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/parameter"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/unit"
)

// SocialPressure 本车对当前车道前车施加的社会压力
// 说明：车距不超过v*TMAX时，rho = clamp((v0-前车速度)/VGAIN, 0, 1)，否则为0
func SocialPressure(params parameter.Reader, p *Perception, v0 unit.Speed) (float64, error) {
	leaders := p.GetLeaders(entity.RelCurrent)
	if len(leaders) == 0 {
		return 0, nil
	}
	distance, ok := leaders[0].Distance()
	if !ok {
		return 0, nil
	}
	tMax, err := parameter.Get(params, parameter.TMAX)
	if err != nil {
		return 0, err
	}
	if distance > p.Speed.Times(tMax) {
		return 0, nil
	}
	vGain, err := parameter.Get(params, parameter.VGAIN)
	if err != nil {
		return 0, err
	}
	return lo.Clamp(float64((v0-leaders[0].SpeedOrZero())/vGain), 0, 1), nil
}

// Tailgate 更新RHO，并依社会压力将车头时距向TMIN缩短
func Tailgate(params *parameter.Parameters, p *Perception, v0 unit.Speed) error {
	rho, err := SocialPressure(params, p, v0)
	if err != nil {
		return err
	}
	if err := parameter.Set(params, parameter.RHO, rho); err != nil {
		return err
	}
	tMin, err := parameter.Get(params, parameter.TMIN)
	if err != nil {
		return err
	}
	tMax, err := parameter.Get(params, parameter.TMAX)
	if err != nil {
		return err
	}
	t, err := parameter.Get(params, parameter.T)
	if err != nil {
		return err
	}
	return parameter.Set(params, parameter.T, min(t, unit.Interpolate(tMax, tMin, rho)))
}
