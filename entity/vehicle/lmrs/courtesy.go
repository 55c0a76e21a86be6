package lmrs

import (
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/headway"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/parameter"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/vehicle/following"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/unit"
)

// IncentiveCourtesy 礼让动机
// 功能：为相邻车道想要并入本车道的车辆让出空间，并为两车道外想要并入相邻车道的车辆保留空间
type IncentiveCourtesy struct{}

// DetermineDesire 计算礼让意愿
// 算法说明（对dir∈{LEFT, RIGHT}）：
// 1. 相邻车道前车想要向本车道变道，且本车以意愿调整的车头时距跟随其时需要减速，
// 则产生向dir反方向变道的意愿（yes）
// 2. 两车道外的后车想要向相邻车道变道，且其跟随本车需要减速，则产生不向dir变道的意愿（no）；
// 后车的加速度以其自身的标定与期望速度计算（见neighborModel），后车由近及远扫描，遇到第一辆无需减速的后车即停止
// 3. 两车道外的前车想要向相邻车道变道，且本车跟随其需要减速，同样产生no意愿
// 4. 每辆邻车的贡献为 d*min(-a/b, 1)，同类贡献取最大值
// 5. 任一贡献只在对应方向可以合法变道时计入
// 6. desire[dir] = SOCIO*yes[dir] - no[dir]
func (IncentiveCourtesy) DetermineDesire(
	params parameter.Reader, p *Perception, cfm following.CarFollowingModel, _, _ Desire,
) (Desire, error) {
	socio, err := parameter.Get(params, parameter.SOCIO)
	if err != nil {
		return Desire{}, err
	}
	b, err := parameter.Get(params, parameter.B)
	if err != nil {
		return Desire{}, err
	}
	var yes, no [2]float64
	laneOK := [2]bool{
		p.LegalLaneChangePossible(entity.LEFT),
		p.LegalLaneChangePossible(entity.RIGHT),
	}
	contribution := func(desire float64, a unit.Acceleration) float64 {
		return desire * min(float64(-a/b), 1)
	}

	for _, dir := range []int{entity.LEFT, entity.RIGHT} {
		away := entity.Flip(dir)
		// 相邻车道前车
		for _, leader := range p.GetLeaders(entity.Adjacent(dir, 1)) {
			distance, ok := leader.Distance()
			if !ok {
				continue
			}
			desire, ok, err := neighborDesire(leader, dir)
			if err != nil {
				return Desire{}, err
			}
			if !ok || desire <= 0 {
				continue
			}
			a, err := SingleAcceleration(distance, p.Speed, leader.SpeedOrZero(), desire, params, p.SpeedLimit, cfm)
			if err != nil {
				return Desire{}, err
			}
			if a < 0 && laneOK[away] {
				yes[away] = max(yes[away], contribution(desire, a))
			}
		}

		farLane := entity.Adjacent(dir, 2)
		if !p.HasLane(farLane) {
			continue
		}
		// 两车道外的后车
		for _, follower := range p.GetFollowers(farLane) {
			distance, ok := follower.Distance()
			if !ok {
				continue
			}
			desire, ok, err := neighborDesire(follower, dir)
			if err != nil {
				return Desire{}, err
			}
			if !ok {
				continue
			}
			m, followerSli := neighborModel(cfm, follower, p.SpeedLimit)
			a, err := SingleAcceleration(distance, follower.SpeedOrZero(), p.Speed, desire, follower.Parameters(), followerSli, m)
			if err != nil {
				return Desire{}, err
			}
			if a >= 0 {
				// 更远的后车不再受影响
				break
			}
			if desire > 0 && laneOK[dir] {
				no[dir] = max(no[dir], contribution(desire, a))
			}
		}
		// 两车道外的前车
		for _, leader := range p.GetLeaders(farLane) {
			distance, ok := leader.Distance()
			if !ok {
				continue
			}
			desire, ok, err := neighborDesire(leader, dir)
			if err != nil {
				return Desire{}, err
			}
			if !ok || desire <= 0 {
				continue
			}
			a, err := SingleAcceleration(distance, p.Speed, leader.SpeedOrZero(), desire, params, p.SpeedLimit, cfm)
			if err != nil {
				return Desire{}, err
			}
			if a < 0 && laneOK[dir] {
				no[dir] = max(no[dir], contribution(desire, a))
			}
		}
	}

	return Desire{
		Left:  socio*yes[entity.LEFT] - no[entity.LEFT],
		Right: socio*yes[entity.RIGHT] - no[entity.RIGHT],
	}, nil
}

// neighborModel 邻车自身的跟驰模型与限速信息
// 说明：A、B、S0、FSPEED取自邻车公布的参数，缺失时沿用本车的标定；
// 邻车的期望速度已知时直接以其作为期望速度，否则沿用本车的限速信息
func neighborModel(
	cfm following.CarFollowingModel, h *headway.Headway, sli entity.SpeedLimitInfo,
) (following.CarFollowingModel, entity.SpeedLimitInfo) {
	m, ok := cfm.(following.CalibratedModel)
	if !ok {
		return cfm, sli
	}
	c := m.Config()
	r := h.Parameters()
	if a, ok := parameter.Lookup(r, parameter.A); ok {
		c.A = a
	}
	if b, ok := parameter.Lookup(r, parameter.B); ok {
		c.B = b
	}
	if s0, ok := parameter.Lookup(r, parameter.S0); ok {
		c.S0 = s0
	}
	if v0 := h.DesiredSpeed(); v0 > 0 {
		c.Delta = 1
		sli = entity.SpeedLimitInfo{MaxVehicleSpeed: v0, SpeedLimit: v0}
	} else if fSpeed, ok := parameter.Lookup(r, parameter.FSPEED); ok {
		c.Delta = fSpeed
	}
	return m.WithConfig(c), sli
}
