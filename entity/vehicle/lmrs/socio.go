package lmrs

import (
	"fmt"

	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/headway"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/parameter"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/vehicle/following"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/unit"
)

// SocioDesiredSpeed 社会化期望速度
// 功能：在基础期望速度之上，依最近后车施加的社会压力提高期望速度
type SocioDesiredSpeed struct {
	base following.DesiredSpeedModel
}

// NewSocioDesiredSpeed 包装基础期望速度模型
func NewSocioDesiredSpeed(base following.DesiredSpeedModel) *SocioDesiredSpeed {
	return &SocioDesiredSpeed{base: base}
}

// DesiredSpeed 期望速度 = 基础期望速度 + RHO(最近后车) * SOCIO * VGAIN
// 参数：params-本车参数，sli-限速信息，followers-当前车道后车（由近及远）
// 说明：没有后车或最近后车的参数无法感知时返回基础期望速度；RHO读取自后车自身的参数
func (m *SocioDesiredSpeed) DesiredSpeed(
	params parameter.Reader, sli entity.SpeedLimitInfo, followers []*headway.Headway,
) (unit.Speed, error) {
	v0, err := m.base.DesiredSpeed(params, sli, followers)
	if err != nil {
		return 0, err
	}
	if len(followers) == 0 || followers[0].Parameters() == nil {
		return v0, nil
	}
	follower := followers[0]
	rho, err := parameter.Get(follower.Parameters(), parameter.RHO)
	if err != nil {
		return 0, fmt.Errorf("follower %s: %w", follower.ID(), err)
	}
	sigma, err := parameter.Get(params, parameter.SOCIO)
	if err != nil {
		return 0, err
	}
	vGain, err := parameter.Get(params, parameter.VGAIN)
	if err != nil {
		return 0, err
	}
	return v0 + unit.Speed(rho*sigma)*vGain, nil
}
