package following

import (
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/headway"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/parameter"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/unit"
)

// DesiredSpeedModel 期望速度模型
// 参数：params-本车参数，sli-限速信息，followers-当前车道后车（由近及远）
type DesiredSpeedModel interface {
	DesiredSpeed(params parameter.Reader, sli entity.SpeedLimitInfo, followers []*headway.Headway) (unit.Speed, error)
}

// ParameterDesiredSpeed 基于FSPEED参数的期望速度 min(FSPEED*限速, 车辆最高速度)
type ParameterDesiredSpeed struct{}

func (ParameterDesiredSpeed) DesiredSpeed(
	params parameter.Reader, sli entity.SpeedLimitInfo, _ []*headway.Headway,
) (unit.Speed, error) {
	fSpeed, err := parameter.Get(params, parameter.FSPEED)
	if err != nil {
		return 0, err
	}
	return min(unit.Speed(fSpeed*sli.SpeedLimit.SI()), sli.MaxVehicleSpeed), nil
}
