package headway

import (
	"fmt"

	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/unit"
)

// SpeedLimitLane 可提供限速的车道
type SpeedLimitLane interface {
	SpeedLimit(gtuType entity.GtuType) (unit.Speed, error)
}

// SpeedLimitSource 可推导限速信息的车辆
type SpeedLimitSource interface {
	GtuType() entity.GtuType
	MaxSpeed() unit.Speed
	CurrentLane() SpeedLimitLane
}

// DeriveSpeedLimitInfo 由车辆最高速度与所在车道限速组成限速信息
// 说明：车道无法给出限速属于配置错误，返回包装ErrSpeedLimit的错误
func DeriveSpeedLimitInfo(src SpeedLimitSource) (entity.SpeedLimitInfo, error) {
	lane := src.CurrentLane()
	if lane == nil {
		return entity.SpeedLimitInfo{}, fmt.Errorf("%w: vehicle is not on a lane", ErrSpeedLimit)
	}
	limit, err := lane.SpeedLimit(src.GtuType())
	if err != nil {
		return entity.SpeedLimitInfo{}, fmt.Errorf("%w: %w", ErrSpeedLimit, err)
	}
	return entity.SpeedLimitInfo{
		MaxVehicleSpeed: src.MaxSpeed(),
		SpeedLimit:      limit,
	}, nil
}
