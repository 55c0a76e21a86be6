package headway

import (
	"strings"

	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/unit"
)

// Status 邻车灯光与信号状态位集合
type Status uint8

const (
	BrakingLights Status = 1 << iota
	LeftTurnIndicator
	RightTurnIndicator
	EmergencyLights
	Honk
)

var statusNames = []struct {
	flag Status
	name string
}{
	{BrakingLights, "BRAKING_LIGHTS"},
	{LeftTurnIndicator, "LEFT_TURNINDICATOR"},
	{RightTurnIndicator, "RIGHT_TURNINDICATOR"},
	{EmergencyLights, "EMERGENCY_LIGHTS"},
	{Honk, "HONK"},
}

// Has 检查是否包含flag
func (s Status) Has(flag Status) bool {
	return s&flag != 0
}

func (s Status) String() string {
	names := make([]string, 0, len(statusNames))
	for _, n := range statusNames {
		if s.Has(n.flag) {
			names = append(names, n.name)
		}
	}
	return "[" + strings.Join(names, ",") + "]"
}

// SignalSource 可读取灯光信号的车辆
type SignalSource interface {
	IndicatorsAt(t float64) entity.Indicators
	AccelerationAt(t float64) unit.Acceleration
	HonkingAt(t float64) bool
}

// CollectStatusFlags 读取车辆在t时刻的信号状态
// 功能：将转向灯、制动灯、鸣笛状态汇总为Status
// 参数：src-被感知车辆，t-感知时刻
// 返回：状态位集合
// 说明：双闪优先于转向灯，双闪开启时不再记录左右转向灯；制动灯（加速度为负）与鸣笛相互独立
func CollectStatusFlags(src SignalSource, t float64) Status {
	var s Status
	ind := src.IndicatorsAt(t)
	switch {
	case ind.Hazard:
		s |= EmergencyLights
	case ind.Left:
		s |= LeftTurnIndicator
	case ind.Right:
		s |= RightTurnIndicator
	}
	if src.AccelerationAt(t) < 0 {
		s |= BrakingLights
	}
	if src.HonkingAt(t) {
		s |= Honk
	}
	return s
}
