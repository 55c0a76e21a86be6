package entity

import (
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/clock"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/config"
)

type ITaskContext interface {
	Clock() *clock.Clock
	LaneManager() ILaneManager
	VehicleManager() IVehicleManager
	RuntimeConfig() *config.RuntimeConfig
}
