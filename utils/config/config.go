package config

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

const (
	DefaultSpeedLimitKey = "default" // Road.SpeedLimits中适用于其他车辆类别的键

	defaultLaneWidth      = 3.5
	defaultSpeedLimit     = 120 / 3.6
	defaultCarFollowing   = "idmplus"
	defaultDelta          = 1.0
	defaultOutputInterval = 1
)

// ErrConfig 配置非法
var ErrConfig = errors.New("config")

// RuntimeConfig 运行时配置
// 功能：补全默认值并通过检查后的配置，仿真过程中只读
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置

	Road           Road  // 补全默认值后的道路配置
	CarFollowing   string
	Delta          float64
	Parameters     map[string]float64
	Social         bool // 是否启用社会化交互
	LaneChange     bool // 是否允许变道
	OutputInterval int32
}

// NewRuntimeConfig 根据配置生成运行时配置
// 功能：补全默认值并检查配置的合法性
// 参数：config-原始配置对象
// 返回：运行时配置，配置非法时返回包装了ErrConfig的错误
// 算法说明：
// 1. 检查时间控制：步长为正，总步数为正
// 2. 检查道路：长度为正，车道数至少为1，限速为正，禁止变道的车道编号合法
// 3. 补全车道宽度、默认限速、跟驰模型、社会化交互与变道开关
func NewRuntimeConfig(config Config) (*RuntimeConfig, error) {
	rc := &RuntimeConfig{
		All:            config,
		C:              config.Control,
		Road:           config.Road,
		CarFollowing:   config.Model.CarFollowing,
		Delta:          config.Model.Delta,
		Parameters:     config.Model.Parameters,
		Social:         true,
		LaneChange:     true,
		OutputInterval: config.Output.Interval,
	}

	step := config.Control.Step
	if !(step.Interval > 0) {
		return nil, fmt.Errorf("%w: control.step.interval must be positive, got %v", ErrConfig, step.Interval)
	}
	if step.Total <= 0 {
		return nil, fmt.Errorf("%w: control.step.total must be positive, got %v", ErrConfig, step.Total)
	}
	if config.Control.AccNoise < 0 {
		return nil, fmt.Errorf("%w: control.acc_noise must be non-negative, got %v", ErrConfig, config.Control.AccNoise)
	}

	road := &rc.Road
	if !(road.Length > 0) {
		return nil, fmt.Errorf("%w: road.length must be positive, got %v", ErrConfig, road.Length)
	}
	if road.Lanes < 1 {
		return nil, fmt.Errorf("%w: road.lanes must be at least 1, got %v", ErrConfig, road.Lanes)
	}
	if road.LaneWidth == 0 {
		road.LaneWidth = defaultLaneWidth
	} else if !(road.LaneWidth > 0) {
		return nil, fmt.Errorf("%w: road.lane_width must be positive, got %v", ErrConfig, road.LaneWidth)
	}
	limits := lo.Assign(map[string]float64{DefaultSpeedLimitKey: defaultSpeedLimit}, road.SpeedLimits)
	for k, v := range limits {
		if !(v > 0) {
			return nil, fmt.Errorf("%w: road.speed_limits[%s] must be positive, got %v", ErrConfig, k, v)
		}
	}
	road.SpeedLimits = limits
	for _, i := range road.NoLaneChange {
		if i < 0 || i >= road.Lanes {
			return nil, fmt.Errorf("%w: road.no_lane_change has invalid lane %d", ErrConfig, i)
		}
	}

	switch rc.CarFollowing {
	case "":
		rc.CarFollowing = defaultCarFollowing
	case "idm", "idmplus":
	default:
		return nil, fmt.Errorf("%w: model.car_following must be idm or idmplus, got %q", ErrConfig, rc.CarFollowing)
	}
	if rc.Delta == 0 {
		rc.Delta = defaultDelta
	} else if !(rc.Delta > 0) {
		return nil, fmt.Errorf("%w: model.delta must be positive, got %v", ErrConfig, rc.Delta)
	}
	if config.Model.Social != nil {
		rc.Social = *config.Model.Social
	}
	if config.Model.LaneChange != nil {
		rc.LaneChange = *config.Model.LaneChange
	}
	if rc.OutputInterval == 0 {
		rc.OutputInterval = defaultOutputInterval
	} else if rc.OutputInterval < 0 {
		return nil, fmt.Errorf("%w: output.interval must be positive, got %v", ErrConfig, rc.OutputInterval)
	}
	return rc, nil
}

// SpeedLimit 获取车辆类别对应的限速（m/s）
func (rc *RuntimeConfig) SpeedLimit(gtuType string) float64 {
	if v, ok := rc.Road.SpeedLimits[gtuType]; ok {
		return v
	}
	return rc.Road.SpeedLimits[DefaultSpeedLimitKey]
}
