// 跟驰模型：IDM与IDM+
package following

import (
	"errors"
	"fmt"

	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/unit"
)

// ErrConfig 跟驰模型标定参数非法
var ErrConfig = errors.New("car-following config")

// Config 跟驰模型标定参数
// 功能：保存模型构造后不再变化的标定常数
type Config struct {
	A        unit.Acceleration `yaml:"a"`         // 最大期望加速度
	B        unit.Acceleration `yaml:"b"`         // 舒适减速度（正值）
	S0       unit.Length       `yaml:"s0"`        // 静止最小车距
	TSafe    unit.Duration     `yaml:"t_safe"`    // 期望车头时距
	Delta    float64           `yaml:"delta"`     // 限速遵守系数，1.0表示严格遵守
	StepSize unit.Duration     `yaml:"step_size"` // 加速度计算结果的名义有效时长
}

// DefaultConfig 默认标定参数
func DefaultConfig() Config {
	return Config{
		A:        1.56,
		B:        2.09,
		S0:       3,
		TSafe:    1.2,
		Delta:    1.0,
		StepSize: 0.5,
	}
}

// Validate 检查标定参数
func (c Config) Validate() error {
	switch {
	case !(c.A >= 0):
		return fmt.Errorf("%w: a must be non-negative, got %v", ErrConfig, c.A)
	case !(c.B >= 0):
		return fmt.Errorf("%w: b must be non-negative, got %v", ErrConfig, c.B)
	case !(c.S0 >= 0):
		return fmt.Errorf("%w: s0 must be non-negative, got %v", ErrConfig, c.S0)
	case !(c.TSafe >= 0):
		return fmt.Errorf("%w: tSafe must be non-negative, got %v", ErrConfig, c.TSafe)
	case !(c.Delta >= 0):
		return fmt.Errorf("%w: delta must be non-negative, got %v", ErrConfig, c.Delta)
	case !(c.StepSize > 0):
		return fmt.Errorf("%w: step size must be positive, got %v", ErrConfig, c.StepSize)
	}
	return nil
}

// CarFollowingModel 跟驰模型
// 说明：实现均为无状态的纯函数，标定参数只读，可被多辆车并发调用
type CarFollowingModel interface {
	// 计算跟车加速度，期望速度由DesiredSpeed(followerMaxSpeed, speedLimit)给出
	ComputeAcceleration(followerSpeed, followerMaxSpeed, leaderSpeed unit.Speed, headway unit.Length, speedLimit unit.Speed) unit.Acceleration
	// 以给定的期望速度计算跟车加速度
	FollowingAcceleration(followerSpeed, desiredSpeed, leaderSpeed unit.Speed, headway unit.Length) unit.Acceleration
	// 期望速度 min(delta*speedLimit, followerMaxSpeed)
	DesiredSpeed(followerMaxSpeed, speedLimit unit.Speed) unit.Speed
	StepSize() unit.Duration                   // 名义有效时长
	MaximumSafeDeceleration() unit.Acceleration // 最大安全减速度（b）
	Name() string
	LongName() string
}

// DesiredHeadwayModel 可替换期望车头时距的跟驰模型
type DesiredHeadwayModel interface {
	CarFollowingModel
	// 返回期望车头时距为t的模型副本
	WithDesiredHeadway(t unit.Duration) CarFollowingModel
}

// CalibratedModel 可替换标定参数的跟驰模型，用于以邻车自身的标定估计其反应
type CalibratedModel interface {
	CarFollowingModel
	Config() Config
	// 返回标定参数为c的模型副本，c不再检查
	WithConfig(c Config) CarFollowingModel
}

// New 按名称创建跟驰模型
func New(name string, c Config) (CarFollowingModel, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	switch name {
	case "idm", "IDM":
		return NewIDM(c), nil
	case "idmplus", "IDM+", "idm+":
		return NewIDMPlus(c), nil
	default:
		return nil, fmt.Errorf("%w: unknown model %q", ErrConfig, name)
	}
}

// base IDM与IDM+的共用部分
type base struct {
	c Config
}

func (m base) Config() Config {
	return m.c
}

func (m base) DesiredSpeed(followerMaxSpeed, speedLimit unit.Speed) unit.Speed {
	return min(unit.Speed(m.c.Delta)*speedLimit, followerMaxSpeed)
}

func (m base) StepSize() unit.Duration {
	return m.c.StepSize
}

func (m base) MaximumSafeDeceleration() unit.Acceleration {
	return m.c.B
}

// freeRatio 自由流项 (v/vDes)^4，期望速度为0时不提供自由流加速度
func (m base) freeRatio(followerSpeed, desiredSpeed unit.Speed) (ratio float64, ok bool) {
	if desiredSpeed <= 0 {
		return 0, false
	}
	r := float64(followerSpeed / desiredSpeed)
	return r * r * r * r, true
}

// desiredGap 期望车距 s* = s0 + max(0, v*T + v*dv/(2*sqrt(a*b)))
// 说明：a或b为0时交互项的分母为0，此时忽略接近速度项
func (m base) desiredGap(followerSpeed, leaderSpeed unit.Speed) unit.Length {
	v := float64(followerSpeed)
	dv := float64(followerSpeed - leaderSpeed)
	variable := v * float64(m.c.TSafe)
	if comfort := 2 * sqrtAB(m.c.A, m.c.B); comfort > 0 {
		variable += dv * v / comfort
	}
	sStar := float64(m.c.S0) + max(variable, 0)
	return unit.Length(max(sStar, 0))
}

// noReverse 一步积分后不允许倒车：a*dt+v<0时，取恰好在步末停车的加速度
func (m base) noReverse(a unit.Acceleration, followerSpeed unit.Speed) unit.Acceleration {
	if a.Times(m.c.StepSize)+followerSpeed < 0 {
		return -followerSpeed.Over(m.c.StepSize)
	}
	return a
}

// stopNow 车距不为正时，在一步内停车
func (m base) stopNow(followerSpeed unit.Speed) unit.Acceleration {
	return -followerSpeed.Over(m.c.StepSize)
}
