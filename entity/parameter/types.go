package parameter

import (
	"errors"

	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/unit"
)

func positive[T ~float64](v T) error {
	if v <= 0 {
		return errors.New("value must be positive")
	}
	return nil
}

func positiveZero[T ~float64](v T) error {
	if v < 0 {
		return errors.New("value must be non-negative")
	}
	return nil
}

func unitInterval(v float64) error {
	if v < 0 || v > 1 {
		return errors.New("value must be in [0, 1]")
	}
	return nil
}

// 跟车模型参数
var (
	A      = NewType("a", "Maximum desired car-following acceleration", unit.Acceleration(1.25), positive[unit.Acceleration])
	B      = NewType("b", "Maximum comfortable car-following deceleration", unit.Acceleration(2.09), positive[unit.Acceleration])
	BCRIT  = NewType("bCrit", "Maximum critical deceleration", unit.Acceleration(3.5), positive[unit.Acceleration])
	S0     = NewType("s0", "Car-following stopping distance", unit.Length(3.0), positiveZero[unit.Length])
	T      = NewType("T", "Current car-following headway", unit.Duration(1.2), positive[unit.Duration])
	TMIN   = NewType("Tmin", "Minimum car-following headway", unit.Duration(0.56), positive[unit.Duration])
	TMAX   = NewType("Tmax", "Maximum car-following headway", unit.Duration(1.2), positive[unit.Duration])
	TAU    = NewType("tau", "Headway relaxation time", unit.Duration(25), positive[unit.Duration])
	DT     = NewType("dt", "Fixed model time step", unit.Duration(0.5), positive[unit.Duration])
	FSPEED = NewType("fSpeed", "Speed limit adherence factor", 1.0, positive[float64])

	LOOKAHEAD = NewType("Look-ahead", "Look-ahead distance", unit.Length(295), positive[unit.Length])
	LOOKBACK  = NewType("Look-back", "Look-back distance", unit.Length(200), positive[unit.Length])
)

// LMRS参数
var (
	DFREE   = NewType("dFree", "Free lane change desire threshold", 0.365, unitInterval)
	DSYNC   = NewType("dSync", "Synchronized lane change desire threshold", 0.577, unitInterval)
	DCOOP   = NewType("dCoop", "Cooperative lane change desire threshold", 0.788, unitInterval)
	LAMBDAV = NewType("lambdaV", "Voluntary lane change influence", 1.0, positiveZero[float64])
	SOCIO   = NewType("socio", "Sensitivity level for speed of others", 1.0, unitInterval)
	VGAIN   = NewType("vGain", "Anticipation speed difference at full lane change desire", unit.KmPerHour(69.6), positive[unit.Speed])
	RHO     = NewType("rho", "Social pressure", 0.0, unitInterval)

	// 每辆车对外公布的当前变道意愿，供邻车礼让判断
	DLEFT  = NewType("dLeft", "Left lane change desire", 0.0, nil)
	DRIGHT = NewType("dRight", "Right lane change desire", 0.0, nil)
	DLC    = NewType("dLaneChange", "Desire of current lane change", 0.0, nil)
)

// Defaults 创建包含全部默认参数的集合
func Defaults() *Parameters {
	p := New()
	for _, set := range []func(*Parameters) error{
		func(p *Parameters) error { return SetDefault(p, A) },
		func(p *Parameters) error { return SetDefault(p, B) },
		func(p *Parameters) error { return SetDefault(p, BCRIT) },
		func(p *Parameters) error { return SetDefault(p, S0) },
		func(p *Parameters) error { return SetDefault(p, T) },
		func(p *Parameters) error { return SetDefault(p, TMIN) },
		func(p *Parameters) error { return SetDefault(p, TMAX) },
		func(p *Parameters) error { return SetDefault(p, TAU) },
		func(p *Parameters) error { return SetDefault(p, DT) },
		func(p *Parameters) error { return SetDefault(p, FSPEED) },
		func(p *Parameters) error { return SetDefault(p, LOOKAHEAD) },
		func(p *Parameters) error { return SetDefault(p, LOOKBACK) },
		func(p *Parameters) error { return SetDefault(p, DFREE) },
		func(p *Parameters) error { return SetDefault(p, DSYNC) },
		func(p *Parameters) error { return SetDefault(p, DCOOP) },
		func(p *Parameters) error { return SetDefault(p, LAMBDAV) },
		func(p *Parameters) error { return SetDefault(p, SOCIO) },
		func(p *Parameters) error { return SetDefault(p, VGAIN) },
		func(p *Parameters) error { return SetDefault(p, RHO) },
		func(p *Parameters) error { return SetDefault(p, DLEFT) },
		func(p *Parameters) error { return SetDefault(p, DRIGHT) },
		func(p *Parameters) error { return SetDefault(p, DLC) },
	} {
		if err := set(p); err != nil {
			// 默认值均满足检查条件
			panic(err)
		}
	}
	return p
}

func floatSetter[T ~float64](t Type[T]) func(*Parameters, float64) error {
	return func(p *Parameters, v float64) error { return Set(p, t, T(v)) }
}

// 可按ID以国际单位制数值设置的参数
var floatSetters = map[string]func(*Parameters, float64) error{
	A.ID():         floatSetter(A),
	B.ID():         floatSetter(B),
	BCRIT.ID():     floatSetter(BCRIT),
	S0.ID():        floatSetter(S0),
	T.ID():         floatSetter(T),
	TMIN.ID():      floatSetter(TMIN),
	TMAX.ID():      floatSetter(TMAX),
	TAU.ID():       floatSetter(TAU),
	DT.ID():        floatSetter(DT),
	FSPEED.ID():    floatSetter(FSPEED),
	LOOKAHEAD.ID(): floatSetter(LOOKAHEAD),
	LOOKBACK.ID():  floatSetter(LOOKBACK),
	DFREE.ID():     floatSetter(DFREE),
	DSYNC.ID():     floatSetter(DSYNC),
	DCOOP.ID():     floatSetter(DCOOP),
	LAMBDAV.ID():   floatSetter(LAMBDAV),
	SOCIO.ID():     floatSetter(SOCIO),
	VGAIN.ID():     floatSetter(VGAIN),
	RHO.ID():       floatSetter(RHO),
}

// SetByID 按参数ID设置取值（配置文件覆盖参数时使用）
// 说明：v为国际单位制数值，对外公布的意愿参数DLEFT/DRIGHT/DLC不允许设置
func SetByID(p *Parameters, id string, v float64) error {
	set, ok := floatSetters[id]
	if !ok {
		return &Error{ID: id, Reason: "unknown or read-only parameter"}
	}
	return set(p, v)
}
