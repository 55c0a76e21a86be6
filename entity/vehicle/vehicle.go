package vehicle

import (
	"fmt"
	"strconv"

	geov2 "git.fiblab.net/sim/protos/v2/go/city/geo/v2"
	personv2 "git.fiblab.net/sim/protos/v2/go/city/person/v2"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/headway"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/parameter"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/vehicle/following"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/randengine"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/unit"
)

const (
	truckMinLength = 7.0 // 未标注类别时，车长不小于该值视为货车

	labelGtuType = "gtu_type" // 车辆类别标签，取值car/truck
	labelSocio   = "socio"    // SOCIO标签，取值[0, 1]
	labelVGain   = "vgain"    // VGAIN标签，单位km/h
	labelTMax    = "tmax"     // TMAX标签，单位秒

	laneChangeDuration = 3.0 // 变道完成后转向灯保持、不再发起新变道的时长（秒）
)

// runtime 车辆运行时数据
type runtime struct {
	Lane         entity.ILane
	S            float64 // 车头位置，[0, lane.Length())
	V            float64
	A            float64
	DesiredSpeed float64
	Indicators   entity.Indicators
	LaneChange   int     // 本步执行的变道方向NONE/LEFT/RIGHT
	LCRemaining  float64 // 最近一次变道的剩余保持时长
	LCSide       int     // 最近一次变道的方向
	Distance     float64 // 累计行驶距离
}

// Vehicle 环路上的车辆
// 功能：持有车辆属性、LMRS参数与跟驰模型，按Prepare/Update两阶段推进
// 说明：Update阶段只读取其他车辆的快照，runtime只由车辆自身修改
type Vehicle struct {
	ctx entity.ITaskContext
	m   *VehicleManager

	base    *personv2.Person
	id      int32
	gtuType entity.GtuType
	length  float64
	width   float64
	maxV    unit.Speed
	maxA    float64 // 最大加速度（正值）
	maxBrA  float64 // 最大制动加速度（负值）

	params       *parameter.Parameters
	cfm          following.CarFollowingModel
	desiredSpeed following.DesiredSpeedModel
	generator    *randengine.Engine

	lastLeader string // 上一步当前车道的第一辆前车

	node     *entity.VehicleNode
	runtime  runtime
	snapshot runtime
	snap     *entity.VehicleSnapshot
}

// newVehicle 根据person数据创建车辆
// 功能：检查车辆属性，构造跟驰模型与LMRS参数，设置初始位置
// 参数：ctx-任务上下文，m-车辆管理器，base-person数据（VehicleAttribute与Home的车道位置）
// 返回：车辆，数据非法时返回错误
// 算法说明：
// 1. 车辆属性检查（最高速度、加速度、车长、车宽等）
// 2. 跟驰模型标定：a=常用加速度，b=-常用制动加速度，s0=最小车距，T=车头时距
// 3. LMRS参数：默认值，配置覆盖，再由标签或分布给出SOCIO、VGAIN、TMAX
// 4. 初始位置取自Home.LanePosition，车道ID即车道编号
func newVehicle(ctx entity.ITaskContext, m *VehicleManager, base *personv2.Person) (*Vehicle, error) {
	attr := base.VehicleAttribute
	if attr == nil {
		return nil, fmt.Errorf("person %d has no vehicle attribute", base.Id)
	}
	switch {
	case attr.MaxSpeed <= 0:
		return nil, fmt.Errorf("person %d (vehicle_attr=%v) vehicle max speed is less than 0", base.Id, attr)
	case attr.MaxAcceleration <= 0:
		return nil, fmt.Errorf("person %d (vehicle_attr=%v) vehicle max acceleration is less than 0", base.Id, attr)
	case attr.MaxBrakingAcceleration >= 0:
		return nil, fmt.Errorf("person %d (vehicle_attr=%v) vehicle max braking acceleration is greater than 0", base.Id, attr)
	case attr.UsualAcceleration <= 0:
		return nil, fmt.Errorf("person %d (vehicle_attr=%v) vehicle usual acceleration is less than 0", base.Id, attr)
	case attr.UsualBrakingAcceleration >= 0:
		return nil, fmt.Errorf("person %d (vehicle_attr=%v) vehicle usual braking acceleration is greater than 0", base.Id, attr)
	case attr.Length <= 0:
		return nil, fmt.Errorf("person %d (vehicle_attr=%v) vehicle length is less than 0", base.Id, attr)
	case attr.Width <= 0:
		return nil, fmt.Errorf("person %d (vehicle_attr=%v) vehicle width is less than 0", base.Id, attr)
	case attr.MinGap < 0:
		return nil, fmt.Errorf("person %d (vehicle_attr=%v) vehicle min gap is less than 0", base.Id, attr)
	case attr.Headway < 0:
		return nil, fmt.Errorf("person %d (vehicle_attr=%v) vehicle headway is less than 0", base.Id, attr)
	}
	if base.Home == nil || base.Home.LanePosition == nil {
		return nil, fmt.Errorf("person %d has no home lane position", base.Id)
	}

	rc := ctx.RuntimeConfig()
	v := &Vehicle{
		ctx:       ctx,
		m:         m,
		base:      base,
		id:        base.Id,
		length:    attr.Length,
		width:     attr.Width,
		maxV:      unit.Speed(attr.MaxSpeed),
		maxA:      attr.MaxAcceleration,
		maxBrA:    attr.MaxBrakingAcceleration,
		generator: randengine.New(uint64(base.Id)),
	}
	v.gtuType = v.classify()

	c := following.DefaultConfig()
	c.A = unit.Acceleration(attr.UsualAcceleration)
	c.B = unit.Acceleration(-attr.UsualBrakingAcceleration)
	c.S0 = unit.Length(attr.MinGap)
	if attr.Headway > 0 {
		c.TSafe = unit.Duration(attr.Headway)
	}
	c.Delta = rc.Delta
	c.StepSize = ctx.Clock().StepSize()
	cfm, err := following.New(rc.CarFollowing, c)
	if err != nil {
		return nil, fmt.Errorf("person %d: %w", base.Id, err)
	}
	v.cfm = cfm

	if v.params, err = v.newParameters(c); err != nil {
		return nil, fmt.Errorf("person %d: %w", base.Id, err)
	}
	if rc.Social {
		v.desiredSpeed = lmrsSocioDesiredSpeed
	} else {
		v.desiredSpeed = following.ParameterDesiredSpeed{}
	}

	laneManager := ctx.LaneManager()
	lane, err := laneManager.GetOrError(int(base.Home.LanePosition.LaneId))
	if err != nil {
		return nil, fmt.Errorf("person %d: %w", base.Id, err)
	}
	v.runtime = runtime{
		Lane:       lane,
		S:          base.Home.LanePosition.S,
		LaneChange: entity.NONE,
		LCSide:     entity.NONE,
	}
	if v.runtime.S < 0 || v.runtime.S >= lane.Length() {
		return nil, fmt.Errorf("person %d: s=%v out of lane %v range [0, %v)", base.Id, v.runtime.S, lane, lane.Length())
	}
	return v, nil
}

// classify 车辆类别：优先使用标签，否则按车长划分
func (v *Vehicle) classify() entity.GtuType {
	switch v.base.Labels[labelGtuType] {
	case "car", "CAR":
		return entity.GtuTypeCar
	case "truck", "TRUCK":
		return entity.GtuTypeTruck
	}
	if v.length >= truckMinLength {
		return entity.GtuTypeTruck
	}
	return entity.GtuTypeCar
}

// newParameters 构造车辆的LMRS参数
// 说明：SOCIO与VGAIN的分布为小汽车Triangular(0, 0.1, 1)与LogNormal(3.3789, 0.4) km/h，
// 货车固定为1与50 km/h
func (v *Vehicle) newParameters(c following.Config) (*parameter.Parameters, error) {
	rc := v.ctx.RuntimeConfig()
	p := parameter.Defaults()
	tMax := unit.Duration(1.6)
	tMin, _ := parameter.TMIN.Default()
	if v.base.VehicleAttribute.Headway > 0 {
		tMax = c.TSafe
	}
	socio, vGain := 1.0, unit.KmPerHour(50)
	if v.gtuType != entity.GtuTypeTruck {
		socio = v.generator.Triangular(0, 0.1, 1)
		vGain = unit.KmPerHour(v.generator.LogNormal(3.3789, 0.4))
	}
	labels := v.base.Labels
	if x, ok, err := floatLabel(labels, labelSocio); err != nil {
		return nil, err
	} else if ok {
		socio = x
	}
	if x, ok, err := floatLabel(labels, labelVGain); err != nil {
		return nil, err
	} else if ok {
		vGain = unit.KmPerHour(x)
	}
	if x, ok, err := floatLabel(labels, labelTMax); err != nil {
		return nil, err
	} else if ok {
		tMax = unit.Duration(x)
	}

	steps := []func() error{
		func() error { return parameter.Set(p, parameter.A, c.A) },
		func() error { return parameter.Set(p, parameter.B, c.B) },
		func() error { return parameter.Set(p, parameter.BCRIT, unit.Acceleration(max(-v.maxBrA, c.B.SI()))) },
		func() error { return parameter.Set(p, parameter.S0, c.S0) },
		func() error { return parameter.Set(p, parameter.TMAX, tMax) },
		func() error { return parameter.Set(p, parameter.TMIN, min(tMin, tMax)) },
		func() error { return parameter.Set(p, parameter.T, tMax) },
		func() error { return parameter.Set(p, parameter.DT, c.StepSize) },
		func() error { return parameter.Set(p, parameter.FSPEED, c.Delta) },
		func() error { return parameter.Set(p, parameter.SOCIO, socio) },
		func() error { return parameter.Set(p, parameter.VGAIN, vGain) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	if err := applyOverrides(p, rc.Parameters); err != nil {
		return nil, err
	}
	return p, nil
}

func floatLabel(labels map[string]string, key string) (float64, bool, error) {
	s, ok := labels[key]
	if !ok {
		return 0, false, nil
	}
	x, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid label %s=%q: %w", key, s, err)
	}
	return x, true, nil
}

// prepare 准备阶段：生成快照并同步链表节点
// 说明：变道时旧节点从原车道移除，新节点加入目标车道，均在车道Prepare时生效
func (v *Vehicle) prepare() {
	switch {
	case v.node == nil:
		v.node = &entity.VehicleNode{S: v.runtime.S, Value: v}
		v.runtime.Lane.AddVehicle(v.node)
	case v.runtime.Lane != v.snapshot.Lane:
		v.snapshot.Lane.RemoveVehicle(v.node)
		v.node = &entity.VehicleNode{S: v.runtime.S, Value: v}
		v.runtime.Lane.AddVehicle(v.node)
	default:
		v.node.S = v.runtime.S
	}
	v.node.Extra = entity.VehicleExtra{LaneChange: v.runtime.LaneChange}
	v.snapshot = v.runtime
	v.snap = &entity.VehicleSnapshot{
		ID:           v.id,
		GtuType:      v.gtuType,
		Lane:         v.runtime.Lane.Index(),
		S:            v.runtime.S,
		V:            v.runtime.V,
		A:            v.runtime.A,
		Length:       v.length,
		Width:        v.width,
		DesiredSpeed: v.runtime.DesiredSpeed,
		Indicators:   v.runtime.Indicators,
		LaneChange:   v.runtime.LaneChange,
		Params:       v.params.Clone(),
	}
}

// entity.IVehicle

func (v *Vehicle) ID() int32               { return v.id }
func (v *Vehicle) GtuType() entity.GtuType { return v.gtuType }
func (v *Vehicle) Length() float64         { return v.length }

// V 上一步结束时的速度
func (v *Vehicle) V() float64 {
	return v.snapshot.V
}

// Snapshot 上一步结束时的快照，Prepare之前为nil
func (v *Vehicle) Snapshot() *entity.VehicleSnapshot {
	return v.snap
}

// Parameters 车辆自身的参数（仅供本车或测试读取）
func (v *Vehicle) Parameters() *parameter.Parameters {
	return v.params
}

func (v *Vehicle) String() string {
	return fmt.Sprintf("Vehicle %d(%s) lane=%v s=%.2f v=%.2f", v.id, v.gtuType, v.snapshot.Lane, v.snapshot.S, v.snapshot.V)
}

// headway.SpeedLimitSource

// MaxSpeed 车辆最高速度
func (v *Vehicle) MaxSpeed() unit.Speed {
	return v.maxV
}

// CurrentLane 当前所在车道
func (v *Vehicle) CurrentLane() headway.SpeedLimitLane {
	if v.runtime.Lane == nil {
		return nil
	}
	return v.runtime.Lane
}

// ToMotionPb 生成上一步结束时的运动状态
func (v *Vehicle) ToMotionPb() *personv2.PersonMotion {
	return &personv2.PersonMotion{
		Id:     v.id,
		Status: personv2.Status_STATUS_DRIVING,
		Position: &geov2.Position{
			LanePosition: &geov2.LanePosition{LaneId: v.snapshot.Lane.ID(), S: v.snapshot.S},
		},
		V: v.snapshot.V,
		A: v.snapshot.A,
		L: v.length,
	}
}

// ToPersonRuntimePb 生成运行时数据，returnBase为true时附带输入的person数据
func (v *Vehicle) ToPersonRuntimePb(returnBase bool) *personv2.PersonRuntime {
	pb := &personv2.PersonRuntime{
		Motion: v.ToMotionPb(),
	}
	if returnBase {
		pb.Base = v.base
	}
	return pb
}

// applyOverrides 按参数ID覆盖参数值
func applyOverrides(p *parameter.Parameters, overrides map[string]float64) error {
	for _, id := range lo.Keys(overrides) {
		if err := parameter.SetByID(p, id, overrides[id]); err != nil {
			return err
		}
	}
	return nil
}
