package following_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/headway"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/parameter"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity/vehicle/following"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/utils/unit"
)

const leaderLength = unit.Length(4)

var (
	maxSpeed   = unit.KmPerHour(180)
	speedLimit = unit.KmPerHour(100)
)

func testConfig() following.Config {
	return following.Config{A: 1.25, B: 1.5, S0: 2, TSafe: 1, Delta: 1, StepSize: 0.5}
}

func models() []following.CarFollowingModel {
	return []following.CarFollowingModel{
		following.NewIDM(testConfig()),
		following.NewIDMPlus(testConfig()),
	}
}

func leader(t *testing.T, id string, distance unit.Length, speed unit.Speed) *headway.Headway {
	h, err := headway.NewMoving(headway.Info{ID: id, Length: leaderLength, Width: 2}, distance, speed, 0)
	require.NoError(t, err)
	return h
}

func TestConfig(t *testing.T) {
	assert.NoError(t, following.DefaultConfig().Validate())
	c := testConfig()
	c.B = -1
	assert.ErrorIs(t, c.Validate(), following.ErrConfig)
	c = testConfig()
	c.StepSize = 0
	assert.ErrorIs(t, c.Validate(), following.ErrConfig)

	m, err := following.New("idmplus", testConfig())
	require.NoError(t, err)
	assert.Equal(t, "IDM+", m.Name())
	assert.Equal(t, "Intelligent Driver Model+", m.LongName())
	m, err = following.New("idm", testConfig())
	require.NoError(t, err)
	assert.Equal(t, "IDM", m.Name())
	_, err = following.New("gipps", testConfig())
	assert.ErrorIs(t, err, following.ErrConfig)
}

func TestAccessors(t *testing.T) {
	for _, m := range models() {
		assert.Equal(t, unit.Duration(0.5), m.StepSize())
		assert.Equal(t, unit.Acceleration(1.5), m.MaximumSafeDeceleration())
		assert.Equal(t, speedLimit, m.DesiredSpeed(maxSpeed, speedLimit))
		assert.Equal(t, unit.Speed(10), m.DesiredSpeed(10, speedLimit))
	}
	c := testConfig()
	c.Delta = 1.1
	m := following.NewIDM(c)
	assert.InDelta(t, 110, m.DesiredSpeed(maxSpeed, speedLimit).KmPerHour(), 1e-9)
}

// 无前车时静止车辆以最大加速度起步
func TestFreeRoadFromRest(t *testing.T) {
	for _, m := range models() {
		step := following.ComputeAccelerationStep(m, 0, 0, maxSpeed, nil, 250, speedLimit)
		assert.Equal(t, unit.Acceleration(1.25), step.Acceleration, m.Name())
		assert.Equal(t, unit.Duration(0.5), step.Duration)
		assert.Equal(t, 0.5, step.ValidUntil)

		step = following.ComputeAccelerationStep(m, 10, 0, maxSpeed, []*headway.Headway{}, 250, speedLimit)
		assert.Equal(t, unit.Acceleration(1.25), step.Acceleration)
		assert.Equal(t, 10.5, step.ValidUntil)
	}
}

// 前车恰好位于s0处且均静止时加速度为0
func TestStationaryEquilibrium(t *testing.T) {
	m := following.NewIDMPlus(testConfig())
	// 前车车头在本车车头前方 s0+leaderLength 处
	leaderFront := 2 + leaderLength
	gap := leaderFront - leaderLength
	step := following.ComputeAccelerationStep(
		m, 0, 0, maxSpeed, []*headway.Headway{leader(t, "1", gap, 0)}, 250, speedLimit,
	)
	assert.InDelta(t, 0, step.Acceleration.SI(), 1e-4)
	assert.InDelta(t, 0, m.ComputeAcceleration(0, maxSpeed, 0, 2, speedLimit).SI(), 1e-4)
}

// 远处离去的前车不限制加速度
func TestDistantLeader(t *testing.T) {
	for _, m := range models() {
		far := []*headway.Headway{leader(t, "1", 2000, 30)}
		step := following.ComputeAccelerationStep(m, 0, 0, maxSpeed, far, 1000, speedLimit)
		assert.Equal(t, unit.Acceleration(1.25), step.Acceleration, m.Name())

		step = following.ComputeAccelerationStep(m, 0, 0, maxSpeed, []*headway.Headway{leader(t, "1", 1500, 30)}, following.FreeRoad, speedLimit)
		assert.InDelta(t, 1.25, step.Acceleration.SI(), 1e-4, m.Name())
	}
}

// 从静止接近静止前车，最终停在前车后s0处
func TestApproachStationaryLeader(t *testing.T) {
	for _, m := range models() {
		const dt = 0.5
		leaderRear := unit.Length(100 + 3)
		var s unit.Length
		var v unit.Speed
		for i := 0; i < 600; i++ {
			gap := leaderRear - s
			a := m.ComputeAcceleration(v, maxSpeed, 0, gap, speedLimit)
			if v+a.Times(dt) < 0 {
				// 一步内停车
				s += unit.Length(float64(v) * float64(v) / 2 / -float64(a))
				v = 0
			} else {
				s += v.Times(dt) + unit.Length(0.5*float64(a)*dt*dt)
				v += a.Times(dt)
			}
			require.Greater(t, float64(leaderRear-s), 0.0, "%s collides at step %d", m.Name(), i)
		}
		assert.InDelta(t, 2, float64(leaderRear-s), 0.5, m.Name())
		assert.Less(t, float64(v), 0.1, m.Name())
	}
}

func TestMonotonicInGap(t *testing.T) {
	for _, m := range models() {
		for _, v := range []unit.Speed{0, 5, 15, 30} {
			for _, lv := range []unit.Speed{0, 10, 25} {
				prev := m.ComputeAcceleration(v, maxSpeed, lv, -1, speedLimit)
				for gap := unit.Length(0); gap < 300; gap += 0.5 {
					a := m.ComputeAcceleration(v, maxSpeed, lv, gap, speedLimit)
					assert.GreaterOrEqual(t, float64(a), float64(prev)-1e-9, "%s v=%v lv=%v gap=%v", m.Name(), v, lv, gap)
					prev = a
				}
			}
		}
	}
}

func TestMonotonicInLeaderSpeed(t *testing.T) {
	for _, m := range models() {
		for _, v := range []unit.Speed{1, 10, 25} {
			for _, gap := range []unit.Length{1, 10, 50, 200} {
				prev := m.ComputeAcceleration(v, maxSpeed, 0, gap, speedLimit)
				for lv := unit.Speed(0); lv < 40; lv += 0.5 {
					a := m.ComputeAcceleration(v, maxSpeed, lv, gap, speedLimit)
					assert.GreaterOrEqual(t, float64(a), float64(prev)-1e-9, "%s v=%v gap=%v lv=%v", m.Name(), v, gap, lv)
					prev = a
				}
			}
		}
	}
}

func TestNoReverseAndBounded(t *testing.T) {
	for _, m := range models() {
		for _, v := range []unit.Speed{0, 0.1, 3, 12, 30, 50} {
			for _, lv := range []unit.Speed{0, 5, 30} {
				for _, gap := range []unit.Length{-5, 0, 0.01, 1, 2, 10, 100, following.FreeRoad} {
					for _, limit := range []unit.Speed{0, 10, speedLimit} {
						a := m.ComputeAcceleration(v, maxSpeed, lv, gap, limit)
						assert.GreaterOrEqual(t, float64(a.Times(m.StepSize())+v), -1e-9, "%s v=%v lv=%v gap=%v", m.Name(), v, lv, gap)
						assert.LessOrEqual(t, float64(a), 1.25, "%s v=%v lv=%v gap=%v", m.Name(), v, lv, gap)
					}
				}
			}
		}
	}
}

// 期望速度为0时自由流项不产生加速度
func TestZeroDesiredSpeed(t *testing.T) {
	for _, m := range models() {
		a := m.ComputeAcceleration(0, maxSpeed, 0, following.FreeRoad, 0)
		assert.Equal(t, 0.0, a.SI(), m.Name())
	}
}

// 车距不为正时一步内停车
func TestNonPositiveHeadway(t *testing.T) {
	for _, m := range models() {
		assert.InDelta(t, -20, m.ComputeAcceleration(10, maxSpeed, 10, 0, speedLimit).SI(), 1e-12)
		assert.InDelta(t, -20, m.ComputeAcceleration(10, maxSpeed, 10, -3, speedLimit).SI(), 1e-12)
		assert.InDelta(t, 0, m.ComputeAcceleration(0, maxSpeed, 0, 0, speedLimit).SI(), 1e-12)
	}
}

func TestWithDesiredHeadway(t *testing.T) {
	for _, m := range models() {
		dm, ok := m.(following.DesiredHeadwayModel)
		require.True(t, ok)
		shorter := dm.WithDesiredHeadway(0.5)
		// 更短的车头时距下跟车更积极
		assert.Greater(t,
			float64(shorter.ComputeAcceleration(20, maxSpeed, 20, 30, speedLimit)),
			float64(m.ComputeAcceleration(20, maxSpeed, 20, 30, speedLimit)))
	}
}

func TestWithConfig(t *testing.T) {
	for _, m := range models() {
		cm, ok := m.(following.CalibratedModel)
		require.True(t, ok)
		c := cm.Config()
		c.A = 2 * c.A
		gentle := cm.WithConfig(c)
		assert.Equal(t, m.Name(), gentle.Name())
		assert.Equal(t, c, gentle.(following.CalibratedModel).Config())
		// 自由路段从静止起步的加速度即为a
		assert.InDelta(t, c.A.SI(), gentle.ComputeAcceleration(0, maxSpeed, 0, 1e9, speedLimit).SI(), 1e-9)
	}
}

func TestFollowLeaders(t *testing.T) {
	m := following.NewIDMPlus(testConfig())
	near := leader(t, "1", 10, 5)
	far := leader(t, "2", 40, 5)
	parallel, err := headway.NewMovingParallel(headway.Info{ID: "3", Length: 4, Width: 2}, headway.Overlap{}, 0, 0)
	require.NoError(t, err)
	a := following.FollowLeaders(m, 10, 25, []*headway.Headway{far, near, parallel})
	assert.Equal(t, following.FollowSingleLeader(m, 10, 25, 10, 5), a)
	assert.Equal(t, following.FreeAcceleration(m, 10, 25), following.FollowLeaders(m, 10, 25, nil))
	static, err := headway.NewStatic(headway.Info{ID: "4", Length: 4, Width: 2}, 15)
	require.NoError(t, err)
	assert.Equal(t, following.Stop(m, 10, 25, 15), following.FollowLeaders(m, 10, 25, []*headway.Headway{static}))
}

func TestParameterDesiredSpeed(t *testing.T) {
	p := parameter.Defaults()
	sli := entity.SpeedLimitInfo{MaxVehicleSpeed: unit.KmPerHour(80), SpeedLimit: unit.KmPerHour(100)}
	v, err := following.ParameterDesiredSpeed{}.DesiredSpeed(p, sli, nil)
	require.NoError(t, err)
	assert.InDelta(t, 80, v.KmPerHour(), 1e-9)

	require.NoError(t, parameter.Set(p, parameter.FSPEED, 0.7))
	v, err = following.ParameterDesiredSpeed{}.DesiredSpeed(p, sli, nil)
	require.NoError(t, err)
	assert.InDelta(t, 70, v.KmPerHour(), 1e-9)

	_, err = following.ParameterDesiredSpeed{}.DesiredSpeed(parameter.New(), sli, nil)
	assert.ErrorIs(t, err, parameter.ErrParameter)
}
